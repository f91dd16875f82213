package queries

import (
	"context"
	"errors"
	"fmt"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dashcompose/components/dashboard"
)

// SessionProvider resolves live sessions by id.
type SessionProvider interface {
	Session(id string) (*dashboard.Session, error)
}

var errMissingSessions = errors.New("queries: session provider not configured")

func resolveSession(sessions SessionProvider, id string) (*dashboard.Session, error) {
	if sessions == nil {
		return nil, errMissingSessions
	}
	if id == "" {
		return nil, fmt.Errorf("%w: empty session id", dashboard.ErrSessionNotFound)
	}
	return sessions.Session(id)
}

// SessionStateInput identifies a session.
type SessionStateInput struct {
	SessionID string `json:"session_id"`
}

// SessionStateQuery returns the observable state of a session.
type SessionStateQuery struct {
	sessions SessionProvider
}

// NewSessionStateQuery builds the query.
func NewSessionStateQuery(sessions SessionProvider) *SessionStateQuery {
	return &SessionStateQuery{sessions: sessions}
}

var _ gocommand.Querier[SessionStateInput, dashboard.SessionState] = (*SessionStateQuery)(nil)

// Query reads the session state.
func (q *SessionStateQuery) Query(_ context.Context, input SessionStateInput) (dashboard.SessionState, error) {
	session, err := resolveSession(q.sessions, input.SessionID)
	if err != nil {
		return dashboard.SessionState{}, err
	}
	return session.State(), nil
}

// RenderWidgetInput carries the raw option document of one chart instance.
type RenderWidgetInput struct {
	SessionID  string                   `json:"session_id"`
	InstanceID string                   `json:"instance_id"`
	Options    dashboard.OptionDocument `json:"options"`
}

// RenderWidgetQuery runs the styling pipeline for one instance. Series
// discovery is applied on the session's next tick.
type RenderWidgetQuery struct {
	sessions SessionProvider
}

// NewRenderWidgetQuery builds the query.
func NewRenderWidgetQuery(sessions SessionProvider) *RenderWidgetQuery {
	return &RenderWidgetQuery{sessions: sessions}
}

var _ gocommand.Querier[RenderWidgetInput, dashboard.RenderResult] = (*RenderWidgetQuery)(nil)

// Query renders the instance.
func (q *RenderWidgetQuery) Query(ctx context.Context, input RenderWidgetInput) (dashboard.RenderResult, error) {
	session, err := resolveSession(q.sessions, input.SessionID)
	if err != nil {
		return dashboard.RenderResult{}, err
	}
	return session.Render(ctx, input.InstanceID, input.Options)
}
