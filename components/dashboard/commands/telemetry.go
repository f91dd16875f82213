package commands

import (
	"context"
	"errors"
	"fmt"

	dashboard "github.com/goliatone/go-dashcompose/components/dashboard"
)

// Telemetry allows commands to emit structured events.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

// SessionProvider resolves open editing sessions. *dashboard.Service
// satisfies it.
type SessionProvider interface {
	Session(id string) (*dashboard.Session, error)
}

var errMissingSessions = errors.New("commands: session provider is required")

func resolveSession(sessions SessionProvider, id string) (*dashboard.Session, error) {
	if sessions == nil {
		return nil, errMissingSessions
	}
	if id == "" {
		return nil, fmt.Errorf("%w: empty session id", dashboard.ErrSessionNotFound)
	}
	return sessions.Session(id)
}
