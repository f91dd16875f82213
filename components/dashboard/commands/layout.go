package commands

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dashcompose/components/dashboard"
)

// LayoutChangeInput carries the renderer's layout report.
type LayoutChangeInput struct {
	SessionID string               `json:"session_id"`
	Layout    []dashboard.GridRect `json:"layout"`
	Result    *dashboard.LayoutSet `json:"-"`
}

// LayoutChangeCommand folds drag and drop reports into the registry.
type LayoutChangeCommand struct {
	sessions  SessionProvider
	telemetry Telemetry
}

// NewLayoutChangeCommand creates the command.
func NewLayoutChangeCommand(sessions SessionProvider, telemetry Telemetry) *LayoutChangeCommand {
	return &LayoutChangeCommand{sessions: sessions, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[LayoutChangeInput] = (*LayoutChangeCommand)(nil)

// Execute applies the layout report.
func (c *LayoutChangeCommand) Execute(ctx context.Context, msg LayoutChangeInput) error {
	session, err := resolveSession(c.sessions, msg.SessionID)
	if err != nil {
		return err
	}
	layout := session.ApplyLayoutChange(ctx, msg.Layout)
	if msg.Result != nil {
		*msg.Result = layout
	}
	c.telemetry.Record(ctx, "dashboard.command.layout_change", map[string]any{
		"session_id": msg.SessionID,
		"count":      len(msg.Layout),
	})
	return nil
}

// ResizeInput replaces one instance rectangle.
type ResizeInput struct {
	SessionID  string             `json:"session_id"`
	InstanceID string             `json:"instance_id"`
	Rect       dashboard.GridRect `json:"rect"`
}

// ResizeWidgetCommand resizes an instance and schedules viewport re-measure.
type ResizeWidgetCommand struct {
	sessions  SessionProvider
	telemetry Telemetry
}

// NewResizeWidgetCommand creates the command.
func NewResizeWidgetCommand(sessions SessionProvider, telemetry Telemetry) *ResizeWidgetCommand {
	return &ResizeWidgetCommand{sessions: sessions, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ResizeInput] = (*ResizeWidgetCommand)(nil)

// Execute resizes the widget.
func (c *ResizeWidgetCommand) Execute(ctx context.Context, msg ResizeInput) error {
	session, err := resolveSession(c.sessions, msg.SessionID)
	if err != nil {
		return err
	}
	signal := session.Resize(ctx, msg.InstanceID, msg.Rect)
	c.telemetry.Record(ctx, "dashboard.command.resize", map[string]any{
		"session_id":  msg.SessionID,
		"instance_id": msg.InstanceID,
		"remeasure":   signal != nil,
	})
	return nil
}

// TickInput runs a session's deferred effects.
type TickInput struct {
	SessionID string `json:"session_id"`
}

// TickSessionCommand drains effects queued by renders, such as series
// discovery.
type TickSessionCommand struct {
	sessions SessionProvider
}

// NewTickSessionCommand creates the command.
func NewTickSessionCommand(sessions SessionProvider) *TickSessionCommand {
	return &TickSessionCommand{sessions: sessions}
}

var _ gocommand.Commander[TickInput] = (*TickSessionCommand)(nil)

// Execute drains the queue.
func (c *TickSessionCommand) Execute(_ context.Context, msg TickInput) error {
	session, err := resolveSession(c.sessions, msg.SessionID)
	if err != nil {
		return err
	}
	session.Tick()
	return nil
}
