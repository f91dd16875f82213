package commands

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dashcompose/components/dashboard"
)

// AddWidgetInput places a new catalog widget in a session.
type AddWidgetInput struct {
	SessionID string                    `json:"session_id"`
	TypeID    string                    `json:"type_id"`
	Layout    dashboard.LayoutOverride  `json:"layout"`
	Result    *dashboard.WidgetInstance `json:"-"`
}

// AddWidgetCommand wraps Session.AddWidget so transports can add widgets
// without linking directly against the session.
type AddWidgetCommand struct {
	sessions  SessionProvider
	telemetry Telemetry
}

// NewAddWidgetCommand creates a command instance.
func NewAddWidgetCommand(sessions SessionProvider, telemetry Telemetry) *AddWidgetCommand {
	return &AddWidgetCommand{sessions: sessions, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[AddWidgetInput] = (*AddWidgetCommand)(nil)

// Execute adds the widget.
func (c *AddWidgetCommand) Execute(ctx context.Context, msg AddWidgetInput) error {
	session, err := resolveSession(c.sessions, msg.SessionID)
	if err != nil {
		return err
	}
	inst, err := session.AddWidget(ctx, msg.TypeID, msg.Layout)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = inst
	}
	c.telemetry.Record(ctx, "dashboard.command.widget_add", map[string]any{
		"session_id":  msg.SessionID,
		"type_id":     msg.TypeID,
		"instance_id": inst.InstanceID,
	})
	return nil
}

// SaveEmbedInput creates an embed, or updates InstanceID when set.
type SaveEmbedInput struct {
	SessionID  string                    `json:"session_id"`
	InstanceID string                    `json:"instance_id,omitempty"`
	Payload    dashboard.EmbedPayload    `json:"payload"`
	Result     *dashboard.WidgetInstance `json:"-"`
}

// SaveEmbedCommand stores raw or styled embeds.
type SaveEmbedCommand struct {
	sessions  SessionProvider
	telemetry Telemetry
}

// NewSaveEmbedCommand creates the command.
func NewSaveEmbedCommand(sessions SessionProvider, telemetry Telemetry) *SaveEmbedCommand {
	return &SaveEmbedCommand{sessions: sessions, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SaveEmbedInput] = (*SaveEmbedCommand)(nil)

// Execute saves the embed.
func (c *SaveEmbedCommand) Execute(ctx context.Context, msg SaveEmbedInput) error {
	session, err := resolveSession(c.sessions, msg.SessionID)
	if err != nil {
		return err
	}
	inst, err := session.SaveEmbed(ctx, msg.InstanceID, msg.Payload)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = inst
	}
	c.telemetry.Record(ctx, "dashboard.command.embed_save", map[string]any{
		"session_id":  msg.SessionID,
		"instance_id": inst.InstanceID,
		"kind":        string(msg.Payload.Type),
	})
	return nil
}

// RemoveWidgetInput identifies the instance to delete.
type RemoveWidgetInput struct {
	SessionID  string `json:"session_id"`
	InstanceID string `json:"instance_id"`
}

// RemoveWidgetCommand deletes an instance. Unknown ids are not an error.
type RemoveWidgetCommand struct {
	sessions  SessionProvider
	telemetry Telemetry
}

// NewRemoveWidgetCommand creates the command.
func NewRemoveWidgetCommand(sessions SessionProvider, telemetry Telemetry) *RemoveWidgetCommand {
	return &RemoveWidgetCommand{sessions: sessions, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RemoveWidgetInput] = (*RemoveWidgetCommand)(nil)

// Execute removes the widget.
func (c *RemoveWidgetCommand) Execute(ctx context.Context, msg RemoveWidgetInput) error {
	session, err := resolveSession(c.sessions, msg.SessionID)
	if err != nil {
		return err
	}
	removed := session.RemoveWidget(ctx, msg.InstanceID)
	c.telemetry.Record(ctx, "dashboard.command.widget_remove", map[string]any{
		"session_id":  msg.SessionID,
		"instance_id": msg.InstanceID,
		"removed":     removed,
	})
	return nil
}
