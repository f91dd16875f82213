package commands

import (
	"context"
	"fmt"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dashcompose/components/dashboard"
)

// UpdateStyleInput merges a partial style config into an instance.
type UpdateStyleInput struct {
	SessionID  string               `json:"session_id"`
	InstanceID string               `json:"instance_id"`
	Patch      dashboard.StylePatch `json:"patch"`
}

// UpdateStyleCommand validates and applies style patches.
type UpdateStyleCommand struct {
	sessions  SessionProvider
	telemetry Telemetry
}

// NewUpdateStyleCommand creates the command.
func NewUpdateStyleCommand(sessions SessionProvider, telemetry Telemetry) *UpdateStyleCommand {
	return &UpdateStyleCommand{sessions: sessions, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[UpdateStyleInput] = (*UpdateStyleCommand)(nil)

// Execute applies the patch.
func (c *UpdateStyleCommand) Execute(ctx context.Context, msg UpdateStyleInput) error {
	session, err := resolveSession(c.sessions, msg.SessionID)
	if err != nil {
		return err
	}
	if err := session.UpdateStyle(ctx, msg.InstanceID, msg.Patch); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.style_update", map[string]any{
		"session_id":  msg.SessionID,
		"instance_id": msg.InstanceID,
		"fields":      len(msg.Patch),
	})
	return nil
}

// SeriesColorInput overrides one series colour.
type SeriesColorInput struct {
	SessionID  string `json:"session_id"`
	InstanceID string `json:"instance_id"`
	Series     string `json:"series"`
	Color      string `json:"color"`
}

// UpdateSeriesColorCommand records colour overrides.
type UpdateSeriesColorCommand struct {
	sessions  SessionProvider
	telemetry Telemetry
}

// NewUpdateSeriesColorCommand creates the command.
func NewUpdateSeriesColorCommand(sessions SessionProvider, telemetry Telemetry) *UpdateSeriesColorCommand {
	return &UpdateSeriesColorCommand{sessions: sessions, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SeriesColorInput] = (*UpdateSeriesColorCommand)(nil)

// Execute stores the override.
func (c *UpdateSeriesColorCommand) Execute(ctx context.Context, msg SeriesColorInput) error {
	if msg.Series == "" || msg.Color == "" {
		return fmt.Errorf("commands: series colour requires series and color: %w", dashboard.ErrInvalidInput)
	}
	session, err := resolveSession(c.sessions, msg.SessionID)
	if err != nil {
		return err
	}
	updated := session.UpdateSeriesColor(ctx, msg.InstanceID, msg.Series, msg.Color)
	c.telemetry.Record(ctx, "dashboard.command.series_color", map[string]any{
		"session_id":  msg.SessionID,
		"instance_id": msg.InstanceID,
		"updated":     updated,
	})
	return nil
}
