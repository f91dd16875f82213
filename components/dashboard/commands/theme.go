package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dashcompose/components/dashboard"
)

// SetThemeInput switches a session theme. An empty Mode toggles.
type SetThemeInput struct {
	SessionID string              `json:"session_id"`
	Mode      dashboard.ThemeMode `json:"mode,omitempty"`
}

type themeService interface {
	SetTheme(ctx context.Context, sessionID string, mode dashboard.ThemeMode) error
	ToggleTheme(ctx context.Context, sessionID string) (dashboard.ThemeMode, error)
}

// SetThemeCommand changes the theme and persists the viewer preference.
type SetThemeCommand struct {
	service   themeService
	telemetry Telemetry
}

// NewSetThemeCommand creates the command.
func NewSetThemeCommand(service themeService, telemetry Telemetry) *SetThemeCommand {
	return &SetThemeCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SetThemeInput] = (*SetThemeCommand)(nil)

// Execute applies or toggles the theme.
func (c *SetThemeCommand) Execute(ctx context.Context, msg SetThemeInput) error {
	if c.service == nil {
		return errors.New("commands: theme command requires service")
	}
	mode := msg.Mode
	if mode == "" {
		toggled, err := c.service.ToggleTheme(ctx, msg.SessionID)
		if err != nil {
			return err
		}
		mode = toggled
	} else if err := c.service.SetTheme(ctx, msg.SessionID, mode); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.theme", map[string]any{
		"session_id": msg.SessionID,
		"theme":      string(mode),
	})
	return nil
}
