package commands

import (
	"context"
	"fmt"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dashcompose/components/dashboard"
)

// SaveMode selects between overwriting the active dashboard and creating a
// new one.
type SaveMode string

const (
	SaveOverwrite SaveMode = "save"
	SaveAsNew     SaveMode = "save_as"
)

// SaveSnapshotInput persists the session's registry.
type SaveSnapshotInput struct {
	SessionID string               `json:"session_id"`
	Mode      SaveMode             `json:"mode"`
	FolderID  string               `json:"folder_id,omitempty"`
	Name      string               `json:"name,omitempty"`
	Result    *dashboard.Dashboard `json:"-"`
}

// SaveSnapshotCommand runs Save or Save As.
type SaveSnapshotCommand struct {
	sessions  SessionProvider
	telemetry Telemetry
}

// NewSaveSnapshotCommand creates the command.
func NewSaveSnapshotCommand(sessions SessionProvider, telemetry Telemetry) *SaveSnapshotCommand {
	return &SaveSnapshotCommand{sessions: sessions, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SaveSnapshotInput] = (*SaveSnapshotCommand)(nil)

// Execute saves the snapshot. Overwriting without an active dashboard fails
// with ErrNoActiveDashboard.
func (c *SaveSnapshotCommand) Execute(ctx context.Context, msg SaveSnapshotInput) error {
	session, err := resolveSession(c.sessions, msg.SessionID)
	if err != nil {
		return err
	}
	switch msg.Mode {
	case SaveAsNew:
		d, err := session.SaveAsNew(ctx, msg.FolderID, msg.Name)
		if err != nil {
			return err
		}
		if msg.Result != nil {
			*msg.Result = d
		}
	case SaveOverwrite, "":
		saved, err := session.SaveOverwrite(ctx)
		if err != nil {
			return err
		}
		if !saved {
			return dashboard.ErrNoActiveDashboard
		}
	default:
		return fmt.Errorf("commands: unknown save mode %q: %w", msg.Mode, dashboard.ErrInvalidInput)
	}
	c.telemetry.Record(ctx, "dashboard.command.save", map[string]any{
		"session_id": msg.SessionID,
		"mode":       string(msg.Mode),
	})
	return nil
}

// LoadDashboardInput selects a saved dashboard for a session.
type LoadDashboardInput struct {
	SessionID   string `json:"session_id"`
	DashboardID string `json:"dashboard_id"`
}

// LoadDashboardCommand makes a saved dashboard active.
type LoadDashboardCommand struct {
	sessions  SessionProvider
	telemetry Telemetry
}

// NewLoadDashboardCommand creates the command.
func NewLoadDashboardCommand(sessions SessionProvider, telemetry Telemetry) *LoadDashboardCommand {
	return &LoadDashboardCommand{sessions: sessions, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[LoadDashboardInput] = (*LoadDashboardCommand)(nil)

// Execute loads the dashboard.
func (c *LoadDashboardCommand) Execute(ctx context.Context, msg LoadDashboardInput) error {
	if msg.DashboardID == "" {
		return fmt.Errorf("commands: load requires dashboard id: %w", dashboard.ErrInvalidInput)
	}
	session, err := resolveSession(c.sessions, msg.SessionID)
	if err != nil {
		return err
	}
	if _, err := session.LoadDashboard(ctx, msg.DashboardID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.load", map[string]any{
		"session_id":   msg.SessionID,
		"dashboard_id": msg.DashboardID,
	})
	return nil
}

// NewDashboardInput starts a blank dashboard in a session.
type NewDashboardInput struct {
	SessionID string `json:"session_id"`
}

// BlankDashboardCommand clears the registry for a new dashboard.
type BlankDashboardCommand struct {
	sessions SessionProvider
}

// NewBlankDashboardCommand creates the command.
func NewBlankDashboardCommand(sessions SessionProvider) *BlankDashboardCommand {
	return &BlankDashboardCommand{sessions: sessions}
}

var _ gocommand.Commander[NewDashboardInput] = (*BlankDashboardCommand)(nil)

// Execute resets the session.
func (c *BlankDashboardCommand) Execute(ctx context.Context, msg NewDashboardInput) error {
	session, err := resolveSession(c.sessions, msg.SessionID)
	if err != nil {
		return err
	}
	session.NewDashboard(ctx)
	return nil
}
