package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dashcompose/components/dashboard"
)

// SeedLibraryInput controls bootstrap behaviour. Widgets lists the catalog
// types placed on the starter dashboard.
type SeedLibraryInput struct {
	FolderName    string   `json:"folder_name"`
	DashboardName string   `json:"dashboard_name"`
	Widgets       []string `json:"widgets"`
}

type seedService interface {
	Library() *dashboard.Library
	CreateFolder(ctx context.Context, name, color string) (dashboard.Folder, error)
	OpenSession(ctx context.Context, viewer dashboard.ViewerContext) (*dashboard.Session, error)
	CloseSession(id string) error
}

// SeedLibraryCommand creates a starter folder and dashboard when the library
// is empty. A non-empty library is left alone.
type SeedLibraryCommand struct {
	service   seedService
	telemetry Telemetry
}

// NewSeedLibraryCommand wires dependencies.
func NewSeedLibraryCommand(service seedService, telemetry Telemetry) *SeedLibraryCommand {
	return &SeedLibraryCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SeedLibraryInput] = (*SeedLibraryCommand)(nil)

// Execute runs the seed.
func (c *SeedLibraryCommand) Execute(ctx context.Context, msg SeedLibraryInput) error {
	if c.service == nil {
		return errors.New("commands: seed command requires service")
	}
	if len(c.service.Library().Folders()) > 0 {
		return nil
	}
	if msg.FolderName == "" {
		msg.FolderName = "General"
	}
	if msg.DashboardName == "" {
		msg.DashboardName = "Overview"
	}
	folder, err := c.service.CreateFolder(ctx, msg.FolderName, "")
	if err != nil {
		return err
	}
	session, err := c.service.OpenSession(ctx, dashboard.ViewerContext{})
	if err != nil {
		return err
	}
	defer c.service.CloseSession(session.ID())
	for _, typeID := range msg.Widgets {
		if _, err := session.AddWidget(ctx, typeID, dashboard.LayoutOverride{}); err != nil {
			return err
		}
	}
	if _, err := session.SaveAsNew(ctx, folder.ID, msg.DashboardName); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.seed", map[string]any{
		"folder_id": folder.ID,
		"widgets":   len(msg.Widgets),
	})
	return nil
}
