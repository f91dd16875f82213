package commands

import (
	"context"
	"errors"
	"fmt"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dashcompose/components/dashboard"
)

// FolderAction names a folder mutation.
type FolderAction string

const (
	FolderCreate FolderAction = "create"
	FolderUpdate FolderAction = "update"
	FolderDelete FolderAction = "delete"
)

// FolderInput mutates the folder library.
type FolderInput struct {
	Action   FolderAction      `json:"action"`
	FolderID string            `json:"folder_id,omitempty"`
	Name     string            `json:"name,omitempty"`
	Color    string            `json:"color,omitempty"`
	Result   *dashboard.Folder `json:"-"`
}

type folderService interface {
	CreateFolder(ctx context.Context, name, color string) (dashboard.Folder, error)
	UpdateFolder(ctx context.Context, id string, patch dashboard.FolderPatch) (dashboard.Folder, error)
	DeleteFolder(ctx context.Context, id string) error
}

// FolderCommand creates, updates or deletes folders.
type FolderCommand struct {
	service   folderService
	telemetry Telemetry
}

// NewFolderCommand creates the command.
func NewFolderCommand(service folderService, telemetry Telemetry) *FolderCommand {
	return &FolderCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[FolderInput] = (*FolderCommand)(nil)

// Execute runs the folder action.
func (c *FolderCommand) Execute(ctx context.Context, msg FolderInput) error {
	if c.service == nil {
		return errors.New("commands: folder command requires service")
	}
	var (
		folder dashboard.Folder
		err    error
	)
	switch msg.Action {
	case FolderCreate:
		folder, err = c.service.CreateFolder(ctx, msg.Name, msg.Color)
	case FolderUpdate:
		patch := dashboard.FolderPatch{}
		if msg.Name != "" {
			patch.Name = &msg.Name
		}
		if msg.Color != "" {
			patch.Color = &msg.Color
		}
		folder, err = c.service.UpdateFolder(ctx, msg.FolderID, patch)
	case FolderDelete:
		err = c.service.DeleteFolder(ctx, msg.FolderID)
		folder.ID = msg.FolderID
	default:
		return fmt.Errorf("commands: unknown folder action %q", msg.Action)
	}
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = folder
	}
	c.telemetry.Record(ctx, "dashboard.command.folder", map[string]any{
		"action":    string(msg.Action),
		"folder_id": folder.ID,
	})
	return nil
}

// DashboardAction names a dashboard library mutation.
type DashboardAction string

const (
	DashboardRename DashboardAction = "rename"
	DashboardMove   DashboardAction = "move"
	DashboardIframe DashboardAction = "iframe"
	DashboardDelete DashboardAction = "delete"
)

// DashboardInput mutates a saved dashboard outside of a session.
type DashboardInput struct {
	Action      DashboardAction      `json:"action"`
	DashboardID string               `json:"dashboard_id"`
	Name        string               `json:"name,omitempty"`
	FolderID    string               `json:"folder_id,omitempty"`
	IframeURL   string               `json:"iframe_url,omitempty"`
	Result      *dashboard.Dashboard `json:"-"`
}

type dashboardService interface {
	RenameDashboard(ctx context.Context, id, name string) (dashboard.Dashboard, error)
	MoveDashboard(ctx context.Context, id, folderID string) (dashboard.Dashboard, error)
	SetDashboardIframe(ctx context.Context, id, url string) (dashboard.Dashboard, error)
	DeleteDashboard(ctx context.Context, id string) error
}

// DashboardCommand renames, moves, re-points or deletes dashboards.
type DashboardCommand struct {
	service   dashboardService
	telemetry Telemetry
}

// NewDashboardCommand creates the command.
func NewDashboardCommand(service dashboardService, telemetry Telemetry) *DashboardCommand {
	return &DashboardCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DashboardInput] = (*DashboardCommand)(nil)

// Execute runs the dashboard action.
func (c *DashboardCommand) Execute(ctx context.Context, msg DashboardInput) error {
	if c.service == nil {
		return errors.New("commands: dashboard command requires service")
	}
	var (
		d   dashboard.Dashboard
		err error
	)
	switch msg.Action {
	case DashboardRename:
		d, err = c.service.RenameDashboard(ctx, msg.DashboardID, msg.Name)
	case DashboardMove:
		d, err = c.service.MoveDashboard(ctx, msg.DashboardID, msg.FolderID)
	case DashboardIframe:
		d, err = c.service.SetDashboardIframe(ctx, msg.DashboardID, msg.IframeURL)
	case DashboardDelete:
		err = c.service.DeleteDashboard(ctx, msg.DashboardID)
	default:
		return fmt.Errorf("commands: unknown dashboard action %q", msg.Action)
	}
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = d
	}
	c.telemetry.Record(ctx, "dashboard.command.dashboard", map[string]any{
		"action":       string(msg.Action),
		"dashboard_id": msg.DashboardID,
	})
	return nil
}
