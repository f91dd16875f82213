package goadmin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	dashboardpkg "github.com/goliatone/go-dashcompose/pkg/dashboard"
)

// MenuBuilder ensures dashboard entries exist within the admin navigation.
type MenuBuilder interface {
	EnsureMenuItem(ctx context.Context, menuCode string, item MenuItem) error
}

// MenuItem captures dashboard link metadata.
type MenuItem struct {
	Label    string
	Route    string
	Icon     string
	Position int
	Parent   string
}

// Config wires the dashboard service into an admin shell.
type Config struct {
	EnableDashboard bool
	MenuCode        string
	MenuBuilder     MenuBuilder
	Service         *dashboardpkg.Service
	DefaultMenuItem MenuItem
	// FolderMenus adds one child entry per library folder under the default
	// menu item.
	FolderMenus bool
	FolderIcon  string
}

// Admin exposes helpers for go-admin style applications.
type Admin struct {
	cfg Config
}

// New creates an Admin helper that can seed dashboard menus.
func New(cfg Config) (*Admin, error) {
	if cfg.EnableDashboard && cfg.Service == nil {
		return nil, errors.New("goadmin: dashboard service is required when enabled")
	}
	if cfg.MenuCode == "" {
		cfg.MenuCode = "admin.main"
	}
	if cfg.DefaultMenuItem.Label == "" {
		cfg.DefaultMenuItem.Label = "Dashboards"
	}
	if cfg.DefaultMenuItem.Route == "" {
		cfg.DefaultMenuItem.Route = "admin.dashboard"
	}
	if cfg.DefaultMenuItem.Icon == "" {
		cfg.DefaultMenuItem.Icon = "layout-grid"
	}
	if cfg.FolderIcon == "" {
		cfg.FolderIcon = "folder"
	}
	return &Admin{cfg: cfg}, nil
}

// Dashboard exposes the configured dashboard service when enabled.
func (a *Admin) Dashboard() *dashboardpkg.Service {
	if !a.cfg.EnableDashboard {
		return nil
	}
	return a.cfg.Service
}

// Bootstrap loads the dashboard library and seeds menu entries.
func (a *Admin) Bootstrap(ctx context.Context) error {
	if !a.cfg.EnableDashboard {
		return nil
	}
	if err := a.cfg.Service.Bootstrap(ctx); err != nil {
		return fmt.Errorf("goadmin: bootstrap dashboards: %w", err)
	}
	if a.cfg.MenuBuilder == nil {
		return nil
	}
	for _, item := range a.MenuItems() {
		if err := a.cfg.MenuBuilder.EnsureMenuItem(ctx, a.cfg.MenuCode, item); err != nil {
			return err
		}
	}
	return nil
}

// MenuItems returns the default entry followed by the folder entries, in
// library order.
func (a *Admin) MenuItems() []MenuItem {
	if !a.cfg.EnableDashboard {
		return nil
	}
	root := a.cfg.DefaultMenuItem
	items := []MenuItem{root}
	if !a.cfg.FolderMenus {
		return items
	}
	for idx, folder := range a.cfg.Service.Library().Folders() {
		items = append(items, MenuItem{
			Label:    folder.Name,
			Route:    root.Route + ".folder." + strings.ToLower(folder.ID),
			Icon:     a.cfg.FolderIcon,
			Position: idx + 1,
			Parent:   root.Route,
		})
	}
	return items
}
