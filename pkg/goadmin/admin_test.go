package goadmin_test

import (
	"context"
	"errors"
	"testing"

	dashboardpkg "github.com/goliatone/go-dashcompose/pkg/dashboard"
	"github.com/goliatone/go-dashcompose/pkg/goadmin"
)

type stubMenuBuilder struct {
	items []goadmin.MenuItem
	err   error
}

func (s *stubMenuBuilder) EnsureMenuItem(_ context.Context, _ string, item goadmin.MenuItem) error {
	s.items = append(s.items, item)
	return s.err
}

func TestAdminBootstrapSeedsMenu(t *testing.T) {
	builder := &stubMenuBuilder{}
	service := dashboardpkg.NewService(dashboardpkg.Options{})
	admin, err := goadmin.New(goadmin.Config{
		EnableDashboard: true,
		Service:         service,
		MenuBuilder:     builder,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := admin.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	if len(builder.items) != 1 || builder.items[0].Label != "Dashboards" {
		t.Fatalf("expected the default menu item, got %+v", builder.items)
	}
	if admin.Dashboard() == nil {
		t.Fatalf("expected dashboard service")
	}
}

func TestAdminBootstrapAddsFolderMenus(t *testing.T) {
	ctx := context.Background()
	store := dashboardpkg.NewMemoryStore()
	seeded := dashboardpkg.NewService(dashboardpkg.Options{Store: store})
	if err := seeded.Bootstrap(ctx); err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	for _, name := range []string{"Ops", "Sales"} {
		if _, err := seeded.CreateFolder(ctx, name, ""); err != nil {
			t.Fatalf("CreateFolder returned error: %v", err)
		}
	}

	builder := &stubMenuBuilder{}
	admin, err := goadmin.New(goadmin.Config{
		EnableDashboard: true,
		Service:         dashboardpkg.NewService(dashboardpkg.Options{Store: store}),
		MenuBuilder:     builder,
		FolderMenus:     true,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := admin.Bootstrap(ctx); err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	if len(builder.items) != 3 {
		t.Fatalf("expected root plus two folders, got %+v", builder.items)
	}
	if builder.items[1].Label != "Ops" || builder.items[2].Label != "Sales" {
		t.Fatalf("unexpected folder order %+v", builder.items)
	}
	if builder.items[1].Parent != "admin.dashboard" || builder.items[1].Icon != "folder" {
		t.Fatalf("unexpected folder item %+v", builder.items[1])
	}
}

func TestAdminBootstrapPropagatesMenuErrors(t *testing.T) {
	builder := &stubMenuBuilder{err: errors.New("menu down")}
	admin, _ := goadmin.New(goadmin.Config{
		EnableDashboard: true,
		Service:         dashboardpkg.NewService(dashboardpkg.Options{}),
		MenuBuilder:     builder,
	})
	if err := admin.Bootstrap(context.Background()); err == nil {
		t.Fatalf("expected menu error")
	}
}

func TestAdminDisabledSkipsBootstrap(t *testing.T) {
	builder := &stubMenuBuilder{}
	admin, err := goadmin.New(goadmin.Config{
		EnableDashboard: false,
		MenuBuilder:     builder,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := admin.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	if len(builder.items) != 0 {
		t.Fatalf("expected no menu items, got %d", len(builder.items))
	}
	if admin.Dashboard() != nil {
		t.Fatalf("expected nil dashboard when disabled")
	}
}

func TestNewRequiresServiceWhenEnabled(t *testing.T) {
	if _, err := goadmin.New(goadmin.Config{EnableDashboard: true}); err == nil {
		t.Fatalf("expected error without service")
	}
}
