package queries

import (
	"context"
	"errors"
	"testing"

	dashboard "github.com/goliatone/go-dashcompose/components/dashboard"
)

func newTestService(t *testing.T) *dashboard.Service {
	t.Helper()
	cat := dashboard.NewCatalog()
	if err := cat.Register(dashboard.CatalogEntry{ID: "chart-bar", Title: "Bar", DefaultLayout: dashboard.DefaultLayout{W: 8, H: 10}}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	service := dashboard.NewService(dashboard.Options{Catalog: cat})
	if err := service.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	return service
}

func TestSessionStateQuery(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)
	session, err := service.OpenSession(ctx, dashboard.ViewerContext{UserID: "user-1"})
	if err != nil {
		t.Fatalf("OpenSession returned error: %v", err)
	}
	if _, err := session.AddWidget(ctx, "chart-bar", dashboard.LayoutOverride{}); err != nil {
		t.Fatalf("AddWidget returned error: %v", err)
	}

	query := NewSessionStateQuery(service)
	state, err := query.Query(ctx, SessionStateInput{SessionID: session.ID()})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if state.ID != session.ID() || len(state.Instances) != 1 {
		t.Fatalf("unexpected state %+v", state)
	}
	if _, err := query.Query(ctx, SessionStateInput{}); !errors.Is(err, dashboard.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRenderWidgetQuery(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)
	session, _ := service.OpenSession(ctx, dashboard.ViewerContext{})
	inst, _ := session.AddWidget(ctx, "chart-bar", dashboard.LayoutOverride{})

	query := NewRenderWidgetQuery(service)
	result, err := query.Query(ctx, RenderWidgetInput{
		SessionID:  session.ID(),
		InstanceID: inst.InstanceID,
		Options:    dashboard.OptionDocument{"series": []any{map[string]any{"name": "Revenue"}}},
	})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if result.Path != dashboard.PathTheme {
		t.Fatalf("expected theme path, got %s", result.Path)
	}
	if session.Tick() != 1 {
		t.Fatalf("expected discovery to be deferred to the next tick")
	}
	if _, err := query.Query(ctx, RenderWidgetInput{SessionID: session.ID(), InstanceID: "ghost"}); !errors.Is(err, dashboard.ErrInstanceNotFound) {
		t.Fatalf("expected ErrInstanceNotFound, got %v", err)
	}
}

func TestLibraryQuery(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)
	ops, _ := service.CreateFolder(ctx, "Ops", "")
	other, _ := service.CreateFolder(ctx, "Other", "")
	session, _ := service.OpenSession(ctx, dashboard.ViewerContext{})
	if _, err := session.SaveAsNew(ctx, ops.ID, "Main"); err != nil {
		t.Fatalf("SaveAsNew returned error: %v", err)
	}

	query := NewLibraryQuery(service)
	view, err := query.Query(ctx, LibraryInput{})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(view.Folders) != 2 || len(view.Dashboards) != 1 {
		t.Fatalf("unexpected view %+v", view)
	}
	view, _ = query.Query(ctx, LibraryInput{FolderID: other.ID})
	if len(view.Dashboards) != 0 {
		t.Fatalf("expected empty folder listing, got %+v", view.Dashboards)
	}
}

func TestCatalogQuery(t *testing.T) {
	service := newTestService(t)
	entries, err := NewCatalogQuery(service).Query(context.Background(), struct{}{})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	found := false
	for _, entry := range entries {
		if entry.ID == "chart-bar" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected chart-bar in catalog, got %+v", entries)
	}
}
