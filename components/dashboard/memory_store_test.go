package dashboard

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStoreCascadeAndCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.CreateFolder(ctx, Folder{ID: "f-1", Name: "Ops"}); err != nil {
		t.Fatalf("CreateFolder returned error: %v", err)
	}
	if err := store.CreateFolder(ctx, Folder{ID: "f-1", Name: "Dup"}); err == nil {
		t.Fatalf("expected duplicate folder to fail")
	}
	d := Dashboard{ID: "d-1", Name: "Main", FolderID: "f-1", WidgetInstances: []WidgetInstance{{InstanceID: "a", TypeID: "chart-bar"}}}
	if err := store.CreateDashboard(ctx, d); err != nil {
		t.Fatalf("CreateDashboard returned error: %v", err)
	}
	d.WidgetInstances[0].TypeID = "mutated"

	list, _ := store.ListDashboards(ctx)
	if len(list) != 1 || list[0].WidgetInstances[0].TypeID != "chart-bar" {
		t.Fatalf("store should keep its own copy, got %+v", list)
	}

	if err := store.DeleteFolder(ctx, "f-1"); err != nil {
		t.Fatalf("DeleteFolder returned error: %v", err)
	}
	list, _ = store.ListDashboards(ctx)
	if len(list) != 0 {
		t.Fatalf("expected cascade delete, got %d dashboards", len(list))
	}
	if err := store.DeleteDashboard(ctx, "d-1"); !errors.Is(err, ErrDashboardNotFound) {
		t.Fatalf("expected ErrDashboardNotFound, got %v", err)
	}
	name := "x"
	if err := store.UpdateFolder(ctx, "f-1", FolderPatch{Name: &name}); !errors.Is(err, ErrFolderNotFound) {
		t.Fatalf("expected ErrFolderNotFound, got %v", err)
	}
}
