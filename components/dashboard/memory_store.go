package dashboard

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is the default Store. It keeps insertion order and deep
// copies on every read and write.
type MemoryStore struct {
	mu         sync.RWMutex
	folders    []Folder
	dashboards []Dashboard
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) ListFolders(context.Context) ([]Folder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Folder{}, s.folders...), nil
}

func (s *MemoryStore) ListDashboards(context.Context) ([]Dashboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneDashboards(s.dashboards), nil
}

func (s *MemoryStore) CreateFolder(_ context.Context, folder Folder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.folders {
		if f.ID == folder.ID {
			return fmt.Errorf("dashboard: folder %s already exists", folder.ID)
		}
	}
	s.folders = append(s.folders, folder)
	return nil
}

func (s *MemoryStore) UpdateFolder(_ context.Context, id string, patch FolderPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.folders {
		if s.folders[i].ID == id {
			s.folders[i] = patch.Apply(s.folders[i])
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrFolderNotFound, id)
}

func (s *MemoryStore) DeleteFolder(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i := range s.folders {
		if s.folders[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrFolderNotFound, id)
	}
	s.folders = append(s.folders[:idx], s.folders[idx+1:]...)
	kept := s.dashboards[:0]
	for _, d := range s.dashboards {
		if d.FolderID != id {
			kept = append(kept, d)
		}
	}
	s.dashboards = kept
	return nil
}

func (s *MemoryStore) CreateDashboard(_ context.Context, dashboard Dashboard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.dashboards {
		if d.ID == dashboard.ID {
			return fmt.Errorf("dashboard: dashboard %s already exists", dashboard.ID)
		}
	}
	s.dashboards = append(s.dashboards, cloneDashboard(dashboard))
	return nil
}

func (s *MemoryStore) UpdateDashboard(_ context.Context, id string, patch DashboardPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.dashboards {
		if s.dashboards[i].ID == id {
			s.dashboards[i] = cloneDashboard(patch.Apply(s.dashboards[i]))
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrDashboardNotFound, id)
}

func (s *MemoryStore) DeleteDashboard(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.dashboards {
		if s.dashboards[i].ID == id {
			s.dashboards = append(s.dashboards[:i], s.dashboards[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrDashboardNotFound, id)
}
