package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/goliatone/go-dashcompose/components/dashboard"
)

const (
	foldersFile    = "folders.json"
	dashboardsFile = "dashboards.json"
)

// FileStore keeps the library as two JSON documents in a directory. It is
// the local store used by the CLI and single-node deployments.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

var _ dashboard.Store = (*FileStore)(nil)

// NewFileStore creates dir when missing.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("store: file store directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("store: create dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the store directory.
func (s *FileStore) Path() string { return s.dir }

func (s *FileStore) ListFolders(context.Context) ([]dashboard.Folder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var folders []dashboard.Folder
	if err := s.read(foldersFile, &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

func (s *FileStore) ListDashboards(context.Context) ([]dashboard.Dashboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var dashboards []dashboard.Dashboard
	if err := s.read(dashboardsFile, &dashboards); err != nil {
		return nil, err
	}
	return dashboards, nil
}

func (s *FileStore) CreateFolder(_ context.Context, folder dashboard.Folder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	folders, err := loadForWrite[dashboard.Folder](s, foldersFile)
	if err != nil {
		return err
	}
	for _, f := range folders {
		if f.ID == folder.ID {
			return fmt.Errorf("store: folder %s already exists", folder.ID)
		}
	}
	return s.write(foldersFile, append(folders, folder))
}

func (s *FileStore) UpdateFolder(_ context.Context, id string, patch dashboard.FolderPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	folders, err := loadForWrite[dashboard.Folder](s, foldersFile)
	if err != nil {
		return err
	}
	for i := range folders {
		if folders[i].ID == id {
			folders[i] = patch.Apply(folders[i])
			return s.write(foldersFile, folders)
		}
	}
	return fmt.Errorf("%w: %s", dashboard.ErrFolderNotFound, id)
}

// DeleteFolder removes the folder and its dashboards. The dashboards file is
// written before the folders file.
func (s *FileStore) DeleteFolder(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	folders, err := loadForWrite[dashboard.Folder](s, foldersFile)
	if err != nil {
		return err
	}
	idx := -1
	for i := range folders {
		if folders[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", dashboard.ErrFolderNotFound, id)
	}
	dashboards, err := loadForWrite[dashboard.Dashboard](s, dashboardsFile)
	if err != nil {
		return err
	}
	kept := make([]dashboard.Dashboard, 0, len(dashboards))
	for _, d := range dashboards {
		if d.FolderID != id {
			kept = append(kept, d)
		}
	}
	if err := s.write(dashboardsFile, kept); err != nil {
		return err
	}
	return s.write(foldersFile, append(folders[:idx], folders[idx+1:]...))
}

func (s *FileStore) CreateDashboard(_ context.Context, d dashboard.Dashboard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	dashboards, err := loadForWrite[dashboard.Dashboard](s, dashboardsFile)
	if err != nil {
		return err
	}
	for _, existing := range dashboards {
		if existing.ID == d.ID {
			return fmt.Errorf("store: dashboard %s already exists", d.ID)
		}
	}
	return s.write(dashboardsFile, append(dashboards, d))
}

func (s *FileStore) UpdateDashboard(_ context.Context, id string, patch dashboard.DashboardPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	dashboards, err := loadForWrite[dashboard.Dashboard](s, dashboardsFile)
	if err != nil {
		return err
	}
	for i := range dashboards {
		if dashboards[i].ID == id {
			dashboards[i] = patch.Apply(dashboards[i])
			return s.write(dashboardsFile, dashboards)
		}
	}
	return fmt.Errorf("%w: %s", dashboard.ErrDashboardNotFound, id)
}

func (s *FileStore) DeleteDashboard(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	dashboards, err := loadForWrite[dashboard.Dashboard](s, dashboardsFile)
	if err != nil {
		return err
	}
	for i := range dashboards {
		if dashboards[i].ID == id {
			return s.write(dashboardsFile, append(dashboards[:i], dashboards[i+1:]...))
		}
	}
	return fmt.Errorf("%w: %s", dashboard.ErrDashboardNotFound, id)
}

// read decodes name into out. A missing file is an empty collection.
func (s *FileStore) read(name string, out any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("store: read %s: %w", name, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s: %v", dashboard.ErrMalformedSnapshot, name, err)
	}
	return nil
}

// loadForWrite reads a collection about to be rewritten. A malformed file
// counts as empty so the next write replaces it.
func loadForWrite[T any](s *FileStore, name string) ([]T, error) {
	var items []T
	err := s.read(name, &items)
	if errors.Is(err, dashboard.ErrMalformedSnapshot) {
		return nil, nil
	}
	return items, err
}

// write replaces name atomically through a temp file and rename.
func (s *FileStore) write(name string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", name, err)
	}
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("store: write %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("store: write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: write %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("store: write %s: %w", name, err)
	}
	return nil
}
