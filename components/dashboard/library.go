package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tiendc/go-deepcopy"
)

// Library is the in-memory view of the folders and dashboards held by a
// Store. Every mutation is persisted first; memory changes only when the
// store call succeeds.
type Library struct {
	mu         sync.RWMutex
	store      Store
	logger     *log.Logger
	clock      func() time.Time
	folders    []Folder
	dashboards []Dashboard
}

// NewLibrary wraps store. A nil logger or clock falls back to defaults.
func NewLibrary(store Store, logger *log.Logger, clock func() time.Time) *Library {
	if logger == nil {
		logger = discardLogger()
	}
	if clock == nil {
		clock = time.Now
	}
	return &Library{store: store, logger: logger, clock: clock}
}

// Load replaces the in-memory state with the store contents. A malformed
// stored snapshot is logged and treated as empty.
func (l *Library) Load(ctx context.Context) error {
	if l.store == nil {
		return ErrMissingStore
	}
	folders, err := l.store.ListFolders(ctx)
	if err != nil && !errors.Is(err, ErrMalformedSnapshot) {
		return persistenceError("list folders", err)
	}
	if err != nil {
		l.logger.Warn("stored folders unreadable, starting empty", "err", err)
		folders = nil
	}
	dashboards, err := l.store.ListDashboards(ctx)
	if err != nil && !errors.Is(err, ErrMalformedSnapshot) {
		return persistenceError("list dashboards", err)
	}
	if err != nil {
		l.logger.Warn("stored dashboards unreadable, starting empty", "err", err)
		dashboards = nil
	}

	l.mu.Lock()
	l.folders = append([]Folder(nil), folders...)
	l.dashboards = cloneDashboards(dashboards)
	l.mu.Unlock()
	return nil
}

// Folders returns the folders in store order.
func (l *Library) Folders() []Folder {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Folder{}, l.folders...)
}

// Dashboards returns deep copies of every dashboard.
func (l *Library) Dashboards() []Dashboard {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneDashboards(l.dashboards)
}

// DashboardsInFolder lists the dashboards filed under folderID.
func (l *Library) DashboardsInFolder(folderID string) []Dashboard {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Dashboard
	for _, d := range l.dashboards {
		if d.FolderID == folderID {
			out = append(out, cloneDashboard(d))
		}
	}
	return out
}

// Folder returns one folder.
func (l *Library) Folder(id string) (Folder, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	idx := l.folderIndexLocked(id)
	if idx < 0 {
		return Folder{}, false
	}
	return l.folders[idx], true
}

// Dashboard returns a deep copy of one dashboard.
func (l *Library) Dashboard(id string) (Dashboard, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	idx := l.dashboardIndexLocked(id)
	if idx < 0 {
		return Dashboard{}, false
	}
	return cloneDashboard(l.dashboards[idx]), true
}

// CreateFolder persists a new folder named name.
func (l *Library) CreateFolder(ctx context.Context, name, color string) (Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Folder{}, ErrInvalidName
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	folder := Folder{ID: l.nextIDLocked("f", l.folderIndexLocked), Name: name, Color: color}
	if err := l.store.CreateFolder(ctx, folder); err != nil {
		return Folder{}, persistenceError("create folder", err)
	}
	l.folders = append(l.folders, folder)
	return folder, nil
}

// UpdateFolder renames or recolours a folder.
func (l *Library) UpdateFolder(ctx context.Context, id string, patch FolderPatch) (Folder, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return Folder{}, ErrInvalidName
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	idx := l.folderIndexLocked(id)
	if idx < 0 {
		return Folder{}, fmt.Errorf("%w: %s", ErrFolderNotFound, id)
	}
	if err := l.store.UpdateFolder(ctx, id, patch); err != nil {
		return Folder{}, persistenceError("update folder", err)
	}
	l.folders[idx] = patch.Apply(l.folders[idx])
	return l.folders[idx], nil
}

// DeleteFolder removes a folder and every dashboard filed under it. It
// returns the ids of the removed dashboards.
func (l *Library) DeleteFolder(ctx context.Context, id string) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx := l.folderIndexLocked(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrFolderNotFound, id)
	}
	if err := l.store.DeleteFolder(ctx, id); err != nil {
		return nil, persistenceError("delete folder", err)
	}
	l.folders = append(l.folders[:idx], l.folders[idx+1:]...)
	var removed []string
	kept := l.dashboards[:0]
	for _, d := range l.dashboards {
		if d.FolderID == id {
			removed = append(removed, d.ID)
			continue
		}
		kept = append(kept, d)
	}
	l.dashboards = kept
	return removed, nil
}

// CreateDashboard persists d under a fresh id. The folder must exist.
func (l *Library) CreateDashboard(ctx context.Context, d Dashboard) (Dashboard, error) {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return Dashboard{}, ErrInvalidName
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.folderIndexLocked(d.FolderID) < 0 {
		return Dashboard{}, fmt.Errorf("%w: %s", ErrFolderNotFound, d.FolderID)
	}
	d = cloneDashboard(d)
	d.ID = l.nextIDLocked("d", l.dashboardIndexLocked)
	if err := l.store.CreateDashboard(ctx, d); err != nil {
		return Dashboard{}, persistenceError("create dashboard", err)
	}
	l.dashboards = append(l.dashboards, d)
	return cloneDashboard(d), nil
}

// UpdateDashboard applies patch. Moving to a folder requires the folder to
// exist; an empty folder id leaves the dashboard unfiled.
func (l *Library) UpdateDashboard(ctx context.Context, id string, patch DashboardPatch) (Dashboard, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return Dashboard{}, ErrInvalidName
	}
	if patch.Theme != nil && !patch.Theme.Valid() {
		return Dashboard{}, ErrInvalidTheme
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	idx := l.dashboardIndexLocked(id)
	if idx < 0 {
		return Dashboard{}, fmt.Errorf("%w: %s", ErrDashboardNotFound, id)
	}
	if patch.FolderID != nil && *patch.FolderID != "" && l.folderIndexLocked(*patch.FolderID) < 0 {
		return Dashboard{}, fmt.Errorf("%w: %s", ErrFolderNotFound, *patch.FolderID)
	}
	if patch.WidgetInstances != nil {
		patch.WidgetInstances = cloneInstances(patch.WidgetInstances)
	}
	if err := l.store.UpdateDashboard(ctx, id, patch); err != nil {
		return Dashboard{}, persistenceError("update dashboard", err)
	}
	l.dashboards[idx] = patch.Apply(l.dashboards[idx])
	return cloneDashboard(l.dashboards[idx]), nil
}

// DeleteDashboard removes one dashboard.
func (l *Library) DeleteDashboard(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx := l.dashboardIndexLocked(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrDashboardNotFound, id)
	}
	if err := l.store.DeleteDashboard(ctx, id); err != nil {
		return persistenceError("delete dashboard", err)
	}
	l.dashboards = append(l.dashboards[:idx], l.dashboards[idx+1:]...)
	return nil
}

func (l *Library) folderIndexLocked(id string) int {
	for i := range l.folders {
		if l.folders[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *Library) dashboardIndexLocked(id string) int {
	for i := range l.dashboards {
		if l.dashboards[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *Library) nextIDLocked(prefix string, index func(string) int) string {
	ms := l.clock().UnixMilli()
	for {
		id := prefix + "-" + strconv.FormatInt(ms, 10)
		if index(id) < 0 {
			return id
		}
		ms++
	}
}

func cloneDashboard(d Dashboard) Dashboard {
	var out Dashboard
	_ = deepcopy.Copy(&out, &d)
	if out.WidgetInstances == nil {
		out.WidgetInstances = []WidgetInstance{}
	}
	return out
}

func cloneDashboards(list []Dashboard) []Dashboard {
	out := make([]Dashboard, len(list))
	for i := range list {
		out[i] = cloneDashboard(list[i])
	}
	return out
}
