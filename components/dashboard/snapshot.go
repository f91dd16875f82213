package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/looplab/fsm"
)

// Snapshot lifecycle states.
const (
	SnapshotNone   = "none"
	SnapshotActive = "active"
	SnapshotDirty  = "dirty"
)

const (
	eventLoad   = "load"
	eventSaveAs = "save_as"
	eventSave   = "save"
	eventMutate = "mutate"
	eventNew    = "new"
	eventClose  = "close"
)

const (
	titleNewDashboard = "New Dashboard"
	titleNoSelection  = "Select a Dashboard"
)

// SnapshotManager moves the registry to and from saved dashboards. It is not
// safe for concurrent use; the owning Session serialises calls.
type SnapshotManager struct {
	registry    *InstanceRegistry
	library     *Library
	logger      *log.Logger
	machine     *fsm.FSM
	activeID    string
	theme       ThemeMode
	view        ViewMode
	creatingNew bool
}

// NewSnapshotManager builds a manager in the none state.
func NewSnapshotManager(registry *InstanceRegistry, library *Library, logger *log.Logger) *SnapshotManager {
	if logger == nil {
		logger = discardLogger()
	}
	m := &SnapshotManager{
		registry: registry,
		library:  library,
		logger:   logger,
		theme:    DefaultThemeMode,
		view:     ViewGrid,
	}
	m.machine = fsm.NewFSM(
		SnapshotNone,
		fsm.Events{
			{Name: eventLoad, Src: []string{SnapshotNone, SnapshotActive, SnapshotDirty}, Dst: SnapshotActive},
			{Name: eventSaveAs, Src: []string{SnapshotNone, SnapshotActive, SnapshotDirty}, Dst: SnapshotActive},
			{Name: eventSave, Src: []string{SnapshotDirty}, Dst: SnapshotActive},
			{Name: eventMutate, Src: []string{SnapshotActive}, Dst: SnapshotDirty},
			{Name: eventNew, Src: []string{SnapshotActive, SnapshotDirty}, Dst: SnapshotNone},
			{Name: eventClose, Src: []string{SnapshotActive, SnapshotDirty}, Dst: SnapshotNone},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				m.logger.Debug("snapshot state changed", "event", e.Event, "from", e.Src, "to", e.Dst)
			},
		},
	)
	return m
}

// State reports the lifecycle state.
func (m *SnapshotManager) State() string { return m.machine.Current() }

// ActiveID is the id of the loaded dashboard, or "".
func (m *SnapshotManager) ActiveID() string { return m.activeID }

// Theme is the session theme mode.
func (m *SnapshotManager) Theme() ThemeMode { return m.theme }

// View is the current main surface.
func (m *SnapshotManager) View() ViewMode { return m.view }

// CreatingNew reports whether a blank dashboard is being composed.
func (m *SnapshotManager) CreatingNew() bool { return m.creatingNew }

// SetTheme changes the theme; a loaded dashboard becomes dirty.
func (m *SnapshotManager) SetTheme(ctx context.Context, mode ThemeMode) error {
	if !mode.Valid() {
		return ErrInvalidTheme
	}
	if mode == m.theme {
		return nil
	}
	m.theme = mode
	m.MarkDirty(ctx)
	return nil
}

// MarkDirty records an unsaved registry mutation.
func (m *SnapshotManager) MarkDirty(ctx context.Context) {
	if m.machine.Current() == SnapshotActive {
		m.fire(ctx, eventMutate)
	}
}

// LoadDashboard replaces the registry with a copy of the saved dashboard.
func (m *SnapshotManager) LoadDashboard(ctx context.Context, id string) (Dashboard, error) {
	d, ok := m.library.Dashboard(id)
	if !ok {
		return Dashboard{}, fmt.Errorf("%w: %s", ErrDashboardNotFound, id)
	}
	m.registry.Replace(d.WidgetInstances)
	m.activeID = d.ID
	m.creatingNew = false
	if d.Theme.Valid() {
		m.theme = d.Theme
	}
	m.view = ViewGrid
	if d.IframeURL != "" {
		m.view = ViewIframe
	}
	m.fire(ctx, eventLoad)
	return d, nil
}

// SaveAsNew persists the registry as a new dashboard in folderID and makes it
// the active one.
func (m *SnapshotManager) SaveAsNew(ctx context.Context, folderID, name string) (Dashboard, error) {
	if _, ok := m.library.Folder(folderID); !ok {
		return Dashboard{}, fmt.Errorf("%w: %s", ErrFolderNotFound, folderID)
	}
	d, err := m.library.CreateDashboard(ctx, Dashboard{
		Name:            name,
		FolderID:        folderID,
		WidgetInstances: m.registry.Snapshot(),
		Theme:           m.theme,
	})
	if err != nil {
		return Dashboard{}, err
	}
	m.activeID = d.ID
	m.creatingNew = false
	m.view = ViewGrid
	m.fire(ctx, eventSaveAs)
	return d, nil
}

// SaveOverwrite writes the registry and theme into the active dashboard. It
// returns false without touching the store when nothing is loaded.
func (m *SnapshotManager) SaveOverwrite(ctx context.Context) (bool, error) {
	if m.activeID == "" {
		return false, nil
	}
	theme := m.theme
	_, err := m.library.UpdateDashboard(ctx, m.activeID, DashboardPatch{
		WidgetInstances: m.registry.Snapshot(),
		Theme:           &theme,
	})
	if err != nil {
		return false, err
	}
	m.fire(ctx, eventSave)
	return true, nil
}

// NewDashboard clears the registry and the active id.
func (m *SnapshotManager) NewDashboard(ctx context.Context) {
	m.registry.Replace(nil)
	m.activeID = ""
	m.creatingNew = true
	m.view = ViewGrid
	m.fire(ctx, eventNew)
}

// Forget drops the active id and empties the registry when the dashboard it
// names was deleted.
func (m *SnapshotManager) Forget(ctx context.Context, ids ...string) bool {
	for _, id := range ids {
		if id != "" && id == m.activeID {
			m.registry.Replace(nil)
			m.activeID = ""
			m.view = ViewGrid
			m.fire(ctx, eventClose)
			return true
		}
	}
	return false
}

// DisplayTitle is the heading shown above the grid.
func (m *SnapshotManager) DisplayTitle() string {
	if m.activeID != "" {
		if d, ok := m.library.Dashboard(m.activeID); ok {
			return d.Name
		}
	}
	if m.creatingNew {
		return titleNewDashboard
	}
	return titleNoSelection
}

func (m *SnapshotManager) fire(ctx context.Context, event string) {
	if ctx == nil {
		ctx = context.Background()
	}
	err := m.machine.Event(ctx, event)
	if err == nil {
		return
	}
	var noTransition fsm.NoTransitionError
	var invalid fsm.InvalidEventError
	if errors.As(err, &noTransition) || errors.As(err, &invalid) {
		return
	}
	m.logger.Warn("snapshot transition failed", "event", event, "err", err)
}
