package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Session reasons published through the RefreshHook.
const (
	ReasonLayout    = "layout"
	ReasonWidget    = "widget"
	ReasonStyle     = "style"
	ReasonSeries    = "series"
	ReasonRemeasure = "remeasure"
	ReasonSnapshot  = "snapshot"
	ReasonTheme     = "theme"
)

// SessionState is the read model of one session.
type SessionState struct {
	ID              string           `json:"id"`
	Viewer          ViewerContext    `json:"viewer"`
	ActiveDashboard string           `json:"activeDashboardId,omitempty"`
	Title           string           `json:"title"`
	Theme           ThemeMode        `json:"theme"`
	View            ViewMode         `json:"view"`
	IframeURL       string           `json:"iframeUrl,omitempty"`
	Snapshot        string           `json:"snapshot"`
	Instances       []WidgetInstance `json:"widgetInstances"`
	Layout          LayoutSet        `json:"layout"`
}

type sessionDeps struct {
	id        string
	viewer    ViewerContext
	library   *Library
	registry  *InstanceRegistry
	pipeline  *RenderPipeline
	refresh   RefreshHook
	telemetry Telemetry
	activity  activityRecorder
	logger    *log.Logger
}

// Session is one editing surface: a registry, its snapshot lifecycle and the
// deferred effects queued by renders. Every operation is serialised. Queued
// effects run at the start of the next operation or on Tick.
type Session struct {
	mu        sync.Mutex
	id        string
	viewer    ViewerContext
	library   *Library
	registry  *InstanceRegistry
	snapshot  *SnapshotManager
	pipeline  *RenderPipeline
	scheduler Scheduler
	refresh   RefreshHook
	telemetry Telemetry
	activity  activityRecorder
	logger    *log.Logger
	timers    map[*time.Timer]struct{}
	closed    bool
}

func newSession(deps sessionDeps) *Session {
	logger := deps.logger
	if logger == nil {
		logger = discardLogger()
	}
	logger = logger.With("session_id", deps.id)
	return &Session{
		id:        deps.id,
		viewer:    deps.viewer,
		library:   deps.library,
		registry:  deps.registry,
		snapshot:  NewSnapshotManager(deps.registry, deps.library, logger),
		pipeline:  deps.pipeline,
		refresh:   deps.refresh,
		telemetry: normalizeTelemetry(deps.telemetry),
		activity:  deps.activity,
		logger:    logger,
		timers:    map[*time.Timer]struct{}{},
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Viewer returns the viewer the session belongs to.
func (s *Session) Viewer() ViewerContext { return s.viewer }

// Tick runs the effects deferred by previous operations.
func (s *Session) Tick() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduler.Drain()
}

// PendingEffects reports the number of queued deferred effects.
func (s *Session) PendingEffects() int {
	return s.scheduler.Pending()
}

func (s *Session) begin() {
	s.mu.Lock()
	s.scheduler.Drain()
}

func (s *Session) end() { s.mu.Unlock() }

// State returns the current read model.
func (s *Session) State() SessionState {
	s.begin()
	defer s.end()
	return s.stateLocked()
}

func (s *Session) stateLocked() SessionState {
	instances := s.registry.Snapshot()
	state := SessionState{
		ID:              s.id,
		Viewer:          s.viewer,
		ActiveDashboard: s.snapshot.ActiveID(),
		Title:           s.snapshot.DisplayTitle(),
		Theme:           s.snapshot.Theme(),
		View:            s.snapshot.View(),
		Snapshot:        s.snapshot.State(),
		Instances:       instances,
		Layout:          Project(instances),
	}
	if state.View == ViewIframe {
		if d, ok := s.library.Dashboard(state.ActiveDashboard); ok {
			state.IframeURL = d.IframeURL
		}
	}
	return state
}

// Layout returns the renderer layout for the current instances.
func (s *Session) Layout() LayoutSet {
	s.begin()
	defer s.end()
	return Project(s.registry.Snapshot())
}

// Instances returns a copy of the current instances.
func (s *Session) Instances() []WidgetInstance {
	s.begin()
	defer s.end()
	return s.registry.Snapshot()
}

// AddWidget appends an instance of the catalog type.
func (s *Session) AddWidget(ctx context.Context, typeID WidgetTypeID, override LayoutOverride) (WidgetInstance, error) {
	s.begin()
	defer s.end()
	inst, err := s.registry.Add(typeID, override)
	if err != nil {
		return WidgetInstance{}, err
	}
	s.mutatedLocked(ctx, EventWidgetAdd, ReasonWidget, inst.InstanceID)
	return inst, nil
}

// SaveEmbed creates or updates an embed instance.
func (s *Session) SaveEmbed(ctx context.Context, instanceID string, payload EmbedPayload) (WidgetInstance, error) {
	s.begin()
	defer s.end()
	inst, err := s.registry.SaveEmbed(instanceID, payload)
	if err != nil {
		return WidgetInstance{}, err
	}
	s.mutatedLocked(ctx, EventWidgetEmbed, ReasonWidget, inst.InstanceID)
	return inst, nil
}

// RemoveWidget deletes an instance; unknown ids are ignored.
func (s *Session) RemoveWidget(ctx context.Context, instanceID string) bool {
	s.begin()
	defer s.end()
	if !s.registry.Remove(instanceID) {
		return false
	}
	s.mutatedLocked(ctx, EventWidgetRemove, ReasonWidget, instanceID)
	return true
}

// UpdateStyle merges a style patch into the instance.
func (s *Session) UpdateStyle(ctx context.Context, instanceID string, patch StylePatch) error {
	s.begin()
	defer s.end()
	changed, err := s.registry.UpdateStyle(instanceID, patch)
	if err != nil || !changed {
		return err
	}
	s.mutatedLocked(ctx, EventWidgetStyle, ReasonStyle, instanceID)
	return nil
}

// UpdateSeriesColor sets a per-series colour override.
func (s *Session) UpdateSeriesColor(ctx context.Context, instanceID, seriesName, color string) bool {
	s.begin()
	defer s.end()
	if !s.registry.UpdateSeriesColor(instanceID, seriesName, color) {
		return false
	}
	s.mutatedLocked(ctx, EventWidgetStyle, ReasonStyle, instanceID)
	return true
}

// ApplyLayoutChange folds a renderer layout report into the registry.
func (s *Session) ApplyLayoutChange(ctx context.Context, changed []GridRect) LayoutSet {
	s.begin()
	defer s.end()
	s.registry.ApplyLayoutChange(changed)
	layout := Project(s.registry.Snapshot())
	s.snapshot.MarkDirty(ctx)
	s.telemetry.Record(ctx, EventLayoutChange, map[string]any{"session_id": s.id, "count": len(changed)})
	s.notify(ctx, SessionEvent{Reason: ReasonLayout, Layout: &layout})
	return layout
}

// Resize replaces one rectangle. When the instance exists a remeasure event
// is published after the settle delay.
func (s *Session) Resize(ctx context.Context, instanceID string, rect GridRect) *Remeasure {
	s.begin()
	defer s.end()
	signal := s.registry.Resize(instanceID, rect)
	if signal == nil {
		return nil
	}
	s.mutatedLocked(ctx, EventLayoutChange, ReasonLayout, instanceID)
	s.scheduleRemeasureLocked(*signal)
	return signal
}

func (s *Session) scheduleRemeasureLocked(signal Remeasure) {
	if s.refresh == nil || s.closed {
		return
	}
	var timer *time.Timer
	timer = time.AfterFunc(signal.Delay, func() {
		s.mu.Lock()
		delete(s.timers, timer)
		closed := s.closed
		s.mu.Unlock()
		if closed {
			return
		}
		s.notify(context.Background(), SessionEvent{Reason: ReasonRemeasure, InstanceID: signal.InstanceID})
	})
	s.timers[timer] = struct{}{}
}

// Render runs one instance through the pipeline with the session theme. A
// series discovery is queued for the next turn instead of being applied.
func (s *Session) Render(ctx context.Context, instanceID string, raw OptionDocument) (RenderResult, error) {
	s.begin()
	defer s.end()
	inst, ok := s.registry.Get(instanceID)
	if !ok {
		return RenderResult{}, fmt.Errorf("%w: %s", ErrInstanceNotFound, instanceID)
	}
	result := s.pipeline.Render(inst, raw, s.snapshot.Theme())
	if pending := result.Pending; pending != nil {
		ctx := context.WithoutCancel(ctx)
		s.scheduler.Defer(func() {
			if s.registry.RecordDiscoveredSeries(pending.InstanceID, pending.Series) {
				s.telemetry.Record(ctx, EventSeriesDiscover, map[string]any{
					"session_id":  s.id,
					"instance_id": pending.InstanceID,
					"count":       len(pending.Series),
				})
				s.notify(ctx, SessionEvent{Reason: ReasonSeries, InstanceID: pending.InstanceID})
			}
		})
	}
	return result, nil
}

// SetTheme switches the session theme.
func (s *Session) SetTheme(ctx context.Context, mode ThemeMode) error {
	s.begin()
	defer s.end()
	return s.setThemeLocked(ctx, mode)
}

// ToggleTheme flips between light and dark and returns the new mode.
func (s *Session) ToggleTheme(ctx context.Context) ThemeMode {
	s.begin()
	defer s.end()
	next := s.snapshot.Theme().Toggle()
	_ = s.setThemeLocked(ctx, next)
	return next
}

func (s *Session) setThemeLocked(ctx context.Context, mode ThemeMode) error {
	before := s.snapshot.Theme()
	if err := s.snapshot.SetTheme(ctx, mode); err != nil {
		return err
	}
	if before != mode {
		s.telemetry.Record(ctx, EventThemeChange, map[string]any{"session_id": s.id, "theme": string(mode)})
		s.notify(ctx, SessionEvent{Reason: ReasonTheme})
	}
	return nil
}

// Theme returns the session theme.
func (s *Session) Theme() ThemeMode {
	s.begin()
	defer s.end()
	return s.snapshot.Theme()
}

// LoadDashboard makes a saved dashboard active.
func (s *Session) LoadDashboard(ctx context.Context, id string) (Dashboard, error) {
	s.begin()
	defer s.end()
	d, err := s.snapshot.LoadDashboard(ctx, id)
	if err != nil {
		return Dashboard{}, err
	}
	s.telemetry.Record(ctx, EventSnapshotLoad, map[string]any{"session_id": s.id, "dashboard_id": id})
	s.notify(ctx, SessionEvent{Reason: ReasonSnapshot, Dashboard: id})
	return d, nil
}

// SaveAsNew persists the registry as a new dashboard.
func (s *Session) SaveAsNew(ctx context.Context, folderID, name string) (Dashboard, error) {
	s.begin()
	defer s.end()
	d, err := s.snapshot.SaveAsNew(ctx, folderID, name)
	if err != nil {
		s.logger.Error("save as failed", "folder_id", folderID, "err", err)
		return Dashboard{}, err
	}
	s.telemetry.Record(ctx, EventSnapshotSaveAs, map[string]any{"session_id": s.id, "dashboard_id": d.ID})
	s.activity.record(ctx, EventSnapshotSaveAs, "dashboard", d.ID, map[string]any{
		"folder_id": d.FolderID,
		"name":      d.Name,
		"widgets":   len(d.WidgetInstances),
	})
	s.notify(ctx, SessionEvent{Reason: ReasonSnapshot, Dashboard: d.ID})
	return d, nil
}

// SaveOverwrite writes the registry into the active dashboard.
func (s *Session) SaveOverwrite(ctx context.Context) (bool, error) {
	s.begin()
	defer s.end()
	saved, err := s.snapshot.SaveOverwrite(ctx)
	if err != nil {
		s.logger.Error("save failed", "dashboard_id", s.snapshot.ActiveID(), "err", err)
		return false, err
	}
	if saved {
		s.telemetry.Record(ctx, EventSnapshotSave, map[string]any{"session_id": s.id, "dashboard_id": s.snapshot.ActiveID()})
		s.activity.record(ctx, EventSnapshotSave, "dashboard", s.snapshot.ActiveID(), map[string]any{
			"widgets": s.registry.Len(),
			"theme":   string(s.snapshot.Theme()),
		})
		s.notify(ctx, SessionEvent{Reason: ReasonSnapshot, Dashboard: s.snapshot.ActiveID()})
	}
	return saved, nil
}

// NewDashboard starts composing a blank dashboard.
func (s *Session) NewDashboard(ctx context.Context) {
	s.begin()
	defer s.end()
	s.snapshot.NewDashboard(ctx)
	s.notify(ctx, SessionEvent{Reason: ReasonSnapshot})
}

// forget clears the active id when it names one of the deleted dashboards.
func (s *Session) forget(ctx context.Context, ids ...string) {
	s.begin()
	defer s.end()
	if s.snapshot.Forget(ctx, ids...) {
		s.notify(ctx, SessionEvent{Reason: ReasonSnapshot})
	}
}

// Close stops pending remeasure timers.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for timer := range s.timers {
		timer.Stop()
	}
	s.timers = map[*time.Timer]struct{}{}
}

func (s *Session) mutatedLocked(ctx context.Context, event, reason, instanceID string) {
	s.snapshot.MarkDirty(ctx)
	s.telemetry.Record(ctx, event, map[string]any{"session_id": s.id, "instance_id": instanceID})
	s.notify(ctx, SessionEvent{Reason: reason, InstanceID: instanceID})
}

func (s *Session) notify(ctx context.Context, event SessionEvent) {
	if s.refresh == nil {
		return
	}
	event.SessionID = s.id
	if err := s.refresh.SessionUpdated(ctx, event); err != nil {
		s.logger.Warn("refresh hook failed", "reason", event.Reason, "err", err)
	}
}
