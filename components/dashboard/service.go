package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goliatone/go-dashcompose/pkg/activity"
	"github.com/google/uuid"
)

// VisualizationConfig points at the external visualization service that
// serves chart data and embeds.
type VisualizationConfig struct {
	URL   string
	Token string
}

// Options configures the dashboard Service. Every collaborator is provided
// via interface so applications can swap implementations.
type Options struct {
	Store          Store
	Catalog        *Catalog
	Validator      PayloadValidator
	Preferences    PreferenceStore
	RefreshHook    RefreshHook
	Telemetry      Telemetry
	Logger         *log.Logger
	ActivityHooks  activity.Hooks
	ActivityConfig activity.Config
	Visualization  VisualizationConfig
	// RequireVisualization makes Ready fail while the visualization URL or
	// token is missing.
	RequireVisualization bool
	Clock                func() time.Time
}

// Service owns the dashboard library and the editing sessions built on it.
type Service struct {
	opts     Options
	library  *Library
	pipeline *RenderPipeline
	activity activityRecorder

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Store == nil {
		opts.Store = NewMemoryStore()
	}
	if opts.Catalog == nil {
		opts.Catalog = NewCatalog()
	}
	if opts.Validator == nil {
		opts.Validator = NewJSONSchemaValidator()
	}
	if opts.Preferences == nil {
		opts.Preferences = NewInMemoryPreferenceStore()
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	if opts.Logger == nil {
		opts.Logger = discardLogger()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Service{
		opts:     opts,
		library:  NewLibrary(opts.Store, opts.Logger, opts.Clock),
		pipeline: NewRenderPipeline(opts.Catalog.Lookup),
		activity: activityRecorder{
			emitter: activity.NewEmitter(opts.ActivityHooks, opts.ActivityConfig),
			logger:  opts.Logger,
		},
		sessions: make(map[string]*Session),
	}
}

// Bootstrap loads the library from the store.
func (s *Service) Bootstrap(ctx context.Context) error {
	if err := s.library.Load(ctx); err != nil {
		s.opts.Logger.Error("library load failed", "err", err)
		return err
	}
	s.opts.Logger.Info("library loaded",
		"folders", len(s.library.Folders()),
		"dashboards", len(s.library.Dashboards()),
	)
	return nil
}

// Ready reports a ConfigError when the visualization service is required
// but not configured.
func (s *Service) Ready() error {
	if !s.opts.RequireVisualization {
		return nil
	}
	var missing []string
	if strings.TrimSpace(s.opts.Visualization.URL) == "" {
		missing = append(missing, "visualization url")
	}
	if strings.TrimSpace(s.opts.Visualization.Token) == "" {
		missing = append(missing, "visualization token")
	}
	if len(missing) > 0 {
		return &ConfigError{Missing: missing}
	}
	return nil
}

// Catalog returns the widget catalog.
func (s *Service) Catalog() *Catalog { return s.opts.Catalog }

// Pipeline returns the shared render pipeline.
func (s *Service) Pipeline() *RenderPipeline { return s.pipeline }

// Library returns the folder and dashboard library.
func (s *Service) Library() *Library { return s.library }

// OpenSession starts an editing session for viewer. The theme defaults to
// the viewer's stored preference.
func (s *Service) OpenSession(ctx context.Context, viewer ViewerContext) (*Session, error) {
	id := uuid.New().String()
	registry := NewInstanceRegistry(RegistryOptions{
		Lookup:    s.opts.Catalog.Lookup,
		Validator: s.opts.Validator,
		Logger:    s.opts.Logger,
		Clock:     s.opts.Clock,
	})
	session := newSession(sessionDeps{
		id:        id,
		viewer:    viewer,
		library:   s.library,
		registry:  registry,
		pipeline:  s.pipeline,
		refresh:   s.opts.RefreshHook,
		telemetry: s.opts.Telemetry,
		activity:  s.activity,
		logger:    s.opts.Logger,
	})
	mode, err := s.opts.Preferences.ThemeMode(ctx, viewer)
	if err != nil {
		s.opts.Logger.Warn("theme preference unavailable", "user_id", viewer.UserID, "err", err)
		mode = DefaultThemeMode
	}
	session.snapshot.theme = mode

	s.mu.Lock()
	s.sessions[id] = session
	s.mu.Unlock()
	s.opts.Logger.Debug("session opened", "session_id", id, "user_id", viewer.UserID)
	return session, nil
}

// Session returns an open session.
func (s *Service) Session(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return session, nil
}

// CloseSession stops and forgets a session.
func (s *Service) CloseSession(id string) error {
	s.mu.Lock()
	session, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	session.Close()
	return nil
}

// SetTheme switches a session's theme and stores it as the viewer's
// preference.
func (s *Service) SetTheme(ctx context.Context, sessionID string, mode ThemeMode) error {
	session, err := s.Session(sessionID)
	if err != nil {
		return err
	}
	if err := session.SetTheme(ctx, mode); err != nil {
		return err
	}
	s.saveThemePreference(ctx, session.Viewer(), mode)
	return nil
}

// ToggleTheme flips a session's theme and stores the result.
func (s *Service) ToggleTheme(ctx context.Context, sessionID string) (ThemeMode, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return "", err
	}
	mode := session.ToggleTheme(ctx)
	s.saveThemePreference(ctx, session.Viewer(), mode)
	return mode, nil
}

func (s *Service) saveThemePreference(ctx context.Context, viewer ViewerContext, mode ThemeMode) {
	if viewer.UserID == "" {
		return
	}
	if err := s.opts.Preferences.SaveThemeMode(ctx, viewer, mode); err != nil {
		s.opts.Logger.Warn("theme preference not saved", "user_id", viewer.UserID, "err", err)
	}
}

// CreateFolder adds a folder to the library.
func (s *Service) CreateFolder(ctx context.Context, name, color string) (Folder, error) {
	folder, err := s.library.CreateFolder(ctx, name, color)
	if err != nil {
		return Folder{}, s.logPersistence(err, "create folder")
	}
	s.libraryMutated(ctx, "dashboard.folder.create", "folder", folder.ID, map[string]any{"name": folder.Name})
	return folder, nil
}

// UpdateFolder renames or recolours a folder.
func (s *Service) UpdateFolder(ctx context.Context, id string, patch FolderPatch) (Folder, error) {
	folder, err := s.library.UpdateFolder(ctx, id, patch)
	if err != nil {
		return Folder{}, s.logPersistence(err, "update folder")
	}
	s.libraryMutated(ctx, "dashboard.folder.update", "folder", id, map[string]any{"name": folder.Name})
	return folder, nil
}

// DeleteFolder removes a folder and its dashboards. Sessions editing one of
// the removed dashboards lose their active id.
func (s *Service) DeleteFolder(ctx context.Context, id string) error {
	removed, err := s.library.DeleteFolder(ctx, id)
	if err != nil {
		return s.logPersistence(err, "delete folder")
	}
	s.forgetDashboards(ctx, removed...)
	s.libraryMutated(ctx, "dashboard.folder.delete", "folder", id, map[string]any{"dashboards": removed})
	return nil
}

// RenameDashboard changes a dashboard's name.
func (s *Service) RenameDashboard(ctx context.Context, id, name string) (Dashboard, error) {
	name = strings.TrimSpace(name)
	d, err := s.library.UpdateDashboard(ctx, id, DashboardPatch{Name: &name})
	if err != nil {
		return Dashboard{}, s.logPersistence(err, "rename dashboard")
	}
	s.libraryMutated(ctx, "dashboard.dashboard.rename", "dashboard", id, map[string]any{"name": d.Name})
	return d, nil
}

// MoveDashboard files a dashboard under folderID; "" leaves it unfiled.
func (s *Service) MoveDashboard(ctx context.Context, id, folderID string) (Dashboard, error) {
	d, err := s.library.UpdateDashboard(ctx, id, DashboardPatch{FolderID: &folderID})
	if err != nil {
		return Dashboard{}, s.logPersistence(err, "move dashboard")
	}
	s.libraryMutated(ctx, "dashboard.dashboard.move", "dashboard", id, map[string]any{"folder_id": folderID})
	return d, nil
}

// SetDashboardIframe sets or clears the iframe URL of a dashboard.
func (s *Service) SetDashboardIframe(ctx context.Context, id, url string) (Dashboard, error) {
	url = strings.TrimSpace(url)
	d, err := s.library.UpdateDashboard(ctx, id, DashboardPatch{IframeURL: &url})
	if err != nil {
		return Dashboard{}, s.logPersistence(err, "update dashboard iframe")
	}
	s.libraryMutated(ctx, "dashboard.dashboard.iframe", "dashboard", id, map[string]any{"iframe_url": url})
	return d, nil
}

// DeleteDashboard removes a dashboard and clears it from any session that
// had it active.
func (s *Service) DeleteDashboard(ctx context.Context, id string) error {
	if err := s.library.DeleteDashboard(ctx, id); err != nil {
		return s.logPersistence(err, "delete dashboard")
	}
	s.forgetDashboards(ctx, id)
	s.libraryMutated(ctx, "dashboard.dashboard.delete", "dashboard", id, nil)
	return nil
}

func (s *Service) forgetDashboards(ctx context.Context, ids ...string) {
	if len(ids) == 0 {
		return
	}
	s.mu.RLock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	s.mu.RUnlock()
	for _, session := range sessions {
		session.forget(ctx, ids...)
	}
}

func (s *Service) libraryMutated(ctx context.Context, verb, objectType, id string, meta map[string]any) {
	s.opts.Telemetry.Record(ctx, EventLibraryMutation, map[string]any{
		"verb":      verb,
		"object_id": id,
	})
	s.activity.record(ctx, verb, objectType, id, meta)
}

func (s *Service) logPersistence(err error, op string) error {
	s.opts.Logger.Error(op+" failed", "err", err)
	return err
}

type noopRefreshHook struct{}

func (noopRefreshHook) SessionUpdated(context.Context, SessionEvent) error {
	return nil
}
