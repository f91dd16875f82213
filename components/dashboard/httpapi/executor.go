package httpapi

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-dashcompose/components/dashboard"
	"github.com/goliatone/go-dashcompose/components/dashboard/commands"
	"github.com/goliatone/go-dashcompose/components/dashboard/queries"
)

// Executor abstracts command and query execution for transport adapters.
type Executor interface {
	OpenSession(ctx context.Context, viewer dashboard.ViewerContext) (dashboard.SessionState, error)
	CloseSession(ctx context.Context, sessionID string) error
	SessionState(ctx context.Context, input queries.SessionStateInput) (dashboard.SessionState, error)
	Render(ctx context.Context, input queries.RenderWidgetInput) (dashboard.RenderResult, error)
	Library(ctx context.Context, input queries.LibraryInput) (queries.LibraryView, error)
	Catalog(ctx context.Context) ([]dashboard.CatalogEntry, error)

	AddWidget(ctx context.Context, input commands.AddWidgetInput) (dashboard.WidgetInstance, error)
	SaveEmbed(ctx context.Context, input commands.SaveEmbedInput) (dashboard.WidgetInstance, error)
	RemoveWidget(ctx context.Context, input commands.RemoveWidgetInput) error
	UpdateStyle(ctx context.Context, input commands.UpdateStyleInput) error
	UpdateSeriesColor(ctx context.Context, input commands.SeriesColorInput) error
	ChangeLayout(ctx context.Context, input commands.LayoutChangeInput) (dashboard.LayoutSet, error)
	Resize(ctx context.Context, input commands.ResizeInput) error
	SaveSnapshot(ctx context.Context, input commands.SaveSnapshotInput) (dashboard.Dashboard, error)
	LoadDashboard(ctx context.Context, input commands.LoadDashboardInput) error
	NewDashboard(ctx context.Context, input commands.NewDashboardInput) error
	SetTheme(ctx context.Context, input commands.SetThemeInput) error
	Folder(ctx context.Context, input commands.FolderInput) (dashboard.Folder, error)
	Dashboard(ctx context.Context, input commands.DashboardInput) (dashboard.Dashboard, error)
}

type sessionService interface {
	OpenSession(ctx context.Context, viewer dashboard.ViewerContext) (*dashboard.Session, error)
	CloseSession(id string) error
}

// CommandExecutor implements Executor with go-command commanders and queriers.
type CommandExecutor struct {
	Sessions sessionService

	StateQuerier   gocommand.Querier[queries.SessionStateInput, dashboard.SessionState]
	RenderQuerier  gocommand.Querier[queries.RenderWidgetInput, dashboard.RenderResult]
	LibraryQuerier gocommand.Querier[queries.LibraryInput, queries.LibraryView]
	CatalogQuerier gocommand.Querier[struct{}, []dashboard.CatalogEntry]

	AddCommander          gocommand.Commander[commands.AddWidgetInput]
	EmbedCommander        gocommand.Commander[commands.SaveEmbedInput]
	RemoveCommander       gocommand.Commander[commands.RemoveWidgetInput]
	StyleCommander        gocommand.Commander[commands.UpdateStyleInput]
	SeriesColorCommander  gocommand.Commander[commands.SeriesColorInput]
	LayoutCommander       gocommand.Commander[commands.LayoutChangeInput]
	ResizeCommander       gocommand.Commander[commands.ResizeInput]
	SaveCommander         gocommand.Commander[commands.SaveSnapshotInput]
	LoadCommander         gocommand.Commander[commands.LoadDashboardInput]
	NewDashboardCommander gocommand.Commander[commands.NewDashboardInput]
	ThemeCommander        gocommand.Commander[commands.SetThemeInput]
	FolderCommander       gocommand.Commander[commands.FolderInput]
	DashboardCommander    gocommand.Commander[commands.DashboardInput]
}

// NewCommandExecutor wires every command and query against service.
func NewCommandExecutor(service *dashboard.Service, telemetry commands.Telemetry) *CommandExecutor {
	return &CommandExecutor{
		Sessions:              service,
		StateQuerier:          queries.NewSessionStateQuery(service),
		RenderQuerier:         queries.NewRenderWidgetQuery(service),
		LibraryQuerier:        queries.NewLibraryQuery(service),
		CatalogQuerier:        queries.NewCatalogQuery(service),
		AddCommander:          commands.NewAddWidgetCommand(service, telemetry),
		EmbedCommander:        commands.NewSaveEmbedCommand(service, telemetry),
		RemoveCommander:       commands.NewRemoveWidgetCommand(service, telemetry),
		StyleCommander:        commands.NewUpdateStyleCommand(service, telemetry),
		SeriesColorCommander:  commands.NewUpdateSeriesColorCommand(service, telemetry),
		LayoutCommander:       commands.NewLayoutChangeCommand(service, telemetry),
		ResizeCommander:       commands.NewResizeWidgetCommand(service, telemetry),
		SaveCommander:         commands.NewSaveSnapshotCommand(service, telemetry),
		LoadCommander:         commands.NewLoadDashboardCommand(service, telemetry),
		NewDashboardCommander: commands.NewBlankDashboardCommand(service),
		ThemeCommander:        commands.NewSetThemeCommand(service, telemetry),
		FolderCommander:       commands.NewFolderCommand(service, telemetry),
		DashboardCommander:    commands.NewDashboardCommand(service, telemetry),
	}
}

var errNotConfigured = errors.New("httpapi: operation not configured")

func (e *CommandExecutor) OpenSession(ctx context.Context, viewer dashboard.ViewerContext) (dashboard.SessionState, error) {
	if e.Sessions == nil {
		return dashboard.SessionState{}, errNotConfigured
	}
	session, err := e.Sessions.OpenSession(ctx, viewer)
	if err != nil {
		return dashboard.SessionState{}, err
	}
	return session.State(), nil
}

func (e *CommandExecutor) CloseSession(_ context.Context, sessionID string) error {
	if e.Sessions == nil {
		return errNotConfigured
	}
	return e.Sessions.CloseSession(sessionID)
}

func (e *CommandExecutor) SessionState(ctx context.Context, input queries.SessionStateInput) (dashboard.SessionState, error) {
	return query(ctx, e.StateQuerier, input)
}

func (e *CommandExecutor) Render(ctx context.Context, input queries.RenderWidgetInput) (dashboard.RenderResult, error) {
	return query(ctx, e.RenderQuerier, input)
}

func (e *CommandExecutor) Library(ctx context.Context, input queries.LibraryInput) (queries.LibraryView, error) {
	return query(ctx, e.LibraryQuerier, input)
}

func (e *CommandExecutor) Catalog(ctx context.Context) ([]dashboard.CatalogEntry, error) {
	return query(ctx, e.CatalogQuerier, struct{}{})
}

func (e *CommandExecutor) AddWidget(ctx context.Context, input commands.AddWidgetInput) (dashboard.WidgetInstance, error) {
	var inst dashboard.WidgetInstance
	input.Result = &inst
	err := execute(ctx, e.AddCommander, input)
	return inst, err
}

func (e *CommandExecutor) SaveEmbed(ctx context.Context, input commands.SaveEmbedInput) (dashboard.WidgetInstance, error) {
	var inst dashboard.WidgetInstance
	input.Result = &inst
	err := execute(ctx, e.EmbedCommander, input)
	return inst, err
}

func (e *CommandExecutor) RemoveWidget(ctx context.Context, input commands.RemoveWidgetInput) error {
	return execute(ctx, e.RemoveCommander, input)
}

func (e *CommandExecutor) UpdateStyle(ctx context.Context, input commands.UpdateStyleInput) error {
	return execute(ctx, e.StyleCommander, input)
}

func (e *CommandExecutor) UpdateSeriesColor(ctx context.Context, input commands.SeriesColorInput) error {
	return execute(ctx, e.SeriesColorCommander, input)
}

func (e *CommandExecutor) ChangeLayout(ctx context.Context, input commands.LayoutChangeInput) (dashboard.LayoutSet, error) {
	var layout dashboard.LayoutSet
	input.Result = &layout
	err := execute(ctx, e.LayoutCommander, input)
	return layout, err
}

func (e *CommandExecutor) Resize(ctx context.Context, input commands.ResizeInput) error {
	return execute(ctx, e.ResizeCommander, input)
}

func (e *CommandExecutor) SaveSnapshot(ctx context.Context, input commands.SaveSnapshotInput) (dashboard.Dashboard, error) {
	var d dashboard.Dashboard
	input.Result = &d
	err := execute(ctx, e.SaveCommander, input)
	return d, err
}

func (e *CommandExecutor) LoadDashboard(ctx context.Context, input commands.LoadDashboardInput) error {
	return execute(ctx, e.LoadCommander, input)
}

func (e *CommandExecutor) NewDashboard(ctx context.Context, input commands.NewDashboardInput) error {
	return execute(ctx, e.NewDashboardCommander, input)
}

func (e *CommandExecutor) SetTheme(ctx context.Context, input commands.SetThemeInput) error {
	return execute(ctx, e.ThemeCommander, input)
}

func (e *CommandExecutor) Folder(ctx context.Context, input commands.FolderInput) (dashboard.Folder, error) {
	var folder dashboard.Folder
	input.Result = &folder
	err := execute(ctx, e.FolderCommander, input)
	return folder, err
}

func (e *CommandExecutor) Dashboard(ctx context.Context, input commands.DashboardInput) (dashboard.Dashboard, error) {
	var d dashboard.Dashboard
	input.Result = &d
	err := execute(ctx, e.DashboardCommander, input)
	return d, err
}

func execute[T any](ctx context.Context, cmd gocommand.Commander[T], msg T) error {
	if cmd == nil {
		return errNotConfigured
	}
	return cmd.Execute(ctx, msg)
}

func query[In, Out any](ctx context.Context, q gocommand.Querier[In, Out], input In) (Out, error) {
	if q == nil {
		var zero Out
		return zero, errNotConfigured
	}
	return q.Query(ctx, input)
}
