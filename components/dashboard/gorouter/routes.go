package gorouter

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	json "github.com/goccy/go-json"
	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-dashcompose/components/dashboard"
	"github.com/goliatone/go-dashcompose/components/dashboard/commands"
	"github.com/goliatone/go-dashcompose/components/dashboard/httpapi"
	"github.com/goliatone/go-dashcompose/components/dashboard/queries"
)

// RequestContext is the part of router.Context the dashboard handlers read.
type RequestContext interface {
	Context() context.Context
	Body() []byte
	Param(name string, defaultValue ...string) string
	Locals(key any, value ...any) any
	JSON(code int, v any) error
}

// Registrar is the route registration surface of a go-router group.
type Registrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Put(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Patch(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	WebSocket(path string, cfg router.WebSocketConfig, handler func(router.WebSocketContext) error) router.RouteInfo
}

// ViewerResolver converts a request into a dashboard.ViewerContext.
type ViewerResolver func(RequestContext) dashboard.ViewerContext

// SessionLookup resolves sessions for the HTML view.
type SessionLookup interface {
	Session(id string) (*dashboard.Session, error)
}

// Config wires go-router with the dashboard controller, API and broadcast hook.
type Config[T any] struct {
	Router         router.Router[T]
	Controller     *dashboard.Controller
	Sessions       SessionLookup
	API            httpapi.Executor
	Broadcast      *dashboard.BroadcastHook
	ViewerResolver ViewerResolver
	BasePath       string
	Routes         RouteConfig
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
type RouteConfig struct {
	HTML      string
	Sessions  string
	Session   string
	Widgets   string
	WidgetID  string
	Style     string
	Colors    string
	Render    string
	Layout    string
	Snapshot  string
	Load      string
	Theme     string
	Library   string
	Folders   string
	FolderID  string
	Catalog   string
	WebSocket string
}

// Register mounts dashboard routes (HTML, JSON, WebSocket) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil && cfg.API == nil {
		return errors.New("gorouter: controller or api is required")
	}
	base := cfg.BasePath
	if base == "" {
		base = "/admin"
	}
	return register(cfg.Router.Group(base), cfg.bindings())
}

type bindings struct {
	controller *dashboard.Controller
	sessions   SessionLookup
	api        httpapi.Executor
	broadcast  *dashboard.BroadcastHook
	viewer     ViewerResolver
	routes     RouteConfig
}

func (cfg Config[T]) bindings() bindings {
	viewer := cfg.ViewerResolver
	if viewer == nil {
		viewer = defaultViewerResolver
	}
	return bindings{
		controller: cfg.Controller,
		sessions:   cfg.Sessions,
		api:        cfg.API,
		broadcast:  cfg.Broadcast,
		viewer:     viewer,
		routes:     defaultRouteConfig(cfg.Routes),
	}
}

// register mounts the HTML view last: its "/dashboard/:id" pattern would
// otherwise shadow the static dashboard paths on first-match routers.
func register(r Registrar, b bindings) error {
	if b.api != nil {
		registerAPI(r, b)
	}
	if b.broadcast != nil {
		registerWebSocket(r, b.broadcast, b.routes.WebSocket)
	}
	if b.controller != nil && b.sessions != nil {
		r.Get(b.routes.HTML, router.WrapHandler(func(ctx router.Context) error {
			return b.renderHTML(ctx)
		}))
	}
	return nil
}

// renderHTML writes the grid, or the configuration page while the service
// reports a *dashboard.ConfigError.
func (b bindings) renderHTML(ctx router.Context) error {
	var session dashboard.SessionView
	if s, err := b.sessions.Session(ctx.Param("id")); err == nil {
		session = s
	}
	var buf bytes.Buffer
	if err := b.controller.RenderTemplate(ctx.Context(), session, &buf); err != nil {
		var cfgErr *dashboard.ConfigError
		if !errors.As(err, &cfgErr) {
			return respondError(ctx, err)
		}
		ctx.Status(http.StatusServiceUnavailable)
	}
	ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
	return ctx.Send(buf.Bytes())
}

// handler runs one API call and returns the status and body to write.
type handler func(b bindings, ctx RequestContext) (int, any, error)

func registerAPI(r Registrar, b bindings) {
	wrap := func(h handler) router.HandlerFunc {
		return router.WrapHandler(func(ctx router.Context) error {
			return serve(b, ctx, h)
		})
	}
	rt := b.routes
	r.Get(rt.Catalog, wrap(catalogHandler))
	r.Get(rt.Library, wrap(libraryHandler))
	r.Get(rt.FolderID, wrap(libraryHandler))
	r.Post(rt.Folders, wrap(createFolderHandler))
	r.Delete(rt.FolderID, wrap(deleteFolderHandler))
	r.Post(rt.Sessions, wrap(openSessionHandler))
	r.Get(rt.Session, wrap(sessionStateHandler))
	r.Delete(rt.Session, wrap(closeSessionHandler))
	r.Post(rt.Widgets, wrap(addWidgetHandler))
	r.Delete(rt.WidgetID, wrap(removeWidgetHandler))
	r.Patch(rt.Style, wrap(styleHandler))
	r.Post(rt.Colors, wrap(colorHandler))
	r.Post(rt.Render, wrap(renderHandler))
	r.Put(rt.Layout, wrap(layoutHandler))
	r.Post(rt.Snapshot, wrap(snapshotHandler))
	r.Post(rt.Load, wrap(loadHandler))
	r.Put(rt.Theme, wrap(themeHandler))
}

func serve(b bindings, ctx RequestContext, h handler) error {
	status, body, err := h(b, ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	if body == nil {
		body = map[string]string{"status": "ok"}
	}
	return ctx.JSON(status, body)
}

func decodeBody(ctx RequestContext, v any) error {
	body := ctx.Body()
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &badRequestError{err: err}
	}
	return nil
}

func catalogHandler(b bindings, ctx RequestContext) (int, any, error) {
	entries, err := b.api.Catalog(ctx.Context())
	return http.StatusOK, entries, err
}

func libraryHandler(b bindings, ctx RequestContext) (int, any, error) {
	view, err := b.api.Library(ctx.Context(), queries.LibraryInput{FolderID: ctx.Param("folder")})
	return http.StatusOK, view, err
}

func createFolderHandler(b bindings, ctx RequestContext) (int, any, error) {
	var input commands.FolderInput
	if err := decodeBody(ctx, &input); err != nil {
		return 0, nil, err
	}
	input.Action = commands.FolderCreate
	folder, err := b.api.Folder(ctx.Context(), input)
	return http.StatusCreated, folder, err
}

func deleteFolderHandler(b bindings, ctx RequestContext) (int, any, error) {
	_, err := b.api.Folder(ctx.Context(), commands.FolderInput{Action: commands.FolderDelete, FolderID: ctx.Param("folder")})
	return http.StatusOK, nil, err
}

func openSessionHandler(b bindings, ctx RequestContext) (int, any, error) {
	state, err := b.api.OpenSession(ctx.Context(), b.viewer(ctx))
	return http.StatusCreated, state, err
}

func sessionStateHandler(b bindings, ctx RequestContext) (int, any, error) {
	state, err := b.api.SessionState(ctx.Context(), queries.SessionStateInput{SessionID: ctx.Param("id")})
	return http.StatusOK, state, err
}

func closeSessionHandler(b bindings, ctx RequestContext) (int, any, error) {
	return http.StatusOK, nil, b.api.CloseSession(ctx.Context(), ctx.Param("id"))
}

func addWidgetHandler(b bindings, ctx RequestContext) (int, any, error) {
	var input commands.AddWidgetInput
	if err := decodeBody(ctx, &input); err != nil {
		return 0, nil, err
	}
	input.SessionID = ctx.Param("id")
	inst, err := b.api.AddWidget(ctx.Context(), input)
	return http.StatusCreated, inst, err
}

func removeWidgetHandler(b bindings, ctx RequestContext) (int, any, error) {
	input := commands.RemoveWidgetInput{SessionID: ctx.Param("id"), InstanceID: ctx.Param("instance")}
	return http.StatusOK, nil, b.api.RemoveWidget(ctx.Context(), input)
}

func styleHandler(b bindings, ctx RequestContext) (int, any, error) {
	var patch dashboard.StylePatch
	if err := decodeBody(ctx, &patch); err != nil {
		return 0, nil, err
	}
	input := commands.UpdateStyleInput{SessionID: ctx.Param("id"), InstanceID: ctx.Param("instance"), Patch: patch}
	return http.StatusOK, nil, b.api.UpdateStyle(ctx.Context(), input)
}

func colorHandler(b bindings, ctx RequestContext) (int, any, error) {
	var input commands.SeriesColorInput
	if err := decodeBody(ctx, &input); err != nil {
		return 0, nil, err
	}
	input.SessionID = ctx.Param("id")
	input.InstanceID = ctx.Param("instance")
	return http.StatusOK, nil, b.api.UpdateSeriesColor(ctx.Context(), input)
}

func renderHandler(b bindings, ctx RequestContext) (int, any, error) {
	var raw dashboard.OptionDocument
	if err := decodeBody(ctx, &raw); err != nil {
		return 0, nil, err
	}
	result, err := b.api.Render(ctx.Context(), queries.RenderWidgetInput{
		SessionID:  ctx.Param("id"),
		InstanceID: ctx.Param("instance"),
		Options:    raw,
	})
	return http.StatusOK, result, err
}

func layoutHandler(b bindings, ctx RequestContext) (int, any, error) {
	var rects []dashboard.GridRect
	if err := decodeBody(ctx, &rects); err != nil {
		return 0, nil, err
	}
	layout, err := b.api.ChangeLayout(ctx.Context(), commands.LayoutChangeInput{SessionID: ctx.Param("id"), Layout: rects})
	return http.StatusOK, layout, err
}

func snapshotHandler(b bindings, ctx RequestContext) (int, any, error) {
	var input commands.SaveSnapshotInput
	if err := decodeBody(ctx, &input); err != nil {
		return 0, nil, err
	}
	input.SessionID = ctx.Param("id")
	d, err := b.api.SaveSnapshot(ctx.Context(), input)
	if input.Mode == commands.SaveAsNew {
		return http.StatusCreated, d, err
	}
	return http.StatusOK, nil, err
}

func loadHandler(b bindings, ctx RequestContext) (int, any, error) {
	var input commands.LoadDashboardInput
	if err := decodeBody(ctx, &input); err != nil {
		return 0, nil, err
	}
	input.SessionID = ctx.Param("id")
	if err := b.api.LoadDashboard(ctx.Context(), input); err != nil {
		return 0, nil, err
	}
	return sessionStateHandler(b, ctx)
}

func themeHandler(b bindings, ctx RequestContext) (int, any, error) {
	var input commands.SetThemeInput
	if err := decodeBody(ctx, &input); err != nil {
		return 0, nil, err
	}
	input.SessionID = ctx.Param("id")
	if err := b.api.SetTheme(ctx.Context(), input); err != nil {
		return 0, nil, err
	}
	return sessionStateHandler(b, ctx)
}

func registerWebSocket(r Registrar, hook *dashboard.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe()
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func defaultViewerResolver(ctx RequestContext) dashboard.ViewerContext {
	var viewer dashboard.ViewerContext
	if v, ok := ctx.Locals("user_id").(string); ok {
		viewer.UserID = v
	}
	if roles, ok := ctx.Locals("roles").([]string); ok {
		viewer.Roles = roles
	}
	return viewer
}

type badRequestError struct {
	err error
}

func (e *badRequestError) Error() string { return "gorouter: invalid body: " + e.err.Error() }
func (e *badRequestError) Unwrap() error { return e.err }

func respondError(ctx RequestContext, err error) error {
	status := httpapi.StatusFor(err)
	var bad *badRequestError
	if errors.As(err, &bad) {
		status = http.StatusBadRequest
	}
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	set := func(field *string, value string) {
		if *field == "" {
			*field = value
		}
	}
	set(&routes.HTML, "/dashboard/:id")
	set(&routes.Sessions, "/dashboard/sessions")
	set(&routes.Session, "/dashboard/sessions/:id")
	set(&routes.Widgets, "/dashboard/sessions/:id/widgets")
	set(&routes.WidgetID, "/dashboard/sessions/:id/widgets/:instance")
	set(&routes.Style, "/dashboard/sessions/:id/widgets/:instance/style")
	set(&routes.Colors, "/dashboard/sessions/:id/widgets/:instance/colors")
	set(&routes.Render, "/dashboard/sessions/:id/widgets/:instance/render")
	set(&routes.Layout, "/dashboard/sessions/:id/layout")
	set(&routes.Snapshot, "/dashboard/sessions/:id/snapshot")
	set(&routes.Load, "/dashboard/sessions/:id/load")
	set(&routes.Theme, "/dashboard/sessions/:id/theme")
	set(&routes.Library, "/dashboard/library")
	set(&routes.Folders, "/dashboard/folders")
	set(&routes.FolderID, "/dashboard/folders/:folder")
	set(&routes.Catalog, "/dashboard/catalog")
	set(&routes.WebSocket, "/dashboard/ws")
	return routes
}
