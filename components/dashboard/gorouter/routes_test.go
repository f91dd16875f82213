package gorouter

import (
	"context"
	"testing"

	json "github.com/goccy/go-json"
	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-dashcompose/components/dashboard"
	"github.com/goliatone/go-dashcompose/components/dashboard/httpapi"
)

func TestRegisterValidatesConfig(t *testing.T) {
	if err := Register(Config[struct{}]{}); err == nil {
		t.Fatalf("expected error when router is missing")
	}
}

func TestRegisterMountsRoutes(t *testing.T) {
	service := newTestService(t)
	mock := newMockRegistrar()
	b := Config[struct{}]{
		Controller: dashboard.NewController(dashboard.ControllerOptions{}),
		Sessions:   service,
		API:        httpapi.NewCommandExecutor(service, nil),
		Broadcast:  dashboard.NewBroadcastHook(),
	}.bindings()
	if err := register(mock, b); err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	for _, key := range []string{
		"GET:/dashboard/:id",
		"POST:/dashboard/sessions",
		"GET:/dashboard/sessions/:id",
		"POST:/dashboard/sessions/:id/widgets",
		"PATCH:/dashboard/sessions/:id/widgets/:instance/style",
		"POST:/dashboard/sessions/:id/widgets/:instance/render",
		"PUT:/dashboard/sessions/:id/layout",
		"PUT:/dashboard/sessions/:id/theme",
		"GET:/dashboard/library",
		"DELETE:/dashboard/folders/:folder",
	} {
		if _, ok := mock.routes[key]; !ok {
			t.Fatalf("expected route %s to be registered", key)
		}
	}
	if _, ok := mock.ws["/dashboard/ws"]; !ok {
		t.Fatalf("expected websocket route")
	}
}

func TestRegisterSkipsHTMLWithoutSessions(t *testing.T) {
	mock := newMockRegistrar()
	b := Config[struct{}]{Controller: dashboard.NewController(dashboard.ControllerOptions{})}.bindings()
	if err := register(mock, b); err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	if len(mock.routes) != 0 || len(mock.ws) != 0 {
		t.Fatalf("expected no routes, got %v", mock.routes)
	}
}

func TestHandlersRunAgainstExecutor(t *testing.T) {
	service := newTestService(t)
	b := Config[struct{}]{API: httpapi.NewCommandExecutor(service, nil)}.bindings()

	ctx := newMockContext()
	ctx.locals["user_id"] = "user-1"
	if err := serve(b, ctx, openSessionHandler); err != nil {
		t.Fatalf("serve returned error: %v", err)
	}
	if ctx.status != 201 {
		t.Fatalf("expected 201, got %d", ctx.status)
	}
	var state dashboard.SessionState
	if err := json.Unmarshal(ctx.response, &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if state.Viewer.UserID != "user-1" {
		t.Fatalf("expected viewer from locals, got %+v", state.Viewer)
	}

	add := newMockContext()
	add.params["id"] = state.ID
	add.body = []byte(`{"type_id":"chart-bar"}`)
	if err := serve(b, add, addWidgetHandler); err != nil {
		t.Fatalf("serve returned error: %v", err)
	}
	var inst dashboard.WidgetInstance
	if err := json.Unmarshal(add.response, &inst); err != nil || inst.TypeID != "chart-bar" {
		t.Fatalf("unexpected add response %s (%v)", add.response, err)
	}

	render := newMockContext()
	render.params["id"] = state.ID
	render.params["instance"] = inst.InstanceID
	render.body = []byte(`{"series":[{"name":"Revenue"}]}`)
	if err := serve(b, render, renderHandler); err != nil {
		t.Fatalf("serve returned error: %v", err)
	}
	if render.status != 200 {
		t.Fatalf("expected 200, got %d: %s", render.status, render.response)
	}

	theme := newMockContext()
	theme.params["id"] = state.ID
	if err := serve(b, theme, themeHandler); err != nil {
		t.Fatalf("serve returned error: %v", err)
	}
	var themed dashboard.SessionState
	_ = json.Unmarshal(theme.response, &themed)
	if themed.Theme == state.Theme {
		t.Fatalf("expected theme toggle, still %s", themed.Theme)
	}
}

func TestHandlerErrorsMapToStatus(t *testing.T) {
	service := newTestService(t)
	b := Config[struct{}]{API: httpapi.NewCommandExecutor(service, nil)}.bindings()

	missing := newMockContext()
	missing.params["id"] = "ghost"
	if err := serve(b, missing, sessionStateHandler); err != nil {
		t.Fatalf("serve returned error: %v", err)
	}
	if missing.status != 404 {
		t.Fatalf("expected 404, got %d", missing.status)
	}

	bad := newMockContext()
	bad.body = []byte(`{not json`)
	if err := serve(b, bad, createFolderHandler); err != nil {
		t.Fatalf("serve returned error: %v", err)
	}
	if bad.status != 400 {
		t.Fatalf("expected 400, got %d", bad.status)
	}
}

func TestDefaultRouteConfigKeepsOverrides(t *testing.T) {
	routes := defaultRouteConfig(RouteConfig{WebSocket: "/live"})
	if routes.WebSocket != "/live" {
		t.Fatalf("expected override to survive, got %s", routes.WebSocket)
	}
	if routes.Catalog != "/dashboard/catalog" {
		t.Fatalf("expected default catalog path, got %s", routes.Catalog)
	}
}

// --- Test helpers ---

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

type mockRegistrar struct {
	routes map[string]router.HandlerFunc
	ws     map[string]func(router.WebSocketContext) error
}

func newMockRegistrar() *mockRegistrar {
	return &mockRegistrar{
		routes: map[string]router.HandlerFunc{},
		ws:     map[string]func(router.WebSocketContext) error{},
	}
}

func (m *mockRegistrar) record(method, path string, handler router.HandlerFunc) router.RouteInfo {
	m.routes[method+":"+path] = handler
	return nil
}

func (m *mockRegistrar) Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	return m.record("GET", path, handler)
}

func (m *mockRegistrar) Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	return m.record("POST", path, handler)
}

func (m *mockRegistrar) Put(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	return m.record("PUT", path, handler)
}

func (m *mockRegistrar) Patch(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	return m.record("PATCH", path, handler)
}

func (m *mockRegistrar) Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	return m.record("DELETE", path, handler)
}

func (m *mockRegistrar) WebSocket(path string, cfg router.WebSocketConfig, handler func(router.WebSocketContext) error) router.RouteInfo {
	m.ws[path] = handler
	return nil
}

type mockContext struct {
	ctx      context.Context
	body     []byte
	response []byte
	locals   map[any]any
	params   map[string]string
	status   int
}

func newMockContext() *mockContext {
	return &mockContext{
		ctx:    context.Background(),
		locals: map[any]any{},
		params: map[string]string{},
	}
}

func (m *mockContext) Context() context.Context { return m.ctx }

func (m *mockContext) Body() []byte { return m.body }

func (m *mockContext) JSON(code int, v any) error {
	m.status = code
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.response = data
	return nil
}

func (m *mockContext) Param(name string, defaultValue ...string) string {
	if v, ok := m.params[name]; ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (m *mockContext) Locals(key any, value ...any) any {
	if len(value) == 0 {
		return m.locals[key]
	}
	m.locals[key] = value[0]
	return value[0]
}
