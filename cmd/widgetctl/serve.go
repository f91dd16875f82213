package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-dashcompose/components/dashboard"
	"github.com/goliatone/go-dashcompose/components/dashboard/commands"
	"github.com/goliatone/go-dashcompose/components/dashboard/gorouter"
	"github.com/goliatone/go-dashcompose/components/dashboard/httpapi"
	"github.com/goliatone/go-dashcompose/components/dashboard/store"
	"github.com/goliatone/go-dashcompose/pkg/activity"
	"github.com/goliatone/go-dashcompose/pkg/config"
)

const shutdownTimeout = 10 * time.Second

// seedWidgets populates the starter dashboard.
var seedWidgets = []string{"conditional-color-filter-leak-rate"}

type serveCmd struct {
	Addr     string `help:"Listen address (overrides server.addr)."`
	Router   string `help:"HTTP adapter, chi or fiber (overrides server.router)."`
	Seed     bool   `help:"Seed an empty library with a starter dashboard."`
	Manifest string `type:"path" help:"Manifest YAML adding catalog entries."`
}

// app holds everything a transport needs to serve dashboards.
type app struct {
	service   *dashboard.Service
	executor  *httpapi.CommandExecutor
	hook      *dashboard.BroadcastHook
	control   *dashboard.Controller
	telemetry commands.Telemetry
	logger    *log.Logger
	closers   []func(context.Context) error
}

func (cmd *serveCmd) Run(ctx context.Context, g *globals) error {
	cfg := g.cfg
	if cmd.Addr != "" {
		cfg.Server.Addr = cmd.Addr
	}
	if cmd.Router != "" {
		cfg.Server.Router = cmd.Router
	}
	if cmd.Seed {
		cfg.Server.Seed = true
	}
	if cmd.Manifest != "" {
		cfg.Catalog.Manifest = cmd.Manifest
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, g)
	if err != nil {
		return err
	}
	defer a.close()

	switch cfg.Server.Router {
	case config.RouterFiber:
		return a.serveFiber(ctx, cfg)
	default:
		return a.serveChi(ctx, cfg)
	}
}

func newApp(ctx context.Context, cfg config.Config, g *globals) (*app, error) {
	logger := g.logger
	if err := cfg.Validate(); err != nil {
		var cfgErr *dashboard.ConfigError
		if !errors.As(err, &cfgErr) {
			return nil, err
		}
		if !cfg.Visualization.Optional {
			logger.Warn("dashboard configuration incomplete; widgets render the configuration page", "missing", strings.Join(cfgErr.Missing, ", "))
		}
	}

	a := &app{logger: logger, hook: dashboard.NewBroadcastHook()}
	backing, err := a.openStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	cat, err := g.loadCatalog(cfg.Catalog.Manifest)
	if err != nil {
		a.close()
		return nil, err
	}
	a.telemetry = logTelemetry{logger: logger}

	a.service = dashboard.NewService(dashboard.Options{
		Store:       backing,
		Catalog:     cat,
		RefreshHook: a.hook,
		Logger:      logger.WithPrefix("dashboard"),
		ActivityHooks: activity.Hooks{activity.HookFunc(func(_ context.Context, evt activity.Event) error {
			logger.Info("activity", "verb", evt.Verb, "object", evt.ObjectType, "id", evt.ObjectID, "user", evt.UserID)
			return nil
		})},
		ActivityConfig:       activity.Config{Enabled: true, Channel: "dashboard"},
		Visualization:        cfg.VisualizationConfig(),
		RequireVisualization: !cfg.Visualization.Optional,
	})
	if err := a.service.Bootstrap(ctx); err != nil {
		a.close()
		return nil, err
	}
	if cfg.Server.Seed {
		seed := commands.NewSeedLibraryCommand(a.service, a.telemetry)
		if err := seed.Execute(ctx, commands.SeedLibraryInput{Widgets: seedWidgets}); err != nil {
			a.close()
			return nil, fmt.Errorf("widgetctl: seed library: %w", err)
		}
	}

	renderer, err := dashboard.NewTemplateRenderer()
	if err != nil {
		a.close()
		return nil, err
	}
	a.control = dashboard.NewController(dashboard.ControllerOptions{
		Renderer: renderer,
		Ready:    a.service.Ready,
	})
	a.executor = httpapi.NewCommandExecutor(a.service, a.telemetry)
	return a, nil
}

func (a *app) openStore(ctx context.Context, cfg config.Store) (dashboard.Store, error) {
	switch cfg.Driver {
	case config.DriverFile:
		s, err := store.NewFileStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		a.logger.Info("store ready", "driver", cfg.Driver, "path", s.Path())
		return s, nil
	case config.DriverRedis:
		s, err := store.NewRedisStore(ctx, store.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return s.Close() })
		a.logger.Info("store ready", "driver", cfg.Driver, "addr", cfg.RedisAddr)
		return s, nil
	case config.DriverMongo:
		s, err := store.NewMongoStore(ctx, store.MongoConfig{URI: cfg.MongoURI, Database: cfg.MongoDatabase})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s.Close)
		a.logger.Info("store ready", "driver", cfg.Driver, "database", cfg.MongoDatabase)
		return s, nil
	default:
		a.logger.Info("store ready", "driver", config.DriverMemory)
		return dashboard.NewMemoryStore(), nil
	}
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, closer := range a.closers {
		if err := closer(ctx); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}

// chiHandler mounts the JSON API, HTML view and event streams under base.
func (a *app) chiHandler(base string) http.Handler {
	api := &httpapi.Handlers{API: a.executor, Ready: a.service.Ready}
	r := chi.NewRouter()
	r.Route(base, func(r chi.Router) {
		r.Mount("/api", api.Routes())
		r.Get("/dashboard/{sessionID}", a.handleHTML)
		r.Get("/ws", a.hook.ServeWebSocket)
		r.Get("/events", a.hook.ServeSSE)
	})
	return r
}

func (a *app) handleHTML(w http.ResponseWriter, r *http.Request) {
	var session dashboard.SessionView
	if s, err := a.service.Session(chi.URLParam(r, "sessionID")); err == nil {
		session = s
	}
	var buf bytes.Buffer
	status := http.StatusOK
	if err := a.control.RenderTemplate(r.Context(), session, &buf); err != nil {
		var cfgErr *dashboard.ConfigError
		if !errors.As(err, &cfgErr) {
			http.Error(w, err.Error(), httpapi.StatusFor(err))
			return
		}
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		a.logger.Warn("write dashboard page", "error", err)
	}
}

func (a *app) serveChi(ctx context.Context, cfg config.Config) error {
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           a.chiHandler(cfg.Server.BasePath),
		ReadHeaderTimeout: 5 * time.Second,
	}
	a.logger.Info("serving", "router", config.RouterChi, "addr", cfg.Server.Addr, "base", cfg.Server.BasePath)
	return serveUntilDone(ctx, a.logger, srv.ListenAndServe, srv.Shutdown)
}

func (a *app) serveFiber(ctx context.Context, cfg config.Config) error {
	server, err := a.fiberServer(cfg)
	if err != nil {
		return err
	}
	a.logger.Info("serving", "router", config.RouterFiber, "addr", cfg.Server.Addr, "base", cfg.Server.BasePath)
	return serveUntilDone(ctx, a.logger, func() error {
		return server.Serve(cfg.Server.Addr)
	}, server.Shutdown)
}

func (a *app) fiberServer(cfg config.Config) (router.Server[*fiber.App], error) {
	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:     server.Router(),
		Controller: a.control,
		Sessions:   a.service,
		API:        a.executor,
		Broadcast:  a.hook,
		BasePath:   cfg.Server.BasePath,
	}); err != nil {
		return nil, fmt.Errorf("widgetctl: register routes: %w", err)
	}
	return server, nil
}

// serveUntilDone runs serve until it fails or ctx ends, then calls shutdown
// with a bounded context.
func serveUntilDone(ctx context.Context, logger *log.Logger, serve func() error, shutdown func(context.Context) error) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- serve()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return shutdown(shutdownCtx)
	}
}

// logTelemetry records command telemetry at debug level.
type logTelemetry struct {
	logger *log.Logger
}

func (t logTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	t.logger.Debug("command", "event", event, "payload", payload)
}
