package main

import (
	"context"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/goliatone/go-dashcompose/components/dashboard"
	"github.com/goliatone/go-dashcompose/pkg/config"
)

type cli struct {
	Config   string `short:"c" type:"path" help:"Path to a dashcompose TOML config file." env:"DASHCOMPOSE_CONFIG"`
	LogLevel string `default:"" help:"Override the configured log level (debug, info, warn, error)."`

	Scaffold scaffoldCmd `cmd:"" help:"Add or replace a catalog entry in a widget manifest."`
	Theme    themeCmd    `cmd:"" help:"Run a chart options document through the styling pipeline."`
	Preview  previewCmd  `cmd:"" help:"Render a chart options document to standalone HTML."`
	Serve    serveCmd    `cmd:"" help:"Serve the dashboard API, HTML view and live events."`
}

// globals is bound into every command's Run.
type globals struct {
	cfg    config.Config
	logger *log.Logger
}

func main() {
	var root cli
	ctx := kong.Parse(&root,
		kong.Name("widgetctl"),
		kong.Description("Catalog, theming and preview tooling for dashcompose dashboards."),
		kong.UsageOnError(),
		kong.BindTo(context.Background(), (*context.Context)(nil)),
	)
	g, err := root.globals(os.Stderr)
	ctx.FatalIfErrorf(err)
	err = ctx.Run(g)
	ctx.FatalIfErrorf(err)
}

func (c *cli) globals(w io.Writer) (*globals, error) {
	cfg, err := config.LoadOptional(c.Config)
	if err != nil {
		return nil, err
	}
	if c.LogLevel != "" {
		cfg.Log.Level = c.LogLevel
	}
	return &globals{cfg: cfg, logger: newLogger(w, cfg.LogLevel())}, nil
}

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// loadCatalog returns the default catalog plus the configured manifest.
func (g *globals) loadCatalog(manifest string) (*dashboard.Catalog, error) {
	cat := dashboard.NewCatalog()
	if manifest == "" {
		manifest = g.cfg.Catalog.Manifest
	}
	if manifest == "" {
		return cat, nil
	}
	doc, err := cat.LoadManifestFile(manifest)
	if err != nil {
		return nil, err
	}
	g.logger.Debug("catalog manifest loaded", "path", manifest, "widgets", len(doc.Widgets))
	return cat, nil
}
