package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ettle/strcase"

	"github.com/goliatone/go-dashcompose/components/dashboard"
)

type scaffoldCmd struct {
	Title         string   `required:"" help:"Display title of the catalog entry."`
	ID            string   `name:"id" help:"Widget type id (defaults to the kebab-cased title, prefixed with chart- for charts)."`
	Description   string   `help:"One-line description shown in the widget picker."`
	Class         string   `default:"chart" enum:"chart,embed" help:"Widget class."`
	Width         int      `name:"w" default:"4" help:"Default layout width in grid columns."`
	Height        int      `name:"h" default:"4" help:"Default layout height in grid rows."`
	ExplicitStyle bool     `help:"Render through the explicit style path."`
	WidgetOID     string   `name:"widget-oid" help:"Remote widget object id for SDK embeds."`
	DashboardOID  string   `name:"dashboard-oid" help:"Remote dashboard object id for SDK embeds."`
	ManifestPath  string   `name:"manifest" required:"" type:"path" help:"Manifest YAML file to create or update."`
	Tag           []string `help:"Tags recorded in the manifest (repeatable)."`
	Maintainer    []string `help:"Maintainers recorded in the manifest (repeatable)."`
	Overwrite     bool     `help:"Replace an existing entry with the same id."`
}

func (cmd *scaffoldCmd) Run(_ context.Context, g *globals) error {
	entry, err := cmd.entry()
	if err != nil {
		return err
	}
	manifestPath, err := filepath.Abs(cmd.ManifestPath)
	if err != nil {
		return fmt.Errorf("widgetctl: resolve manifest path: %w", err)
	}
	doc, err := loadOrInitManifest(manifestPath)
	if err != nil {
		return err
	}
	if err := upsertEntry(doc, dashboard.ManifestEntry{
		Entry:       entry,
		Maintainers: cmd.Maintainer,
		Tags:        cmd.Tag,
	}, cmd.Overwrite); err != nil {
		return err
	}
	if err := doc.Validate(); err != nil {
		return err
	}
	if err := writeManifest(manifestPath, doc); err != nil {
		return err
	}
	g.logger.Info("catalog entry written", "id", entry.ID, "manifest", manifestPath)
	return nil
}

func (cmd *scaffoldCmd) entry() (dashboard.CatalogEntry, error) {
	title := strings.TrimSpace(cmd.Title)
	if title == "" {
		return dashboard.CatalogEntry{}, errors.New("widgetctl: title is required")
	}
	id := strings.TrimSpace(cmd.ID)
	if id == "" {
		id = deriveTypeID(title, dashboard.WidgetClass(cmd.Class))
	}
	return dashboard.CatalogEntry{
		ID:            id,
		Title:         title,
		Description:   cmd.Description,
		DefaultLayout: dashboard.DefaultLayout{W: cmd.Width, H: cmd.Height},
		Class:         dashboard.WidgetClass(cmd.Class),
		ExplicitStyle: cmd.ExplicitStyle,
		WidgetOID:     cmd.WidgetOID,
		DashboardOID:  cmd.DashboardOID,
	}, nil
}

// deriveTypeID kebab-cases title. Chart ids carry the chart- prefix the
// renderer uses to detect chart widgets.
func deriveTypeID(title string, class dashboard.WidgetClass) string {
	id := strcase.ToKebab(title)
	if class == dashboard.ClassChart && !strings.HasPrefix(id, "chart") {
		id = "chart-" + id
	}
	return id
}

func upsertEntry(doc *dashboard.CatalogManifest, entry dashboard.ManifestEntry, overwrite bool) error {
	replaced := false
	for idx := range doc.Widgets {
		if doc.Widgets[idx].Entry.ID != entry.Entry.ID {
			continue
		}
		if !overwrite {
			return fmt.Errorf("widgetctl: manifest already defines widget %s (use --overwrite to replace)", entry.Entry.ID)
		}
		doc.Widgets[idx] = entry
		replaced = true
	}
	if !replaced {
		doc.Widgets = append(doc.Widgets, entry)
	}
	sort.Slice(doc.Widgets, func(i, j int) bool {
		return doc.Widgets[i].Entry.ID < doc.Widgets[j].Entry.ID
	})
	return nil
}

func loadOrInitManifest(path string) (*dashboard.CatalogManifest, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &dashboard.CatalogManifest{
				Version: dashboard.ManifestVersion,
				Widgets: []dashboard.ManifestEntry{},
				Source:  path,
			}, nil
		}
		return nil, fmt.Errorf("widgetctl: stat manifest: %w", err)
	}
	return dashboard.ReadManifest(path)
}

func writeManifest(path string, doc *dashboard.CatalogManifest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("widgetctl: mkdir %s: %w", filepath.Dir(path), err)
	}
	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("widgetctl: create manifest %s: %w", path, err)
	}
	defer file.Close()
	return dashboard.EncodeManifest(file, doc)
}
