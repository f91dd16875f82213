package main

import (
	"context"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-dashcompose/components/dashboard"
)

type themeCmd struct {
	Input    string            `arg:"" type:"existingfile" help:"JSON file holding the raw chart options document."`
	TypeID   string            `name:"type" default:"chart-line" help:"Widget type id the document belongs to."`
	Mode     string            `default:"dark" enum:"dark,light" help:"Theme mode to render under."`
	Style    string            `help:"Explicit style config as a JSON object."`
	Color    map[string]string `help:"Per-series colour overrides (name=#hex, repeatable)."`
	Manifest string            `type:"path" help:"Manifest YAML adding catalog entries."`
	Out      string            `short:"o" type:"path" help:"Write the result to a file instead of stdout."`
}

func (cmd *themeCmd) Run(_ context.Context, g *globals) error {
	cat, err := g.loadCatalog(cmd.Manifest)
	if err != nil {
		return err
	}
	raw, err := readDocument(cmd.Input)
	if err != nil {
		return err
	}
	inst, err := cmd.instance()
	if err != nil {
		return err
	}
	result := dashboard.NewRenderPipeline(cat.Lookup).Render(inst, raw, dashboard.ThemeMode(cmd.Mode))
	g.logger.Debug("options rendered", "type", inst.TypeID, "path", result.Path, "pending", result.Pending != nil)
	return withOutput(cmd.Out, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	})
}

func (cmd *themeCmd) instance() (dashboard.WidgetInstance, error) {
	inst := dashboard.WidgetInstance{
		InstanceID: "widgetctl",
		TypeID:     cmd.TypeID,
	}
	if len(cmd.Color) > 0 {
		inst.ColorConfig = dashboard.ColorConfig(cmd.Color)
	}
	if cmd.Style != "" {
		var style dashboard.StyleConfig
		if err := json.Unmarshal([]byte(cmd.Style), &style); err != nil {
			return inst, fmt.Errorf("widgetctl: parse --style: %w", err)
		}
		inst.StyleConfig = &style
	}
	return inst, nil
}

func readDocument(path string) (dashboard.OptionDocument, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("widgetctl: read %s: %w", path, err)
	}
	var doc dashboard.OptionDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("widgetctl: decode %s: %w", path, err)
	}
	return doc, nil
}

// withOutput hands fn stdout, or a freshly created file when path is set.
func withOutput(path string, fn func(io.Writer) error) error {
	if path == "" {
		return fn(os.Stdout)
	}
	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("widgetctl: create %s: %w", path, err)
	}
	if err := fn(file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
