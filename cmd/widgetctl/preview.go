package main

import (
	"context"
	"io"

	"github.com/goliatone/go-dashcompose/components/dashboard"
)

type previewCmd struct {
	themeCmd

	AssetsHost string `help:"Load ECharts assets from this host instead of the go-echarts default."`
	Height     string `default:"360px" help:"Chart container height."`
	Raw        bool   `help:"Preview the input as-is without running the styling pipeline."`
}

func (cmd *previewCmd) Run(_ context.Context, g *globals) error {
	cat, err := g.loadCatalog(cmd.Manifest)
	if err != nil {
		return err
	}
	raw, err := readDocument(cmd.Input)
	if err != nil {
		return err
	}
	mode := dashboard.ThemeMode(cmd.Mode)
	preview := dashboard.NewEChartsPreview(
		dashboard.WithPreviewCache(nil),
		dashboard.WithPreviewAssetsHost(cmd.AssetsHost),
		dashboard.WithPreviewHeight(cmd.Height),
	)

	var html string
	if cmd.Raw {
		html, err = preview.Render(raw, mode)
	} else {
		inst, instErr := cmd.instance()
		if instErr != nil {
			return instErr
		}
		result := dashboard.NewRenderPipeline(cat.Lookup).Render(inst, raw, mode)
		html, err = preview.RenderResult(result, mode)
	}
	if err != nil {
		return err
	}
	g.logger.Info("preview rendered", "type", cmd.TypeID, "mode", mode, "out", cmd.Out)
	return withOutput(cmd.Out, func(w io.Writer) error {
		_, err := io.WriteString(w, html)
		return err
	})
}
