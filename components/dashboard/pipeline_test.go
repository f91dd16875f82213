package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawLineDocument() OptionDocument {
	return OptionDocument{
		"chart": map[string]any{"type": "line"},
		"series": []any{
			map[string]any{"name": "Revenue", "color": "#010101", "data": []any{1, 2}},
			map[string]any{"name": "Cost", "data": []any{3, 4}},
			map[string]any{"data": []any{5}},
		},
	}
}

func TestRenderRoutesThemePathByDefault(t *testing.T) {
	pipeline := NewRenderPipeline(NewCatalog().Lookup)
	inst := WidgetInstance{InstanceID: "chart-bar-1", TypeID: "chart-bar"}

	result := pipeline.Render(inst, rawLineDocument(), ThemeLight)

	assert.Equal(t, PathTheme, result.Path)
	assert.Equal(t, "chart-bar-1", result.InstanceID)
	assert.Equal(t, StyleOptionsForTheme(ThemeLight), result.Style)
	assert.Equal(t, lightGridColor, result.Options["xAxis"].(map[string]any)["gridLineColor"])
}

func TestRenderStyledEmbedUsesExplicitPath(t *testing.T) {
	pipeline := NewRenderPipeline(NewCatalog().Lookup)
	style := &StyleConfig{GridLineStyle: GridlineNone, LegendPosition: LegendHidden}
	inst := WidgetInstance{InstanceID: "se-1", TypeID: StyledEmbedTypeID, StyleConfig: style, Series: []SeriesInfo{{Name: "Revenue"}}}

	result := pipeline.Render(inst, rawLineDocument(), ThemeDark)

	assert.Equal(t, PathExplicit, result.Path)
	assert.Equal(t, map[string]any{"enabled": false}, result.Options["legend"])
	assert.NotContains(t, result.Options, "colors", "explicit path ignores the ambient palette")
	assert.Nil(t, result.Pending, "explicit renders never schedule discovery")
}

func TestRenderStyledEmbedWithoutStyleFallsBackToTheme(t *testing.T) {
	pipeline := NewRenderPipeline(nil)
	result := pipeline.Render(WidgetInstance{InstanceID: "se-1", TypeID: StyledEmbedTypeID}, rawLineDocument(), ThemeDark)
	assert.Equal(t, PathTheme, result.Path)
}

func TestRenderThemePathHonoursInstanceGridline(t *testing.T) {
	pipeline := NewRenderPipeline(NewCatalog().Lookup)
	inst := WidgetInstance{InstanceID: "c", TypeID: "chart-bar", StyleConfig: &StyleConfig{GridLineStyle: GridlineDots}}

	result := pipeline.Render(inst, OptionDocument{"yAxis": map[string]any{}}, ThemeDark)

	require.Equal(t, PathTheme, result.Path, "chart types without ExplicitStyle stay on the theme path")
	assert.Equal(t, "Dot", result.Options["yAxis"].(map[string]any)["gridLineDashStyle"])
}

func TestRenderColorOverridesWinOnBothPaths(t *testing.T) {
	pipeline := NewRenderPipeline(NewCatalog().Lookup)
	colors := ColorConfig{"Revenue": "#ff00ff"}

	themed := pipeline.Render(WidgetInstance{InstanceID: "a", TypeID: "chart-line", ColorConfig: colors}, rawLineDocument(), ThemeDark)
	series, _ := seriesObjects(themed.Options)
	assert.Equal(t, "#ff00ff", series[0]["color"])
	assert.NotContains(t, series[1], "color")

	explicit := pipeline.Render(WidgetInstance{
		InstanceID:  "b",
		TypeID:      StyledEmbedTypeID,
		StyleConfig: &StyleConfig{SeriesColors: map[string]string{"Revenue": "#00ff00", "Cost": "#0000ff"}},
		ColorConfig: colors,
	}, rawLineDocument(), ThemeDark)
	series, _ = seriesObjects(explicit.Options)
	assert.Equal(t, "#ff00ff", series[0]["color"], "colour overrides apply after style series colours")
	assert.Equal(t, "#0000ff", series[1]["color"])
}

func TestRenderExplicitPathKeepsRawSeriesColors(t *testing.T) {
	pipeline := NewRenderPipeline(NewCatalog().Lookup)
	inst := WidgetInstance{InstanceID: "se-raw", TypeID: StyledEmbedTypeID, StyleConfig: &StyleConfig{LegendPosition: LegendTop}}

	result := pipeline.Render(inst, rawLineDocument(), ThemeLight)

	require.Equal(t, PathExplicit, result.Path)
	series, _ := seriesObjects(result.Options)
	require.Len(t, series, 3)
	if series[0]["color"] != "#010101" {
		t.Fatalf("expected raw series colour to survive, got %v", series[0]["color"])
	}
	assert.NotContains(t, series[1], "color")
	assert.NotContains(t, result.Options, "colors")
}

func TestRenderSchedulesDiscoveryWithoutMutating(t *testing.T) {
	pipeline := NewRenderPipeline(NewCatalog().Lookup)
	inst := WidgetInstance{InstanceID: "a", TypeID: "chart-line", ColorConfig: ColorConfig{"Cost": "#123123"}}
	raw := rawLineDocument()

	result := pipeline.Render(inst, raw, ThemeLight)

	require.NotNil(t, result.Pending)
	assert.Equal(t, "a", result.Pending.InstanceID)
	assert.Equal(t, []SeriesInfo{
		{Name: "Revenue", Color: "#010101"},
		{Name: "Cost", Color: "#123123"},
	}, result.Pending.Series)
	assert.Empty(t, inst.Series, "render never writes the instance")
	assert.Equal(t, "#010101", raw["series"].([]any)[0].(map[string]any)["color"])
	assert.NotContains(t, raw, "colors")

	known := inst
	known.Series = []SeriesInfo{{Name: "Revenue"}}
	assert.Nil(t, pipeline.Render(known, raw, ThemeLight).Pending, "series already known")
}

func TestDiscoveryFallsBackToPalette(t *testing.T) {
	pipeline := NewRenderPipeline(nil)
	raw := OptionDocument{"series": []any{
		map[string]any{"name": "A"},
		map[string]any{"name": "B"},
	}}

	result := pipeline.Render(WidgetInstance{InstanceID: "x", TypeID: "chart-area"}, raw, ThemeDark)

	require.NotNil(t, result.Pending)
	palette := Palette(ThemeDark)
	assert.Equal(t, palette[0], result.Pending.Series[0].Color)
	assert.Equal(t, palette[1], result.Pending.Series[1].Color)

	none := pipeline.Render(WidgetInstance{InstanceID: "y", TypeID: "chart-area"}, OptionDocument{}, ThemeDark)
	assert.Nil(t, none.Pending)
}

func TestRenderInvalidModeUsesDefault(t *testing.T) {
	pipeline := NewRenderPipeline(nil)
	result := pipeline.Render(WidgetInstance{InstanceID: "x", TypeID: "chart-bar"}, OptionDocument{}, ThemeMode("sepia"))
	assert.Equal(t, StyleOptionsForTheme(DefaultThemeMode), result.Style)
}
