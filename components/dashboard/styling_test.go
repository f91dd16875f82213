package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func barDocument() OptionDocument {
	return OptionDocument{
		"chart": map[string]any{"type": "column", "backgroundColor": "#000"},
		"xAxis": []any{map[string]any{}, map[string]any{}},
		"yAxis": map[string]any{},
		"series": []any{
			map[string]any{"name": "North", "data": []any{
				map[string]any{"y": 1, "color": "#abcdef"},
				map[string]any{"y": 2},
			}},
			map[string]any{"name": "South", "data": []any{3, 4}},
		},
	}
}

func TestApplyExplicitStyleBaseline(t *testing.T) {
	raw := barDocument()
	out := ApplyExplicitStyle(raw, StyleConfig{})

	chart := out["chart"].(map[string]any)
	assert.Equal(t, "transparent", chart["backgroundColor"])
	assert.Equal(t, false, chart["animation"])
	plotOptions := out["plotOptions"].(map[string]any)
	series := plotOptions["series"].(map[string]any)
	assert.Equal(t, false, series["animation"])
	assert.Equal(t, 1, series["borderWidth"])
	assert.NotContains(t, series, "borderRadius", "unset geometry is omitted")
	assert.Equal(t, "0%", plotOptions["pie"].(map[string]any)["innerSize"])
	assert.Equal(t, "#000", raw["chart"].(map[string]any)["backgroundColor"], "raw must not be modified")
	_, hasTheme := out["colors"]
	assert.False(t, hasTheme, "explicit path never merges the ambient theme")
}

func TestApplyExplicitStyleSeriesColors(t *testing.T) {
	out := ApplyExplicitStyle(barDocument(), StyleConfig{SeriesColors: map[string]string{"North": "#112233"}})
	series, _ := seriesObjects(out)

	assert.Equal(t, "#112233", series[0]["color"])
	for _, point := range pointObjects(series[0]) {
		assert.NotContains(t, point, "color", "point colours are stripped when the series is recoloured")
	}
	assert.NotContains(t, series[1], "color")
}

func TestApplyExplicitStylePieColorsByPoint(t *testing.T) {
	raw := OptionDocument{
		"chart": map[string]any{"type": "pie"},
		"series": []any{map[string]any{"name": "Share", "data": []any{
			map[string]any{"name": "Alpha", "y": 60},
			map[string]any{"name": "Beta", "y": 40, "color": "#999"},
		}}},
	}
	out := ApplyExplicitStyle(raw, StyleConfig{
		SeriesColors: map[string]string{"Alpha": "#aa0000", "Share": "#00ff00"},
		IsDonut:      true,
		DonutWidth:   floatPtr(30),
	})
	series, _ := seriesObjects(out)
	points := pointObjects(series[0])

	assert.Equal(t, "#aa0000", points[0]["color"])
	assert.Equal(t, "#999", points[1]["color"])
	assert.NotContains(t, series[0], "color", "pie charts colour points, not the series")
	assert.Equal(t, "30%", out["plotOptions"].(map[string]any)["pie"].(map[string]any)["innerSize"])

	donut := ApplyExplicitStyle(raw, StyleConfig{IsDonut: true})
	assert.Equal(t, "50%", donut["plotOptions"].(map[string]any)["pie"].(map[string]any)["innerSize"])
}

func TestApplyExplicitStyleAxisColorAndGridlines(t *testing.T) {
	out := ApplyExplicitStyle(barDocument(), StyleConfig{AxisColor: "#cccccc", GridLineStyle: GridlineYOnly})
	eachObject(out, "xAxis", func(axis map[string]any) {
		assert.Equal(t, "#cccccc", axis["lineColor"])
		assert.Equal(t, "#cccccc", axis["tickColor"])
		assert.Equal(t, "#cccccc", axis["gridLineColor"])
		assert.Equal(t, 0, axis["gridLineWidth"])
	})
	eachObject(out, "yAxis", func(axis map[string]any) {
		assert.Equal(t, 1, axis["gridLineWidth"])
		assert.Equal(t, "Solid", axis["gridLineDashStyle"])
	})

	plain := ApplyExplicitStyle(barDocument(), StyleConfig{GridLineStyle: GridlineDots})
	eachObject(plain, "yAxis", func(axis map[string]any) {
		assert.NotContains(t, axis, "gridLineColor", "axis colour is only applied when set")
		assert.Equal(t, "Dot", axis["gridLineDashStyle"])
	})
}

func TestApplyExplicitStyleLegend(t *testing.T) {
	tests := []struct {
		position string
		want     map[string]any
	}{
		{LegendHidden, map[string]any{"enabled": false}},
		{LegendLeft, map[string]any{"enabled": true, "align": "left", "verticalAlign": "middle", "layout": "vertical"}},
		{LegendRight, map[string]any{"enabled": true, "align": "right", "verticalAlign": "middle", "layout": "vertical"}},
		{LegendTop, map[string]any{"enabled": true, "align": "center", "verticalAlign": "top", "layout": "horizontal"}},
		{LegendBottom, map[string]any{"enabled": true, "align": "center", "verticalAlign": "bottom", "layout": "horizontal"}},
		{"", map[string]any{"enabled": true, "align": "center", "verticalAlign": "middle", "layout": "horizontal"}},
	}
	for _, tc := range tests {
		t.Run("legend_"+tc.position, func(t *testing.T) {
			out := ApplyExplicitStyle(barDocument(), StyleConfig{LegendPosition: tc.position})
			assert.Equal(t, tc.want, out["legend"])
		})
	}
}

func TestApplyExplicitStyleGeometry(t *testing.T) {
	out := ApplyExplicitStyle(barDocument(), StyleConfig{
		BorderRadius: floatPtr(4),
		BarWidth:     floatPtr(12),
		BarOpacity:   floatPtr(0.5),
		BorderColor:  "#ffffff",
		PieOpacity:   floatPtr(0.8),
		LineWidth:    floatPtr(3),
		MarkerRadius: floatPtr(5),
	})
	plotOptions := out["plotOptions"].(map[string]any)
	series := plotOptions["series"].(map[string]any)
	assert.Equal(t, 4.0, series["borderRadius"])
	assert.Equal(t, 12.0, series["pointWidth"])
	assert.Equal(t, 0.5, series["opacity"])
	assert.Equal(t, "#ffffff", series["borderColor"])
	pie := plotOptions["pie"].(map[string]any)
	assert.Equal(t, 0.8, pie["opacity"])
	assert.Equal(t, 2, pie["borderWidth"])
	for _, kind := range []string{"line", "area"} {
		block := plotOptions[kind].(map[string]any)
		assert.Equal(t, 3.0, block["lineWidth"])
		assert.Equal(t, map[string]any{"radius": 5.0}, block["marker"])
	}
}

func TestApplyExplicitStyleAreaGradient(t *testing.T) {
	raw := OptionDocument{
		"colors": []any{"#123456", "#abc"},
		"series": []any{
			map[string]any{"name": "A", "type": "area", "color": "#ff0000"},
			map[string]any{"name": "B", "type": "area"},
			map[string]any{"name": "C", "type": "line"},
			map[string]any{"name": "D", "type": "area", "color": "rgb(1,2,3)"},
		},
	}
	out := ApplyExplicitStyle(raw, StyleConfig{ApplyGradient: true})
	series, _ := seriesObjects(out)

	stops := func(s map[string]any) []any {
		return s["fillColor"].(map[string]any)["stops"].([]any)
	}
	require.Contains(t, series[0], "fillColor")
	assert.Equal(t, []any{0, "#ff000090"}, stops(series[0])[0])
	assert.Equal(t, []any{1, "#FFFFFF00"}, stops(series[0])[1])
	assert.Equal(t, []any{0, "#aabbcc90"}, stops(series[1])[0], "palette colour by index with #rgb expanded")
	assert.NotContains(t, series[2], "fillColor")
	assert.Equal(t, []any{0, "rgb(1,2,3)"}, stops(series[3])[0])
}
