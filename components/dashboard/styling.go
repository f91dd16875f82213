package dashboard

import (
	"strconv"
	"strings"
)

const defaultDonutWidth = 50

// Legend positions accepted by StyleConfig.LegendPosition.
const (
	LegendHidden = "hidden"
	LegendLeft   = "left"
	LegendRight  = "right"
	LegendTop    = "top"
	LegendBottom = "bottom"
)

// ApplyExplicitStyle is the style-config render path. It bypasses the ambient
// theme entirely. raw is not modified.
func ApplyExplicitStyle(raw OptionDocument, cfg StyleConfig) OptionDocument {
	doc := CloneDocument(raw)

	chart := ensureMap(doc, "chart")
	chart["backgroundColor"] = "transparent"
	chart["animation"] = false
	plotOptions := ensureMap(doc, "plotOptions")
	spreadBlock(plotOptions, "series", map[string]any{"animation": false})

	applySeriesColors(doc, cfg.SeriesColors)
	applyAxisStyle(doc, cfg)
	applyLegend(ensureMap(doc, "legend"), cfg.LegendPosition)
	applyGeometry(plotOptions, cfg)
	if cfg.ApplyGradient {
		applyAreaGradient(doc)
	}
	return doc
}

func applySeriesColors(doc OptionDocument, colors map[string]string) {
	if len(colors) == 0 {
		return
	}
	series, _ := seriesObjects(doc)
	chart, _ := asMap(doc["chart"])
	if stringField(chart, "type") == "pie" && len(series) > 0 && series[0]["data"] != nil {
		for _, point := range pointObjects(series[0]) {
			if c := colors[stringField(point, "name")]; c != "" {
				point["color"] = c
			}
		}
		return
	}
	for _, s := range series {
		c := colors[stringField(s, "name")]
		if c == "" {
			continue
		}
		s["color"] = c
		for _, point := range pointObjects(s) {
			delete(point, "color")
		}
	}
}

func pointObjects(series map[string]any) []map[string]any {
	var out []map[string]any
	switch data := series["data"].(type) {
	case []any:
		for _, item := range data {
			if m, ok := asMap(item); ok {
				out = append(out, m)
			}
		}
	case []map[string]any:
		out = append(out, data...)
	}
	return out
}

func applyAxisStyle(doc OptionDocument, cfg StyleConfig) {
	if cfg.AxisColor != "" {
		paint := func(axis map[string]any) {
			axis["gridLineColor"] = cfg.AxisColor
			axis["lineColor"] = cfg.AxisColor
			axis["tickColor"] = cfg.AxisColor
		}
		eachObject(doc, "xAxis", paint)
		eachObject(doc, "yAxis", paint)
	}
	applyGridlines(doc, cfg.GridLineStyle, "")
}

func applyLegend(legend map[string]any, position string) {
	if position == LegendHidden {
		legend["enabled"] = false
		return
	}
	legend["enabled"] = true
	switch position {
	case LegendLeft, LegendRight:
		legend["align"] = position
		legend["verticalAlign"] = "middle"
		legend["layout"] = "vertical"
	case LegendTop, LegendBottom:
		legend["align"] = "center"
		legend["verticalAlign"] = position
		legend["layout"] = "horizontal"
	default:
		legend["align"] = "center"
		legend["verticalAlign"] = "middle"
		legend["layout"] = "horizontal"
	}
}

func applyGeometry(plotOptions map[string]any, cfg StyleConfig) {
	spreadBlock(plotOptions, "series", map[string]any{
		"borderRadius": optFloat(cfg.BorderRadius),
		"pointWidth":   optFloat(cfg.BarWidth),
		"opacity":      optFloat(cfg.BarOpacity),
		"borderColor":  optString(cfg.BorderColor),
		"borderWidth":  1,
	})

	innerSize := "0%"
	if cfg.IsDonut {
		width := float64(defaultDonutWidth)
		if cfg.DonutWidth != nil {
			width = *cfg.DonutWidth
		}
		innerSize = strconv.FormatFloat(width, 'f', -1, 64) + "%"
	}
	spreadBlock(plotOptions, "pie", map[string]any{
		"innerSize":   innerSize,
		"opacity":     optFloat(cfg.PieOpacity),
		"borderColor": optString(cfg.BorderColor),
		"borderWidth": 2,
	})

	for _, kind := range []string{"line", "area"} {
		block := spreadBlock(plotOptions, kind, map[string]any{"lineWidth": optFloat(cfg.LineWidth)})
		spreadBlock(block, "marker", map[string]any{"radius": optFloat(cfg.MarkerRadius)})
	}
}

func applyAreaGradient(doc OptionDocument) {
	series, idxs := seriesObjects(doc)
	for i, s := range series {
		if stringField(s, "type") != "area" {
			continue
		}
		color := resolvedSeriesColor(doc, s, idxs[i])
		s["fillColor"] = map[string]any{
			"linearGradient": map[string]any{"x1": 0, "x2": 0, "y1": 0, "y2": 1},
			"stops": []any{
				[]any{0, withAlpha(color, "90")},
				[]any{1, "#FFFFFF00"},
			},
		}
	}
}

// resolvedSeriesColor is the series' own colour, else the document palette
// entry for its index, else the default palette entry.
func resolvedSeriesColor(doc OptionDocument, series map[string]any, index int) string {
	if c := stringField(series, "color"); c != "" {
		return c
	}
	if colors, ok := doc["colors"].([]any); ok && len(colors) > 0 {
		if c, ok := colors[index%len(colors)].(string); ok && c != "" {
			return c
		}
	}
	return darkPalette[index%len(darkPalette)]
}

// withAlpha appends a two-digit hex alpha to #rgb and #rrggbb colours. Other
// colour notations are returned unchanged.
func withAlpha(color, alpha string) string {
	if !strings.HasPrefix(color, "#") {
		return color
	}
	hex := color[1:]
	switch len(hex) {
	case 3:
		var b strings.Builder
		b.WriteByte('#')
		for i := 0; i < 3; i++ {
			b.WriteByte(hex[i])
			b.WriteByte(hex[i])
		}
		return b.String() + alpha
	case 6:
		return color + alpha
	default:
		return color
	}
}

func optFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func optString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
