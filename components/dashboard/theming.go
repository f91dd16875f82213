package dashboard

const (
	dashSolid = "Solid"
	dashDot   = "Dot"
)

type gridlineSpec struct {
	xWidth int
	yWidth int
	dash   string
}

var gridlineTable = map[GridlineStyle]gridlineSpec{
	GridlineBoth:  {xWidth: 1, yWidth: 1, dash: dashSolid},
	GridlineYOnly: {xWidth: 0, yWidth: 1, dash: dashSolid},
	GridlineXOnly: {xWidth: 1, yWidth: 0, dash: dashSolid},
	GridlineDots:  {xWidth: 2, yWidth: 2, dash: dashDot},
	GridlineNone:  {xWidth: 0, yWidth: 0, dash: dashSolid},
}

// Valid reports whether the style is one of the five supported values.
func (g GridlineStyle) Valid() bool {
	_, ok := gridlineTable[g]
	return ok
}

var animationOff = OptionDocument{
	"chart":       map[string]any{"animation": false},
	"plotOptions": map[string]any{"series": map[string]any{"animation": false}},
}

// ApplyTheming is the theme-driven render path. raw is not modified.
func ApplyTheming(raw OptionDocument, gridline GridlineStyle, mode ThemeMode) OptionDocument {
	doc := MergeDocuments(raw, ThemeFragment(mode), animationOff)

	if chart, ok := asMap(doc["chart"]); ok {
		delete(chart, "plotBackgroundImage")
		delete(chart, "plotBackgroundColor")
	}

	applyGridlines(doc, gridline, GridColor(mode))

	ensureMap(doc, "chart")["backgroundColor"] = "transparent"
	return doc
}

// applyGridlines sets width/dash (and colour when gridColor is non-empty) on
// every x and y axis object. Unknown styles leave the axes untouched.
func applyGridlines(doc OptionDocument, style GridlineStyle, gridColor string) {
	row, ok := gridlineTable[style]
	if !ok {
		return
	}
	set := func(width int) func(map[string]any) {
		return func(axis map[string]any) {
			axis["gridLineWidth"] = width
			axis["gridLineDashStyle"] = row.dash
			if gridColor != "" {
				axis["gridLineColor"] = gridColor
			}
		}
	}
	eachObject(doc, "xAxis", set(row.xWidth))
	eachObject(doc, "yAxis", set(row.yWidth))
}
