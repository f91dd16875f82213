package dashboard

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	json "github.com/goccy/go-json"
)

const defaultPreviewHeight = "360px"

var sharedPreviewCache = NewChartCache(5 * time.Minute)

// EChartsPreview renders a finished option document to standalone HTML with
// go-echarts. It is the bundled renderer used by the CLI and the HTML view.
type EChartsPreview struct {
	cache      RenderCache
	assetsHost string
	height     string
}

// PreviewOption customizes an EChartsPreview.
type PreviewOption func(*EChartsPreview)

// WithPreviewCache injects a render cache; nil disables caching.
func WithPreviewCache(cache RenderCache) PreviewOption {
	return func(p *EChartsPreview) {
		p.cache = cache
	}
}

// WithPreviewAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithPreviewAssetsHost(host string) PreviewOption {
	return func(p *EChartsPreview) {
		p.assetsHost = host
	}
}

// WithPreviewHeight sets the chart container height.
func WithPreviewHeight(height string) PreviewOption {
	return func(p *EChartsPreview) {
		p.height = height
	}
}

// NewEChartsPreview builds a preview renderer.
func NewEChartsPreview(options ...PreviewOption) *EChartsPreview {
	p := &EChartsPreview{
		cache:  sharedPreviewCache,
		height: defaultPreviewHeight,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Render converts doc into chart HTML. Identical documents rendered under the
// same theme are served from the cache.
func (p *EChartsPreview) Render(doc OptionDocument, mode ThemeMode) (string, error) {
	if !mode.Valid() {
		mode = DefaultThemeMode
	}
	render := func() (string, error) {
		return p.render(doc, mode)
	}
	if p.cache == nil {
		return render()
	}
	return p.cache.GetOrRender(string(mode)+":"+configHash(doc), render)
}

// RenderResult renders a pipeline result.
func (p *EChartsPreview) RenderResult(result RenderResult, mode ThemeMode) (string, error) {
	return p.Render(result.Options, mode)
}

type previewSeries struct {
	name   string
	color  string
	points []previewPoint
}

type previewPoint struct {
	name  string
	value float64
	color string
}

func (p *EChartsPreview) render(doc OptionDocument, mode ThemeMode) (string, error) {
	series := parsePreviewSeries(doc)
	if len(series) == 0 {
		return "", fmt.Errorf("dashboard: preview requires at least one series")
	}
	chart, _ := asMap(doc["chart"])
	kind := stringField(chart, "type")
	if kind == "" {
		if raw, _ := seriesObjects(doc); len(raw) > 0 {
			kind = stringField(raw[0], "type")
		}
	}
	if kind == "" {
		kind = "line"
	}

	global := p.globalOptions(doc, mode)
	categories := previewCategories(doc, series)

	switch kind {
	case "bar", "column":
		bar := charts.NewBar()
		bar.SetGlobalOptions(global...)
		bar.SetGlobalOptions(axisOptions(doc)...)
		bar.SetXAxis(categories)
		for _, s := range series {
			bar.AddSeries(s.name, toPreviewBarData(s.points), seriesColor(s.color)...)
		}
		return renderChart(bar)
	case "pie":
		pie := charts.NewPie()
		pie.SetGlobalOptions(global...)
		for _, s := range series {
			pie.AddSeries(s.name, toPreviewPieData(s.points), pieRadius(doc)...)
		}
		return renderChart(pie)
	case "line", "spline", "area", "areaspline":
		line := charts.NewLine()
		line.SetGlobalOptions(global...)
		line.SetGlobalOptions(axisOptions(doc)...)
		line.SetXAxis(categories)
		for _, s := range series {
			line.AddSeries(s.name, toPreviewLineData(s.points), seriesColor(s.color)...)
		}
		if strings.HasSuffix(kind, "spline") {
			line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
		}
		return renderChart(line)
	default:
		return "", fmt.Errorf("dashboard: unsupported preview chart type: %s", kind)
	}
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (p *EChartsPreview) globalOptions(doc OptionDocument, mode ThemeMode) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:           EChartsTheme(mode),
		Width:           "100%",
		Height:          p.height,
		BackgroundColor: "transparent",
	}
	if chart, ok := asMap(doc["chart"]); ok {
		if bg := stringField(chart, "backgroundColor"); bg != "" {
			initOpts.BackgroundColor = bg
		}
	}
	if p.assetsHost != "" {
		initOpts.AssetsHost = p.assetsHost
	}
	title := ""
	if t, ok := asMap(doc["title"]); ok {
		title = stringField(t, "text")
	}
	subtitle := ""
	if t, ok := asMap(doc["subtitle"]); ok {
		subtitle = stringField(t, "text")
	}
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(initOpts),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithLegendOpts(previewLegend(doc)),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func previewLegend(doc OptionDocument) opts.Legend {
	legend, ok := asMap(doc["legend"])
	if !ok {
		return opts.Legend{Show: opts.Bool(true)}
	}
	if enabled, ok := legend["enabled"].(bool); ok && !enabled {
		return opts.Legend{Show: opts.Bool(false)}
	}
	out := opts.Legend{Show: opts.Bool(true)}
	switch stringField(legend, "align") {
	case LegendLeft, LegendRight:
		out.Left = stringField(legend, "align")
	case "center":
		out.Left = "center"
	}
	switch stringField(legend, "verticalAlign") {
	case LegendTop, LegendBottom:
		out.Top = stringField(legend, "verticalAlign")
	case "middle":
		out.Top = "middle"
	}
	if stringField(legend, "layout") == "vertical" {
		out.Orient = "vertical"
	}
	return out
}

// axisOptions maps per-axis gridline width and dash onto echarts split lines.
func axisOptions(doc OptionDocument) []charts.GlobalOpts {
	var out []charts.GlobalOpts
	if axis, ok := firstObject(doc, "xAxis"); ok {
		out = append(out, charts.WithXAxisOpts(opts.XAxis{SplitLine: splitLine(axis)}))
	}
	if axis, ok := firstObject(doc, "yAxis"); ok {
		out = append(out, charts.WithYAxisOpts(opts.YAxis{SplitLine: splitLine(axis)}))
	}
	return out
}

func splitLine(axis map[string]any) *opts.SplitLine {
	width := float64Value(axis["gridLineWidth"])
	line := &opts.SplitLine{Show: opts.Bool(width > 0)}
	style := &opts.LineStyle{Color: stringField(axis, "gridLineColor")}
	if stringField(axis, "gridLineDashStyle") == dashDot {
		style.Type = "dotted"
	}
	line.LineStyle = style
	return line
}

func firstObject(doc map[string]any, key string) (map[string]any, bool) {
	var found map[string]any
	eachObject(doc, key, func(m map[string]any) {
		if found == nil {
			found = m
		}
	})
	return found, found != nil
}

func seriesColor(color string) []charts.SeriesOpts {
	if color == "" {
		return nil
	}
	return []charts.SeriesOpts{charts.WithItemStyleOpts(opts.ItemStyle{Color: color})}
}

func pieRadius(doc OptionDocument) []charts.SeriesOpts {
	plotOptions, _ := asMap(doc["plotOptions"])
	pie, _ := asMap(plotOptions["pie"])
	inner := strings.TrimSuffix(stringField(pie, "innerSize"), "%")
	if inner == "" || inner == "0" {
		return nil
	}
	return []charts.SeriesOpts{charts.WithPieChartOpts(opts.PieChart{Radius: []string{inner + "%", "75%"}})}
}

func parsePreviewSeries(doc OptionDocument) []previewSeries {
	raw, _ := seriesObjects(doc)
	out := make([]previewSeries, 0, len(raw))
	for i, s := range raw {
		name := stringField(s, "name")
		if name == "" {
			name = "Series " + strconv.Itoa(i+1)
		}
		points := parsePreviewPoints(s["data"])
		if len(points) == 0 {
			continue
		}
		out = append(out, previewSeries{name: name, color: stringField(s, "color"), points: points})
	}
	return out
}

func parsePreviewPoints(v any) []previewPoint {
	var items []any
	switch data := v.(type) {
	case []any:
		items = data
	case []map[string]any:
		for _, m := range data {
			items = append(items, m)
		}
	case []float64:
		for _, f := range data {
			items = append(items, f)
		}
	case []int:
		for _, n := range data {
			items = append(items, n)
		}
	default:
		return nil
	}
	points := make([]previewPoint, 0, len(items))
	for _, item := range items {
		switch val := item.(type) {
		case map[string]any:
			value := val["y"]
			if value == nil {
				value = val["value"]
			}
			points = append(points, previewPoint{
				name:  stringField(val, "name"),
				value: float64Value(value),
				color: stringField(val, "color"),
			})
		case []any:
			if len(val) >= 2 {
				points = append(points, previewPoint{name: fmt.Sprint(val[0]), value: float64Value(val[1])})
			}
		default:
			points = append(points, previewPoint{value: float64Value(val)})
		}
	}
	return points
}

func previewCategories(doc OptionDocument, series []previewSeries) []string {
	if axis, ok := firstObject(doc, "xAxis"); ok {
		if categories := stringSliceValue(axis["categories"]); len(categories) > 0 {
			return categories
		}
	}
	longest := 0
	for _, s := range series {
		if len(s.points) > longest {
			longest = len(s.points)
		}
	}
	labels := make([]string, longest)
	for i := range labels {
		labels[i] = strconv.Itoa(i + 1)
		for _, s := range series {
			if i < len(s.points) && s.points[i].name != "" {
				labels[i] = s.points[i].name
				break
			}
		}
	}
	return labels
}

func toPreviewBarData(points []previewPoint) []opts.BarData {
	data := make([]opts.BarData, len(points))
	for i, point := range points {
		data[i] = opts.BarData{Name: point.name, Value: point.value}
		if point.color != "" {
			data[i].ItemStyle = &opts.ItemStyle{Color: point.color}
		}
	}
	return data
}

func toPreviewLineData(points []previewPoint) []opts.LineData {
	data := make([]opts.LineData, len(points))
	for i, point := range points {
		data[i] = opts.LineData{Name: point.name, Value: point.value}
	}
	return data
}

func toPreviewPieData(points []previewPoint) []opts.PieData {
	data := make([]opts.PieData, len(points))
	for i, point := range points {
		name := point.name
		if name == "" {
			name = fmt.Sprintf("Slice %d", i+1)
		}
		data[i] = opts.PieData{Name: name, Value: point.value}
		if point.color != "" {
			data[i].ItemStyle = &opts.ItemStyle{Color: point.color}
		}
	}
	return data
}

func stringSliceValue(v any) []string {
	switch val := v.(type) {
	case []string:
		return append([]string(nil), val...)
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func float64Value(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return 0
}
