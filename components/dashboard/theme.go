package dashboard

import "github.com/go-echarts/go-echarts/v2/types"

const (
	darkGridColor  = "#444446"
	lightGridColor = "#EAEBEF"
	themeFont      = "Inter, sans-serif"
)

var darkPalette = []string{"#f32958", "#fdd459", "#26b26f", "#4486f8"}

var lightPalette = []string{"#2caffe", "#544fc5", "#00e272", "#fe6a35", "#6b8abc", "#d568fb", "#2ee0ca", "#fa4b42"}

// Palette returns the default series colours of the theme.
func Palette(mode ThemeMode) []string {
	if mode == ThemeLight {
		return append([]string(nil), lightPalette...)
	}
	return append([]string(nil), darkPalette...)
}

// GridColor returns the grid line colour used by the theme.
func GridColor(mode ThemeMode) string {
	if mode == ThemeLight {
		return lightGridColor
	}
	return darkGridColor
}

// ThemeFragment returns the chart-option fragment merged over raw options on
// the theme-driven render path.
func ThemeFragment(mode ThemeMode) OptionDocument {
	text := "#E0E0E3"
	muted := "#A0A0A3"
	plotBorder := "#606063"
	if mode == ThemeLight {
		text = "#333333"
		muted = "#666666"
		plotBorder = "#CCCCCC"
	}
	palette := make([]any, 0, len(darkPalette))
	for _, c := range Palette(mode) {
		palette = append(palette, c)
	}
	axis := func() map[string]any {
		return map[string]any{
			"labels":    map[string]any{"style": map[string]any{"color": muted}},
			"lineColor": GridColor(mode),
			"tickColor": GridColor(mode),
			"title":     map[string]any{"style": map[string]any{"color": muted}},
		}
	}
	return OptionDocument{
		"colors": palette,
		"chart": map[string]any{
			"style":           map[string]any{"fontFamily": themeFont},
			"plotBorderColor": plotBorder,
		},
		"title":    map[string]any{"style": map[string]any{"color": text}},
		"subtitle": map[string]any{"style": map[string]any{"color": muted}},
		"legend": map[string]any{
			"itemStyle":      map[string]any{"color": text},
			"itemHoverStyle": map[string]any{"color": muted},
		},
		"xAxis": axis(),
		"yAxis": axis(),
	}
}

// EChartsTheme maps the ambient theme onto a bundled go-echarts theme.
func EChartsTheme(mode ThemeMode) string {
	if mode == ThemeLight {
		return types.ThemeWesteros
	}
	return types.ThemeChalk
}

// StyleOptions is the renderer-facing container style (background, border,
// header) of a widget.
type StyleOptions struct {
	BackgroundColor string             `json:"backgroundColor,omitempty"`
	Border          *bool              `json:"border,omitempty"`
	BorderColor     string             `json:"borderColor,omitempty"`
	CornerRadius    string             `json:"cornerRadius,omitempty"`
	Shadow          string             `json:"shadow,omitempty"`
	SpaceAround     string             `json:"spaceAround,omitempty"`
	Header          StyleHeaderOptions `json:"header"`
}

// StyleHeaderOptions styles the widget header strip.
type StyleHeaderOptions struct {
	BackgroundColor  string `json:"backgroundColor,omitempty"`
	DividerLine      *bool  `json:"dividerLine,omitempty"`
	DividerLineColor string `json:"dividerLineColor,omitempty"`
	Hidden           *bool  `json:"hidden,omitempty"`
	TitleAlignment   string `json:"titleAlignment,omitempty"`
	TitleTextColor   string `json:"titleTextColor,omitempty"`
}

// StyleOptionsForTheme derives container style from the ambient theme.
func StyleOptionsForTheme(mode ThemeMode) StyleOptions {
	opts := StyleOptions{
		BackgroundColor: "#1F2937",
		Border:          boolPtr(false),
		Shadow:          "None",
		Header: StyleHeaderOptions{
			BackgroundColor:  "#1F2937",
			TitleTextColor:   "#FFFFFF",
			DividerLine:      boolPtr(true),
			DividerLineColor: "transparent",
		},
	}
	if mode == ThemeLight {
		opts.BackgroundColor = "#FFFFFF"
		opts.Header.BackgroundColor = "#FFFFFF"
		opts.Header.TitleTextColor = "#111827"
		opts.Header.DividerLineColor = "#E5E7EB"
	}
	return opts
}

// StyleOptionsFromConfig copies container style fields from a style config.
func StyleOptionsFromConfig(cfg StyleConfig) StyleOptions {
	return StyleOptions{
		BackgroundColor: cfg.BackgroundColor,
		Border:          cfg.Border,
		BorderColor:     cfg.BorderColor,
		CornerRadius:    cfg.CornerRadius,
		Shadow:          cfg.Shadow,
		SpaceAround:     cfg.SpaceAround,
		Header: StyleHeaderOptions{
			BackgroundColor:  cfg.HeaderBackgroundColor,
			DividerLine:      cfg.HeaderDividerLine,
			DividerLineColor: cfg.HeaderDividerLineColor,
			Hidden:           cfg.HeaderHidden,
			TitleAlignment:   cfg.HeaderTitleAlignment,
			TitleTextColor:   cfg.HeaderTitleTextColor,
		},
	}
}

func boolPtr(b bool) *bool { return &b }

func floatPtr(f float64) *float64 { return &f }
