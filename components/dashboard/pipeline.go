package dashboard

// RenderPath names the transform chain an instance was rendered through.
type RenderPath string

const (
	PathTheme    RenderPath = "theme"
	PathExplicit RenderPath = "explicit"
)

// PendingSeriesDiscovery is a deferred registry write produced by a render.
// The caller schedules it for the next turn; Render never applies it.
type PendingSeriesDiscovery struct {
	InstanceID string
	Series     []SeriesInfo
}

// RenderResult is what the external renderer receives for one instance.
type RenderResult struct {
	InstanceID string                  `json:"instanceId"`
	Path       RenderPath              `json:"path"`
	Options    OptionDocument          `json:"options"`
	Style      StyleOptions            `json:"style"`
	Pending    *PendingSeriesDiscovery `json:"-"`
}

// RenderPipeline routes instances through the theme-driven or explicit-style
// transforms and applies colour overrides last.
type RenderPipeline struct {
	lookup CatalogLookup
}

// NewRenderPipeline builds a pipeline; lookup may be nil, in which case only
// the built-in styled-embed type is treated as explicitly styled.
func NewRenderPipeline(lookup CatalogLookup) *RenderPipeline {
	return &RenderPipeline{lookup: lookup}
}

// Render transforms raw for inst. It is pure: neither inst nor raw is
// modified and no registry state is touched.
func (p *RenderPipeline) Render(inst WidgetInstance, raw OptionDocument, mode ThemeMode) RenderResult {
	if !mode.Valid() {
		mode = DefaultThemeMode
	}
	result := RenderResult{InstanceID: inst.InstanceID}

	if p.explicit(inst) {
		result.Path = PathExplicit
		result.Options = ApplyExplicitStyle(raw, *inst.StyleConfig)
		result.Style = StyleOptionsFromConfig(*inst.StyleConfig)
	} else {
		gridline := GridlineBoth
		if inst.StyleConfig != nil && inst.StyleConfig.GridLineStyle != "" {
			gridline = inst.StyleConfig.GridLineStyle
		}
		result.Path = PathTheme
		result.Options = ApplyTheming(raw, gridline, mode)
		result.Style = StyleOptionsForTheme(mode)
		if len(inst.Series) == 0 {
			result.Pending = discoverSeries(inst, raw, mode)
		}
	}

	ApplyColorOverrides(result.Options, inst.ColorConfig)
	return result
}

func (p *RenderPipeline) explicit(inst WidgetInstance) bool {
	if inst.StyleConfig == nil {
		return false
	}
	if p.lookup != nil {
		if entry, ok := p.lookup(inst.TypeID); ok {
			return entry.ExplicitStyle
		}
	}
	return inst.TypeID == StyledEmbedTypeID
}

// ApplyColorOverrides sets the colour of every series whose name has an
// override. doc is modified in place.
func ApplyColorOverrides(doc OptionDocument, colors ColorConfig) {
	if len(colors) == 0 {
		return
	}
	series, _ := seriesObjects(doc)
	for _, s := range series {
		if c := colors[stringField(s, "name")]; c != "" {
			s["color"] = c
		}
	}
}

func discoverSeries(inst WidgetInstance, raw OptionDocument, mode ThemeMode) *PendingSeriesDiscovery {
	series, idxs := seriesObjects(raw)
	palette := Palette(mode)
	var found []SeriesInfo
	for i, s := range series {
		name := stringField(s, "name")
		if name == "" {
			continue
		}
		color := stringField(s, "color")
		if override := inst.ColorConfig[name]; override != "" {
			color = override
		}
		if color == "" {
			color = palette[idxs[i]%len(palette)]
		}
		found = append(found, SeriesInfo{Name: name, Color: color})
	}
	if len(found) == 0 {
		return nil
	}
	return &PendingSeriesDiscovery{InstanceID: inst.InstanceID, Series: found}
}
