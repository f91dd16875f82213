package dashboard

import (
	"context"
	"math"
	"strings"
)

// AppendRow is the y coordinate meaning "after the last occupied row". The
// grid renderer resolves it through vertical compaction.
const AppendRow = math.MaxInt32

// WidgetTypeID identifies a widget kind (chart family, embed, styled-embed).
type WidgetTypeID = string

// Built-in embed widget kinds.
const (
	EmbedTypeID       WidgetTypeID = "embed"
	StyledEmbedTypeID WidgetTypeID = "styled-embed"
)

// ThemeMode selects the ambient light/dark theme.
type ThemeMode string

const (
	ThemeLight ThemeMode = "light"
	ThemeDark  ThemeMode = "dark"
)

// DefaultThemeMode is used when neither the viewer nor the dashboard picked one.
const DefaultThemeMode = ThemeDark

// Valid reports whether the mode is one of the supported themes.
func (m ThemeMode) Valid() bool {
	return m == ThemeLight || m == ThemeDark
}

// Toggle flips between light and dark.
func (m ThemeMode) Toggle() ThemeMode {
	if m == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// GridlineStyle controls which axes draw grid lines and how.
type GridlineStyle string

const (
	GridlineBoth  GridlineStyle = "both"
	GridlineYOnly GridlineStyle = "y-only"
	GridlineXOnly GridlineStyle = "x-only"
	GridlineDots  GridlineStyle = "dots"
	GridlineNone  GridlineStyle = "none"
)

// GridRect is a widget rectangle in grid units. I always mirrors the owning
// instance id.
type GridRect struct {
	I string `json:"i" bson:"i" yaml:"i"`
	X int    `json:"x" bson:"x" yaml:"x"`
	Y int    `json:"y" bson:"y" yaml:"y"`
	W int    `json:"w" bson:"w" yaml:"w"`
	H int    `json:"h" bson:"h" yaml:"h"`
}

// SeriesInfo is a discovered chart series, used by colour editors.
type SeriesInfo struct {
	Name  string `json:"name" bson:"name"`
	Color string `json:"color,omitempty" bson:"color,omitempty"`
}

// ColorConfig maps series names to override colours.
type ColorConfig map[string]string

// StyleConfig is the explicit, user-authored style document for one instance.
// Pointer fields distinguish "unset" from zero values.
type StyleConfig struct {
	GridLineStyle  GridlineStyle     `json:"gridLineStyle,omitempty" bson:"gridLineStyle,omitempty"`
	LegendPosition string            `json:"legendPosition,omitempty" bson:"legendPosition,omitempty"`
	BorderRadius   *float64          `json:"borderRadius,omitempty" bson:"borderRadius,omitempty"`
	BarWidth       *float64          `json:"barWidth,omitempty" bson:"barWidth,omitempty"`
	BarOpacity     *float64          `json:"barOpacity,omitempty" bson:"barOpacity,omitempty"`
	BorderColor    string            `json:"borderColor,omitempty" bson:"borderColor,omitempty"`
	IsDonut        bool              `json:"isDonut,omitempty" bson:"isDonut,omitempty"`
	DonutWidth     *float64          `json:"donutWidth,omitempty" bson:"donutWidth,omitempty"`
	PieOpacity     *float64          `json:"pieOpacity,omitempty" bson:"pieOpacity,omitempty"`
	LineWidth      *float64          `json:"lineWidth,omitempty" bson:"lineWidth,omitempty"`
	MarkerRadius   *float64          `json:"markerRadius,omitempty" bson:"markerRadius,omitempty"`
	ApplyGradient  bool              `json:"applyGradient,omitempty" bson:"applyGradient,omitempty"`
	AxisColor      string            `json:"axisColor,omitempty" bson:"axisColor,omitempty"`
	SeriesColors   map[string]string `json:"seriesColors,omitempty" bson:"seriesColors,omitempty"`

	BackgroundColor        string `json:"backgroundColor,omitempty" bson:"backgroundColor,omitempty"`
	Border                 *bool  `json:"border,omitempty" bson:"border,omitempty"`
	CornerRadius           string `json:"cornerRadius,omitempty" bson:"cornerRadius,omitempty"`
	Shadow                 string `json:"shadow,omitempty" bson:"shadow,omitempty"`
	SpaceAround            string `json:"spaceAround,omitempty" bson:"spaceAround,omitempty"`
	HeaderBackgroundColor  string `json:"headerBackgroundColor,omitempty" bson:"headerBackgroundColor,omitempty"`
	HeaderDividerLine      *bool  `json:"headerDividerLine,omitempty" bson:"headerDividerLine,omitempty"`
	HeaderDividerLineColor string `json:"headerDividerLineColor,omitempty" bson:"headerDividerLineColor,omitempty"`
	HeaderHidden           *bool  `json:"headerHidden,omitempty" bson:"headerHidden,omitempty"`
	HeaderTitleAlignment   string `json:"headerTitleAlignment,omitempty" bson:"headerTitleAlignment,omitempty"`
	HeaderTitleTextColor   string `json:"headerTitleTextColor,omitempty" bson:"headerTitleTextColor,omitempty"`
}

// WidgetInstance is one placed occurrence of a widget type on a dashboard.
// The JSON shape is the persisted document shape.
type WidgetInstance struct {
	InstanceID   string       `json:"instanceId" bson:"instanceId"`
	TypeID       WidgetTypeID `json:"id" bson:"id"`
	Layout       GridRect     `json:"layout" bson:"layout"`
	StyleConfig  *StyleConfig `json:"styleConfig,omitempty" bson:"styleConfig,omitempty"`
	ColorConfig  ColorConfig  `json:"colorConfig,omitempty" bson:"colorConfig,omitempty"`
	Series       []SeriesInfo `json:"series,omitempty" bson:"series,omitempty"`
	EmbedCode    string       `json:"embedCode,omitempty" bson:"embedCode,omitempty"`
	WidgetOID    string       `json:"widgetOid,omitempty" bson:"widgetOid,omitempty"`
	DashboardOID string       `json:"dashboardOid,omitempty" bson:"dashboardOid,omitempty"`
}

// IsChart reports whether the instance renders a chart and so accepts colour
// overrides.
func (w WidgetInstance) IsChart() bool {
	return strings.HasPrefix(w.TypeID, "chart") || w.TypeID == StyledEmbedTypeID
}

// Dashboard is a saved snapshot of the widget registry plus theme.
type Dashboard struct {
	ID              string           `json:"id" bson:"id"`
	Name            string           `json:"name" bson:"name"`
	FolderID        string           `json:"folderId" bson:"folderId"`
	WidgetInstances []WidgetInstance `json:"widgetInstances" bson:"widgetInstances"`
	Theme           ThemeMode        `json:"theme,omitempty" bson:"theme,omitempty"`
	IframeURL       string           `json:"iframeUrl,omitempty" bson:"iframeUrl,omitempty"`
}

// Folder groups dashboards.
type Folder struct {
	ID    string `json:"id" bson:"id"`
	Name  string `json:"name" bson:"name"`
	Color string `json:"color,omitempty" bson:"color,omitempty"`
}

// FolderPatch carries the mutable folder fields.
type FolderPatch struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

// DashboardPatch carries the mutable dashboard fields; nil means unchanged.
type DashboardPatch struct {
	Name            *string          `json:"name,omitempty"`
	FolderID        *string          `json:"folderId,omitempty"`
	WidgetInstances []WidgetInstance `json:"widgetInstances,omitempty"`
	Theme           *ThemeMode       `json:"theme,omitempty"`
	IframeURL       *string          `json:"iframeUrl,omitempty"`
}

// Apply returns a copy of d with the patch applied.
func (p DashboardPatch) Apply(d Dashboard) Dashboard {
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.FolderID != nil {
		d.FolderID = *p.FolderID
	}
	if p.WidgetInstances != nil {
		d.WidgetInstances = p.WidgetInstances
	}
	if p.Theme != nil {
		d.Theme = *p.Theme
	}
	if p.IframeURL != nil {
		d.IframeURL = *p.IframeURL
	}
	return d
}

// Apply returns a copy of f with the patch applied.
func (p FolderPatch) Apply(f Folder) Folder {
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Color != nil {
		f.Color = *p.Color
	}
	return f
}

// Store persists folders and dashboards. Every backend shares the same
// document shape. DeleteFolder cascades to the folder's dashboards.
type Store interface {
	ListFolders(ctx context.Context) ([]Folder, error)
	ListDashboards(ctx context.Context) ([]Dashboard, error)
	CreateFolder(ctx context.Context, folder Folder) error
	UpdateFolder(ctx context.Context, id string, patch FolderPatch) error
	DeleteFolder(ctx context.Context, id string) error
	CreateDashboard(ctx context.Context, dashboard Dashboard) error
	UpdateDashboard(ctx context.Context, id string, patch DashboardPatch) error
	DeleteDashboard(ctx context.Context, id string) error
}

// PreferenceStore keeps per-viewer display preferences.
type PreferenceStore interface {
	ThemeMode(ctx context.Context, viewer ViewerContext) (ThemeMode, error)
	SaveThemeMode(ctx context.Context, viewer ViewerContext, mode ThemeMode) error
}

// RefreshHook notifies transports (REST/WebSocket) about session changes.
type RefreshHook interface {
	SessionUpdated(ctx context.Context, event SessionEvent) error
}

// ViewerContext identifies the user a session belongs to.
type ViewerContext struct {
	UserID string   `json:"userId,omitempty"`
	Roles  []string `json:"roles,omitempty"`
}

// ViewMode is the session's main surface.
type ViewMode string

const (
	ViewGrid   ViewMode = "grid"
	ViewIframe ViewMode = "iframe"
)

// SessionEvent describes changes that transports might care about.
type SessionEvent struct {
	SessionID  string     `json:"sessionId"`
	Reason     string     `json:"reason"`
	InstanceID string     `json:"instanceId,omitempty"`
	Dashboard  string     `json:"dashboardId,omitempty"`
	Layout     *LayoutSet `json:"layout,omitempty"`
}
