package dashboard

import (
	"context"
	"errors"
	"io"
)

const (
	defaultDashboardTemplate   = "dashboard.html"
	defaultConfigErrorTemplate = "config_error.html"
)

// SessionView is the read side of a session needed by the HTML view.
type SessionView interface {
	State() SessionState
}

// ControllerOptions configures the HTML controller.
type ControllerOptions struct {
	Renderer      Renderer
	Template      string
	ErrorTemplate string
	// Ready reports configuration problems; a *ConfigError renders the
	// blocking configuration page instead of the grid.
	Ready func() error
}

// Controller renders the server-side dashboard view.
type Controller struct {
	opts ControllerOptions
}

// NewController wires the renderer into a controller.
func NewController(opts ControllerOptions) *Controller {
	if opts.Template == "" {
		opts.Template = defaultDashboardTemplate
	}
	if opts.ErrorTemplate == "" {
		opts.ErrorTemplate = defaultConfigErrorTemplate
	}
	return &Controller{opts: opts}
}

// RenderTemplate writes the dashboard grid for session to out. It returns
// the *ConfigError after rendering the configuration page when the service
// is not ready.
func (c *Controller) RenderTemplate(ctx context.Context, session SessionView, out io.Writer) error {
	if c.opts.Renderer == nil {
		return errors.New("dashboard: template renderer not configured")
	}
	if c.opts.Ready != nil {
		if err := c.opts.Ready(); err != nil {
			var cfgErr *ConfigError
			if errors.As(err, &cfgErr) {
				_, renderErr := c.opts.Renderer.Render(c.opts.ErrorTemplate, map[string]any{
					"missing": cfgErr.Missing,
					"message": cfgErr.Error(),
				}, out)
				return errors.Join(err, renderErr)
			}
			return err
		}
	}
	if session == nil {
		return ErrSessionNotFound
	}
	_, err := c.opts.Renderer.Render(c.opts.Template, ViewPayload(session.State()), out)
	return err
}

// ViewPayload builds the template context for a session state. Rectangles
// are compacted so AppendRow placements land on real rows.
func ViewPayload(state SessionState) map[string]any {
	rects := CompactVertical(state.Layout[BreakpointLG], GridColumns)
	byID := make(map[string]GridRect, len(rects))
	for _, r := range rects {
		byID[r.I] = r
	}
	themeStyle := StyleOptionsForTheme(state.Theme)
	widgets := make([]map[string]any, 0, len(state.Instances))
	for _, inst := range state.Instances {
		style := themeStyle
		if inst.StyleConfig != nil {
			style = StyleOptionsFromConfig(*inst.StyleConfig)
		}
		widgets = append(widgets, map[string]any{
			"id":       inst.InstanceID,
			"type":     inst.TypeID,
			"rect":     byID[inst.InstanceID],
			"style":    style,
			"is_chart": inst.IsChart(),
			"embed":    inst.EmbedCode,
		})
	}
	return map[string]any{
		"session_id": state.ID,
		"title":      state.Title,
		"theme":      string(state.Theme),
		"view":       string(state.View),
		"iframe_url": state.IframeURL,
		"style":      themeStyle,
		"widgets":    widgets,
		"columns":    GridColumns,
		"row_height": RowHeight,
	}
}
