package dashboard

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
)

type stubSessionView struct {
	state SessionState
}

func (s stubSessionView) State() SessionState { return s.state }

type stubRenderer struct {
	lastTemplate string
	lastPayload  map[string]any
	err          error
}

func (r *stubRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	r.lastTemplate = name
	if payload, ok := data.(map[string]any); ok {
		r.lastPayload = payload
	}
	if len(out) > 0 && out[0] != nil {
		out[0].Write([]byte("<html></html>"))
	}
	return "<html></html>", r.err
}

func TestControllerRenderTemplate(t *testing.T) {
	instances := []WidgetInstance{
		{InstanceID: "embed-1", TypeID: EmbedTypeID, Layout: GridRect{X: 0, Y: AppendRow, W: 6, H: 8}},
		{InstanceID: "embed-2", TypeID: EmbedTypeID, Layout: GridRect{X: 6, Y: AppendRow, W: 6, H: 8}},
	}
	session := stubSessionView{state: SessionState{
		ID:        "s-1",
		Title:     "Ops",
		Theme:     ThemeDark,
		View:      ViewGrid,
		Instances: instances,
		Layout:    Project(instances),
	}}
	renderer := &stubRenderer{}
	controller := NewController(ControllerOptions{Renderer: renderer})

	var buf bytes.Buffer
	if err := controller.RenderTemplate(context.Background(), session, &buf); err != nil {
		t.Fatalf("RenderTemplate returned error: %v", err)
	}
	if renderer.lastTemplate != "dashboard.html" {
		t.Fatalf("expected dashboard template to render, got %s", renderer.lastTemplate)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected rendered output")
	}
	widgets, ok := renderer.lastPayload["widgets"].([]map[string]any)
	if !ok || len(widgets) != 2 {
		t.Fatalf("expected two widgets in payload, got %#v", renderer.lastPayload["widgets"])
	}
	for _, w := range widgets {
		rect := w["rect"].(GridRect)
		if rect.Y != 0 {
			t.Fatalf("expected appended widgets compacted to row 0, got %+v", rect)
		}
	}
}

func TestControllerRendersConfigErrorPage(t *testing.T) {
	renderer := &stubRenderer{}
	controller := NewController(ControllerOptions{
		Renderer: renderer,
		Ready: func() error {
			return &ConfigError{Missing: []string{"visualization url"}}
		},
	})
	err := controller.RenderTemplate(context.Background(), nil, io.Discard)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if renderer.lastTemplate != "config_error.html" {
		t.Fatalf("expected config error template, got %s", renderer.lastTemplate)
	}
}

func TestEmbeddedTemplatesRenderOutsidePackageDir(t *testing.T) {
	t.Chdir(t.TempDir())
	renderer, err := NewTemplateRenderer()
	if err != nil {
		t.Fatalf("NewTemplateRenderer returned error: %v", err)
	}
	controller := NewController(ControllerOptions{
		Renderer: renderer,
		Ready: func() error {
			return &ConfigError{Missing: []string{"visualization url", "visualization token"}}
		},
	})
	var buf bytes.Buffer
	err = controller.RenderTemplate(context.Background(), nil, &buf)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("visualization token")) {
		t.Fatalf("expected config page listing missing settings, got %q", buf.String())
	}
}
