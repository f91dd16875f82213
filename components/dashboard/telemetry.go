package dashboard

import "context"

// Telemetry event names recorded by sessions and the service.
const (
	EventWidgetAdd       = "dashboard.widget.add"
	EventWidgetRemove    = "dashboard.widget.remove"
	EventWidgetStyle     = "dashboard.widget.style"
	EventWidgetEmbed     = "dashboard.widget.embed"
	EventLayoutChange    = "dashboard.layout.change"
	EventSeriesDiscover  = "dashboard.series.discover"
	EventSnapshotLoad    = "dashboard.snapshot.load"
	EventSnapshotSave    = "dashboard.snapshot.save"
	EventSnapshotSaveAs  = "dashboard.snapshot.save_as"
	EventThemeChange     = "dashboard.theme.change"
	EventLibraryMutation = "dashboard.library.mutation"
)

// Telemetry records engine events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

// TelemetryFunc adapts a function to Telemetry.
type TelemetryFunc func(ctx context.Context, event string, payload map[string]any)

// Record calls f.
func (f TelemetryFunc) Record(ctx context.Context, event string, payload map[string]any) {
	f(ctx, event, payload)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}
