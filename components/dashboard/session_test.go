package dashboard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHook struct {
	mu     sync.Mutex
	events []SessionEvent
}

func (h *recordingHook) SessionUpdated(_ context.Context, event SessionEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return nil
}

func (h *recordingHook) reasons() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.events))
	for i, e := range h.events {
		out[i] = e.Reason
	}
	return out
}

func newTestSession(t *testing.T) (*Session, *Library, *recordingHook) {
	t.Helper()
	lib := NewLibrary(NewMemoryStore(), nil, steppingClock())
	require.NoError(t, lib.Load(context.Background()))
	cat := testCatalog(t)
	registry := NewInstanceRegistry(RegistryOptions{Lookup: cat.Lookup, Clock: steppingClock()})
	hook := &recordingHook{}
	session := newSession(sessionDeps{
		id:       "s-1",
		viewer:   ViewerContext{UserID: "user-1"},
		library:  lib,
		registry: registry,
		pipeline: NewRenderPipeline(cat.Lookup),
		refresh:  hook,
	})
	t.Cleanup(session.Close)
	return session, lib, hook
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	session, lib, _ := newTestSession(t)
	folder, err := lib.CreateFolder(ctx, "Ops", "")
	require.NoError(t, err)

	first, err := session.AddWidget(ctx, "chart-bar", LayoutOverride{})
	require.NoError(t, err)
	_, err = session.SaveEmbed(ctx, "", EmbedPayload{Type: EmbedHTML, EmbedCode: "<div/>"})
	require.NoError(t, err)
	require.True(t, session.UpdateSeriesColor(ctx, first.InstanceID, "A", "#abcdef"))
	require.NoError(t, session.SetTheme(ctx, ThemeLight))

	saved, err := session.SaveAsNew(ctx, folder.ID, "Main")
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, saved.Theme)
	assert.Equal(t, SnapshotActive, session.State().Snapshot)
	before := session.Instances()

	session.NewDashboard(ctx)
	state := session.State()
	assert.Empty(t, state.Instances)
	assert.Equal(t, titleNewDashboard, state.Title)
	assert.Equal(t, SnapshotNone, state.Snapshot)
	require.NoError(t, session.SetTheme(ctx, ThemeDark))

	_, err = session.LoadDashboard(ctx, saved.ID)
	require.NoError(t, err)
	state = session.State()
	assert.Equal(t, before, state.Instances)
	assert.Equal(t, ThemeLight, state.Theme)
	assert.Equal(t, "Main", state.Title)
	assert.Equal(t, saved.ID, state.ActiveDashboard)
}

func TestSnapshotDirtyAndOverwrite(t *testing.T) {
	ctx := context.Background()
	session, lib, _ := newTestSession(t)

	saved, err := session.SaveOverwrite(ctx)
	require.NoError(t, err)
	assert.False(t, saved, "no active dashboard")

	folder, _ := lib.CreateFolder(ctx, "Ops", "")
	d, err := session.SaveAsNew(ctx, folder.ID, "Main")
	require.NoError(t, err)
	assert.Empty(t, d.WidgetInstances)

	inst, err := session.AddWidget(ctx, "chart-bar", LayoutOverride{})
	require.NoError(t, err)
	assert.Equal(t, SnapshotDirty, session.State().Snapshot)

	saved, err = session.SaveOverwrite(ctx)
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, SnapshotActive, session.State().Snapshot)

	stored, ok := lib.Dashboard(d.ID)
	require.True(t, ok)
	require.Len(t, stored.WidgetInstances, 1)
	assert.Equal(t, inst.InstanceID, stored.WidgetInstances[0].InstanceID)

	_, err = session.SaveAsNew(ctx, "f-missing", "Other")
	assert.ErrorIs(t, err, ErrFolderNotFound)
}

func TestSessionTitleAndIframeView(t *testing.T) {
	ctx := context.Background()
	session, lib, _ := newTestSession(t)
	assert.Equal(t, titleNoSelection, session.State().Title)

	folder, _ := lib.CreateFolder(ctx, "Ops", "")
	d, _ := lib.CreateDashboard(ctx, Dashboard{Name: "External", FolderID: folder.ID})
	url := "https://viz.example.com/d/1"
	_, err := lib.UpdateDashboard(ctx, d.ID, DashboardPatch{IframeURL: &url})
	require.NoError(t, err)

	_, err = session.LoadDashboard(ctx, d.ID)
	require.NoError(t, err)
	state := session.State()
	assert.Equal(t, ViewIframe, state.View)
	assert.Equal(t, url, state.IframeURL)

	session.forget(ctx, d.ID)
	state = session.State()
	assert.Empty(t, state.ActiveDashboard)
	assert.Equal(t, ViewGrid, state.View)
	assert.Equal(t, SnapshotNone, state.Snapshot)
}

func TestSessionRenderDefersDiscovery(t *testing.T) {
	ctx := context.Background()
	session, _, hook := newTestSession(t)
	inst, err := session.AddWidget(ctx, "chart-bar", LayoutOverride{})
	require.NoError(t, err)

	raw := OptionDocument{"series": []any{map[string]any{"name": "Revenue"}}}
	result, err := session.Render(ctx, inst.InstanceID, raw)
	require.NoError(t, err)
	require.NotNil(t, result.Pending)
	assert.Equal(t, 1, session.PendingEffects())

	assert.Equal(t, 1, session.Tick())
	got := session.Instances()
	require.Len(t, got[0].Series, 1)
	assert.Equal(t, "Revenue", got[0].Series[0].Name)
	assert.Contains(t, hook.reasons(), ReasonSeries)

	_, err = session.Render(ctx, "ghost", raw)
	assert.ErrorIs(t, err, ErrInstanceNotFound)
}

func TestSessionResizePublishesRemeasure(t *testing.T) {
	ctx := context.Background()
	session, _, hook := newTestSession(t)
	inst, err := session.AddWidget(ctx, "chart-bar", LayoutOverride{})
	require.NoError(t, err)

	signal := session.Resize(ctx, inst.InstanceID, GridRect{X: 0, Y: 0, W: 6, H: 6})
	require.NotNil(t, signal)
	assert.Nil(t, session.Resize(ctx, "ghost", GridRect{W: 1, H: 1}))

	require.Eventually(t, func() bool {
		for _, reason := range hook.reasons() {
			if reason == ReasonRemeasure {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)
}

func TestSessionLayoutChangeAndTheme(t *testing.T) {
	ctx := context.Background()
	session, _, hook := newTestSession(t)
	a, _ := session.AddWidget(ctx, "chart-bar", LayoutOverride{})
	b, _ := session.AddWidget(ctx, "chart-bar", LayoutOverride{})

	layout := session.ApplyLayoutChange(ctx, []GridRect{{I: b.InstanceID, X: 0, Y: 0, W: 4, H: 4}})
	rects := layout[BreakpointLG]
	require.Len(t, rects, 2)
	assert.Equal(t, b.InstanceID, rects[0].I)
	assert.Equal(t, a.InstanceID, rects[1].I)

	assert.Equal(t, ThemeLight, session.ToggleTheme(ctx))
	assert.ErrorIs(t, session.SetTheme(ctx, "sepia"), ErrInvalidTheme)
	assert.Equal(t, ThemeLight, session.Theme())

	assert.True(t, session.RemoveWidget(ctx, a.InstanceID))
	assert.False(t, session.RemoveWidget(ctx, a.InstanceID))
	assert.Subset(t, hook.reasons(), []string{ReasonWidget, ReasonLayout, ReasonTheme})
}
