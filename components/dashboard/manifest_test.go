package dashboard

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeManifest(t *testing.T) {
	const payload = `
version: 1
name: plant-pack
widgets:
  - entry:
      id: chart-pressure-trend
      title: Pressure Trend
      description: Line chart of line pressure per station.
      defaultLayout: {w: 6, h: 6}
      widgetOid: 65f0c1
      dashboardOid: 65f0aa
    tags: ["pressure"]
`
	doc, err := DecodeManifest(strings.NewReader(payload))
	require.NoError(t, err)
	require.Len(t, doc.Widgets, 1)

	entry := doc.Widgets[0].Entry
	assert.Equal(t, "chart-pressure-trend", entry.ID)
	assert.Equal(t, "Pressure Trend", entry.Title)
	assert.Equal(t, DefaultLayout{W: 6, H: 6}, entry.DefaultLayout)
	assert.Equal(t, "65f0c1", entry.WidgetOID)
	assert.Equal(t, []string{"pressure"}, doc.Widgets[0].Tags)
}

func TestCatalogLoadManifest(t *testing.T) {
	doc := &CatalogManifest{
		Version: manifestVersionV1,
		Widgets: []ManifestEntry{
			{Entry: CatalogEntry{ID: "chart-inventory", Title: "Inventory", DefaultLayout: DefaultLayout{W: 4, H: 4}}},
		},
	}
	cat := NewCatalog()
	require.NoError(t, cat.LoadManifest(doc))

	entry, ok := cat.Lookup("chart-inventory")
	require.True(t, ok)
	assert.Equal(t, "Inventory", entry.Title)
	assert.Equal(t, ClassChart, entry.Class)
	assert.Equal(t, catalogPlacementStep, entry.PlacementStep())
}

func TestManifestDuplicateIDs(t *testing.T) {
	const payload = `
widgets:
  - entry: {id: dup, title: First, defaultLayout: {w: 2, h: 2}}
  - entry: {id: dup, title: Second, defaultLayout: {w: 2, h: 2}}
`
	_, err := DecodeManifest(strings.NewReader(payload))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicates widget id")
}

func TestManifestRejectsUnknownFields(t *testing.T) {
	const payload = `
widgets:
  - entry: {id: a, title: A, defaultLayout: {w: 2, h: 2}, colour: red}
`
	_, err := DecodeManifest(strings.NewReader(payload))
	require.Error(t, err)
}

func TestManifestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := &CatalogManifest{
		Version: ManifestVersion,
		Name:    "round-trip",
		Widgets: []ManifestEntry{
			{Entry: CatalogEntry{ID: "styled-kpi", Title: "KPI", DefaultLayout: DefaultLayout{W: 3, H: 2}, Class: ClassEmbed, ExplicitStyle: true}},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, EncodeManifest(&buf, doc))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	cat := NewEmptyCatalog()
	loaded, err := cat.LoadManifestFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, loaded.Source)

	entry, ok := cat.Lookup("styled-kpi")
	require.True(t, ok)
	assert.True(t, entry.ExplicitStyle)
	assert.Equal(t, embedPlacementStep, entry.PlacementStep())
}

func TestCatalogHooksAndDefaults(t *testing.T) {
	RegisterCatalogHook(func(cat *Catalog) error {
		return cat.Register(CatalogEntry{ID: "chart-hooked", Title: "Hooked", DefaultLayout: DefaultLayout{W: 3, H: 3}})
	})
	cat := NewCatalog()

	_, ok := cat.Lookup("chart-hooked")
	assert.True(t, ok)
	leak, ok := cat.Lookup("conditional-color-filter-leak-rate")
	require.True(t, ok)
	assert.Equal(t, DefaultLayout{W: 8, H: 10}, leak.DefaultLayout)
	assert.Equal(t, EmbedTypeID, cat.Entries()[0].ID)

	err := cat.Register(CatalogEntry{ID: "bad"})
	assert.Error(t, err)
}

func TestCatalogHookFailuresAreLogged(t *testing.T) {
	globalHookMu.Lock()
	saved := globalHooks
	globalHookMu.Unlock()
	t.Cleanup(func() {
		globalHookMu.Lock()
		globalHooks = saved
		globalHookMu.Unlock()
	})

	RegisterCatalogHook(func(*Catalog) error { return errors.New("plugin manifest unreadable") })
	RegisterCatalogHook(func(cat *Catalog) error {
		return cat.Register(CatalogEntry{ID: "chart-after-failure", Title: "After", DefaultLayout: DefaultLayout{W: 4, H: 4}})
	})

	var buf bytes.Buffer
	cat := NewCatalogWithLogger(log.New(&buf))

	if !strings.Contains(buf.String(), "plugin manifest unreadable") {
		t.Fatalf("expected hook failure in log output, got %q", buf.String())
	}
	_, ok := cat.Lookup("chart-after-failure")
	assert.True(t, ok, "later hooks still run")
	_, ok = cat.Lookup(EmbedTypeID)
	assert.True(t, ok)
}
