package dashboard

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

// WidgetClass groups widget types by placement behaviour.
type WidgetClass string

const (
	ClassChart WidgetClass = "chart"
	ClassEmbed WidgetClass = "embed"
)

// DefaultLayout is the catalog-provided initial size in grid units.
type DefaultLayout struct {
	W int `json:"w" yaml:"w"`
	H int `json:"h" yaml:"h"`
}

// CatalogEntry describes a widget type that can be added to a dashboard.
type CatalogEntry struct {
	ID            WidgetTypeID  `json:"id" yaml:"id"`
	Title         string        `json:"title" yaml:"title"`
	Description   string        `json:"description,omitempty" yaml:"description,omitempty"`
	DefaultLayout DefaultLayout `json:"defaultLayout" yaml:"defaultLayout"`
	Class         WidgetClass   `json:"class,omitempty" yaml:"class,omitempty"`
	// ExplicitStyle entries render through the user style config instead of
	// the ambient theme once a style config is attached.
	ExplicitStyle bool   `json:"explicitStyle,omitempty" yaml:"explicitStyle,omitempty"`
	WidgetOID     string `json:"widgetOid,omitempty" yaml:"widgetOid,omitempty"`
	DashboardOID  string `json:"dashboardOid,omitempty" yaml:"dashboardOid,omitempty"`
}

// PlacementStep is the column stride used when placing a new instance.
func (e CatalogEntry) PlacementStep() int {
	if e.Class == ClassEmbed {
		return embedPlacementStep
	}
	return catalogPlacementStep
}

// CatalogLookup resolves a widget type to its catalog entry.
type CatalogLookup func(WidgetTypeID) (CatalogEntry, bool)

// CatalogHook lets packages register catalog entries during init().
type CatalogHook func(cat *Catalog) error

var (
	globalHookMu sync.Mutex
	globalHooks  []CatalogHook
)

// RegisterCatalogHook registers a hook executed against new catalogs.
func RegisterCatalogHook(h CatalogHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// DefaultCatalogEntries returns the built-in widget types.
func DefaultCatalogEntries() []CatalogEntry {
	return []CatalogEntry{
		{
			ID:            EmbedTypeID,
			Title:         "Embed",
			Description:   "Raw SDK or HTML embed code.",
			DefaultLayout: DefaultLayout{W: 6, H: 8},
			Class:         ClassEmbed,
		},
		{
			ID:            StyledEmbedTypeID,
			Title:         "Styled Embed",
			Description:   "A remote chart widget with a user-authored style config.",
			DefaultLayout: DefaultLayout{W: 6, H: 8},
			Class:         ClassEmbed,
			ExplicitStyle: true,
		},
		{
			ID:            "conditional-color-filter-leak-rate",
			Title:         "Leak Rate by Name (Color Filter)",
			Description:   "A bar chart showing leak rate with interactive, color-coded filters based on conditional rules.",
			DefaultLayout: DefaultLayout{W: 8, H: 10},
			Class:         ClassChart,
		},
	}
}

// Catalog is a read-only-after-setup table of widget types.
type Catalog struct {
	mu      sync.RWMutex
	entries map[WidgetTypeID]CatalogEntry
	order   []WidgetTypeID
}

// NewCatalog builds a catalog with the default entries and applies global hooks.
// Hook failures are logged to the default logger.
func NewCatalog() *Catalog {
	return NewCatalogWithLogger(log.Default())
}

// NewCatalogWithLogger is NewCatalog reporting hook failures to logger.
func NewCatalogWithLogger(logger *log.Logger) *Catalog {
	if logger == nil {
		logger = discardLogger()
	}
	cat := NewEmptyCatalog()
	for _, entry := range DefaultCatalogEntries() {
		if err := cat.Register(entry); err != nil {
			logger.Warn("catalog default rejected", "type", entry.ID, "err", err)
		}
	}
	if err := cat.ApplyHooks(); err != nil {
		logger.Warn("catalog hook failed", "err", err)
	}
	return cat
}

// NewEmptyCatalog builds a catalog without defaults or hooks.
func NewEmptyCatalog() *Catalog {
	return &Catalog{entries: map[WidgetTypeID]CatalogEntry{}}
}

// ApplyHooks executes registered catalog hooks.
func (c *Catalog) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	var errs []error
	for _, hook := range globalHooks {
		if err := hook(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Register stores or replaces a catalog entry.
func (c *Catalog) Register(entry CatalogEntry) error {
	if entry.ID == "" {
		return fmt.Errorf("dashboard: catalog entry id is required")
	}
	if entry.DefaultLayout.W <= 0 || entry.DefaultLayout.H <= 0 {
		return fmt.Errorf("dashboard: catalog entry %s needs a positive default layout", entry.ID)
	}
	if entry.Class == "" {
		entry.Class = ClassChart
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[entry.ID]; !exists {
		c.order = append(c.order, entry.ID)
	}
	c.entries[entry.ID] = entry
	return nil
}

// Lookup fetches an entry by widget type. It satisfies CatalogLookup.
func (c *Catalog) Lookup(id WidgetTypeID) (CatalogEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[id]
	return entry, ok
}

// Entries returns all entries in registration order.
func (c *Catalog) Entries() []CatalogEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]CatalogEntry, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.entries[id])
	}
	return out
}
