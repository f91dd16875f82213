// Package dashboard is the public entry point for embedding the widget
// composition engine in a host application.
package dashboard

import (
	core "github.com/goliatone/go-dashcompose/components/dashboard"
)

type (
	Service       = core.Service
	Options       = core.Options
	Session       = core.Session
	SessionState  = core.SessionState
	Catalog       = core.Catalog
	CatalogEntry  = core.CatalogEntry
	ViewerContext = core.ViewerContext
	ThemeMode     = core.ThemeMode
	Folder        = core.Folder
	Dashboard     = core.Dashboard
	Store         = core.Store
)

const (
	ThemeDark  = core.ThemeDark
	ThemeLight = core.ThemeLight
)

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// NewCatalog returns a catalog holding the built-in widget types.
func NewCatalog() *Catalog {
	return core.NewCatalog()
}

// NewMemoryStore returns the in-process library store.
func NewMemoryStore() Store {
	return core.NewMemoryStore()
}
