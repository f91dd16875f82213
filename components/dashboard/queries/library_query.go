package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dashcompose/components/dashboard"
)

// LibraryInput optionally narrows the listing to one folder.
type LibraryInput struct {
	FolderID string `json:"folder_id,omitempty"`
}

// LibraryView is the folder and dashboard listing.
type LibraryView struct {
	Folders    []dashboard.Folder    `json:"folders"`
	Dashboards []dashboard.Dashboard `json:"dashboards"`
}

type libraryService interface {
	Library() *dashboard.Library
}

// LibraryQuery lists folders and saved dashboards.
type LibraryQuery struct {
	service libraryService
}

// NewLibraryQuery builds the query.
func NewLibraryQuery(service libraryService) *LibraryQuery {
	return &LibraryQuery{service: service}
}

var _ gocommand.Querier[LibraryInput, LibraryView] = (*LibraryQuery)(nil)

// Query returns copies of the library contents.
func (q *LibraryQuery) Query(_ context.Context, input LibraryInput) (LibraryView, error) {
	lib := q.service.Library()
	view := LibraryView{Folders: lib.Folders()}
	if input.FolderID != "" {
		view.Dashboards = lib.DashboardsInFolder(input.FolderID)
	} else {
		view.Dashboards = lib.Dashboards()
	}
	return view, nil
}

type catalogService interface {
	Catalog() *dashboard.Catalog
}

// CatalogQuery lists the registered widget types.
type CatalogQuery struct {
	service catalogService
}

// NewCatalogQuery builds the query.
func NewCatalogQuery(service catalogService) *CatalogQuery {
	return &CatalogQuery{service: service}
}

var _ gocommand.Querier[struct{}, []dashboard.CatalogEntry] = (*CatalogQuery)(nil)

// Query returns the catalog entries in registration order.
func (q *CatalogQuery) Query(context.Context, struct{}) ([]dashboard.CatalogEntry, error) {
	return q.service.Catalog().Entries(), nil
}
