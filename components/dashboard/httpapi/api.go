package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/goliatone/go-dashcompose/components/dashboard"
	"github.com/goliatone/go-dashcompose/components/dashboard/commands"
	"github.com/goliatone/go-dashcompose/components/dashboard/queries"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ViewerResolver extracts the viewer from a request.
type ViewerResolver func(*http.Request) dashboard.ViewerContext

// Handlers exposes JSON endpoints backed by an Executor. Ready gates the
// render endpoint; a *dashboard.ConfigError maps to 503.
type Handlers struct {
	API    Executor
	Viewer ViewerResolver
	Ready  func() error
}

// Routes mounts every endpoint on a chi router.
func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/catalog", h.HandleCatalog)
	r.Get("/library", h.HandleLibrary)

	r.Post("/folders", h.HandleCreateFolder)
	r.Patch("/folders/{folderID}", h.HandleUpdateFolder)
	r.Delete("/folders/{folderID}", h.HandleDeleteFolder)

	r.Patch("/dashboards/{dashboardID}", h.HandleUpdateDashboard)
	r.Delete("/dashboards/{dashboardID}", h.HandleDeleteDashboard)

	r.Post("/sessions", h.HandleOpenSession)
	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Get("/", h.HandleSessionState)
		r.Delete("/", h.HandleCloseSession)
		r.Post("/widgets", h.HandleAddWidget)
		r.Post("/embeds", h.HandleSaveEmbed)
		r.Put("/layout", h.HandleLayoutChange)
		r.Post("/snapshot", h.HandleSaveSnapshot)
		r.Post("/load", h.HandleLoadDashboard)
		r.Post("/new", h.HandleNewDashboard)
		r.Put("/theme", h.HandleSetTheme)
		r.Route("/widgets/{instanceID}", func(r chi.Router) {
			r.Delete("/", h.HandleRemoveWidget)
			r.Patch("/style", h.HandleUpdateStyle)
			r.Post("/colors", h.HandleSeriesColor)
			r.Put("/rect", h.HandleResize)
			r.Post("/render", h.HandleRender)
		})
	})
	return r
}

func (h *Handlers) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	entries, err := h.API.Catalog(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handlers) HandleLibrary(w http.ResponseWriter, r *http.Request) {
	view, err := h.API.Library(r.Context(), queries.LibraryInput{FolderID: r.URL.Query().Get("folder_id")})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handlers) HandleCreateFolder(w http.ResponseWriter, r *http.Request) {
	var payload commands.FolderInput
	if !decode(w, r, &payload) {
		return
	}
	payload.Action = commands.FolderCreate
	folder, err := h.API.Folder(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, folder)
}

func (h *Handlers) HandleUpdateFolder(w http.ResponseWriter, r *http.Request) {
	var payload commands.FolderInput
	if !decode(w, r, &payload) {
		return
	}
	payload.Action = commands.FolderUpdate
	payload.FolderID = chi.URLParam(r, "folderID")
	folder, err := h.API.Folder(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, folder)
}

func (h *Handlers) HandleDeleteFolder(w http.ResponseWriter, r *http.Request) {
	input := commands.FolderInput{Action: commands.FolderDelete, FolderID: chi.URLParam(r, "folderID")}
	if _, err := h.API.Folder(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type dashboardPatchRequest struct {
	Name      *string `json:"name,omitempty"`
	FolderID  *string `json:"folder_id,omitempty"`
	IframeURL *string `json:"iframe_url,omitempty"`
}

// HandleUpdateDashboard applies rename, move and iframe changes in that order.
func (h *Handlers) HandleUpdateDashboard(w http.ResponseWriter, r *http.Request) {
	var payload dashboardPatchRequest
	if !decode(w, r, &payload) {
		return
	}
	id := chi.URLParam(r, "dashboardID")
	var actions []commands.DashboardInput
	if payload.Name != nil {
		actions = append(actions, commands.DashboardInput{Action: commands.DashboardRename, DashboardID: id, Name: *payload.Name})
	}
	if payload.FolderID != nil {
		actions = append(actions, commands.DashboardInput{Action: commands.DashboardMove, DashboardID: id, FolderID: *payload.FolderID})
	}
	if payload.IframeURL != nil {
		actions = append(actions, commands.DashboardInput{Action: commands.DashboardIframe, DashboardID: id, IframeURL: *payload.IframeURL})
	}
	if len(actions) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "no dashboard fields to update"})
		return
	}
	var updated dashboard.Dashboard
	for _, action := range actions {
		d, err := h.API.Dashboard(r.Context(), action)
		if err != nil {
			writeError(w, err)
			return
		}
		updated = d
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handlers) HandleDeleteDashboard(w http.ResponseWriter, r *http.Request) {
	input := commands.DashboardInput{Action: commands.DashboardDelete, DashboardID: chi.URLParam(r, "dashboardID")}
	if _, err := h.API.Dashboard(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleOpenSession(w http.ResponseWriter, r *http.Request) {
	state, err := h.API.OpenSession(r.Context(), h.viewer(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, state)
}

func (h *Handlers) HandleSessionState(w http.ResponseWriter, r *http.Request) {
	state, err := h.API.SessionState(r.Context(), queries.SessionStateInput{SessionID: chi.URLParam(r, "sessionID")})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handlers) HandleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.API.CloseSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleAddWidget(w http.ResponseWriter, r *http.Request) {
	var payload commands.AddWidgetInput
	if !decode(w, r, &payload) {
		return
	}
	payload.SessionID = chi.URLParam(r, "sessionID")
	inst, err := h.API.AddWidget(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, inst)
}

func (h *Handlers) HandleSaveEmbed(w http.ResponseWriter, r *http.Request) {
	var payload commands.SaveEmbedInput
	if !decode(w, r, &payload) {
		return
	}
	payload.SessionID = chi.URLParam(r, "sessionID")
	inst, err := h.API.SaveEmbed(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusCreated
	if payload.InstanceID != "" {
		status = http.StatusOK
	}
	writeJSON(w, status, inst)
}

func (h *Handlers) HandleRemoveWidget(w http.ResponseWriter, r *http.Request) {
	input := commands.RemoveWidgetInput{
		SessionID:  chi.URLParam(r, "sessionID"),
		InstanceID: chi.URLParam(r, "instanceID"),
	}
	if err := h.API.RemoveWidget(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleUpdateStyle(w http.ResponseWriter, r *http.Request) {
	var patch dashboard.StylePatch
	if !decode(w, r, &patch) {
		return
	}
	input := commands.UpdateStyleInput{
		SessionID:  chi.URLParam(r, "sessionID"),
		InstanceID: chi.URLParam(r, "instanceID"),
		Patch:      patch,
	}
	if err := h.API.UpdateStyle(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleSeriesColor(w http.ResponseWriter, r *http.Request) {
	var payload commands.SeriesColorInput
	if !decode(w, r, &payload) {
		return
	}
	payload.SessionID = chi.URLParam(r, "sessionID")
	payload.InstanceID = chi.URLParam(r, "instanceID")
	if err := h.API.UpdateSeriesColor(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleResize(w http.ResponseWriter, r *http.Request) {
	var rect dashboard.GridRect
	if !decode(w, r, &rect) {
		return
	}
	input := commands.ResizeInput{
		SessionID:  chi.URLParam(r, "sessionID"),
		InstanceID: chi.URLParam(r, "instanceID"),
		Rect:       rect,
	}
	if err := h.API.Resize(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handlers) HandleRender(w http.ResponseWriter, r *http.Request) {
	if h.Ready != nil {
		if err := h.Ready(); err != nil {
			writeError(w, err)
			return
		}
	}
	var raw dashboard.OptionDocument
	if !decode(w, r, &raw) {
		return
	}
	result, err := h.API.Render(r.Context(), queries.RenderWidgetInput{
		SessionID:  chi.URLParam(r, "sessionID"),
		InstanceID: chi.URLParam(r, "instanceID"),
		Options:    raw,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) HandleLayoutChange(w http.ResponseWriter, r *http.Request) {
	var rects []dashboard.GridRect
	if !decode(w, r, &rects) {
		return
	}
	layout, err := h.API.ChangeLayout(r.Context(), commands.LayoutChangeInput{
		SessionID: chi.URLParam(r, "sessionID"),
		Layout:    rects,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, layout)
}

func (h *Handlers) HandleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	var payload commands.SaveSnapshotInput
	if !decode(w, r, &payload) {
		return
	}
	payload.SessionID = chi.URLParam(r, "sessionID")
	d, err := h.API.SaveSnapshot(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}
	if payload.Mode == commands.SaveAsNew {
		writeJSON(w, http.StatusCreated, d)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleLoadDashboard(w http.ResponseWriter, r *http.Request) {
	var payload commands.LoadDashboardInput
	if !decode(w, r, &payload) {
		return
	}
	payload.SessionID = chi.URLParam(r, "sessionID")
	if err := h.API.LoadDashboard(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	h.HandleSessionState(w, r)
}

func (h *Handlers) HandleNewDashboard(w http.ResponseWriter, r *http.Request) {
	if err := h.API.NewDashboard(r.Context(), commands.NewDashboardInput{SessionID: chi.URLParam(r, "sessionID")}); err != nil {
		writeError(w, err)
		return
	}
	h.HandleSessionState(w, r)
}

func (h *Handlers) HandleSetTheme(w http.ResponseWriter, r *http.Request) {
	var payload commands.SetThemeInput
	if !decode(w, r, &payload) {
		return
	}
	payload.SessionID = chi.URLParam(r, "sessionID")
	if err := h.API.SetTheme(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	h.HandleSessionState(w, r)
}

func (h *Handlers) viewer(r *http.Request) dashboard.ViewerContext {
	if h.Viewer != nil {
		return h.Viewer(r)
	}
	return dashboard.ViewerContext{UserID: r.Header.Get("X-User-ID")}
}

type errorBody struct {
	Error   string   `json:"error"`
	Missing []string `json:"missing,omitempty"`
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	body := errorBody{Error: err.Error()}
	var cfgErr *dashboard.ConfigError
	if errors.As(err, &cfgErr) {
		body.Missing = cfgErr.Missing
	}
	writeJSON(w, StatusFor(err), body)
}

// StatusFor maps dashboard errors onto HTTP status codes.
func StatusFor(err error) int {
	var (
		cfgErr     *dashboard.ConfigError
		persistErr *dashboard.PersistenceError
		schemaErr  *jsonschema.ValidationError
	)
	switch {
	case errors.As(err, &cfgErr):
		return http.StatusServiceUnavailable
	case errors.Is(err, dashboard.ErrSessionNotFound),
		errors.Is(err, dashboard.ErrInstanceNotFound),
		errors.Is(err, dashboard.ErrDashboardNotFound),
		errors.Is(err, dashboard.ErrFolderNotFound):
		return http.StatusNotFound
	case errors.Is(err, dashboard.ErrTypeMismatch),
		errors.Is(err, dashboard.ErrNoActiveDashboard):
		return http.StatusConflict
	case errors.As(err, &schemaErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, dashboard.ErrUnknownWidgetType),
		errors.Is(err, dashboard.ErrInvalidName),
		errors.Is(err, dashboard.ErrInvalidTheme),
		errors.Is(err, dashboard.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.As(err, &persistErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
