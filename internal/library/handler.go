package library

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"

	"github.com/HerbHall/cinelens/internal/catalog"
	"github.com/HerbHall/cinelens/internal/server"
	"github.com/HerbHall/cinelens/internal/services"
	"github.com/HerbHall/cinelens/pkg/models"
)

// SetResponse is the response for favorites and comparison endpoints.
type SetResponse struct {
	IDs    []string      `json:"ids"`
	Lenses []models.Lens `json:"lenses"`
}

// ProjectListResponse is the response for GET /api/v1/library/projects.
type ProjectListResponse struct {
	Projects []models.Project `json:"projects"`
	Total    int              `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

// eventWriteTimeout bounds a single websocket write.
const eventWriteTimeout = 5 * time.Second

// Handler serves the library API.
type Handler struct {
	lib    *Library
	engine *catalog.Engine
	logger *zap.Logger
}

// NewHandler creates a library API handler. The engine is used to resolve
// ids into lenses and to reject unknown lenses and cameras.
func NewHandler(lib *Library, engine *catalog.Engine, logger *zap.Logger) *Handler {
	return &Handler{lib: lib, engine: engine, logger: logger}
}

// RegisterRoutes implements server.RouteRegistrar.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/library/favorites", h.handleFavorites)
	mux.HandleFunc("POST /api/v1/library/favorites/{id}/toggle", h.handleToggleFavorite)
	mux.HandleFunc("GET /api/v1/library/comparison", h.handleComparison)
	mux.HandleFunc("POST /api/v1/library/comparison/{id}/toggle", h.handleToggleComparison)
	mux.HandleFunc("DELETE /api/v1/library/comparison", h.handleClearComparison)

	mux.HandleFunc("GET /api/v1/library/projects", h.handleListProjects)
	mux.HandleFunc("POST /api/v1/library/projects", h.handleCreateProject)
	mux.HandleFunc("GET /api/v1/library/projects/{id}", h.handleGetProject)
	mux.HandleFunc("PATCH /api/v1/library/projects/{id}", h.handleUpdateProject)
	mux.HandleFunc("DELETE /api/v1/library/projects/{id}", h.handleDeleteProject)
	mux.HandleFunc("POST /api/v1/library/projects/{id}/lenses/{lensID}", h.handleAddLens)
	mux.HandleFunc("DELETE /api/v1/library/projects/{id}/lenses/{lensID}", h.handleRemoveLens)
	mux.HandleFunc("POST /api/v1/library/projects/{id}/cameras/{cameraID}", h.handleAddCamera)
	mux.HandleFunc("DELETE /api/v1/library/projects/{id}/cameras/{cameraID}", h.handleRemoveCamera)

	mux.HandleFunc("GET /api/v1/library/events", h.handleEvents)
}

// handleFavorites returns the favorite lenses.
//
//	@Summary		List favorites
//	@Tags			library
//	@Produce		json
//	@Success		200 {object} SetResponse
//	@Router			/library/favorites [get]
func (h *Handler) handleFavorites(w http.ResponseWriter, r *http.Request) {
	idx, err := h.engine.Index()
	if err != nil {
		h.internalError(w, r, "failed to load catalog", err)
		return
	}
	writeJSON(w, http.StatusOK, SetResponse{IDs: h.lib.Favorites(), Lenses: h.lib.FavoriteLenses(idx)})
}

// handleToggleFavorite adds or removes a favorite lens.
//
//	@Summary		Toggle favorite
//	@Tags			library
//	@Produce		json
//	@Param			id path string true "Lens ID"
//	@Success		200 {object} SetResponse
//	@Failure		404 {object} map[string]any
//	@Router			/library/favorites/{id}/toggle [post]
func (h *Handler) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	idx, ok := h.lensForAdd(w, r, id, h.lib.IsFavorite(id))
	if !ok {
		return
	}
	if _, err := h.lib.ToggleFavorite(r.Context(), id); err != nil {
		h.internalError(w, r, "failed to toggle favorite", err)
		return
	}
	writeJSON(w, http.StatusOK, SetResponse{IDs: h.lib.Favorites(), Lenses: h.lib.FavoriteLenses(idx)})
}

// handleComparison returns the lenses picked for comparison.
//
//	@Summary		List comparison set
//	@Tags			library
//	@Produce		json
//	@Success		200 {object} SetResponse
//	@Router			/library/comparison [get]
func (h *Handler) handleComparison(w http.ResponseWriter, r *http.Request) {
	idx, err := h.engine.Index()
	if err != nil {
		h.internalError(w, r, "failed to load catalog", err)
		return
	}
	writeJSON(w, http.StatusOK, SetResponse{IDs: h.lib.Comparison(), Lenses: h.lib.ComparisonLenses(idx)})
}

// handleToggleComparison adds or removes a lens from the comparison set.
//
//	@Summary		Toggle comparison
//	@Tags			library
//	@Produce		json
//	@Param			id path string true "Lens ID"
//	@Success		200 {object} SetResponse
//	@Failure		404 {object} map[string]any
//	@Failure		409 {object} map[string]any
//	@Router			/library/comparison/{id}/toggle [post]
func (h *Handler) handleToggleComparison(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	idx, ok := h.lensForAdd(w, r, id, h.lib.InComparison(id))
	if !ok {
		return
	}
	if _, err := h.lib.ToggleComparison(r.Context(), id); err != nil {
		if errors.Is(err, ErrComparisonFull) {
			server.Conflict(w, "comparison set already holds "+strconv.Itoa(catalog.MaxComparison)+" lenses", r.URL.Path)
			return
		}
		h.internalError(w, r, "failed to toggle comparison", err)
		return
	}
	writeJSON(w, http.StatusOK, SetResponse{IDs: h.lib.Comparison(), Lenses: h.lib.ComparisonLenses(idx)})
}

// handleClearComparison empties the comparison set.
//
//	@Summary		Clear comparison set
//	@Tags			library
//	@Success		204
//	@Router			/library/comparison [delete]
func (h *Handler) handleClearComparison(w http.ResponseWriter, r *http.Request) {
	if err := h.lib.ClearComparison(r.Context()); err != nil {
		h.internalError(w, r, "failed to clear comparison", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// lensForAdd loads the index and, unless the id is being removed, checks
// that the lens exists. It writes the error response itself.
func (h *Handler) lensForAdd(w http.ResponseWriter, r *http.Request, id string, removing bool) (*catalog.Index, bool) {
	idx, err := h.engine.Index()
	if err != nil {
		h.internalError(w, r, "failed to load catalog", err)
		return nil, false
	}
	if removing {
		return idx, true
	}
	if _, err := idx.Lens(id); err != nil {
		server.NotFound(w, "lens "+id+" not found", r.URL.Path)
		return nil, false
	}
	return idx, true
}

// handleListProjects returns a page of projects.
//
//	@Summary		List projects
//	@Tags			library
//	@Produce		json
//	@Param			q query string false "Name substring"
//	@Param			lens query string false "Only projects containing this lens"
//	@Param			camera query string false "Only projects containing this camera"
//	@Param			sort query string false "date, name, created_at or updated_at"
//	@Param			order query string false "asc or desc"
//	@Param			limit query int false "Page size (default 50)"
//	@Param			offset query int false "Results to skip"
//	@Success		200 {object} ProjectListResponse
//	@Failure		400 {object} map[string]any
//	@Router			/library/projects [get]
func (h *Handler) handleListProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := services.ListOptions{SortBy: q.Get("sort"), SortOrder: q.Get("order")}
	var err error
	if opts.Limit, err = intParam(q.Get("limit")); err != nil {
		server.BadRequest(w, "invalid limit", r.URL.Path)
		return
	}
	if opts.Offset, err = intParam(q.Get("offset")); err != nil {
		server.BadRequest(w, "invalid offset", r.URL.Path)
		return
	}
	filter := services.ProjectFilter{Search: q.Get("q"), LensID: q.Get("lens"), CameraID: q.Get("camera")}

	res, err := h.lib.Projects(r.Context(), filter, opts)
	if err != nil {
		h.internalError(w, r, "failed to list projects", err)
		return
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	writeJSON(w, http.StatusOK, ProjectListResponse{
		Projects: res.Items,
		Total:    res.Total,
		Limit:    limit,
		Offset:   opts.Offset,
	})
}

// handleCreateProject creates a project.
//
//	@Summary		Create project
//	@Tags			library
//	@Accept			json
//	@Produce		json
//	@Param			project body ProjectInput true "Project"
//	@Success		201 {object} models.Project
//	@Failure		400 {object} map[string]any
//	@Router			/library/projects [post]
func (h *Handler) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var in ProjectInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		server.BadRequest(w, "invalid request body", r.URL.Path)
		return
	}
	p, err := h.lib.CreateProject(r.Context(), in)
	if err != nil {
		h.projectError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// handleGetProject returns one project.
//
//	@Summary		Get project
//	@Tags			library
//	@Produce		json
//	@Param			id path string true "Project ID"
//	@Success		200 {object} models.Project
//	@Failure		404 {object} map[string]any
//	@Router			/library/projects/{id} [get]
func (h *Handler) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.lib.Project(r.Context(), r.PathValue("id"))
	if err != nil {
		h.projectError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleUpdateProject changes a project's name, notes or date.
//
//	@Summary		Update project
//	@Tags			library
//	@Accept			json
//	@Produce		json
//	@Param			id path string true "Project ID"
//	@Param			patch body ProjectPatch true "Fields to change"
//	@Success		200 {object} models.Project
//	@Failure		400 {object} map[string]any
//	@Failure		404 {object} map[string]any
//	@Router			/library/projects/{id} [patch]
func (h *Handler) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var patch ProjectPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		server.BadRequest(w, "invalid request body", r.URL.Path)
		return
	}
	p, err := h.lib.UpdateProject(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		h.projectError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleDeleteProject removes a project.
//
//	@Summary		Delete project
//	@Tags			library
//	@Param			id path string true "Project ID"
//	@Success		204
//	@Failure		404 {object} map[string]any
//	@Router			/library/projects/{id} [delete]
func (h *Handler) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.lib.DeleteProject(r.Context(), r.PathValue("id")); err != nil {
		h.projectError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAddLens(w http.ResponseWriter, r *http.Request) {
	lensID := r.PathValue("lensID")
	if _, err := h.engine.Lens(lensID); err != nil {
		h.lookupError(w, r, err)
		return
	}
	h.writeProject(w, r)(h.lib.AddLens(r.Context(), r.PathValue("id"), lensID))
}

func (h *Handler) handleRemoveLens(w http.ResponseWriter, r *http.Request) {
	h.writeProject(w, r)(h.lib.RemoveLens(r.Context(), r.PathValue("id"), r.PathValue("lensID")))
}

func (h *Handler) handleAddCamera(w http.ResponseWriter, r *http.Request) {
	cameraID := r.PathValue("cameraID")
	if _, err := h.engine.Camera(cameraID); err != nil {
		h.lookupError(w, r, err)
		return
	}
	h.writeProject(w, r)(h.lib.AddCamera(r.Context(), r.PathValue("id"), cameraID))
}

func (h *Handler) handleRemoveCamera(w http.ResponseWriter, r *http.Request) {
	h.writeProject(w, r)(h.lib.RemoveCamera(r.Context(), r.PathValue("id"), r.PathValue("cameraID")))
}

func (h *Handler) writeProject(w http.ResponseWriter, r *http.Request) func(*models.Project, error) {
	return func(p *models.Project, err error) {
		if err != nil {
			h.projectError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// handleEvents streams library changes over a websocket until the client
// disconnects.
//
//	@Summary		Library change stream
//	@Description	Upgrades to a websocket and sends one JSON Change per committed mutation.
//	@Tags			library
//	@Router			/library/events [get]
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket accept failed", zap.Error(err))
		return
	}
	defer c.CloseNow()

	changes, unsubscribe := h.lib.Subscribe()
	defer unsubscribe()

	// The client never sends; CloseRead handles control frames and cancels
	// ctx when the peer goes away.
	ctx := c.CloseRead(r.Context())

	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				c.Close(websocket.StatusGoingAway, "library closed")
				return
			}
			if err := writeEvent(ctx, c, change); err != nil {
				h.logger.Debug("websocket write failed", zap.Error(err))
				return
			}
		}
	}
}

func writeEvent(ctx context.Context, c *websocket.Conn, change Change) error {
	ctx, cancel := context.WithTimeout(ctx, eventWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, c, change)
}

func (h *Handler) projectError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidProject):
		server.BadRequest(w, err.Error(), r.URL.Path)
	case errors.Is(err, services.ErrNotFound):
		server.NotFound(w, "project not found", r.URL.Path)
	case errors.Is(err, services.ErrAlreadyExists):
		server.Conflict(w, "project already exists", r.URL.Path)
	default:
		h.internalError(w, r, "project operation failed", err)
	}
}

func (h *Handler) lookupError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrLensNotFound), errors.Is(err, catalog.ErrCameraNotFound):
		server.NotFound(w, err.Error(), r.URL.Path)
	default:
		h.internalError(w, r, "catalog lookup failed", err)
	}
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.Error(msg, zap.Error(err), zap.String("path", r.URL.Path))
	server.InternalError(w, msg, r.URL.Path)
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
