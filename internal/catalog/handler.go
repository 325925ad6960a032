package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/HerbHall/cinelens/pkg/models"
)

// LensListResponse is the response for GET /api/v1/catalog/lenses.
type LensListResponse struct {
	Count  int           `json:"count"`
	Lenses []models.Lens `json:"lenses"`
}

// GroupListResponse is the response for GET /api/v1/catalog/groups.
type GroupListResponse struct {
	Count  int         `json:"count"`
	Groups []LensGroup `json:"groups"`
}

// LensDetailResponse is the response for GET /api/v1/catalog/lenses/{id}.
type LensDetailResponse struct {
	Lens               models.Lens        `json:"lens"`
	FocalCategory      FocalCategory      `json:"focal_category"`
	LensFormatCategory LensFormatCategory `json:"lens_format_category"`
	Rentals            []models.Rental    `json:"rentals"`
}

// Reloader reloads the catalog from its configured source.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Handler serves the catalog API.
type Handler struct {
	engine   *Engine
	reloader Reloader
	logger   *zap.Logger
}

// NewHandler creates a new catalog API handler. reloader may be nil, in which
// case POST /catalog/reload is not registered.
func NewHandler(engine *Engine, reloader Reloader, logger *zap.Logger) *Handler {
	return &Handler{engine: engine, reloader: reloader, logger: logger}
}

// RegisterRoutes implements server.RouteRegistrar.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/catalog/lenses", h.handleListLenses)
	mux.HandleFunc("GET /api/v1/catalog/lenses/{id}", h.handleGetLens)
	mux.HandleFunc("GET /api/v1/catalog/groups", h.handleListGroups)
	mux.HandleFunc("GET /api/v1/catalog/formats", h.handleListFormats)
	mux.HandleFunc("GET /api/v1/catalog/cameras", h.handleListCameras)
	mux.HandleFunc("GET /api/v1/catalog/cameras/{id}", h.handleGetCamera)
	mux.HandleFunc("GET /api/v1/catalog/cameras/{id}/formats", h.handleCameraFormats)
	mux.HandleFunc("GET /api/v1/catalog/rentals", h.handleListRentals)
	mux.HandleFunc("GET /api/v1/catalog/rentals/{id}/lenses", h.handleRentalLenses)
	mux.HandleFunc("GET /api/v1/catalog/compatibility", h.handleCompatibility)
	if h.reloader != nil {
		mux.HandleFunc("POST /api/v1/catalog/reload", h.handleReload)
	}
}

// handleListLenses returns the filtered lens list.
//
//	@Summary		List lenses
//	@Description	Returns catalog lenses matching the query, sorted by display name.
//	@Tags			catalog
//	@Produce		json
//	@Param			q query string false "Search text (case and accent insensitive)"
//	@Param			format query string false "Exact lens format"
//	@Param			focal query string false "Focal category (all, ultra_wide, wide, standard, tele, super_tele)"
//	@Param			lens_format query string false "Coverage category (s16, s35, ff, vv, lf, mft, other)"
//	@Param			manufacturer query string false "Manufacturer"
//	@Param			rentable query bool false "Only lenses stocked by a rental house"
//	@Param			rental query string false "Only lenses stocked by this rental house"
//	@Success		200 {object} LensListResponse
//	@Failure		400 {object} map[string]any
//	@Failure		500 {object} map[string]any
//	@Router			/catalog/lenses [get]
func (h *Handler) handleListLenses(w http.ResponseWriter, r *http.Request) {
	c, err := ParseCriteria(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	lenses, err := h.engine.Lenses(c)
	if err != nil {
		h.internalError(w, "failed to filter lenses", err)
		return
	}
	writeJSON(w, http.StatusOK, LensListResponse{Count: len(lenses), Lenses: lenses})
}

// handleListGroups returns the filtered lenses grouped by manufacturer and series.
//
//	@Summary		List lens groups
//	@Tags			catalog
//	@Produce		json
//	@Success		200 {object} GroupListResponse
//	@Failure		400 {object} map[string]any
//	@Router			/catalog/groups [get]
func (h *Handler) handleListGroups(w http.ResponseWriter, r *http.Request) {
	c, err := ParseCriteria(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	groups, err := h.engine.Groups(c)
	if err != nil {
		h.internalError(w, "failed to group lenses", err)
		return
	}
	writeJSON(w, http.StatusOK, GroupListResponse{Count: len(groups), Groups: groups})
}

// handleGetLens returns a lens with its classification and rental houses.
//
//	@Summary		Get lens
//	@Tags			catalog
//	@Produce		json
//	@Param			id path string true "Lens ID"
//	@Success		200 {object} LensDetailResponse
//	@Failure		404 {object} map[string]any
//	@Router			/catalog/lenses/{id} [get]
func (h *Handler) handleGetLens(w http.ResponseWriter, r *http.Request) {
	idx, err := h.engine.Index()
	if err != nil {
		h.internalError(w, "failed to load catalog", err)
		return
	}
	lens, err := idx.Lens(r.PathValue("id"))
	if err != nil {
		h.lookupError(w, err)
		return
	}
	rentals := idx.RentalsForLens(lens.ID)
	if rentals == nil {
		rentals = []models.Rental{}
	}
	writeJSON(w, http.StatusOK, LensDetailResponse{
		Lens:               lens,
		FocalCategory:      ClassifyFocal(ParseMainFocal(lens.FocalLength)),
		LensFormatCategory: ClassifyLensFormat(lens.LensFormatCategory),
		Rentals:            rentals,
	})
}

// handleListFormats returns the distinct lens formats.
//
//	@Summary		List lens formats
//	@Tags			catalog
//	@Produce		json
//	@Success		200 {array} string
//	@Router			/catalog/formats [get]
func (h *Handler) handleListFormats(w http.ResponseWriter, _ *http.Request) {
	formats, err := h.engine.Formats()
	if err != nil {
		h.internalError(w, "failed to list formats", err)
		return
	}
	writeJSON(w, http.StatusOK, formats)
}

// handleListCameras returns all cameras.
//
//	@Summary		List cameras
//	@Tags			catalog
//	@Produce		json
//	@Success		200 {array} models.Camera
//	@Router			/catalog/cameras [get]
func (h *Handler) handleListCameras(w http.ResponseWriter, _ *http.Request) {
	cameras, err := h.engine.Cameras()
	if err != nil {
		h.internalError(w, "failed to list cameras", err)
		return
	}
	writeJSON(w, http.StatusOK, cameras)
}

func (h *Handler) handleGetCamera(w http.ResponseWriter, r *http.Request) {
	camera, err := h.engine.Camera(r.PathValue("id"))
	if err != nil {
		h.lookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, camera)
}

func (h *Handler) handleCameraFormats(w http.ResponseWriter, r *http.Request) {
	formats, err := h.engine.RecordingFormats(r.PathValue("id"))
	if err != nil {
		h.lookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, formats)
}

// handleListRentals returns all rental houses.
//
//	@Summary		List rental houses
//	@Tags			catalog
//	@Produce		json
//	@Success		200 {array} models.Rental
//	@Router			/catalog/rentals [get]
func (h *Handler) handleListRentals(w http.ResponseWriter, _ *http.Request) {
	rentals, err := h.engine.Rentals()
	if err != nil {
		h.internalError(w, "failed to list rentals", err)
		return
	}
	writeJSON(w, http.StatusOK, rentals)
}

func (h *Handler) handleRentalLenses(w http.ResponseWriter, r *http.Request) {
	c, err := ParseCriteria(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	lenses, err := h.engine.RentalLenses(r.PathValue("id"), c)
	if err != nil {
		h.lookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, LensListResponse{Count: len(lenses), Lenses: lenses})
}

// handleCompatibility checks lens coverage against a recording format, or
// against every format of a camera.
//
//	@Summary		Check lens coverage
//	@Tags			catalog
//	@Produce		json
//	@Param			lens query string true "Lens ID"
//	@Param			format query string false "Recording format ID"
//	@Param			camera query string false "Camera ID"
//	@Success		200 {object} FormatVerdict
//	@Failure		400 {object} map[string]any
//	@Failure		404 {object} map[string]any
//	@Router			/catalog/compatibility [get]
func (h *Handler) handleCompatibility(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lensID, formatID, cameraID := q.Get("lens"), q.Get("format"), q.Get("camera")

	switch {
	case lensID == "":
		writeError(w, http.StatusBadRequest, "lens is required")
	case formatID != "":
		v, err := h.engine.Compatibility(lensID, formatID)
		if err != nil {
			h.lookupError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	case cameraID != "":
		v, err := h.engine.CameraCompatibility(lensID, cameraID)
		if err != nil {
			h.lookupError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	default:
		writeError(w, http.StatusBadRequest, "format or camera is required")
	}
}

func (h *Handler) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := h.reloader.Reload(r.Context()); err != nil {
		h.logger.Warn("catalog reload request failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "catalog reload failed, previous catalog kept")
		return
	}
	idx, err := h.engine.Index()
	if err != nil {
		h.internalError(w, "failed to load catalog", err)
		return
	}
	snap := idx.Snapshot()
	writeJSON(w, http.StatusOK, map[string]int{
		"lenses":  len(snap.Lenses),
		"cameras": len(snap.Cameras),
		"rentals": len(snap.Rentals),
	})
}

// -- helpers --

func (h *Handler) lookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrLensNotFound),
		errors.Is(err, ErrCameraNotFound),
		errors.Is(err, ErrFormatNotFound),
		errors.Is(err, ErrRentalNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		h.internalError(w, "catalog lookup failed", err)
	}
}

func (h *Handler) internalError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, zap.Error(err))
	writeError(w, http.StatusInternalServerError, msg)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":   "https://cinelens.dev/problems/" + http.StatusText(status),
		"title":  http.StatusText(status),
		"status": status,
		"detail": detail,
	})
}
