package handler

import (
	"net/http"
	"strconv"

	"dishdash/internal/catalog"
	"dishdash/internal/model"

	"github.com/rs/zerolog"
)

// MenuHandler serves the dish catalogue listing. The repository is nil when
// the catalogue is disabled.
type MenuHandler struct {
	repo   catalog.Repository
	logger zerolog.Logger
}

// NewMenuHandler creates a new menu handler.
func NewMenuHandler(repo catalog.Repository, logger zerolog.Logger) *MenuHandler {
	return &MenuHandler{
		repo:   repo,
		logger: logger.With().Str("handler", "menu").Logger(),
	}
}

// List handles GET /api/menu requests.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	if h.repo == nil {
		writeError(w, http.StatusServiceUnavailable, model.ErrCatalogUnavailable.Message, h.logger)
		return
	}

	limit := queryInt(r, "limit", 20)
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	dishes, err := h.repo.GetAll(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve menu", h.logger)
		return
	}

	if dishes == nil {
		dishes = []model.Dish{}
	}

	writeJSON(w, http.StatusOK, dishes)
}

func queryInt(r *http.Request, key string, defaultValue int) int {
	if value := r.URL.Query().Get(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
