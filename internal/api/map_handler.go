package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/offplan-catalog-api/internal/config"
	"github.com/offplan-catalog-api/internal/query"
	"github.com/rs/zerolog"
)

// MapHandler serves the pin projections the map widget consumes.
type MapHandler struct {
	deps *Deps
	cfg  *config.Config
	log  zerolog.Logger
}

// NewMapHandler creates a map handler
func NewMapHandler(deps *Deps, cfg *config.Config, log zerolog.Logger) *MapHandler {
	return &MapHandler{deps: deps, cfg: cfg, log: log}
}

// Pins returns the geolocated listings of the current view, capped at the
// configured ceiling (first-N in sorted order), plus the active selection ID
// for highlight styling. A smaller limit may be requested; the cap is a hard
// ceiling.
//
// GET /v1/map/pins?limit=
func (h *MapHandler) Pins(c *gin.Context) {
	limit := h.cfg.Catalog.PinCap
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n < limit {
			limit = n
		}
	}

	state := h.deps.Selection.State()
	ordered := query.Apply(h.deps.Store.Listings(), state.Filter, state.Sort)
	pins := query.Pins(ordered, limit)

	c.JSON(http.StatusOK, gin.H{
		"pins":        pins,
		"total":       len(pins),
		"selected_id": state.SelectedID,
	})
}
