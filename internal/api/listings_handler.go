package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/offplan-catalog-api/internal/config"
	"github.com/offplan-catalog-api/internal/models"
	"github.com/offplan-catalog-api/internal/query"
	"github.com/rs/zerolog"
)

// ListingsHandler serves listing queries and the shared view state.
type ListingsHandler struct {
	deps *Deps
	cfg  *config.Config
	log  zerolog.Logger
}

// NewListingsHandler creates a listings handler
func NewListingsHandler(deps *Deps, cfg *config.Config, log zerolog.Logger) *ListingsHandler {
	return &ListingsHandler{deps: deps, cfg: cfg, log: log}
}

// listingView is one rendered listing: the normalized model plus the
// position-keyed fallback cover the rendering surface substitutes when the
// primary image fails.
type listingView struct {
	models.Listing
	FallbackImage string `json:"fallback_image"`
}

// List is a stateless query over the current catalog.
//
// GET /v1/listings?community=&developer=&status=&q=&sort=
func (h *ListingsHandler) List(c *gin.Context) {
	filter := query.Filter{
		Community:   c.Query("community"),
		Developer:   c.Query("developer"),
		StatusLabel: c.Query("status"),
		FreeText:    c.Query("q"),
	}
	sortKey := query.ParseSortKey(c.Query("sort"))

	ordered := query.Apply(h.deps.Store.Listings(), filter, sortKey)

	c.JSON(http.StatusOK, gin.H{
		"listings": h.render(ordered),
		"total":    len(ordered),
		"sort":     sortKey,
	})
}

// Get returns one listing by ID, including its retained raw feed record.
//
// GET /v1/listings/:id
func (h *ListingsHandler) Get(c *gin.Context) {
	id := c.Param("id")
	for _, l := range h.deps.Store.Listings() {
		if l.ID == id {
			c.JSON(http.StatusOK, gin.H{
				"listing": l,
				"raw":     json.RawMessage(l.Raw),
			})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
}

// View returns the current view state and the query result it implies.
//
// GET /v1/view
func (h *ListingsHandler) View(c *gin.Context) {
	state := h.deps.Selection.State()
	ordered := query.Apply(h.deps.Store.Listings(), state.Filter, state.Sort)

	c.JSON(http.StatusOK, gin.H{
		"state":      state,
		"listings":   h.render(ordered),
		"total":      len(ordered),
		"load_error": h.deps.Store.LastError(),
	})
}

// setViewRequest is the body of PUT /v1/view.
type setViewRequest struct {
	Filter query.Filter `json:"filter"`
	Sort   string       `json:"sort"`
}

// SetView replaces the filter and sort state. Changing the query by hand
// clears any selection.
//
// PUT /v1/view
func (h *ListingsHandler) SetView(c *gin.Context) {
	var req setViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	state := h.deps.Selection.SetQuery(req.Filter, query.ParseSortKey(req.Sort))
	c.JSON(http.StatusOK, gin.H{"state": state})
}

// render attaches the deterministic fallback cover by rendered position.
func (h *ListingsHandler) render(ordered []models.Listing) []listingView {
	images := h.cfg.Catalog.FallbackImages
	views := make([]listingView, len(ordered))
	for i, l := range ordered {
		views[i] = listingView{Listing: l}
		if len(images) > 0 {
			views[i].FallbackImage = images[i%len(images)]
		}
	}
	return views
}
