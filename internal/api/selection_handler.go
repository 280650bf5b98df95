package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// SelectionHandler links a chosen listing to the filter state.
type SelectionHandler struct {
	deps *Deps
	log  zerolog.Logger
}

// NewSelectionHandler creates a selection handler
func NewSelectionHandler(deps *Deps, log zerolog.Logger) *SelectionHandler {
	return &SelectionHandler{deps: deps, log: log}
}

// selectRequest is the body of POST /v1/selection.
type selectRequest struct {
	ID string `json:"id"`
}

// Select focuses the view on one listing: filters are overwritten to match
// its community, developer, and status, and the free-text query is cleared.
//
// POST /v1/selection
func (h *SelectionHandler) Select(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return
	}

	for _, l := range h.deps.Store.Listings() {
		if l.ID == req.ID {
			state := h.deps.Selection.Select(l)
			c.JSON(http.StatusOK, gin.H{"state": state})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
}

// Reset clears the selection and all filters and restores the default sort.
//
// DELETE /v1/selection
func (h *SelectionHandler) Reset(c *gin.Context) {
	state := h.deps.Selection.Reset()
	c.JSON(http.StatusOK, gin.H{"state": state})
}
