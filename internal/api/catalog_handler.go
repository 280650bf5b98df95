package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CatalogHandler serves facets, stats, and the manual refresh trigger.
type CatalogHandler struct {
	deps *Deps
	log  zerolog.Logger
}

// NewCatalogHandler creates a catalog handler
func NewCatalogHandler(deps *Deps, log zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{deps: deps, log: log}
}

// Facets returns the distinct filter-option values of the current catalog.
//
// GET /v1/facets
func (h *CatalogHandler) Facets(c *gin.Context) {
	c.JSON(http.StatusOK, h.deps.Store.Facets())
}

// Stats returns catalog stats plus the last load outcome.
//
// GET /v1/stats
func (h *CatalogHandler) Stats(c *gin.Context) {
	resp := gin.H{
		"generation": h.deps.Store.Generation(),
		"listings":   0,
		"load_error": h.deps.Store.LastError(),
		"timestamp":  time.Now().Format(time.RFC3339),
	}
	if snap := h.deps.Store.Snapshot(); snap != nil {
		resp["listings"] = len(snap.Listings)
		resp["load_id"] = snap.LoadID
		resp["fetched_at"] = snap.FetchedAt.Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, resp)
}

// Refresh triggers one full feed load. The load runs in the background; its
// outcome lands on /v1/stats. A failed load is not retried.
//
// POST /v1/refresh
func (h *CatalogHandler) Refresh(c *gin.Context) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if _, err := h.deps.Loader.Load(ctx); err != nil {
			h.log.Debug().Err(err).Msg("Manual refresh failed")
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"status": "refresh started"})
}
