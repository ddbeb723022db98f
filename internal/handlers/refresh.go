package handlers

import (
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"vinventory/internal/config"
	"vinventory/internal/inventory"
	"vinventory/internal/scraper"
)

// RefreshHandler triggers a background scrape pass and merges the results
// into the store. Only one pass runs at a time.
type RefreshHandler struct {
	cfg     *config.Config
	store   *inventory.Store
	running atomic.Bool
}

// NewRefreshHandler creates a refresh handler.
func NewRefreshHandler(cfg *config.Config, store *inventory.Store) *RefreshHandler {
	return &RefreshHandler{cfg: cfg, store: store}
}

// TriggerRefresh kicks off a scrape in the background. A full pass can
// take most of an hour, so the request returns immediately with 202.
func (h *RefreshHandler) TriggerRefresh(c *gin.Context) {
	if !h.running.CompareAndSwap(false, true) {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"message": "A scrape is already running",
		})
		return
	}

	go func() {
		defer h.running.Store(false)

		result := scraper.NewBaTScraper(h.cfg).Run()
		if result.Metadata.Error != "" {
			log.Printf("Background scrape failed: %s", result.Metadata.Error)
			return
		}

		merge, err := h.store.Upsert(result.Listings, time.Now())
		if err != nil {
			log.Printf("Failed to merge scrape results: %v", err)
			return
		}
		log.Printf("Background scrape merged: %d added, %d updated", merge.Added, merge.Updated)

		if err := h.store.WriteSnapshot(h.cfg.OutputPath, time.Now()); err != nil {
			log.Printf("Failed to write inventory snapshot: %v", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Scrape started",
	})
}
