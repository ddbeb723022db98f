package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vinventory/internal/decoder"
	"vinventory/internal/inventory"
	"vinventory/internal/models"
	"vinventory/internal/util"
	"vinventory/internal/vin"
)

// InventoryHandler serves the collected Porsche 911 inventory.
type InventoryHandler struct {
	store   *inventory.Store
	decoder *decoder.Client
}

// NewInventoryHandler creates a handler backed by the given store.
func NewInventoryHandler(store *inventory.Store, dec *decoder.Client) *InventoryHandler {
	return &InventoryHandler{store: store, decoder: dec}
}

// ListInventory returns all inventory records, optionally filtered by
// status, classic or vintage flags.
func (h *InventoryHandler) ListInventory(c *gin.Context) {
	records, err := h.store.All()
	if err != nil {
		util.SafeErrorResponse(c, http.StatusInternalServerError, "Failed to load inventory", err)
		return
	}

	status := strings.ToLower(c.Query("status"))
	classic := c.Query("classic") == "true"
	vintage := c.Query("vintage") == "true"

	filtered := make([]*models.InventoryRecord, 0, len(records))
	for _, rec := range records {
		if status != "" && rec.BaTAuctionStatus != status {
			continue
		}
		if classic && !rec.IsClassic {
			continue
		}
		if vintage && !rec.IsVintage {
			continue
		}
		filtered = append(filtered, rec)
	}

	c.JSON(http.StatusOK, gin.H{
		"count":    len(filtered),
		"vehicles": filtered,
	})
}

// GetVehicle returns the record for one VIN.
func (h *InventoryHandler) GetVehicle(c *gin.Context) {
	v := strings.ToUpper(c.Param("vin"))

	rec, err := h.store.Get(v)
	if err != nil {
		util.SafeErrorResponse(c, http.StatusInternalServerError, "Failed to load vehicle", err)
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "Vehicle not found",
		})
		return
	}

	c.JSON(http.StatusOK, rec)
}

// GetStats returns aggregate inventory counters.
func (h *InventoryHandler) GetStats(c *gin.Context) {
	stats, err := h.store.GetStats()
	if err != nil {
		util.SafeErrorResponse(c, http.StatusInternalServerError, "Failed to compute stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// DecodeVehicle decodes a VIN against the NHTSA API. Synthetic tracking
// identifiers are refused before any network call.
func (h *InventoryHandler) DecodeVehicle(c *gin.Context) {
	v := strings.ToUpper(c.Param("vin"))

	if vin.IsSynthetic(v) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"message": "Synthetic identifiers cannot be decoded",
		})
		return
	}
	if !vin.IsValid(v) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid VIN format",
		})
		return
	}

	decoded, err := h.decoder.Decode(v)
	if err != nil {
		util.SafeErrorResponse(c, http.StatusBadGateway, "VIN decode failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"vin":     v,
		"decoded": decoded,
	})
}

// HealthCheck reports service liveness.
func (h *InventoryHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
