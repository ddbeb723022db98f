package inventory

import (
	"strconv"
	"time"

	"vinventory/internal/models"
)

// Age thresholds in years for the collector-market classification flags.
const (
	classicAge = 15
	vintageAge = 25
)

// Normalize flattens a raw listing extraction into the canonical inventory
// shape. It is total: any listing, including a zero value, produces a
// valid record. Fields the marketplace cannot tell us are filled with the
// known constants for this model line.
func Normalize(rec *models.BaTListing, now time.Time) *models.InventoryRecord {
	inv := &models.InventoryRecord{
		VIN:       rec.VIN,
		Synthetic: rec.Synthetic,

		Make:         "PORSCHE",
		Model:        "911",
		Manufacturer: "DR. ING. H.C.F. PORSCHE AG",
		BodyClass:    "Coupe",
		Doors:        "2",
		FuelType:     "Gasoline",

		BaTListingID:     rec.ListingID,
		BaTURL:           rec.URL,
		BaTTitle:         rec.Title,
		BaTMileage:       rec.Mileage,
		BaTLocation:      rec.Location,
		BaTAuctionStatus: string(rec.Status),
		BaTDescription:   rec.Description,
		BaTFeatures:      rec.Features,
		BaTPhotoCount:    len(rec.Photos),

		BaTCurrentBid: rec.Price.CurrentBid,
		BaTReserveMet: rec.Price.ReserveMet,
		BaTNoReserve:  rec.Price.NoReserve,
		BaTSoldPrice:  rec.Price.SoldPrice,

		Source:       "bring_a_trailer",
		FirstScraped: now.Format(time.RFC3339),
		LastUpdated:  now.Format(time.RFC3339),
		ScrapeCount:  1,
	}

	if inv.BaTFeatures == nil {
		// Keep bat_features a JSON array rather than null for consumers.
		inv.BaTFeatures = []string{}
	}
	if rec.Status == models.StatusUnknown || rec.Status == "" {
		inv.BaTAuctionStatus = string(models.StatusUnknown)
	}
	if !rec.EndDate.IsZero() {
		inv.BaTEndDate = rec.EndDate.Format(time.RFC3339)
	}
	if spec := rec.Specifications; spec != nil {
		inv.Transmission = spec["transmission"]
		inv.DriveType = spec["drive_type"]
		inv.DisplacementL = spec["engine"]
	}
	// Every 911 generation runs a flat six.
	inv.EngineCylinders = "6"

	if rec.Year > 0 {
		inv.ModelYear = strconv.Itoa(rec.Year)
		inv.AgeYears = now.Year() - rec.Year
		inv.IsClassic = inv.AgeYears > classicAge
		inv.IsVintage = inv.AgeYears > vintageAge
	}

	return inv
}
