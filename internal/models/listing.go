package models

import "time"

// AuctionStatus is the lifecycle state of a marketplace listing.
type AuctionStatus string

const (
	StatusActive  AuctionStatus = "active"
	StatusSold    AuctionStatus = "sold"
	StatusEnded   AuctionStatus = "ended"
	StatusUnknown AuctionStatus = "unknown"
)

// PriceInfo holds the price signals extracted from a listing page.
type PriceInfo struct {
	CurrentBid string `json:"current_bid"`
	SoldPrice  string `json:"sold_price"`
	ReserveMet bool   `json:"reserve_met"`
	NoReserve  bool   `json:"no_reserve"`
}

// BaTListing is the raw extraction result for one Bring a Trailer listing
// page. Fields are best-effort: a miss leaves the zero value.
type BaTListing struct {
	URL       string    `json:"url"`
	ListingID string    `json:"listing_id"`
	ScrapedAt time.Time `json:"scraped_at"`

	Title string `json:"title"`
	Year  int    `json:"year"`

	// VIN is a real 17-character VIN, or a synthetic tracking identifier
	// derived from the listing slug when Synthetic is true.
	VIN       string `json:"vin"`
	Synthetic bool   `json:"synthetic"`

	Mileage  string        `json:"mileage"`
	Location string        `json:"location"`
	Status   AuctionStatus `json:"auction_status"`

	// EndDate is zero when no end date could be extracted.
	EndDate time.Time `json:"end_date"`

	Price          PriceInfo         `json:"price_info"`
	Description    string            `json:"description"`
	Specifications map[string]string `json:"specifications"`
	Features       []string          `json:"features"`
	Photos         []string          `json:"photos"`
}

// InventoryRecord is the canonical, flat inventory shape keyed by VIN.
// Marketplace-specific fields carry a bat_ prefix so they cannot collide
// with fields contributed by other data sources during a later merge.
type InventoryRecord struct {
	VIN       string `json:"vin"`
	Synthetic bool   `json:"synthetic"`

	Make         string `json:"make"`
	Model        string `json:"model"`
	ModelYear    string `json:"model_year"`
	Manufacturer string `json:"manufacturer"`

	BodyClass       string `json:"body_class"`
	Doors           string `json:"doors"`
	FuelType        string `json:"fuel_type"`
	EngineCylinders string `json:"engine_cylinders"`
	DisplacementL   string `json:"displacement_l"`
	DriveType       string `json:"drive_type"`
	Transmission    string `json:"transmission"`

	BaTListingID     string   `json:"bat_listing_id"`
	BaTURL           string   `json:"bat_url"`
	BaTTitle         string   `json:"bat_title"`
	BaTMileage       string   `json:"bat_mileage"`
	BaTLocation      string   `json:"bat_location"`
	BaTAuctionStatus string   `json:"bat_auction_status"`
	BaTEndDate       string   `json:"bat_end_date"`
	BaTDescription   string   `json:"bat_description"`
	BaTFeatures      []string `json:"bat_features"`
	BaTPhotoCount    int      `json:"bat_photo_count"`

	BaTCurrentBid string `json:"bat_current_bid"`
	BaTReserveMet bool   `json:"bat_reserve_met"`
	BaTNoReserve  bool   `json:"bat_no_reserve"`
	BaTSoldPrice  string `json:"bat_sold_price"`

	Source       string `json:"source"`
	FirstScraped string `json:"first_scraped"`
	LastUpdated  string `json:"last_updated"`
	PriceUpdated string `json:"price_updated,omitempty"`
	ScrapeCount  int    `json:"scrape_count"`

	AgeYears  int  `json:"age_years"`
	IsClassic bool `json:"is_classic"`
	IsVintage bool `json:"is_vintage"`
}

// ScrapeMetadata carries the counters for one scrape run.
type ScrapeMetadata struct {
	ScrapeStarted     string  `json:"scrape_started"`
	ScrapeCompleted   string  `json:"scrape_completed"`
	RuntimeMinutes    float64 `json:"runtime_minutes"`
	ListingsFound     int     `json:"total_listings_found"`
	ListingsScraped   int     `json:"total_listings_scraped"`
	SkippedTooOld     int     `json:"listings_skipped_too_old"`
	SkippedDuplicate  int     `json:"listings_skipped_duplicate"`
	SkippedOutOfScope int     `json:"listings_skipped_out_of_scope"`
	ListingsWithVINs  int     `json:"listings_with_vins"`
	SyntheticIDs      int     `json:"synthetic_ids"`
	Source            string  `json:"source"`
	Target            string  `json:"target"`
	Error             string  `json:"error,omitempty"`
}

// ScrapeResult is what one run of the discovery + extraction engine returns.
// A failed run still produces a valid result with accurate counters.
type ScrapeResult struct {
	Metadata ScrapeMetadata     `json:"metadata"`
	Listings []*InventoryRecord `json:"listings"`
}
