package inventory

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"vinventory/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS inventory (
    vin           TEXT PRIMARY KEY,
    synthetic     INTEGER NOT NULL DEFAULT 0,
    model_year    TEXT NOT NULL DEFAULT '',
    status        TEXT NOT NULL DEFAULT 'unknown',
    current_bid   TEXT NOT NULL DEFAULT '',
    sold_price    TEXT NOT NULL DEFAULT '',
    first_scraped TEXT NOT NULL,
    last_updated  TEXT NOT NULL,
    price_updated TEXT NOT NULL DEFAULT '',
    scrape_count  INTEGER NOT NULL DEFAULT 1,
    record        TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_inventory_status ON inventory(status);
CREATE INDEX IF NOT EXISTS idx_inventory_year ON inventory(model_year);
`

// Store persists inventory records in SQLite, keyed by VIN. The full
// record travels as a JSON document alongside the queryable key columns,
// so schema churn in the record shape never needs a migration.
type Store struct {
	db *sql.DB
}

// NewStore opens (creating if needed) the inventory database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_cache_size=10000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single writer connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// MergeResult reports what an Upsert batch did.
type MergeResult struct {
	Added   int
	Updated int
}

// Upsert merges fresh records into the inventory. An existing VIN keeps
// its first_scraped stamp and grows its scrape_count; price_updated is
// stamped only when a price field actually changed. Records without a VIN
// are skipped.
func (s *Store) Upsert(records []*models.InventoryRecord, now time.Time) (MergeResult, error) {
	var result MergeResult
	stamp := now.Format(time.RFC3339)

	tx, err := s.db.Begin()
	if err != nil {
		return result, fmt.Errorf("failed to begin merge: %w", err)
	}
	defer tx.Rollback()

	for _, rec := range records {
		if rec.VIN == "" {
			continue
		}

		existing, err := getTx(tx, rec.VIN)
		if err != nil {
			return result, err
		}

		merged := *rec
		merged.LastUpdated = stamp
		if existing != nil {
			merged.FirstScraped = existing.FirstScraped
			merged.ScrapeCount = existing.ScrapeCount + 1
			merged.PriceUpdated = existing.PriceUpdated
			if merged.BaTSoldPrice != existing.BaTSoldPrice ||
				merged.BaTCurrentBid != existing.BaTCurrentBid ||
				merged.BaTAuctionStatus != existing.BaTAuctionStatus {
				merged.PriceUpdated = stamp
			}
			result.Updated++
		} else {
			if merged.FirstScraped == "" {
				merged.FirstScraped = stamp
			}
			merged.ScrapeCount = 1
			result.Added++
		}

		doc, err := json.Marshal(&merged)
		if err != nil {
			return result, fmt.Errorf("failed to encode record %s: %w", rec.VIN, err)
		}

		_, err = tx.Exec(`
			INSERT INTO inventory
			    (vin, synthetic, model_year, status, current_bid, sold_price,
			     first_scraped, last_updated, price_updated, scrape_count, record)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(vin) DO UPDATE SET
			    synthetic     = excluded.synthetic,
			    model_year    = excluded.model_year,
			    status        = excluded.status,
			    current_bid   = excluded.current_bid,
			    sold_price    = excluded.sold_price,
			    first_scraped = excluded.first_scraped,
			    last_updated  = excluded.last_updated,
			    price_updated = excluded.price_updated,
			    scrape_count  = excluded.scrape_count,
			    record        = excluded.record`,
			merged.VIN, boolToInt(merged.Synthetic), merged.ModelYear, merged.BaTAuctionStatus,
			merged.BaTCurrentBid, merged.BaTSoldPrice,
			merged.FirstScraped, merged.LastUpdated, merged.PriceUpdated, merged.ScrapeCount,
			string(doc))
		if err != nil {
			return result, fmt.Errorf("failed to upsert %s: %w", rec.VIN, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return result, fmt.Errorf("failed to commit merge: %w", err)
	}
	return result, nil
}

// Save overwrites one record in place without merge bookkeeping. Used
// when enriching an existing record, not when ingesting scrape results.
func (s *Store) Save(rec *models.InventoryRecord) error {
	if rec.VIN == "" {
		return fmt.Errorf("record has no VIN")
	}
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", rec.VIN, err)
	}
	_, err = s.db.Exec(`
		UPDATE inventory SET
		    synthetic = ?, model_year = ?, status = ?, current_bid = ?, sold_price = ?,
		    first_scraped = ?, last_updated = ?, price_updated = ?, scrape_count = ?, record = ?
		WHERE vin = ?`,
		boolToInt(rec.Synthetic), rec.ModelYear, rec.BaTAuctionStatus, rec.BaTCurrentBid, rec.BaTSoldPrice,
		rec.FirstScraped, rec.LastUpdated, rec.PriceUpdated, rec.ScrapeCount, string(doc),
		rec.VIN)
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", rec.VIN, err)
	}
	return nil
}

// Get returns the record for vin, or nil when absent.
func (s *Store) Get(vin string) (*models.InventoryRecord, error) {
	var doc string
	err := s.db.QueryRow(`SELECT record FROM inventory WHERE vin = ?`, vin).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", vin, err)
	}
	return decodeRecord(doc)
}

// All returns every inventory record sorted by VIN.
func (s *Store) All() ([]*models.InventoryRecord, error) {
	rows, err := s.db.Query(`SELECT record FROM inventory ORDER BY vin`)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	defer rows.Close()

	var records []*models.InventoryRecord
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		rec, err := decodeRecord(doc)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Stats summarizes the inventory contents.
type Stats struct {
	Total     int `json:"total_vehicles"`
	RealVINs  int `json:"real_vins"`
	Synthetic int `json:"synthetic_ids"`
	Sold      int `json:"sold"`
	Active    int `json:"active"`
	Classic   int `json:"classic"`
	Vintage   int `json:"vintage"`
}

// GetStats computes inventory counters in one pass.
func (s *Store) GetStats() (*Stats, error) {
	records, err := s.All()
	if err != nil {
		return nil, err
	}

	stats := &Stats{Total: len(records)}
	for _, rec := range records {
		if rec.Synthetic {
			stats.Synthetic++
		} else {
			stats.RealVINs++
		}
		switch rec.BaTAuctionStatus {
		case string(models.StatusSold):
			stats.Sold++
		case string(models.StatusActive):
			stats.Active++
		}
		if rec.IsClassic {
			stats.Classic++
		}
		if rec.IsVintage {
			stats.Vintage++
		}
	}
	return stats, nil
}

func getTx(tx *sql.Tx, vin string) (*models.InventoryRecord, error) {
	var doc string
	err := tx.QueryRow(`SELECT record FROM inventory WHERE vin = ?`, vin).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", vin, err)
	}
	return decodeRecord(doc)
}

func decodeRecord(doc string) (*models.InventoryRecord, error) {
	var rec models.InventoryRecord
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return &rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
