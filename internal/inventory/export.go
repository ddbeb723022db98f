package inventory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"vinventory/internal/models"
)

// ExportMetadata describes an exported inventory snapshot.
type ExportMetadata struct {
	LastUpdated   string `json:"last_updated"`
	TotalVehicles int    `json:"total_vehicles"`
	RealVINs      int    `json:"vehicles_with_real_vins"`
	SyntheticIDs  int    `json:"vehicles_with_synthetic_ids"`
	Source        string `json:"source"`
}

// Export is the on-disk snapshot format consumed by downstream tooling.
type Export struct {
	Metadata  ExportMetadata            `json:"metadata"`
	Inventory []*models.InventoryRecord `json:"inventory"`
}

// WriteSnapshot dumps the full inventory to path as indented JSON. The
// file is written via a temp file and rename so readers never observe a
// partial snapshot.
func (s *Store) WriteSnapshot(path string, now time.Time) error {
	records, err := s.All()
	if err != nil {
		return err
	}

	export := Export{
		Metadata: ExportMetadata{
			LastUpdated:   now.Format(time.RFC3339),
			TotalVehicles: len(records),
			Source:        "bring_a_trailer",
		},
		Inventory: records,
	}
	for _, rec := range records {
		if rec.Synthetic {
			export.Metadata.SyntheticIDs++
		} else {
			export.Metadata.RealVINs++
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(&export); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close snapshot file: %w", err)
	}

	return os.Rename(tmp, path)
}
