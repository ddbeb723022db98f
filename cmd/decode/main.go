package main

import (
	"flag"
	"fmt"
	"log"
	"sort"
	"time"

	"vinventory/internal/config"
	"vinventory/internal/decoder"
	"vinventory/internal/inventory"
	"vinventory/internal/vin"
)

// Decodes real VINs in the inventory against the NHTSA vPIC API and folds
// the results back into the stored records. Synthetic identifiers are
// skipped.
func main() {
	cfg := config.Load()

	dbPath := flag.String("db", cfg.DBPath, "path to the SQLite inventory database")
	single := flag.String("vin", "", "decode a single VIN and print the result instead of updating the store")
	flag.Parse()

	client := decoder.NewClient(cfg.NHTSABaseURL)

	if *single != "" {
		decoded, err := client.Decode(*single)
		if err != nil {
			log.Fatalf("Decode failed: %v", err)
		}
		if parts, err := vin.Split(*single); err == nil {
			fmt.Printf("%-40s %s\n", "WMI", parts.WMI)
			fmt.Printf("%-40s %s\n", "VDS", parts.VDS)
			fmt.Printf("%-40s %s\n", "VIS", parts.VIS)
		}
		keys := make([]string, 0, len(decoded))
		for k := range decoded {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("%-40s %s\n", k, decoded[k])
		}
		return
	}

	store, err := inventory.NewStore(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open inventory store: %v", err)
	}
	defer store.Close()

	records, err := store.All()
	if err != nil {
		log.Fatalf("Failed to load inventory: %v", err)
	}

	decoded, skipped, failed := 0, 0, 0
	for _, rec := range records {
		if rec.Synthetic || !vin.IsValid(rec.VIN) {
			skipped++
			continue
		}

		vars, err := client.Decode(rec.VIN)
		if err != nil {
			fmt.Printf("⚠️  %s: %v\n", rec.VIN, err)
			failed++
			continue
		}
		decoder.Enrich(rec, vars)
		rec.LastUpdated = time.Now().Format(time.RFC3339)
		if err := store.Save(rec); err != nil {
			log.Fatalf("Failed to save decoded record %s: %v", rec.VIN, err)
		}
		decoded++
		fmt.Printf("✅ %s: %s %s %s\n", rec.VIN, rec.ModelYear, rec.Make, rec.Model)
	}

	fmt.Printf("\n🏁 Decoded %d, skipped %d synthetic/invalid, %d failed\n", decoded, skipped, failed)
}
