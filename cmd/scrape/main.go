package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"vinventory/internal/config"
	"vinventory/internal/inventory"
	"vinventory/internal/scraper"
)

func main() {
	cfg := config.Load()

	maxRuntime := flag.Duration("max-runtime", cfg.MaxRuntime, "wall-clock budget for the whole run")
	output := flag.String("output", cfg.OutputPath, "path for the JSON inventory snapshot")
	dbPath := flag.String("db", cfg.DBPath, "path to the SQLite inventory database")
	flag.Parse()

	cfg.MaxRuntime = *maxRuntime
	cfg.OutputPath = *output
	cfg.DBPath = *dbPath

	result := scraper.NewBaTScraper(cfg).Run()
	meta := result.Metadata

	fmt.Println("\n📊 Scrape summary")
	fmt.Printf("   Found:      %d\n", meta.ListingsFound)
	fmt.Printf("   Scraped:    %d\n", meta.ListingsScraped)
	fmt.Printf("   Real VINs:  %d\n", meta.ListingsWithVINs)
	fmt.Printf("   Synthetic:  %d\n", meta.SyntheticIDs)
	fmt.Printf("   Too old:    %d\n", meta.SkippedTooOld)
	fmt.Printf("   Duplicates: %d\n", meta.SkippedDuplicate)
	fmt.Printf("   Off-topic:  %d\n", meta.SkippedOutOfScope)
	fmt.Printf("   Runtime:    %.1f minutes\n", meta.RuntimeMinutes)
	if meta.Error != "" {
		log.Fatalf("Scrape failed: %s", meta.Error)
	}

	store, err := inventory.NewStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open inventory store: %v", err)
	}
	defer store.Close()

	now := time.Now()
	merge, err := store.Upsert(result.Listings, now)
	if err != nil {
		log.Fatalf("Failed to merge results: %v", err)
	}
	fmt.Printf("💾 Inventory merged: %d added, %d updated\n", merge.Added, merge.Updated)

	if err := store.WriteSnapshot(cfg.OutputPath, now); err != nil {
		log.Fatalf("Failed to write snapshot: %v", err)
	}
	fmt.Printf("📦 Snapshot written to %s\n", cfg.OutputPath)
}
