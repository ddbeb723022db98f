package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"vinventory/internal/config"
	"vinventory/internal/inventory"
	"vinventory/internal/models"
)

var errOutOfScope = errors.New("listing page is not a Porsche 911")

// BaTScraper walks the Porsche 911 auction index, pages through results
// with the Show More control, and extracts a record per listing. It never
// panics past Run: every listing scrape is isolated behind a recover.
type BaTScraper struct {
	cfg       *config.Config
	gate      *RecencyGate
	extractor *Extractor
	urls      *URLValidator
	limiter   *rate.Limiter

	// newSession is swappable so tests can drive the traversal with a
	// scripted browser.
	newSession func() (Session, error)
	now        func() time.Time

	start time.Time
}

// NewBaTScraper wires a scraper from config with the production rod
// browser behind it.
func NewBaTScraper(cfg *config.Config) *BaTScraper {
	s := &BaTScraper{
		cfg: cfg,
		gate: &RecencyGate{
			RetentionDays:     cfg.RetentionDays,
			MostlyOldFraction: cfg.MostlyOldFraction,
			MinSamples:        cfg.MinDateSamples,
		},
		extractor: &Extractor{BaseURL: cfg.BaseURL},
		urls:      &URLValidator{YearCutoff: cfg.YearCutoff},
		limiter:   rate.NewLimiter(rate.Every(cfg.ListingDelay), 1),
		now:       time.Now,
	}
	s.newSession = func() (Session, error) {
		return NewRodSession(cfg.BaseURL, cfg.ChromeBin, cfg.NavigateTimeout, cfg.ClickSettle)
	}
	return s
}

// Run executes a full scrape pass and always returns a result. Failures
// on individual listings are counted, not propagated; only a failure to
// load the index page at all is surfaced in the metadata.
func (s *BaTScraper) Run() *models.ScrapeResult {
	s.start = s.now()
	result := &models.ScrapeResult{
		Metadata: models.ScrapeMetadata{
			ScrapeStarted: s.start.Format(time.RFC3339),
			Source:        s.cfg.BaseURL,
			Target:        "porsche-911",
		},
	}
	defer func() {
		if r := recover(); r != nil {
			result.Metadata.Error = fmt.Sprintf("scrape aborted: %v", r)
		}
		result.Metadata.ScrapeCompleted = s.now().Format(time.RFC3339)
		result.Metadata.RuntimeMinutes = s.now().Sub(s.start).Minutes()
	}()

	fmt.Printf("🚀 Starting Porsche 911 scrape of %s\n", s.cfg.IndexURL)

	urls, err := s.discoverListings()
	if err != nil {
		result.Metadata.Error = err.Error()
		return result
	}
	result.Metadata.ListingsFound = len(urls)
	fmt.Printf("🔍 Discovered %d candidate listing URLs\n", len(urls))

	sess, err := s.newSession()
	if err != nil {
		result.Metadata.Error = fmt.Sprintf("failed to start listing session: %v", err)
		return result
	}
	defer sess.Close()

	seenVINs := make(map[string]bool)
	for i, url := range urls {
		if s.overBudget() {
			fmt.Printf("⏰ Time budget reached after %d/%d listings\n", i, len(urls))
			break
		}
		_ = s.limiter.Wait(context.Background())

		rec, err := s.scrapeListing(sess, url)
		if err != nil {
			if errors.Is(err, errOutOfScope) {
				result.Metadata.SkippedOutOfScope++
			}
			continue
		}

		if s.gate.TooOld(rec, s.now()) {
			result.Metadata.SkippedTooOld++
			continue
		}
		if rec.VIN != "" && seenVINs[rec.VIN] {
			result.Metadata.SkippedDuplicate++
			continue
		}
		if rec.VIN != "" {
			seenVINs[rec.VIN] = true
			if rec.Synthetic {
				result.Metadata.SyntheticIDs++
			} else {
				result.Metadata.ListingsWithVINs++
			}
		}

		result.Listings = append(result.Listings, inventory.Normalize(rec, s.now()))
		result.Metadata.ListingsScraped++
		fmt.Printf("✅ [%d/%d] %s (%s)\n", i+1, len(urls), rec.Title, rec.Status)
	}

	fmt.Printf("🏁 Scrape complete: %d listings, %d with real VINs, %d synthetic\n",
		result.Metadata.ListingsScraped, result.Metadata.ListingsWithVINs, result.Metadata.SyntheticIDs)
	return result
}

// discoverListings loads the model index and clicks the Show More control
// until one of the stopping conditions fires. It returns the deduplicated
// listing URLs collected across all loaded pages.
func (s *BaTScraper) discoverListings() ([]string, error) {
	// The budget baseline is anchored here too so the traversal can run
	// (and be tested) on its own, not only via Run.
	if s.start.IsZero() {
		s.start = s.now()
	}

	sess, err := s.newSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start discovery session: %v", err)
	}
	defer sess.Close()

	if err := sess.Navigate(s.cfg.IndexURL); err != nil {
		return nil, fmt.Errorf("failed to load index page: %v", err)
	}

	seen := make(map[string]bool)
	var ordered []string
	collect := func() int {
		links, err := sess.Links("/auctions/")
		if err != nil {
			return 0
		}
		added := 0
		for _, link := range links {
			if seen[link] || !s.urls.IsListingURL(link) {
				continue
			}
			seen[link] = true
			ordered = append(ordered, link)
			added++
		}
		return added
	}
	collect()

	failures := 0
	stale := 0
	for clicks := 0; clicks < s.cfg.MaxPageClicks; clicks++ {
		if s.overBudget() {
			fmt.Println("⏰ Time budget reached during pagination")
			break
		}
		if failures >= s.cfg.FailureThreshold {
			fmt.Printf("🛑 Stopping pagination after %d consecutive failures\n", failures)
			break
		}
		if stale >= s.cfg.StalePageThreshold {
			fmt.Printf("📅 Stopping pagination after %d consecutive stale pages\n", stale)
			break
		}

		control, err := sess.FindControl(showMoreLabels)
		if err != nil {
			failures++
			continue
		}
		if err := control.Click(); err != nil {
			if err := control.ScriptClick(); err != nil {
				failures++
				continue
			}
		}
		time.Sleep(s.cfg.ClickSettle)

		if collect() == 0 {
			failures++
			continue
		}
		failures = 0
		fmt.Printf("📄 Loaded more results, %d listings so far\n", len(ordered))

		if text, err := sess.Text(); err == nil {
			assessment := s.gate.AssessPage(ExtractDates(text, s.cfg.MaxDateSamples), s.now())
			if assessment.MostlyOld {
				stale++
			} else {
				stale = 0
			}
		}
	}

	return ordered, nil
}

// scrapeListing loads one auction page and extracts a record from it. A
// panic inside extraction is converted to an error so one bad page cannot
// take down the run.
func (s *BaTScraper) scrapeListing(sess Session, url string) (rec *models.BaTListing, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec = nil
			err = fmt.Errorf("panic scraping %s: %v", url, r)
		}
	}()

	if err := sess.Navigate(url); err != nil {
		return nil, fmt.Errorf("failed to load %s: %v", url, err)
	}
	text, err := sess.Text()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %v", url, err)
	}

	lower := strings.ToLower(text)
	if !strings.Contains(lower, "porsche") || !strings.Contains(lower, "911") {
		return nil, errOutOfScope
	}

	html, _ := sess.HTML()
	rec = s.extractor.ExtractListing(url, text, html)
	rec.ScrapedAt = s.now()
	return rec, nil
}

func (s *BaTScraper) overBudget() bool {
	return s.now().Sub(s.start) >= s.cfg.MaxRuntime
}
