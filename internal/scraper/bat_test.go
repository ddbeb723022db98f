package scraper

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"vinventory/internal/config"
)

const testIndexURL = "https://bringatrailer.com/porsche/911/"

var testNow = time.Date(2025, time.October, 1, 12, 0, 0, 0, time.UTC)

type fakePage struct {
	text  string
	html  string
	links []string
}

type fakeSession struct {
	pages      map[string]*fakePage
	currentURL string

	noControl bool
	clickErr  error
	scriptErr error

	// moreLinks[i] and moreTexts[i] take effect after the i-th
	// successful click on the current page.
	moreLinks [][]string
	moreTexts []string

	navErr map[string]error

	clicks       int
	findCalls    int
	scriptClicks int
	closed       bool
}

func (s *fakeSession) Navigate(url string) error {
	if err := s.navErr[url]; err != nil {
		return err
	}
	if _, ok := s.pages[url]; !ok {
		return fmt.Errorf("no such page %s", url)
	}
	s.currentURL = url
	return nil
}

func (s *fakeSession) Text() (string, error) {
	return s.pages[s.currentURL].text, nil
}

func (s *fakeSession) HTML() (string, error) {
	return s.pages[s.currentURL].html, nil
}

func (s *fakeSession) Links(substr string) ([]string, error) {
	var out []string
	for _, link := range s.pages[s.currentURL].links {
		if strings.Contains(link, substr) {
			out = append(out, link)
		}
	}
	return out, nil
}

func (s *fakeSession) FindControl(labels []string) (Control, error) {
	s.findCalls++
	if s.noControl {
		return nil, errors.New("no pagination control found")
	}
	return &fakeControl{s: s}, nil
}

func (s *fakeSession) Close() { s.closed = true }

type fakeControl struct{ s *fakeSession }

func (c *fakeControl) Click() error {
	if c.s.clickErr != nil {
		return c.s.clickErr
	}
	c.s.advance()
	return nil
}

func (c *fakeControl) ScriptClick() error {
	c.s.scriptClicks++
	if c.s.scriptErr != nil {
		return c.s.scriptErr
	}
	c.s.advance()
	return nil
}

func (s *fakeSession) advance() {
	page := s.pages[s.currentURL]
	if s.clicks < len(s.moreLinks) {
		page.links = append(page.links, s.moreLinks[s.clicks]...)
	}
	if s.clicks < len(s.moreTexts) {
		page.text = s.moreTexts[s.clicks]
	}
	s.clicks++
}

func testConfig() *config.Config {
	return &config.Config{
		BaseURL:            "https://bringatrailer.com",
		IndexURL:           testIndexURL,
		YearCutoff:         1981,
		MaxRuntime:         time.Minute,
		MaxPageClicks:      25,
		FailureThreshold:   3,
		RetentionDays:      365,
		MostlyOldFraction:  0.70,
		StalePageThreshold: 3,
		MinDateSamples:     5,
		MaxDateSamples:     100,
	}
}

func testScraper(cfg *config.Config, factory func() *fakeSession) *BaTScraper {
	s := NewBaTScraper(cfg)
	s.newSession = func() (Session, error) { return factory(), nil }
	s.now = func() time.Time { return testNow }
	return s
}

func listingURL(slug string) string {
	return "https://bringatrailer.com/auctions/" + slug + "/"
}

func TestDiscoverStopsAfterMissingControl(t *testing.T) {
	index := &fakePage{links: []string{
		listingURL("1991-porsche-911-carrera"),
		listingURL("1985-porsche-911-targa"),
	}}
	sess := &fakeSession{
		pages:     map[string]*fakePage{testIndexURL: index},
		noControl: true,
	}

	s := testScraper(testConfig(), func() *fakeSession { return sess })
	urls, err := s.discoverListings()
	if err != nil {
		t.Fatalf("discoverListings: %v", err)
	}

	if len(urls) != 2 {
		t.Errorf("got %d urls, want 2", len(urls))
	}
	if sess.findCalls != 3 {
		t.Errorf("control lookups = %d, want exactly the failure threshold", sess.findCalls)
	}
	if !sess.closed {
		t.Error("session not closed")
	}
}

func TestDiscoverZeroYieldClicksCountAsFailures(t *testing.T) {
	index := &fakePage{links: []string{listingURL("1991-porsche-911-carrera")}}
	sess := &fakeSession{
		pages: map[string]*fakePage{testIndexURL: index},
		// no moreLinks: every click lands but reveals nothing new
	}

	s := testScraper(testConfig(), func() *fakeSession { return sess })
	urls, err := s.discoverListings()
	if err != nil {
		t.Fatalf("discoverListings: %v", err)
	}

	if len(urls) != 1 {
		t.Errorf("got %d urls, want 1", len(urls))
	}
	if sess.clicks != 3 {
		t.Errorf("clicks = %d, want exactly the failure threshold", sess.clicks)
	}
}

func TestDiscoverFallsBackToScriptClick(t *testing.T) {
	index := &fakePage{links: []string{listingURL("1991-porsche-911-carrera")}}
	sess := &fakeSession{
		pages:     map[string]*fakePage{testIndexURL: index},
		clickErr:  errors.New("element click intercepted"),
		moreLinks: [][]string{{listingURL("1985-porsche-911-targa")}},
	}

	s := testScraper(testConfig(), func() *fakeSession { return sess })
	urls, err := s.discoverListings()
	if err != nil {
		t.Fatalf("discoverListings: %v", err)
	}

	if len(urls) != 2 {
		t.Errorf("got %d urls, want 2 after scripted-click pagination", len(urls))
	}
	if sess.scriptClicks == 0 {
		t.Error("scripted click fallback never used")
	}
}

func TestDiscoverAnchorsBudgetAndStopsWhenExhausted(t *testing.T) {
	index := &fakePage{links: []string{listingURL("1991-porsche-911-carrera")}}
	sess := &fakeSession{
		pages:     map[string]*fakePage{testIndexURL: index},
		moreLinks: [][]string{{listingURL("1985-porsche-911-targa")}},
	}

	s := testScraper(testConfig(), func() *fakeSession { return sess })

	// The clock jumps past the budget right after the run baseline is
	// taken: the initial collection still happens, pagination does not.
	calls := 0
	s.now = func() time.Time {
		calls++
		if calls == 1 {
			return testNow
		}
		return testNow.Add(2 * time.Minute)
	}

	urls, err := s.discoverListings()
	if err != nil {
		t.Fatalf("discoverListings: %v", err)
	}
	if len(urls) != 1 {
		t.Errorf("got %d urls, want only the initial batch", len(urls))
	}
	if sess.findCalls != 0 {
		t.Errorf("control lookups = %d after budget exhaustion", sess.findCalls)
	}
}

func TestDiscoverStopsOnStalePages(t *testing.T) {
	staleText := strings.Repeat("Sold for $10,000 on 1/15/23. ", 6)

	index := &fakePage{links: []string{listingURL("1991-porsche-911-carrera")}}
	sess := &fakeSession{
		pages: map[string]*fakePage{testIndexURL: index},
		moreLinks: [][]string{
			{listingURL("1985-porsche-911-targa")},
			{listingURL("1984-porsche-911-cabriolet")},
			{listingURL("1983-porsche-911-sc")},
			{listingURL("1982-porsche-911-sc-coupe")},
			{listingURL("1981-porsche-911-sc-targa")},
		},
		moreTexts: []string{staleText, staleText, staleText, staleText, staleText},
	}

	s := testScraper(testConfig(), func() *fakeSession { return sess })
	urls, err := s.discoverListings()
	if err != nil {
		t.Fatalf("discoverListings: %v", err)
	}

	if sess.clicks != 3 {
		t.Errorf("clicks = %d, want exactly the stale-page threshold", sess.clicks)
	}
	if len(urls) != 4 {
		t.Errorf("got %d urls, want the 4 collected before stopping", len(urls))
	}
}

func TestRunFullPass(t *testing.T) {
	soldURL := listingURL("1991-porsche-911-carrera")
	oldURL := listingURL("1984-porsche-911-targa")
	dupURL := listingURL("1991-porsche-911-carrera-2")
	offTopicURL := listingURL("1985-porsche-911-tribute")

	pages := map[string]*fakePage{
		testIndexURL: {links: []string{
			soldURL, oldURL, dupURL, offTopicURL,
			"https://bringatrailer.com/auctions/results/",
		}},
		soldURL: {text: `1991 Porsche 911 Carrera Coupe
48,000 miles, 3.6L flat-six, 5-speed manual, sunroof
VIN WP0AA2969MS410123
Sold for $45,000 on 9/18/25`},
		oldURL: {text: `1984 Porsche 911 Targa
VIN WP0AB0918ES120456
Sold for $20,000 on 1/15/23`},
		dupURL: {text: `1991 Porsche 911 Carrera relisted
VIN WP0AA2969MS410123
Sold for $47,000 on 9/20/25`},
		offTopicURL: {text: `This replica is built on an unrelated chassis with no factory parts.`},
	}

	s := testScraper(testConfig(), func() *fakeSession {
		return &fakeSession{pages: pages, noControl: true}
	})

	result := s.Run()
	meta := result.Metadata

	if meta.Error != "" {
		t.Fatalf("unexpected run error: %s", meta.Error)
	}
	if meta.ListingsFound != 4 {
		t.Errorf("ListingsFound = %d, want 4", meta.ListingsFound)
	}
	if meta.ListingsScraped != 1 {
		t.Errorf("ListingsScraped = %d, want 1", meta.ListingsScraped)
	}
	if meta.SkippedTooOld != 1 {
		t.Errorf("SkippedTooOld = %d, want 1", meta.SkippedTooOld)
	}
	if meta.SkippedDuplicate != 1 {
		t.Errorf("SkippedDuplicate = %d, want 1", meta.SkippedDuplicate)
	}
	if meta.SkippedOutOfScope != 1 {
		t.Errorf("SkippedOutOfScope = %d, want 1", meta.SkippedOutOfScope)
	}
	if meta.ListingsWithVINs != 1 || meta.SyntheticIDs != 0 {
		t.Errorf("VIN counters = %d real / %d synthetic", meta.ListingsWithVINs, meta.SyntheticIDs)
	}

	if len(result.Listings) != 1 {
		t.Fatalf("got %d listings, want 1", len(result.Listings))
	}
	rec := result.Listings[0]
	if rec.VIN != "WP0AA2969MS410123" {
		t.Errorf("VIN = %q", rec.VIN)
	}
	if rec.BaTAuctionStatus != "sold" {
		t.Errorf("status = %q", rec.BaTAuctionStatus)
	}
	if rec.ModelYear != "1991" {
		t.Errorf("ModelYear = %q", rec.ModelYear)
	}
	if !rec.IsClassic || !rec.IsVintage {
		t.Errorf("age flags = classic %v vintage %v", rec.IsClassic, rec.IsVintage)
	}
	if rec.Source != "bring_a_trailer" {
		t.Errorf("Source = %q", rec.Source)
	}
}

func TestRunSurfacesIndexLoadFailure(t *testing.T) {
	s := testScraper(testConfig(), func() *fakeSession {
		return &fakeSession{
			pages:  map[string]*fakePage{},
			navErr: map[string]error{testIndexURL: errors.New("connection refused")},
		}
	})

	result := s.Run()
	if result.Metadata.Error == "" {
		t.Fatal("expected index load failure in metadata")
	}
	if len(result.Listings) != 0 {
		t.Errorf("got %d listings from a failed run", len(result.Listings))
	}
}
