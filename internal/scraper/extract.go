package scraper

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"vinventory/internal/models"
	"vinventory/internal/vin"
)

// Field extraction is table-driven throughout this file: each field has an
// ordered list of patterns tried first-match-wins, so tuning a heuristic is
// a data change rather than a control-flow change.

var vinTokenPattern = regexp.MustCompile(`\b[A-HJ-NPR-Z0-9]{17}\b`)

var currencyPattern = regexp.MustCompile(`\$[\d,]+`)

var bidPatterns = []*regexp.Regexp{
	regexp.MustCompile(`bid:\s*usd\s*\$[\d,]+`),
	regexp.MustCompile(`current bid[:\s]*\$[\d,]+`),
	regexp.MustCompile(`\$[\d,]+\s*current bid`),
	regexp.MustCompile(`bid[:\s]*\$[\d,]+`),
}

var soldPatterns = []*regexp.Regexp{
	regexp.MustCompile(`sold for \$[\d,]+`),
	regexp.MustCompile(`winning bid[:\s]*\$[\d,]+`),
	regexp.MustCompile(`final bid[:\s]*\$[\d,]+`),
}

var mileagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d{1,3}(?:,\d{3})*)\s*(?:miles|mile|mi\b)`),
	regexp.MustCompile(`(\d{1,3}(?:,\d{3})*)\s*(?:kilometers|kilometres|km\b)`),
	regexp.MustCompile(`showing\s*(\d{1,3}(?:,\d{3})*)`),
	regexp.MustCompile(`odometer[:\s]+(\d{1,3}(?:,\d{3})*)`),
}

var endDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`sold for \$[\d,]+ on\s+([a-z0-9 ,/]+)`),
	regexp.MustCompile(`(?:auction )?ended(?: on)?\s+([a-z0-9 ,/]+)`),
	regexp.MustCompile(`ends(?: on)?\s+([a-z0-9 ,/]+)`),
}

var enginePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d\.\d)\s*(?:l|liter|litre)\b`),
	regexp.MustCompile(`(\d,?\d{3})\s*cc\b`),
}

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// soldIndicators are checked before activeIndicators: a page carrying both
// historical and live bid language is a completed auction.
var soldIndicators = []string{"sold for", "winning bid", "hammer price"}
var activeIndicators = []string{"current bid", "place bid", "time left", "bid now"}
var endedIndicators = []string{"auction ended", "bid to", "reserve not met", "ended"}

var featureKeywords = []string{
	"sport chrono", "pasm", "pdls", "pccb", "sport exhaust",
	"sunroof", "navigation", "heated seats", "air conditioning",
	"leather", "alcantara", "bose", "xenon", "led",
}

var manualIndicators = []string{"manual", "stick", "5-speed", "6-speed"}
var automaticIndicators = []string{"automatic", "tiptronic", "pdk"}
var awdIndicators = []string{"carrera 4", "c4", "awd", "all-wheel"}

// Extractor turns rendered listing-page content into a BaTListing. All
// extraction is best-effort: a missed field stays empty, never errors.
// BaseURL anchors root-relative photo sources to an absolute address.
type Extractor struct {
	BaseURL string
}

// ExtractListing builds the raw record for one listing page from its
// rendered text and HTML source.
func (e *Extractor) ExtractListing(pageURL, text, html string) *models.BaTListing {
	lower := strings.ToLower(text)

	rec := &models.BaTListing{
		URL:            pageURL,
		ListingID:      ListingSlug(pageURL),
		ScrapedAt:      time.Now(),
		Status:         e.ExtractStatus(lower),
		Price:          e.ExtractPriceInfo(lower),
		Mileage:        e.ExtractMileage(lower),
		Specifications: e.ExtractSpecifications(lower),
		Features:       e.ExtractFeatures(lower),
	}

	if v, synthetic := e.ExtractVIN(text, rec.ListingID); v != "" {
		rec.VIN = v
		rec.Synthetic = synthetic
	}

	if end, ok := e.ExtractEndDate(lower); ok {
		rec.EndDate = end
	}

	e.enrichFromHTML(rec, html)

	if rec.Title != "" {
		rec.Year = e.ExtractYear(rec.Title)
	}
	if rec.Year == 0 {
		rec.Year = e.ExtractYear(text)
	}

	return rec
}

// ExtractVIN scans original-case text for a 17-character VIN token,
// preferring Porsche-prefixed ones. When none is found and the listing
// slug is usable, a flagged synthetic tracking identifier is derived
// instead; callers must never treat it as a real vehicle identity.
func (e *Extractor) ExtractVIN(text, slug string) (string, bool) {
	matches := vinTokenPattern.FindAllString(strings.ToUpper(text), -1)

	for _, m := range matches {
		if vin.IsPorsche(m) {
			return m, false
		}
	}
	for _, m := range matches {
		if vin.IsValid(m) {
			return m, false
		}
	}

	if len(slug) > 3 && !reservedSlugs[slug] {
		return vin.Synthesize(slug), true
	}
	return "", false
}

// ExtractPriceInfo pulls bid and sale price signals from lowercase text.
// First match per category wins; multiple bids on a page are not
// disambiguated.
func (e *Extractor) ExtractPriceInfo(lower string) models.PriceInfo {
	info := models.PriceInfo{}

	for _, pattern := range bidPatterns {
		if m := pattern.FindString(lower); m != "" {
			info.CurrentBid = currencyPattern.FindString(m)
			break
		}
	}

	for _, pattern := range soldPatterns {
		if m := pattern.FindString(lower); m != "" {
			info.SoldPrice = currencyPattern.FindString(m)
			break
		}
	}

	if strings.Contains(lower, "reserve met") || strings.Contains(lower, "reserve has been met") {
		info.ReserveMet = true
	}
	if strings.Contains(lower, "no reserve") || strings.Contains(lower, "no-reserve") {
		info.NoReserve = true
	}

	return info
}

// ExtractStatus classifies the auction lifecycle state. Sold indicators
// win over active ones, active over ended; a page with no indicator at
// all stays unknown.
func (e *Extractor) ExtractStatus(lower string) models.AuctionStatus {
	for _, indicator := range soldIndicators {
		if strings.Contains(lower, indicator) {
			return models.StatusSold
		}
	}
	for _, indicator := range activeIndicators {
		if strings.Contains(lower, indicator) {
			return models.StatusActive
		}
	}
	for _, indicator := range endedIndicators {
		if strings.Contains(lower, indicator) {
			return models.StatusEnded
		}
	}
	return models.StatusUnknown
}

// ExtractEndDate finds the auction end date near sold/ended keywords.
func (e *Extractor) ExtractEndDate(lower string) (time.Time, bool) {
	for _, pattern := range endDatePatterns {
		m := pattern.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		token := dateTokenPattern.FindString(m[1])
		if token == "" {
			continue
		}
		if t, ok := ParseDate(token); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// ExtractMileage returns the first thousands-separated odometer reading
// followed by a distance unit.
func (e *Extractor) ExtractMileage(lower string) string {
	for _, pattern := range mileagePatterns {
		if m := pattern.FindStringSubmatch(lower); m != nil {
			return m[1]
		}
	}
	return ""
}

// ExtractYear returns the first plausible 4-digit model year in text.
func (e *Extractor) ExtractYear(text string) int {
	m := yearPattern.FindString(text)
	if m == "" {
		return 0
	}
	year := 0
	for _, ch := range m {
		year = year*10 + int(ch-'0')
	}
	if year < 1900 || year > time.Now().Year()+1 {
		return 0
	}
	return year
}

// ExtractFeatures returns the known option keywords present in the text.
func (e *Extractor) ExtractFeatures(lower string) []string {
	var features []string
	for _, keyword := range featureKeywords {
		if strings.Contains(lower, keyword) {
			features = append(features, cases.Title(language.English).String(keyword))
		}
	}
	return features
}

// ExtractSpecifications pulls engine, transmission and drive type
// heuristics from lowercase text.
func (e *Extractor) ExtractSpecifications(lower string) map[string]string {
	specs := make(map[string]string)

	for _, pattern := range enginePatterns {
		if m := pattern.FindStringSubmatch(lower); m != nil {
			specs["engine"] = m[1]
			break
		}
	}

	for _, indicator := range manualIndicators {
		if strings.Contains(lower, indicator) {
			specs["transmission"] = "Manual"
			break
		}
	}
	if specs["transmission"] == "" {
		for _, indicator := range automaticIndicators {
			if strings.Contains(lower, indicator) {
				specs["transmission"] = "Automatic"
				break
			}
		}
	}

	specs["drive_type"] = "RWD"
	for _, indicator := range awdIndicators {
		if strings.Contains(lower, indicator) {
			specs["drive_type"] = "AWD"
			break
		}
	}

	return specs
}

// descriptionSelectors are tried in order until one yields a usable block.
var descriptionSelectors = []string{
	"div[class*='description']",
	"div[class*='summary']",
	"div[class*='content']",
	".listing-description",
	".auction-description",
}

// enrichFromHTML fills title, description and photo URLs from the page
// source. Parse failures leave those fields empty.
func (e *Extractor) enrichFromHTML(rec *models.BaTListing, html string) {
	if html == "" {
		return
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return
	}

	for _, selector := range []string{"h1", ".listing-title", ".auction-title", "title"} {
		title := strings.TrimSpace(doc.Find(selector).First().Text())
		if len(title) > 5 {
			rec.Title = title
			break
		}
	}

	for _, selector := range descriptionSelectors {
		desc := strings.TrimSpace(doc.Find(selector).First().Text())
		if len(desc) > 20 {
			if len(desc) > 1000 {
				desc = desc[:1000]
			}
			rec.Description = desc
			break
		}
	}

	seen := make(map[string]bool)
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		if len(rec.Photos) >= 20 {
			return
		}
		src, ok := sel.Attr("src")
		if !ok || src == "" {
			src, _ = sel.Attr("data-src")
		}
		if src == "" || seen[src] {
			return
		}
		if strings.Contains(src, "bringatrailer") || strings.HasPrefix(src, "/") {
			if strings.HasPrefix(src, "/") && e.BaseURL != "" {
				src = AbsoluteURL(e.BaseURL, src)
			}
			if seen[src] {
				return
			}
			seen[src] = true
			rec.Photos = append(rec.Photos, src)
		}
	})
}
