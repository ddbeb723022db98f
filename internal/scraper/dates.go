package scraper

import (
	"regexp"
	"strings"
	"time"
)

// dateEpoch is the earliest calendar date accepted from page text.
// Anything earlier is parse noise, not an auction date.
var dateEpoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// futureSlack is how far past "now" an extracted date may sit before it is
// rejected as noise. Live auctions legitimately end a few weeks out.
const futureSlack = 30 * 24 * time.Hour

// dateTokenPattern matches the two date shapes the marketplace renders:
// short numeric (9/18/25, 09/18/2025) and long textual (September 18, 2025).
var dateTokenPattern = regexp.MustCompile(`(?i)\b(?:\d{1,2}/\d{1,2}/\d{2,4}|(?:january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sep|sept|oct|nov|dec)\.?\s+\d{1,2},?\s+\d{4})\b`)

var dateLayouts = []string{
	"1/2/2006",
	"1/2/06",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
}

// ParseDate parses a single date token into a UTC calendar date. Two-digit
// years are normalized into the 2000s. Dates outside the sanity window are
// rejected.
func ParseDate(s string) (time.Time, bool) {
	return parseDateAt(s, time.Now())
}

func parseDateAt(s string, now time.Time) (time.Time, bool) {
	// Tokens arrive in whatever case the caller had: original page text or
	// the lowercased copy used for keyword matching. Normalize to the
	// layouts' casing before matching.
	s = strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, ".", "")))
	s = strings.ReplaceAll(s, "sept ", "sep ")
	if s != "" && s[0] >= 'a' && s[0] <= 'z' {
		s = strings.ToUpper(s[:1]) + s[1:]
	}

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if layout == "1/2/06" && t.Year() < 2000 {
			// A short numeric token with a 2-digit year belongs in the 2000s.
			t = t.AddDate(100, 0, 0)
		}
		if t.Before(dateEpoch) || t.After(now.Add(futureSlack)) {
			return time.Time{}, false
		}
		return t, true
	}
	return time.Time{}, false
}

// ExtractDates scans rendered page text for parseable dates, up to limit
// samples. The sample bound keeps page-level recency checks cheap on very
// long index pages.
func ExtractDates(text string, limit int) []time.Time {
	var dates []time.Time
	for _, token := range dateTokenPattern.FindAllString(text, -1) {
		if limit > 0 && len(dates) >= limit {
			break
		}
		if t, ok := ParseDate(token); ok {
			dates = append(dates, t)
		}
	}
	return dates
}
