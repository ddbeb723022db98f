package scraper

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// listingSlugPattern matches in-scope listing slugs: a 4-digit model year
// followed by the porsche-911 token, e.g. "1985-porsche-911-carrera".
var listingSlugPattern = regexp.MustCompile(`^((?:19|20)\d{2})-porsche-911(?:-|/|$)`)

// excludedPathPatterns are index/search pages that live under the auctions
// path but are not individual listings.
var excludedPathPatterns = []string{
	"/auctions/results",
	"/auctions/search",
	"/auctions/ended",
	"/auctions/live",
	"/auctions/coming-soon",
	"/auctions/?",
}

// reservedSlugs are path segments that superficially look like listing
// slugs but never are.
var reservedSlugs = map[string]bool{
	"results": true,
	"search":  true,
	"ended":   true,
	"live":    true,
}

// URLValidator decides whether a discovered hyperlink is an in-scope
// listing: the marketplace's auction path, a slug carrying a model year at
// or above the cutoff, and the porsche-911 token.
type URLValidator struct {
	YearCutoff int
}

// IsListingURL reports whether raw points at an in-scope listing page.
func (v *URLValidator) IsListingURL(raw string) bool {
	if raw == "" || !strings.Contains(raw, "/auctions/") {
		return false
	}

	for _, pattern := range excludedPathPatterns {
		if strings.Contains(raw, pattern) {
			return false
		}
	}

	slug := ListingSlug(raw)
	if len(slug) <= 3 || reservedSlugs[slug] {
		return false
	}

	m := listingSlugPattern.FindStringSubmatch(slug)
	if m == nil {
		return false
	}

	year, err := strconv.Atoi(m[1])
	if err != nil {
		return false
	}
	return year >= v.YearCutoff && year <= time.Now().Year()+1
}

// ListingSlug extracts the listing slug from an auction URL, or "" when
// the URL has no slug segment.
func ListingSlug(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	for i, part := range parts {
		if part == "auctions" && i+1 < len(parts) {
			return strings.ToLower(parts[i+1])
		}
	}
	return ""
}

// AbsoluteURL resolves href against base when the marketplace serves
// relative links.
func AbsoluteURL(base, href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(href, "/")
}
