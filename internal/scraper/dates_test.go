package scraper

import (
	"testing"
	"time"
)

var dateTestNow = time.Date(2025, time.October, 1, 12, 0, 0, 0, time.UTC)

func TestParseDateEquivalentForms(t *testing.T) {
	// Every short and long rendering of the same calendar date must land
	// on the same parsed value.
	want := time.Date(2025, time.September, 18, 0, 0, 0, 0, time.UTC)

	forms := []string{
		"9/18/25",
		"09/18/2025",
		"9/18/2025",
		"September 18, 2025",
		"September 18 2025",
		"Sep 18, 2025",
		"Sept 18, 2025",
		"Sept. 18, 2025",
		"september 18, 2025",
		"sept 18, 2025",
		"sep 18, 2025",
	}
	for _, form := range forms {
		t.Run(form, func(t *testing.T) {
			got, ok := parseDateAt(form, dateTestNow)
			if !ok {
				t.Fatalf("parseDateAt(%q) failed", form)
			}
			if !got.Equal(want) {
				t.Errorf("parseDateAt(%q) = %v, want %v", form, got, want)
			}
		})
	}
}

func TestParseDateRejections(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"not a date", "porsche 911"},
		{"impossible month", "13/18/2025"},
		{"impossible day", "2/30/2025"},
		{"before epoch", "9/18/1979"},
		{"far future", "9/18/2099"},
		{"year only", "2025"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, ok := parseDateAt(tt.in, dateTestNow); ok {
				t.Errorf("parseDateAt(%q) = %v, want rejection", tt.in, got)
			}
		})
	}
}

func TestParseDateTwoDigitYearsLandInThe2000s(t *testing.T) {
	got, ok := parseDateAt("1/15/23", dateTestNow)
	if !ok || got.Year() != 2023 {
		t.Fatalf("parseDateAt(1/15/23) = %v, %v; want year 2023", got, ok)
	}

	// A 4-digit historical year must not be bumped.
	got, ok = parseDateAt("9/18/1985", dateTestNow)
	if !ok || got.Year() != 1985 {
		t.Fatalf("parseDateAt(9/18/1985) = %v, %v; want year 1985", got, ok)
	}
}

func TestParseDateNearFutureAccepted(t *testing.T) {
	// Live auctions end a couple of weeks out; those dates are real.
	if _, ok := parseDateAt("10/10/2025", dateTestNow); !ok {
		t.Error("date a few days in the future was rejected")
	}
	if _, ok := parseDateAt("12/25/2025", dateTestNow); ok {
		t.Error("date beyond the future slack was accepted")
	}
}

func TestExtractDates(t *testing.T) {
	text := `Sold for $45,000 on 9/18/25. Another ended September 2, 2025.
Reserve not met, bid to $30,000 on 8/1/25. Noise: 911, 3.6L, 13/45/2025.`

	dates := ExtractDates(text, 0)
	if len(dates) != 3 {
		t.Fatalf("expected 3 dates, got %d: %v", len(dates), dates)
	}

	limited := ExtractDates(text, 2)
	if len(limited) != 2 {
		t.Fatalf("expected sample limit of 2, got %d", len(limited))
	}
}
