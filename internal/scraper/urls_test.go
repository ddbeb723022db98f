package scraper

import "testing"

func TestIsListingURL(t *testing.T) {
	v := &URLValidator{YearCutoff: 1981}

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"valid carrera listing", "https://bringatrailer.com/auctions/1985-porsche-911-carrera/", true},
		{"valid modern listing", "https://bringatrailer.com/auctions/2015-porsche-911-turbo-s/", true},
		{"bare model slug", "https://bringatrailer.com/auctions/1991-porsche-911/", true},
		{"empty", "", false},
		{"not an auction path", "https://bringatrailer.com/porsche/911/", false},
		{"results page", "https://bringatrailer.com/auctions/results/", false},
		{"search page", "https://bringatrailer.com/auctions/search?q=911", false},
		{"live index", "https://bringatrailer.com/auctions/live/", false},
		{"coming soon index", "https://bringatrailer.com/auctions/coming-soon/", false},
		{"year below cutoff", "https://bringatrailer.com/auctions/1979-porsche-911-sc/", false},
		{"wrong model", "https://bringatrailer.com/auctions/1985-porsche-944-turbo/", false},
		{"no year prefix", "https://bringatrailer.com/auctions/porsche-911-carrera/", false},
		{"implausible future year", "https://bringatrailer.com/auctions/2099-porsche-911/", false},
		{"model token embedded later", "https://bringatrailer.com/auctions/1985-porsche-930-911-tribute/", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.IsListingURL(tt.url); got != tt.want {
				t.Errorf("IsListingURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestListingSlug(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://bringatrailer.com/auctions/1985-Porsche-911-Carrera/", "1985-porsche-911-carrera"},
		{"https://bringatrailer.com/auctions/1985-porsche-911-carrera", "1985-porsche-911-carrera"},
		{"https://bringatrailer.com/porsche/911/", ""},
		{"not a url at all", ""},
	}

	for _, tt := range tests {
		if got := ListingSlug(tt.url); got != tt.want {
			t.Errorf("ListingSlug(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestAbsoluteURL(t *testing.T) {
	base := "https://bringatrailer.com"

	if got := AbsoluteURL(base, "/auctions/1985-porsche-911/"); got != "https://bringatrailer.com/auctions/1985-porsche-911/" {
		t.Errorf("relative href not resolved, got %q", got)
	}
	if got := AbsoluteURL(base, "https://elsewhere.com/x"); got != "https://elsewhere.com/x" {
		t.Errorf("absolute href rewritten, got %q", got)
	}
}
