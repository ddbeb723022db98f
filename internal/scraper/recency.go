package scraper

import (
	"time"

	"vinventory/internal/models"
)

// RecencyGate judges whether pages and individual listings fall inside the
// rolling retention window.
type RecencyGate struct {
	// RetentionDays is the rolling window; listings that ended earlier
	// are out of scope.
	RetentionDays int

	// MostlyOldFraction is the share of sampled page dates that must be
	// stale before a page is called mostly old.
	MostlyOldFraction float64

	// MinSamples is the smallest date sample that supports a verdict.
	// Below it a page is treated as fresh: paging never stops on
	// insufficient evidence.
	MinSamples int
}

// PageAssessment is the transient verdict for one index-page sample.
type PageAssessment struct {
	Recent     int
	Old        int
	AvgAgeDays float64
	MostlyOld  bool
}

// AssessPage classifies a batch of dates sampled from an index page.
func (g *RecencyGate) AssessPage(dates []time.Time, now time.Time) PageAssessment {
	assessment := PageAssessment{}
	if len(dates) < g.MinSamples {
		return assessment
	}

	cutoff := g.cutoff(now)
	totalAge := 0.0
	for _, d := range dates {
		if d.Before(cutoff) {
			assessment.Old++
		} else {
			assessment.Recent++
		}
		totalAge += now.Sub(d).Hours() / 24
	}

	assessment.AvgAgeDays = totalAge / float64(len(dates))
	assessment.MostlyOld = float64(assessment.Old)/float64(len(dates)) > g.MostlyOldFraction
	return assessment
}

// TooOld reports whether a single listing should be dropped for age.
// Active auctions are never dropped: they have no meaningful end date yet.
// A sold or ended listing with no extractable date is kept — losing data
// silently is worse than carrying a stale record.
func (g *RecencyGate) TooOld(rec *models.BaTListing, now time.Time) bool {
	if rec.Status == models.StatusActive {
		return false
	}
	if rec.EndDate.IsZero() {
		return false
	}
	return rec.EndDate.Before(g.cutoff(now))
}

func (g *RecencyGate) cutoff(now time.Time) time.Time {
	return now.AddDate(0, 0, -g.RetentionDays)
}
