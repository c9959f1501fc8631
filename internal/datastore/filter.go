// filter.go implements the pure predicate engine applied to analysis
// collections before sorting and aggregation.
package datastore

import "sort"

// Filter restricts an analysis collection. Zero-valued predicates impose no
// constraint; supplied predicates are ANDed, so the order they are checked
// in never changes the result set.
type Filter struct {
	StartDate     string   // inclusive, YYYY-MM-DD
	EndDate       string   // inclusive, YYYY-MM-DD
	Type          string   // exact match
	Species       string   // exact match
	MinConfidence *float64 // inclusive lower bound
}

// Matches reports whether the analysis satisfies every supplied predicate.
// Date bounds compare lexically, which is correct for ISO-formatted dates.
// Records without a confidence value never satisfy MinConfidence.
func (f *Filter) Matches(analysis *Analysis) bool {
	if f == nil {
		return true
	}
	if f.StartDate != "" && analysis.Date < f.StartDate {
		return false
	}
	if f.EndDate != "" && analysis.Date > f.EndDate {
		return false
	}
	if f.Type != "" && analysis.Type != f.Type {
		return false
	}
	if f.Species != "" && analysis.Species != f.Species {
		return false
	}
	if f.MinConfidence != nil {
		if analysis.Confidence == nil || *analysis.Confidence < *f.MinConfidence {
			return false
		}
	}
	return true
}

// ApplyFilter returns the subset of analyses matching the filter, preserving
// the input order.
func ApplyFilter(analyses []Analysis, filter *Filter) []Analysis {
	if filter == nil {
		return analyses
	}
	filtered := make([]Analysis, 0, len(analyses))
	for i := range analyses {
		if filter.Matches(&analyses[i]) {
			filtered = append(filtered, analyses[i])
		}
	}
	return filtered
}

// SortByDateDesc sorts analyses newest-first by date. The sort is stable, so
// records sharing a date keep their relative store order.
func SortByDateDesc(analyses []Analysis) {
	sort.SliceStable(analyses, func(i, j int) bool {
		return analyses[i].Date > analyses[j].Date
	})
}
