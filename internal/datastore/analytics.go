// internal/datastore/analytics.go
package datastore

// Summary contains aggregate statistics over the analysis history
type Summary struct {
	TotalAnalyses     int            `json:"totalAnalyses"`
	SpeciesCount      int            `json:"speciesCount"` // distinct species values
	AverageConfidence float64        `json:"averageConfidence"`
	MostCommonSpecies string         `json:"mostCommonSpecies"`
	AnalysesByType    map[string]int `json:"analysesByType"`
	AnalysesByDate    map[string]int `json:"analysesByDate"`
	RecentAnalyses    []Analysis     `json:"recentAnalyses"`
}

// recentLimit is how many of the newest records the summary carries.
const recentLimit = 10

// Summarize derives a Summary from an already filtered, newest-first set.
// The mean confidence covers only records that carry a confidence value.
// Most-common-species ties resolve to the species that reached the winning
// count first during aggregation; an arbitrary but stable rule.
func Summarize(analyses []Analysis) Summary {
	summary := Summary{
		TotalAnalyses:  len(analyses),
		AnalysesByType: make(map[string]int),
		AnalysesByDate: make(map[string]int),
	}

	distinctSpecies := make(map[string]struct{})
	speciesCounts := make(map[string]int)
	var confidenceSum float64
	var confidenceCount int
	var topSpecies string
	var topCount int

	for i := range analyses {
		analysis := &analyses[i]

		if analysis.Species != "" {
			distinctSpecies[analysis.Species] = struct{}{}
			speciesCounts[analysis.Species]++
			if speciesCounts[analysis.Species] > topCount {
				topCount = speciesCounts[analysis.Species]
				topSpecies = analysis.Species
			}
		}

		if analysis.Confidence != nil {
			confidenceSum += *analysis.Confidence
			confidenceCount++
		}

		summary.AnalysesByType[analysis.Type]++
		summary.AnalysesByDate[dayOf(analysis.Date)]++
	}

	summary.SpeciesCount = len(distinctSpecies)
	summary.MostCommonSpecies = topSpecies
	if confidenceCount > 0 {
		summary.AverageConfidence = confidenceSum / float64(confidenceCount)
	}

	if len(analyses) > recentLimit {
		summary.RecentAnalyses = analyses[:recentLimit]
	} else {
		summary.RecentAnalyses = analyses
	}

	return summary
}

// dayOf truncates a date string to its calendar-day portion.
func dayOf(date string) string {
	if len(date) > 10 {
		return date[:10]
	}
	return date
}
