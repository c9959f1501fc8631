// Package analysislog shapes completed analysis events into the canonical
// record format and hands them to the store facade. Callers get back the new
// record id and a success flag; the underlying store error never leaves this
// package, it is logged here instead.
package analysislog

import (
	"log/slog"
	"time"

	"github.com/ecoview/ecoview-go/internal/datastore"
	"github.com/ecoview/ecoview-go/internal/logging"
)

// Store is the slice of the facade this package needs.
type Store interface {
	Create(analysis *datastore.Analysis) (uint, error)
}

// Logger records analysis events.
type Logger struct {
	store Store
	log   *slog.Logger
}

// New returns a Logger writing through the given store.
func New(store Store) *Logger {
	log := logging.ForService("analysislog")
	if log == nil {
		log = slog.Default()
	}
	return &Logger{store: store, log: log}
}

// Species records a completed species-identification analysis.
func (l *Logger) Species(date, species string, confidence float64, image string, details *datastore.SpeciesDetails) (uint, bool) {
	analysis := datastore.Analysis{
		Date:       orToday(date),
		Type:       datastore.TypeSpecies,
		Species:    species,
		Confidence: &confidence,
		Image:      image,
	}
	if details != nil {
		analysis.Details = datastore.Details{Species: details}
	}
	return l.create(&analysis)
}

// TreeCount records a completed tree-count analysis. Count analyses never
// carry a species.
func (l *Logger) TreeCount(date string, treeCount int, canopyDensity float64, image string) (uint, bool) {
	analysis := datastore.Analysis{
		Date:  orToday(date),
		Type:  datastore.TypeCount,
		Image: image,
		Details: datastore.Details{
			Count: &datastore.TreeCountDetails{
				TreeCount:     treeCount,
				CanopyDensity: canopyDensity,
			},
		},
	}
	return l.create(&analysis)
}

// Path records a completed optimal-path analysis. The efficiency score lands
// in the confidence slot.
func (l *Logger) Path(date string, efficiency float64, details *datastore.PathDetails, image string) (uint, bool) {
	analysis := datastore.Analysis{
		Date:       orToday(date),
		Type:       datastore.TypePath,
		Confidence: &efficiency,
		Image:      image,
	}
	if details != nil {
		analysis.Details = datastore.Details{Path: details}
	}
	return l.create(&analysis)
}

// GreenCover records a completed green-cover analysis.
func (l *Logger) GreenCover(date string, coverPct, idlePct float64, image string) (uint, bool) {
	analysis := datastore.Analysis{
		Date:  orToday(date),
		Type:  datastore.TypeGreenCover,
		Image: image,
		Details: datastore.Details{
			GreenCover: &datastore.GreenCoverDetails{
				GreenCover: coverPct,
				IdleLand:   idlePct,
			},
		},
	}
	return l.create(&analysis)
}

// Generic records an analysis of a caller-supplied type with open metadata.
func (l *Logger) Generic(date, analysisType string, confidence *float64, extra map[string]any, image string) (uint, bool) {
	analysis := datastore.Analysis{
		Date:       orToday(date),
		Type:       analysisType,
		Confidence: confidence,
		Image:      image,
	}
	if len(extra) > 0 {
		analysis.Details = datastore.Details{Extra: extra}
	}
	return l.create(&analysis)
}

// create delegates to the facade and collapses the outcome into the id/ok
// contract.
func (l *Logger) create(analysis *datastore.Analysis) (uint, bool) {
	id, err := l.store.Create(analysis)
	if err != nil {
		l.log.Error("failed to record analysis",
			"type", analysis.Type,
			"date", analysis.Date,
			"error", err)
		return 0, false
	}
	l.log.Info("analysis recorded",
		"id", id,
		"type", analysis.Type,
		"date", analysis.Date)
	return id, true
}

func orToday(date string) string {
	if date != "" {
		return date
	}
	return time.Now().Format("2006-01-02")
}
