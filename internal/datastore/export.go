// export.go implements the facade-level export and import surfaces for the
// analysis history.
package datastore

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ecoview/ecoview-go/internal/errors"
)

// Export and import format identifiers.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// csvHeader is the fixed export column set. Cell values are written as-is:
// embedded commas are not quoted or escaped, a known limitation of the
// format.
const csvHeader = "ID,Date,Type,Species,Confidence,GreenCover,TreeCount,CreatedAt"

// ExportData serializes the full sorted record set as indented JSON or
// fixed-column CSV. Missing optional fields render as empty CSV cells.
func (s *Store) ExportData(format string) ([]byte, error) {
	analyses, err := s.GetAll(nil)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(format) {
	case FormatJSON:
		return json.MarshalIndent(analyses, "", "  ")
	case FormatCSV:
		return exportCSV(analyses), nil
	default:
		return nil, unsupportedFormatError(format)
	}
}

func exportCSV(analyses []Analysis) []byte {
	var b strings.Builder
	b.WriteString(csvHeader)
	b.WriteByte('\n')

	for i := range analyses {
		analysis := &analyses[i]

		confidence := ""
		if analysis.Confidence != nil {
			confidence = strconv.FormatFloat(*analysis.Confidence, 'f', -1, 64)
		}
		greenCover := ""
		if v, ok := analysis.Details.GreenCoverValue(); ok {
			greenCover = strconv.FormatFloat(v, 'f', -1, 64)
		}
		treeCount := ""
		if v, ok := analysis.Details.TreeCountValue(); ok {
			treeCount = strconv.Itoa(v)
		}
		createdAt := ""
		if !analysis.CreatedAt.IsZero() {
			createdAt = analysis.CreatedAt.Format(time.RFC3339)
		}

		fmt.Fprintf(&b, "%d,%s,%s,%s,%s,%s,%s,%s\n",
			analysis.ID, analysis.Date, analysis.Type, analysis.Species,
			confidence, greenCover, treeCount, createdAt)
	}

	return []byte(b.String())
}

// ImportData parses the payload and creates each record individually through
// the facade. A failing create is logged and skipped, not fatal to the
// batch. The returned count is the length of the fully-parsed set, not the
// number of records that were actually created.
func (s *Store) ImportData(payload []byte, format string) (int, error) {
	var records []Analysis

	switch strings.ToLower(format) {
	case FormatJSON:
		if err := json.Unmarshal(payload, &records); err != nil {
			return 0, errors.New(fmt.Errorf("parsing JSON import payload: %w", err)).
				Component("datastore").
				Category(errors.CategoryImportExport).
				Build()
		}
	case FormatCSV:
		records = parseCSV(payload)
	default:
		return 0, unsupportedFormatError(format)
	}

	for i := range records {
		record := records[i]
		record.ID = 0
		record.CreatedAt = time.Time{}
		record.UpdatedAt = time.Time{}

		if _, err := s.Create(&record); err != nil {
			getLogger().Warn("skipping import record that failed to persist",
				"index", i,
				"analysis_type", record.Type,
				"error", err)
		}
	}

	return len(records), nil
}

// parseCSV parses the CSV import format. Field names come from the header
// row, lower-cased and whitespace-stripped. Rows that fail to parse are
// logged and dropped from the returned set.
func parseCSV(payload []byte) []Analysis {
	text := strings.ReplaceAll(string(payload), "\r\n", "\n")
	lines := strings.Split(text, "\n")
	if len(lines) == 0 {
		return nil
	}

	header := strings.Split(lines[0], ",")
	names := make([]string, len(header))
	for i, h := range header {
		names[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var records []Analysis
	for lineNo, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		record, err := parseCSVRow(names, line)
		if err != nil {
			getLogger().Warn("skipping unparsable import row",
				"line", lineNo+2,
				"error", err)
			continue
		}
		records = append(records, record)
	}
	return records
}

func parseCSVRow(names []string, line string) (Analysis, error) {
	var analysis Analysis
	var greenCover *float64
	var treeCount *int

	cells := strings.Split(line, ",")
	for i, cell := range cells {
		if i >= len(names) {
			break
		}
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}

		switch names[i] {
		case "id", "createdat":
			// regenerated by the store
		case "date":
			analysis.Date = cell
		case "type":
			analysis.Type = cell
		case "species":
			analysis.Species = cell
		case "confidence":
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return Analysis{}, fmt.Errorf("bad confidence value %q: %w", cell, err)
			}
			analysis.Confidence = &v
		case "greencover":
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return Analysis{}, fmt.Errorf("bad greencover value %q: %w", cell, err)
			}
			greenCover = &v
		case "treecount":
			v, err := strconv.Atoi(cell)
			if err != nil {
				return Analysis{}, fmt.Errorf("bad treecount value %q: %w", cell, err)
			}
			treeCount = &v
		}
	}

	// The record type decides which typed variant the numeric columns feed;
	// values that don't match the type land in the open variant.
	switch {
	case analysis.Type == TypeGreenCover && greenCover != nil:
		analysis.Details = Details{GreenCover: &GreenCoverDetails{GreenCover: *greenCover}}
	case analysis.Type == TypeCount && treeCount != nil:
		analysis.Details = Details{Count: &TreeCountDetails{TreeCount: *treeCount}}
	default:
		extra := make(map[string]any)
		if greenCover != nil {
			extra["greenCover"] = *greenCover
		}
		if treeCount != nil {
			extra["treeCount"] = *treeCount
		}
		if len(extra) > 0 {
			analysis.Details = Details{Extra: extra}
		}
	}

	return analysis, nil
}

func unsupportedFormatError(format string) error {
	return errors.Newf("unsupported data format %q", format).
		Component("datastore").
		Category(errors.CategoryImportExport).
		Context("format", format).
		Build()
}
