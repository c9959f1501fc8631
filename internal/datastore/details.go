// details.go models the per-type analysis metadata as a tagged union with one
// strongly typed variant per well-known analysis type, plus an open variant
// for caller-supplied types. The union serializes to a single JSON object
// carrying a "kind" discriminator, used both for the database column and for
// export payloads.
package datastore

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// SpeciesDetails carries metadata for species-identification analyses.
type SpeciesDetails struct {
	Characteristics []string `json:"characteristics,omitempty"`
	Algorithm       string   `json:"algorithm,omitempty"`
	ProcessingTime  float64  `json:"processingTime,omitempty"` // milliseconds
}

// TreeCountDetails carries metadata for tree-count analyses.
type TreeCountDetails struct {
	TreeCount     int     `json:"treeCount"`
	CanopyDensity float64 `json:"canopyDensity,omitempty"`
}

// PathDetails carries metadata for optimal-path analyses.
type PathDetails struct {
	PathLength float64 `json:"pathLength,omitempty"`
	Waypoints  int     `json:"waypoints,omitempty"`
	PathPoints int     `json:"pathPoints,omitempty"`
	Algorithm  string  `json:"algorithm,omitempty"`
}

// GreenCoverDetails carries metadata for green-cover analyses.
type GreenCoverDetails struct {
	GreenCover float64 `json:"greenCover"`
	IdleLand   float64 `json:"idleLand,omitempty"`
}

// Details is the tagged union over the metadata variants. At most one typed
// variant is set; Extra holds the metadata of caller-supplied analysis types.
type Details struct {
	Species    *SpeciesDetails    `json:"-"`
	Count      *TreeCountDetails  `json:"-"`
	Path       *PathDetails       `json:"-"`
	GreenCover *GreenCoverDetails `json:"-"`
	Extra      map[string]any     `json:"-"`
}

// Kind returns the analysis type the set variant belongs to, or an empty
// string for the open variant.
func (d *Details) Kind() string {
	switch {
	case d.Species != nil:
		return TypeSpecies
	case d.Count != nil:
		return TypeCount
	case d.Path != nil:
		return TypePath
	case d.GreenCover != nil:
		return TypeGreenCover
	default:
		return ""
	}
}

// IsZero reports whether no variant and no open metadata is set.
func (d *Details) IsZero() bool {
	return d.Kind() == "" && len(d.Extra) == 0
}

// GreenCoverValue returns the green-cover percentage when the union carries
// one, from the typed variant or the open variant.
func (d *Details) GreenCoverValue() (float64, bool) {
	if d.GreenCover != nil {
		return d.GreenCover.GreenCover, true
	}
	return extraFloat(d.Extra, "greenCover")
}

// TreeCountValue returns the tree count when the union carries one.
func (d *Details) TreeCountValue() (int, bool) {
	if d.Count != nil {
		return d.Count.TreeCount, true
	}
	if v, ok := extraFloat(d.Extra, "treeCount"); ok {
		return int(v), true
	}
	return 0, false
}

func extraFloat(extra map[string]any, key string) (float64, bool) {
	switch v := extra[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// MarshalJSON flattens the set variant into one object with a "kind"
// discriminator. The open variant marshals as-is, without a discriminator.
func (d Details) MarshalJSON() ([]byte, error) {
	kind := d.Kind()

	var variant any
	switch kind {
	case TypeSpecies:
		variant = d.Species
	case TypeCount:
		variant = d.Count
	case TypePath:
		variant = d.Path
	case TypeGreenCover:
		variant = d.GreenCover
	default:
		if len(d.Extra) == 0 {
			return []byte("{}"), nil
		}
		return json.Marshal(d.Extra)
	}

	raw, err := json.Marshal(variant)
	if err != nil {
		return nil, err
	}
	fields := make(map[string]any)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	fields["kind"] = kind
	return json.Marshal(fields)
}

// UnmarshalJSON decodes the variant selected by the "kind" discriminator.
// Objects without a known discriminator land in the open variant unchanged.
func (d *Details) UnmarshalJSON(data []byte) error {
	*d = Details{}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	var probe struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	switch probe.Kind {
	case TypeSpecies:
		d.Species = &SpeciesDetails{}
		return json.Unmarshal(data, d.Species)
	case TypeCount:
		d.Count = &TreeCountDetails{}
		return json.Unmarshal(data, d.Count)
	case TypePath:
		d.Path = &PathDetails{}
		return json.Unmarshal(data, d.Path)
	case TypeGreenCover:
		d.GreenCover = &GreenCoverDetails{}
		return json.Unmarshal(data, d.GreenCover)
	default:
		// Unknown kinds keep every field, discriminator included, so the
		// payload round-trips.
		var extra map[string]any
		if err := json.Unmarshal(data, &extra); err != nil {
			return err
		}
		if len(extra) > 0 {
			d.Extra = extra
		}
		return nil
	}
}

// Value implements driver.Valuer, storing the union as a JSON text column.
func (d Details) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	data, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (d *Details) Scan(value any) error {
	*d = Details{}
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, d)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("unsupported details column type %T", value)
	}
}
