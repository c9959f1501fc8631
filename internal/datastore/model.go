// model.go this code defines the data model for the analysis history
package datastore

import "time"

// Well-known analysis types. The type field is an open enumeration: callers
// may log their own type strings, these are the ones the EcoView pipeline
// produces.
const (
	TypeSpecies    = "species"
	TypeCount      = "count"
	TypePath       = "path"
	TypeGreenCover = "greencover"
)

// Analysis represents a single logged analysis event
type Analysis struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Date       string    `gorm:"index:idx_analyses_date" json:"date"` // YYYY-MM-DD, the record's logical timestamp
	Type       string    `gorm:"index:idx_analyses_type" json:"type"`
	Species    string    `gorm:"index:idx_analyses_species" json:"species,omitempty"`
	Confidence *float64  `gorm:"index:idx_analyses_confidence" json:"confidence,omitempty"` // [0,1], semantics vary by type
	Image      string    `gorm:"type:text" json:"image,omitempty"`                          // data URI or external reference, opaque here
	Details    Details   `gorm:"type:text" json:"metadata"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Patch describes a merge-patch against an existing Analysis. Nil fields are
// left untouched; audit timestamps are managed by the store.
type Patch struct {
	Date       *string
	Type       *string
	Species    *string
	Confidence *float64
	Image      *string
	Details    *Details
}

// apply merges the supplied fields onto the analysis.
func (p *Patch) apply(analysis *Analysis) {
	if p == nil {
		return
	}
	if p.Date != nil {
		analysis.Date = *p.Date
	}
	if p.Type != nil {
		analysis.Type = *p.Type
	}
	if p.Species != nil {
		analysis.Species = *p.Species
	}
	if p.Confidence != nil {
		analysis.Confidence = p.Confidence
	}
	if p.Image != nil {
		analysis.Image = *p.Image
	}
	if p.Details != nil {
		analysis.Details = *p.Details
	}
}

// Setting is one row of the auxiliary settings table
type Setting struct {
	Key       string    `gorm:"primaryKey;size:191" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName overrides the GORM table name for Setting
func (Setting) TableName() string {
	return "settings"
}

// AppMetadata is one row of the auxiliary application metadata table
type AppMetadata struct {
	Key       string    `gorm:"primaryKey;size:191" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName overrides the GORM table name for AppMetadata
func (AppMetadata) TableName() string {
	return "app_metadata"
}
