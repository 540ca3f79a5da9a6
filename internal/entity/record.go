package entity

import (
	"time"
)

// ExtractionRecord is one row of per-file metadata. ID and ExtractedAt are
// assigned by the store on insert.
type ExtractionRecord struct {
	ID          int64     `json:"id"`
	FileName    string    `json:"file_name"`
	PageCount   int       `json:"page_count"`
	Identifier  *string   `json:"identifier"`
	FileSize    string    `json:"file_size"`
	ExtractedAt time.Time `json:"extracted_at"`
}

// HasIdentifier reports whether a CUFE was extracted for the file.
func (r ExtractionRecord) HasIdentifier() bool {
	return r.Identifier != nil && *r.Identifier != ""
}
