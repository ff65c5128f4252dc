package models

import "time"

// ReferenceDocument is an uploaded compliance document as presented to
// the request layer. UploadedAt and Summary come from the registry's
// local cache when available.
type ReferenceDocument struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	UploadedAt time.Time `json:"uploaded_at"`
	Summary    string    `json:"summary,omitempty"`
}

// StoredDocument is the document store's own view of one object.
type StoredDocument struct {
	ID         string
	Filename   string
	UploadedAt time.Time
}

// IndexInfo identifies one search index in the external index service.
type IndexInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ComplianceResult is the verdict for a single product against the
// active reference document.
type ComplianceResult struct {
	ProductName     string `json:"product_name"`
	Compliant       bool   `json:"compliant"`
	Explanation     string `json:"explanation"`
	MatchedFileInfo string `json:"matched_file_info,omitempty"`
	ExtractedNotes  string `json:"extracted_notes,omitempty"`
}
