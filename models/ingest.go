package models

import "time"

// IngestReport describes the outcome of one catalog ingestion pass.
// Malformed rows are skipped, not fatal; the count is kept queryable
// instead of being discarded.
type IngestReport struct {
	TotalProducts int       `json:"total_products"`
	MalformedRows int       `json:"malformed_rows"`
	LoadedAt      time.Time `json:"loaded_at"`
}
