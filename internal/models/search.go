package models

import "time"

// SearchRecord is one logged search request. The log is intentionally
// simple: enough to see what users look for, nothing more.
type SearchRecord struct {
	ID        int       `json:"id"`         // ID is the unique identifier of the log entry.
	Query     string    `json:"query"`      // Query is the free-text query the caller supplied.
	Lat       float64   `json:"lat"`        // Lat is the latitude of the search center.
	Lon       float64   `json:"lon"`        // Lon is the longitude of the search center.
	CreatedAt time.Time `json:"created_at"` // CreatedAt is when the search was made.
}
