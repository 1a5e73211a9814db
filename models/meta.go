// models/meta.go
package models

import "time"

// FetchRun records one retrieval of an upstream search payload and how many
// itineraries were normalized out of it.
type FetchRun struct {
	RunID          string    `db:"run_id" json:"run_id"`
	SourceURL      string    `db:"source_url" json:"source_url"`
	Origin         string    `db:"origin" json:"origin,omitempty"`
	Destination    string    `db:"destination" json:"destination,omitempty"`
	SearchDate     string    `db:"search_date" json:"search_date,omitempty"`
	ItineraryCount int       `db:"itinerary_count" json:"itinerary_count"`
	PayloadHash    string    `db:"payload_hash" json:"payload_hash,omitempty"` // SHA-256 of the raw body
	FetchedAt      time.Time `db:"fetched_at" json:"fetched_at"`
}
