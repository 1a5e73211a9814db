// models/api_models.go
package models

// FetchRequest is the expected JSON body for the /api/itineraries/fetch endpoint.
type FetchRequest struct {
	URL         string `json:"url"`
	Origin      string `json:"origin"`      // e.g., "CGK"
	Destination string `json:"destination"` // e.g., "SYD"
	Date        string `json:"date"`        // Expected format "YYYY-MM-DD", optional
	Selector    string `json:"selector"`    // CSS selector for HTML sources, optional
}

// FetchResult is returned by the fetch endpoint and the CLI.
type FetchResult struct {
	Run         FetchRun              `json:"run"`
	CacheHit    bool                  `json:"cache_hit"`
	Itineraries []NormalizedItinerary `json:"itineraries"`
}

// ExportResult lists files written by an export.
type ExportResult struct {
	RunID    string   `json:"run_id,omitempty"`
	Files    []string `json:"files"`
	Uploaded []string `json:"uploaded,omitempty"`
}
