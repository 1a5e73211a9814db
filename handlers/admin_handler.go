// handlers/admin_handler.go
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gewnthar/flightscrape/database"
	"github.com/gewnthar/flightscrape/services"
)

// ExportRunHandler writes the stored itineraries of a run to disk.
// Expects POST requests to /api/admin/export/{format}?run_id=...
// where {format} is "json", "csv", "xlsx", or "all".
func ExportRunHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	pathParts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	// Expected path: api/admin/export/{format}
	// pathParts: ["api", "admin", "export", "{format}"]
	if len(pathParts) != 4 || pathParts[3] == "" {
		respondWithError(w, http.StatusBadRequest, "Invalid path. Expected /api/admin/export/{format}")
		return
	}

	formats, err := services.ParseFormats(pathParts[3])
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'run_id' is required")
		return
	}

	result, err := services.ExportRun(r.Context(), runID, formats, "")
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// ListRunsHandler lists recent fetch runs.
// Expects GET /api/admin/runs?limit=20
func ListRunsHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondWithError(w, http.StatusBadRequest, "Query parameter 'limit' must be a non-negative integer")
			return
		}
		limit = n
	}

	runs, err := database.ListFetchRuns(limit)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, runs)
}
