// handlers/routes.go
package handlers

import (
	"net/http"

	"github.com/gewnthar/flightscrape/database"
	"github.com/gewnthar/flightscrape/logging"
)

// RegisterRoutes mounts every API endpoint on mux.
func RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", HealthHandler)

	mux.HandleFunc("/api/itineraries", GetItinerariesHandler)
	mux.HandleFunc("/api/itineraries/normalize", NormalizeItinerariesHandler)
	mux.HandleFunc("/api/itineraries/fetch", FetchItinerariesHandler)

	// Admin routes
	mux.HandleFunc("/api/admin/export/", ExportRunHandler) // Path ends with / to catch sub-paths
	mux.HandleFunc("/api/admin/runs", ListRunsHandler)
}

// HealthHandler reports service health; the database is pinged when one is
// configured.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	if !database.Enabled() {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": "disabled"})
		return
	}
	if err := database.Ping(); err != nil {
		logging.L().Errorf("API: health check failed: DB ping error: %v", err)
		respondWithJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "message": "database connection error"})
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": "ok"})
}
