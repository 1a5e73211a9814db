// handlers/respond.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gewnthar/flightscrape/database"
	"github.com/gewnthar/flightscrape/logging"
	"github.com/gewnthar/flightscrape/scraper"
	"github.com/gewnthar/flightscrape/services"
	"github.com/gewnthar/flightscrape/utils"
)

// maxBodyBytes caps request bodies; search payloads are large but not unbounded.
const maxBodyBytes = 16 << 20

// Helper to respond with JSON
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logging.L().Errorf("API: failed to marshal JSON response: %v", err)
		http.Error(w, `{"error":"Failed to marshal JSON response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Helper to respond with an error
func respondWithError(w http.ResponseWriter, code int, message string) {
	logging.L().Warnf("API: error %d: %s", code, message)
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithServiceError maps service and store errors to a status code.
func respondWithServiceError(w http.ResponseWriter, err error) {
	var statusErr *scraper.StatusError
	switch {
	case errors.Is(err, services.ErrInvalidRequest), errors.Is(err, utils.ErrInvalidDate):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, database.ErrNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, database.ErrNotInitialized):
		respondWithError(w, http.StatusServiceUnavailable, "persistence is not configured")
	case errors.As(err, &statusErr), errors.Is(err, scraper.ErrNoEmbeddedJSON):
		respondWithError(w, http.StatusBadGateway, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, err.Error())
	}
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		respondWithError(w, http.StatusMethodNotAllowed, "Only "+method+" method is allowed")
		return false
	}
	return true
}

// decodeBody reads one JSON value into dst, keeping numbers exact.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := utils.DecodeJSONReader(r.Body, dst); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON body: "+err.Error())
		return false
	}
	return true
}
