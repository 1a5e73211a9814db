// handlers/itinerary_handler.go
package handlers

import (
	"net/http"

	"github.com/gewnthar/flightscrape/models"
	"github.com/gewnthar/flightscrape/normalizer"
	"github.com/gewnthar/flightscrape/services"
	"github.com/gewnthar/flightscrape/utils"
)

// NormalizeItinerariesHandler normalizes a payload posted by the caller.
// Expects POST /api/itineraries/normalize?origin=CGK&destination=SYD with any
// JSON body; origin and destination are optional defaults.
func NormalizeItinerariesHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var payload interface{}
	if !decodeBody(w, r, &payload) {
		return
	}

	defaults := normalizer.Defaults{
		Origin:      utils.NormalizeAirportCode(r.URL.Query().Get("origin")),
		Destination: utils.NormalizeAirportCode(r.URL.Query().Get("destination")),
	}
	respondWithJSON(w, http.StatusOK, services.NormalizePayload(payload, defaults))
}

// FetchItinerariesHandler fetches an upstream search URL and normalizes it.
// Expects POST /api/itineraries/fetch with a models.FetchRequest body.
func FetchItinerariesHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.FetchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := services.FetchAndNormalize(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// GetItinerariesHandler returns the latest stored run for a route.
// Expects GET /api/itineraries?origin=CGK&destination=SYD
func GetItinerariesHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	origin := r.URL.Query().Get("origin")
	destination := r.URL.Query().Get("destination")
	if origin == "" || destination == "" {
		respondWithError(w, http.StatusBadRequest, "Query parameters 'origin' and 'destination' are required")
		return
	}

	result, err := services.GetLatestItineraries(origin, destination)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}
