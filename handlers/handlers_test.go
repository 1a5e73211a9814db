package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gewnthar/flightscrape/config"
	"github.com/gewnthar/flightscrape/database"
	"github.com/gewnthar/flightscrape/models"
	"github.com/gewnthar/flightscrape/scraper"
	"github.com/gewnthar/flightscrape/services"
)

const searchPayload = `{"results": [
  {"cabin": "economy", "displayAirline": {"code": "QF"},
   "legs": [{"duration": "1h 35m", "segments": [{"airline": "Qantas", "duration": "1h 35m"}]}],
   "optionsByFare": [{"displayPrice": "AUD 189", "provider": "Qantas"}]}
]}`

func newServer(t *testing.T, withDB bool) *httptest.Server {
	t.Helper()
	config.AppConfig = config.Default()
	config.AppConfig.Export.Dir = t.TempDir()
	services.InitPayloadCache(4, time.Minute)
	services.SetUploader(nil)
	services.SetAirlineDirectory(nil)

	client, err := scraper.NewHTTPClient(scraper.ClientOptions{Timeout: 2 * time.Second})
	require.NoError(t, err)
	services.SetFetcher(client)

	database.CloseDB()
	if withDB {
		require.NoError(t, database.InitDB(config.DatabaseConfig{Driver: database.DriverSQLite, Path: ":memory:"}))
	}

	mux := http.NewServeMux()
	RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		database.CloseDB()
	})
	return srv
}

func upstreamServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string, out interface{}) int {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealthHandler(t *testing.T) {
	srv := newServer(t, false)
	var body map[string]string
	assert.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/api/health", "", &body))
	assert.Equal(t, "disabled", body["database"])

	srv = newServer(t, true)
	assert.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/api/health", "", &body))
	assert.Equal(t, "ok", body["database"])

	assert.Equal(t, http.StatusMethodNotAllowed, do(t, http.MethodPost, srv.URL+"/api/health", "", nil))
}

func TestNormalizeItinerariesHandler(t *testing.T) {
	srv := newServer(t, false)

	var records []models.NormalizedItinerary
	status := do(t, http.MethodPost, srv.URL+"/api/itineraries/normalize?origin=syd&destination=mel", searchPayload, &records)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, records, 1)
	assert.Equal(t, "SYD", records[0].Origin)
	assert.Equal(t, "MEL", records[0].Destination)
	assert.Equal(t, "Qantas", *records[0].DisplayAirline.Name)
	assert.Equal(t, 189.0, *records[0].MinDisplayPrice)

	var empty []models.NormalizedItinerary
	require.Equal(t, http.StatusOK, do(t, http.MethodPost, srv.URL+"/api/itineraries/normalize", `{"unrelated": true}`, &empty))
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	var errBody map[string]string
	assert.Equal(t, http.StatusBadRequest, do(t, http.MethodPost, srv.URL+"/api/itineraries/normalize", `{"results": [`, &errBody))
	assert.Contains(t, errBody["error"], "Invalid JSON body")
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, http.MethodGet, srv.URL+"/api/itineraries/normalize", "", nil))
}

func TestNormalizeHandlerKeepsLargeIntegers(t *testing.T) {
	srv := newServer(t, false)

	body := `[{"legs": [{"segments": [{"flightNumber": 12345678901234567}]}], "optionsByFare": [{"id": 9007199254740993}]}]`
	var raw json.RawMessage
	require.Equal(t, http.StatusOK, do(t, http.MethodPost, srv.URL+"/api/itineraries/normalize", body, &raw))
	assert.Contains(t, string(raw), `"flightNumber":12345678901234567`)
	assert.Contains(t, string(raw), `"id":9007199254740993`)
}

func TestFetchThenListThenExport(t *testing.T) {
	srv := newServer(t, true)
	up := upstreamServer(t, http.StatusOK, searchPayload)

	var fetched models.FetchResult
	reqBody := `{"url": "` + up.URL + `", "origin": "SYD", "destination": "MEL", "date": "2025-06-01"}`
	require.Equal(t, http.StatusOK, do(t, http.MethodPost, srv.URL+"/api/itineraries/fetch", reqBody, &fetched))
	assert.Len(t, fetched.Itineraries, 1)
	assert.Equal(t, "2025-06-01", fetched.Run.SearchDate)
	assert.False(t, fetched.CacheHit)

	var latest models.FetchResult
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/api/itineraries?origin=syd&destination=mel", "", &latest))
	assert.Equal(t, fetched.Run.RunID, latest.Run.RunID)
	assert.Len(t, latest.Itineraries, 1)

	var runs []models.FetchRun
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/api/admin/runs?limit=5", "", &runs))
	require.Len(t, runs, 1)

	var exported models.ExportResult
	require.Equal(t, http.StatusOK, do(t, http.MethodPost, srv.URL+"/api/admin/export/all?run_id="+fetched.Run.RunID, "", &exported))
	assert.Equal(t, fetched.Run.RunID, exported.RunID)
	require.Len(t, exported.Files, 3)
	for _, f := range exported.Files {
		assert.FileExists(t, f)
		assert.Equal(t, config.AppConfig.Export.Dir, filepath.Dir(f))
	}
}

func TestErrorStatuses(t *testing.T) {
	srv := newServer(t, true)
	missing := upstreamServer(t, http.StatusNotFound, "gone")

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"bad date", http.MethodPost, "/api/itineraries/fetch", `{"url": "http://x", "date": "June 1"}`, http.StatusBadRequest},
		{"missing url", http.MethodPost, "/api/itineraries/fetch", `{}`, http.StatusBadRequest},
		{"upstream 404", http.MethodPost, "/api/itineraries/fetch", `{"url": "` + missing.URL + `"}`, http.StatusBadGateway},
		{"fetch wrong method", http.MethodGet, "/api/itineraries/fetch", "", http.StatusMethodNotAllowed},
		{"route not stored", http.MethodGet, "/api/itineraries?origin=LHR&destination=JFK", "", http.StatusNotFound},
		{"route params missing", http.MethodGet, "/api/itineraries?origin=LHR", "", http.StatusBadRequest},
		{"unknown format", http.MethodPost, "/api/admin/export/pdf?run_id=abc", "", http.StatusBadRequest},
		{"missing run id", http.MethodPost, "/api/admin/export/csv", "", http.StatusBadRequest},
		{"unknown run", http.MethodPost, "/api/admin/export/csv?run_id=abc", "", http.StatusNotFound},
		{"export bad path", http.MethodPost, "/api/admin/export/csv/extra?run_id=abc", "", http.StatusBadRequest},
		{"export wrong method", http.MethodGet, "/api/admin/export/csv?run_id=abc", "", http.StatusMethodNotAllowed},
		{"bad limit", http.MethodGet, "/api/admin/runs?limit=-1", "", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var body map[string]string
			assert.Equal(t, tc.want, do(t, tc.method, srv.URL+tc.path, tc.body, &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestStoredRoutesWithoutDatabase(t *testing.T) {
	srv := newServer(t, false)
	var body map[string]string
	assert.Equal(t, http.StatusServiceUnavailable, do(t, http.MethodGet, srv.URL+"/api/itineraries?origin=SYD&destination=MEL", "", &body))
	assert.Equal(t, http.StatusServiceUnavailable, do(t, http.MethodGet, srv.URL+"/api/admin/runs", "", &body))
}
