// services/normalize_service.go
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/gewnthar/flightscrape/airlines"
	"github.com/gewnthar/flightscrape/config"
	"github.com/gewnthar/flightscrape/database"
	"github.com/gewnthar/flightscrape/exporter"
	"github.com/gewnthar/flightscrape/logging"
	"github.com/gewnthar/flightscrape/models"
	"github.com/gewnthar/flightscrape/normalizer"
	"github.com/gewnthar/flightscrape/scraper"
	"github.com/gewnthar/flightscrape/utils"
)

// ErrInvalidRequest marks caller mistakes (missing URL, unknown format...).
var ErrInvalidRequest = errors.New("invalid request")

// PayloadFetcher retrieves raw upstream bodies. *scraper.HTTPClient
// implements it.
type PayloadFetcher interface {
	GetRaw(ctx context.Context, url string) ([]byte, error)
}

type cachedPayload struct {
	body      []byte
	fetchedAt time.Time
}

var (
	stateMu      sync.RWMutex
	payloadCache *expirable.LRU[string, cachedPayload]
	fetcher      PayloadFetcher
	itinNorm     = normalizer.New(nil)
)

// Init wires the services from cfg: HTTP client, payload cache, airline
// directory overrides and, when enabled, the object store uploader.
func Init(cfg config.Config) error {
	client, err := scraper.NewHTTPClient(scraper.OptionsFromConfig(cfg.Source))
	if err != nil {
		return fmt.Errorf("failed to create HTTP client: %w", err)
	}
	SetFetcher(client)

	InitPayloadCache(cfg.Cache.Size, cfg.Cache.TTL)

	dir, err := airlines.LoadWithOverrides(cfg.Airlines.DirectoryPath)
	if err != nil {
		return fmt.Errorf("failed to load airline directory: %w", err)
	}
	SetAirlineDirectory(dir)
	logging.L().Infof("Service: airline directory has %d entries", dir.Len())

	if cfg.ObjectStore.Enabled {
		up, err := exporter.NewS3Uploader(cfg.ObjectStore)
		if err != nil {
			return fmt.Errorf("failed to create uploader: %w", err)
		}
		SetUploader(up)
		logging.L().Infof("Service: exports will be uploaded to bucket %s", cfg.ObjectStore.Bucket)
	} else {
		SetUploader(nil)
	}
	return nil
}

// InitPayloadCache (re)creates the raw payload cache keyed by source URL.
// A size of zero or less disables caching.
func InitPayloadCache(size int, ttl time.Duration) {
	stateMu.Lock()
	defer stateMu.Unlock()
	if size <= 0 {
		payloadCache = nil
		logging.L().Info("Service: payload cache disabled")
		return
	}
	payloadCache = expirable.NewLRU[string, cachedPayload](size, nil, ttl)
	logging.L().Infof("Service: payload cache ready (size %d, ttl %s)", size, ttl)
}

// SetFetcher replaces the upstream fetcher.
func SetFetcher(f PayloadFetcher) {
	stateMu.Lock()
	defer stateMu.Unlock()
	fetcher = f
}

// SetAirlineDirectory makes subsequent normalization resolve airlines
// against dir. nil restores the built-in directory.
func SetAirlineDirectory(dir *airlines.Directory) {
	stateMu.Lock()
	defer stateMu.Unlock()
	itinNorm = normalizer.New(dir)
}

func currentNormalizer() *normalizer.Normalizer {
	stateMu.RLock()
	defer stateMu.RUnlock()
	return itinNorm
}

// NormalizePayload runs the normalizer over an already decoded payload.
func NormalizePayload(payload any, defaults normalizer.Defaults) []models.NormalizedItinerary {
	records := currentNormalizer().Normalize(payload, defaults)
	logging.L().Infof("Service: normalized %d itineraries (defaults %s-%s)",
		len(records), defaults.Origin, defaults.Destination)
	return records
}

// FetchAndNormalize retrieves req.URL (through the payload cache), normalizes
// the payload with the request's route as defaults, and stores the run when
// a database is configured.
func FetchAndNormalize(ctx context.Context, req models.FetchRequest) (*models.FetchResult, error) {
	req, err := validateRequest(req)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.URL) == "" {
		return nil, fmt.Errorf("%w: url is required", ErrInvalidRequest)
	}

	body, cacheHit, err := fetchPayload(ctx, req.URL)
	if err != nil {
		return nil, err
	}

	result, err := ingest(req, body)
	if err != nil {
		return nil, err
	}
	result.CacheHit = cacheHit
	return result, nil
}

// IngestPayload normalizes a body obtained elsewhere (a local file, say).
// source is recorded as the run's source URL.
func IngestPayload(source string, body []byte, req models.FetchRequest) (*models.FetchResult, error) {
	req, err := validateRequest(req)
	if err != nil {
		return nil, err
	}
	req.URL = source
	return ingest(req, body)
}

// GetLatestItineraries returns the most recent stored run for a route.
func GetLatestItineraries(origin, destination string) (*models.FetchResult, error) {
	origin = utils.NormalizeAirportCode(origin)
	destination = utils.NormalizeAirportCode(destination)
	if origin == "" || destination == "" {
		return nil, fmt.Errorf("%w: origin and destination are required", ErrInvalidRequest)
	}

	run, err := database.GetLatestFetchRunForRoute(origin, destination)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("no itineraries stored for %s-%s: %w", origin, destination, database.ErrNotFound)
	}

	records, err := database.GetItinerariesForRun(run.RunID)
	if err != nil {
		return nil, err
	}
	return &models.FetchResult{Run: *run, Itineraries: records}, nil
}

func validateRequest(req models.FetchRequest) (models.FetchRequest, error) {
	date, err := utils.NormalizeRouteDate(req.Date)
	if err != nil {
		return req, err
	}
	req.Date = date
	req.URL = strings.TrimSpace(req.URL)
	req.Origin = utils.NormalizeAirportCode(req.Origin)
	req.Destination = utils.NormalizeAirportCode(req.Destination)
	return req, nil
}

func fetchPayload(ctx context.Context, url string) ([]byte, bool, error) {
	stateMu.RLock()
	cache, f := payloadCache, fetcher
	stateMu.RUnlock()

	if cache != nil {
		if cached, ok := cache.Get(url); ok {
			logging.L().Infof("Service: cache hit for %s (fetched %s)", url, cached.fetchedAt.Format(time.RFC3339))
			return cached.body, true, nil
		}
	}
	if f == nil {
		return nil, false, fmt.Errorf("no payload fetcher configured")
	}

	body, err := f.GetRaw(ctx, url)
	if err != nil {
		logging.L().Errorf("Service: failed to fetch %s: %v", url, err)
		return nil, false, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	if cache != nil {
		cache.Add(url, cachedPayload{body: body, fetchedAt: time.Now().UTC()})
	}
	return body, false, nil
}

func ingest(req models.FetchRequest, body []byte) (*models.FetchResult, error) {
	payload, err := decodePayload(body, req.Selector)
	if err != nil {
		return nil, fmt.Errorf("failed to decode payload from %s: %w", req.URL, err)
	}

	records := NormalizePayload(payload, normalizer.Defaults{Origin: req.Origin, Destination: req.Destination})

	sum := sha256.Sum256(body)
	run := models.FetchRun{
		RunID:          uuid.NewString(),
		SourceURL:      req.URL,
		Origin:         req.Origin,
		Destination:    req.Destination,
		SearchDate:     req.Date,
		ItineraryCount: len(records),
		PayloadHash:    hex.EncodeToString(sum[:]),
		FetchedAt:      time.Now().UTC(),
	}

	if database.Enabled() {
		if err := database.SaveRun(run, records); err != nil {
			return nil, err
		}
	}

	return &models.FetchResult{Run: run, Itineraries: records}, nil
}

// decodePayload accepts a JSON body, or an HTML page carrying its payload
// in a script block matched by selector (or the configured one).
func decodePayload(body []byte, selector string) (any, error) {
	if selector == "" {
		selector = config.AppConfig.Source.HTMLSelector
	}
	return scraper.DecodePayload(body, selector)
}
