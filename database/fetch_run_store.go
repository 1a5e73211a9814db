// database/fetch_run_store.go
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gewnthar/flightscrape/logging"
	"github.com/gewnthar/flightscrape/models"
)

// ErrNotFound is returned when a lookup by ID matches nothing.
var ErrNotFound = errors.New("not found")

const fetchRunColumns = `run_id, source_url, origin, destination, search_date,
	itinerary_count, payload_hash, fetched_at`

// execer is the part of *sql.DB and *sql.Tx the writers need.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// LogFetchRun inserts or replaces the record of one upstream retrieval.
func LogFetchRun(run models.FetchRun) error {
	if DB == nil {
		return ErrNotInitialized
	}
	if err := logFetchRun(DB, run); err != nil {
		return err
	}
	logging.L().Infof("Database: logged fetch run %s (%s-%s, %d itineraries)",
		run.RunID, run.Origin, run.Destination, run.ItineraryCount)
	return nil
}

// SaveRun stores a run and its itineraries in one transaction, so a run is
// never visible without its records.
func SaveRun(run models.FetchRun, records []models.NormalizedItinerary) error {
	if DB == nil {
		return ErrNotInitialized
	}

	tx, err := DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for run %s: %w", run.RunID, err)
	}
	defer tx.Rollback()

	if err := logFetchRun(tx, run); err != nil {
		return err
	}
	if err := saveItineraries(tx, run.RunID, records); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", run.RunID, err)
	}

	logging.L().Infof("Database: saved run %s (%s-%s) with %d itineraries",
		run.RunID, run.Origin, run.Destination, len(records))
	return nil
}

func logFetchRun(ex execer, run models.FetchRun) error {
	if run.RunID == "" {
		return fmt.Errorf("fetch run has no run_id")
	}
	if run.FetchedAt.IsZero() {
		run.FetchedAt = time.Now().UTC()
	}

	_, err := ex.Exec(`
		REPLACE INTO fetch_runs (`+fetchRunColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.SourceURL, columnText(run.Origin), columnText(run.Destination), run.SearchDate,
		run.ItineraryCount, run.PayloadHash, run.FetchedAt.UnixNano(),
	)
	if err != nil {
		logging.L().Errorf("Database: failed to log fetch run %s: %v", run.RunID, err)
		return fmt.Errorf("failed to log fetch run %s: %w", run.RunID, err)
	}
	return nil
}

// GetFetchRun loads one run by ID. It returns ErrNotFound when there is none.
func GetFetchRun(runID string) (*models.FetchRun, error) {
	if DB == nil {
		return nil, ErrNotInitialized
	}
	row := DB.QueryRow(`SELECT `+fetchRunColumns+` FROM fetch_runs WHERE run_id = ?`, runID)
	run, err := scanFetchRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("fetch run %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query fetch run %s: %w", runID, err)
	}
	return run, nil
}

// GetLatestFetchRunForRoute returns the most recent run for an
// origin/destination pair, or nil when the route was never fetched.
func GetLatestFetchRunForRoute(origin, destination string) (*models.FetchRun, error) {
	if DB == nil {
		return nil, ErrNotInitialized
	}
	row := DB.QueryRow(`
		SELECT `+fetchRunColumns+`
		FROM fetch_runs
		WHERE origin = ? AND destination = ?
		ORDER BY fetched_at DESC
		LIMIT 1`, columnText(origin), columnText(destination))

	run, err := scanFetchRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		logging.L().Debugf("Database: no fetch run stored for %s-%s", origin, destination)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest fetch run for %s-%s: %w", origin, destination, err)
	}
	return run, nil
}

// ListFetchRuns returns up to limit runs, newest first.
func ListFetchRuns(limit int) ([]models.FetchRun, error) {
	if DB == nil {
		return nil, ErrNotInitialized
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := DB.Query(`
		SELECT `+fetchRunColumns+`
		FROM fetch_runs
		ORDER BY fetched_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query fetch runs: %w", err)
	}
	defer rows.Close()

	runs := []models.FetchRun{}
	for rows.Next() {
		run, err := scanFetchRun(rows)
		if err != nil {
			logging.L().Errorf("Database: failed to scan fetch run row: %v", err)
			continue
		}
		runs = append(runs, *run)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fetch run rows: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFetchRun(s scanner) (*models.FetchRun, error) {
	var (
		run       models.FetchRun
		fetchedAt int64
	)
	err := s.Scan(
		&run.RunID, &run.SourceURL, &run.Origin, &run.Destination, &run.SearchDate,
		&run.ItineraryCount, &run.PayloadHash, &fetchedAt,
	)
	if err != nil {
		return nil, err
	}
	run.FetchedAt = time.Unix(0, fetchedAt).UTC()
	return &run, nil
}
