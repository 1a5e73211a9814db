// database/itinerary_store.go
package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gewnthar/flightscrape/logging"
	"github.com/gewnthar/flightscrape/models"
	"github.com/gewnthar/flightscrape/utils"
)

// SaveItineraries stores the normalized records of one run using a
// "clear and load" strategy: rows already stored for runID are replaced.
// Input order is kept in the position column.
func SaveItineraries(runID string, records []models.NormalizedItinerary) error {
	if DB == nil {
		return ErrNotInitialized
	}

	tx, err := DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for itineraries: %w", err)
	}
	defer tx.Rollback()

	if err := saveItineraries(tx, runID, records); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction for itineraries: %w", err)
	}

	logging.L().Infof("Database: saved %d itineraries for run %s", len(records), runID)
	return nil
}

func saveItineraries(tx *sql.Tx, runID string, records []models.NormalizedItinerary) error {
	// Step 1: Delete existing rows for this run.
	if _, err := tx.Exec("DELETE FROM itineraries WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("failed to delete old itineraries for run %s: %w", runID, err)
	}

	// Step 2: Insert new rows
	stmt, err := tx.Prepare(`
		INSERT INTO itineraries (
			run_id, position, origin, destination, cabin_code,
			display_airline_code, min_display_price, record, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare itinerary insert statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().UnixNano()
	for i, it := range records {
		record, err := json.Marshal(it)
		if err != nil {
			return fmt.Errorf("failed to encode itinerary %d of run %s: %w", i, runID, err)
		}

		var price sql.NullFloat64
		if it.MinDisplayPrice != nil {
			price = sql.NullFloat64{Float64: *it.MinDisplayPrice, Valid: true}
		}
		var airlineCode string
		if it.DisplayAirline.Code != nil {
			airlineCode = *it.DisplayAirline.Code
		}

		_, err = stmt.Exec(
			runID, i, columnText(it.Origin), columnText(it.Destination), it.CabinCode,
			columnText(airlineCode), price, string(record), now,
		)
		if err != nil {
			logging.L().Errorf("Database: failed to save itinerary %d of run %s: %v", i, runID, err)
			return fmt.Errorf("failed to execute itinerary insert for run %s position %d: %w", runID, i, err)
		}
	}
	return nil
}

// GetItinerariesForRun returns the stored records of a run in their
// original order. An unknown run yields an empty slice.
func GetItinerariesForRun(runID string) ([]models.NormalizedItinerary, error) {
	if DB == nil {
		return nil, ErrNotInitialized
	}

	rows, err := DB.Query(`
		SELECT position, record
		FROM itineraries
		WHERE run_id = ?
		ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query itineraries for run %s: %w", runID, err)
	}
	defer rows.Close()

	records := []models.NormalizedItinerary{}
	for rows.Next() {
		var (
			position int
			raw      string
		)
		if err := rows.Scan(&position, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan itinerary row for run %s: %w", runID, err)
		}
		var it models.NormalizedItinerary
		if err := utils.DecodeJSON([]byte(raw), &it); err != nil {
			return nil, fmt.Errorf("failed to decode itinerary %d of run %s: %w", position, runID, err)
		}
		records = append(records, it)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating itinerary rows: %w", err)
	}

	logging.L().Debugf("Database: retrieved %d itineraries for run %s", len(records), runID)
	return records, nil
}

const maxRouteColumnLen = 16

// columnText renders an origin/destination value for the route columns,
// cut to their width. The full value is kept in the record column.
func columnText(v any) string {
	var s string
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		s = val
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		s = string(b)
	}
	if r := []rune(s); len(r) > maxRouteColumnLen {
		s = string(r[:maxRouteColumnLen])
	}
	return s
}
