// database/schema.go
package database

import "fmt"

// Timestamps are stored as BIGINT Unix nanoseconds so both drivers read
// them back the same way.
var schemaStatements = map[string][]string{
	DriverMySQL: {
		`CREATE TABLE IF NOT EXISTS fetch_runs (
			run_id VARCHAR(64) NOT NULL PRIMARY KEY,
			source_url TEXT NOT NULL,
			origin VARCHAR(16) NOT NULL DEFAULT '',
			destination VARCHAR(16) NOT NULL DEFAULT '',
			search_date VARCHAR(10) NOT NULL DEFAULT '',
			itinerary_count INT NOT NULL DEFAULT 0,
			payload_hash VARCHAR(64) NOT NULL DEFAULT '',
			fetched_at BIGINT NOT NULL,
			INDEX idx_fetch_runs_route (origin, destination, fetched_at)
		) CHARACTER SET utf8mb4`,
		`CREATE TABLE IF NOT EXISTS itineraries (
			run_id VARCHAR(64) NOT NULL,
			position INT NOT NULL,
			origin VARCHAR(16) NOT NULL DEFAULT '',
			destination VARCHAR(16) NOT NULL DEFAULT '',
			cabin_code VARCHAR(8) NOT NULL DEFAULT '',
			display_airline_code VARCHAR(16) NOT NULL DEFAULT '',
			min_display_price DOUBLE NULL,
			record MEDIUMTEXT NOT NULL,
			created_at BIGINT NOT NULL,
			PRIMARY KEY (run_id, position)
		) CHARACTER SET utf8mb4`,
	},
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS fetch_runs (
			run_id VARCHAR(64) NOT NULL PRIMARY KEY,
			source_url TEXT NOT NULL,
			origin VARCHAR(16) NOT NULL DEFAULT '',
			destination VARCHAR(16) NOT NULL DEFAULT '',
			search_date VARCHAR(10) NOT NULL DEFAULT '',
			itinerary_count INT NOT NULL DEFAULT 0,
			payload_hash VARCHAR(64) NOT NULL DEFAULT '',
			fetched_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fetch_runs_route ON fetch_runs (origin, destination, fetched_at)`,
		`CREATE TABLE IF NOT EXISTS itineraries (
			run_id VARCHAR(64) NOT NULL,
			position INT NOT NULL,
			origin VARCHAR(16) NOT NULL DEFAULT '',
			destination VARCHAR(16) NOT NULL DEFAULT '',
			cabin_code VARCHAR(8) NOT NULL DEFAULT '',
			display_airline_code VARCHAR(16) NOT NULL DEFAULT '',
			min_display_price DOUBLE NULL,
			record MEDIUMTEXT NOT NULL,
			created_at BIGINT NOT NULL,
			PRIMARY KEY (run_id, position)
		)`,
	},
}

// EnsureSchema creates the tables if they do not exist.
func EnsureSchema() error {
	if DB == nil {
		return ErrNotInitialized
	}
	stmts, ok := schemaStatements[driver]
	if !ok {
		return fmt.Errorf("no schema for driver %q", driver)
	}
	for _, stmt := range stmts {
		if _, err := DB.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
