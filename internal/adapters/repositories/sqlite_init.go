package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Initialize the SQLite database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createStopsQuery := `
	CREATE TABLE IF NOT EXISTS stops (
		stop_id INTEGER PRIMARY KEY AUTOINCREMENT,
		lat REAL NOT NULL,
		lon REAL NOT NULL
	);
	`

	createTravelTimeCacheQuery := `
	CREATE TABLE IF NOT EXISTS travel_time_cache (
        mode TEXT NOT NULL,
        origin TEXT NOT NULL,
        destination TEXT NOT NULL,
        duration_ms INTEGER NOT NULL,
        PRIMARY KEY (mode, origin, destination)
    );
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_travel_time_cache_destination_origin
    ON travel_time_cache(destination, origin);
	`

	statements := []string{
		createStopsQuery,
		createTravelTimeCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type StopSeed struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Populate the database with stop data from a JSON file. Existing rows
// are kept; seeding an already-populated database is a no-op.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed stops: read %q: %w", jsonPath, err)
	}

	var data []StopSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed stops: parse json: %w", err)
	}

	for i, item := range data {
		if item.Lat < -90 || item.Lat > 90 || item.Lon < -180 || item.Lon > 180 {
			return fmt.Errorf("seed stops: invalid coordinates at index %d: (%f, %f)", i+1, item.Lat, item.Lon)
		}
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM stops;`).Scan(&count); err != nil {
		return fmt.Errorf("seed stops: count existing rows: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed stops: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
	INSERT INTO stops (
		lat,
		lon
	)
	VALUES (?, ?);
	`)
	if err != nil {
		return fmt.Errorf("seed stops: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, s := range data {
		if _, err := stmt.Exec(s.Lat, s.Lon); err != nil {
			return fmt.Errorf("seed stops: insert index=%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed stops: commit tx: %w", err)
	}

	return nil
}
