package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"fleet-route-service/internal/domain"
)

// SQLite backed cache for mode+origin->destination travel-time
// estimates. This is the default backend for local runs.
type SqliteTravelTimeCache struct {
	DB *sql.DB
}

func NewSqliteTravelTimeCache(db *sql.DB) *SqliteTravelTimeCache {
	return &SqliteTravelTimeCache{DB: db}
}

// Fetch cached durations for one origin and multiple destinations.
func (s *SqliteTravelTimeCache) GetMany(
	ctx context.Context,
	mode domain.TravelMode,
	origin domain.Location,
	destinations []domain.Location,
) (map[string]time.Duration, error) {
	if s.DB == nil {
		return nil, errors.New("travel time cache: db is nil")
	}

	if len(destinations) == 0 {
		return map[string]time.Duration{}, nil
	}

	originKey := origin.Key()
	seen := map[string]struct{}{}
	uniq := make([]string, 0, len(destinations))
	ph := make([]string, 0, len(destinations))
	for _, d := range destinations {
		k := d.Key()
		if k == originKey {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		uniq = append(uniq, k)
		ph = append(ph, "?")
	}

	if len(uniq) == 0 {
		return map[string]time.Duration{}, nil
	}

	args := make([]any, 0, 2+len(uniq))
	args = append(args, string(mode), originKey)
	for _, k := range uniq {
		args = append(args, k)
	}

	// SQLite does not support binding slices directly in an IN (...) clause.
	// Only the placeholder structure is interpolated; all values remain parameterized.
	q := fmt.Sprintf(`
	SELECT destination, duration_ms
    FROM travel_time_cache
    WHERE mode = ?
        AND origin = ?
        AND destination IN (%s);
	`, strings.Join(ph, ","))

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("get travel time cache: query travel_time_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]time.Duration, len(uniq))
	for rows.Next() {
		var dest string
		var ms int64
		if err := rows.Scan(&dest, &ms); err != nil {
			return nil, fmt.Errorf("get travel time cache: scan rows: %w", err)
		}
		out[dest] = time.Duration(ms) * time.Millisecond
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get travel time cache: row iteration: %w", err)
	}

	return out, nil
}

// Store many cached durations for a single origin.
func (s *SqliteTravelTimeCache) PutMany(
	ctx context.Context,
	mode domain.TravelMode,
	origin domain.Location,
	results map[string]time.Duration,
) error {
	if s.DB == nil {
		return errors.New("travel time cache: db is nil")
	}

	if len(results) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert travel time cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT OR REPLACE INTO travel_time_cache (mode, origin, destination, duration_ms)
    VALUES (?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("insert travel time cache: db prepare: %w", err)
	}
	defer stmt.Close()

	originKey := origin.Key()
	for dest, d := range results {
		if dest == "" {
			return fmt.Errorf("insert travel time cache: empty destination key")
		}

		if _, err := stmt.ExecContext(ctx, string(mode), originKey, dest, d.Milliseconds()); err != nil {
			return fmt.Errorf("insert travel time cache dest=%q: %w", dest, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert travel time cache commit: %w", err)
	}

	return nil
}
