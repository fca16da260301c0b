package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fleet-route-service/internal/domain"
	"fleet-route-service/internal/platform/obs"
)

// SQLTravelTimeCache is a Postgres-backed cache for mode+origin->destination
// travel-time estimates.
type SQLTravelTimeCache struct {
	DB *sql.DB
}

func NewSQLTravelTimeCache(db *sql.DB) *SQLTravelTimeCache {
	return &SQLTravelTimeCache{DB: db}
}

// Fetch cached durations for one origin and multiple destinations.
func (s *SQLTravelTimeCache) GetMany(
	ctx context.Context,
	mode domain.TravelMode,
	origin domain.Location,
	destinations []domain.Location,
) (_ map[string]time.Duration, err error) {
	defer obs.Time(ctx, "traveltime.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("travel time cache: db is nil")
	}

	if len(destinations) == 0 {
		return map[string]time.Duration{}, nil
	}

	originKey := origin.Key()
	seen := map[string]struct{}{}
	uniq := make([]string, 0, len(destinations))
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
	}

	if len(uniq) == 0 {
		return map[string]time.Duration{}, nil
	}

	q := `
	SELECT destination, duration_ms
    FROM travel_time_cache
    WHERE mode = $1
        AND origin = $2
        AND destination = ANY($3::text[]);
	`

	rows, err := s.DB.QueryContext(ctx, q, string(mode), originKey, uniq)
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
func (s *SQLTravelTimeCache) PutMany(
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
	INSERT INTO travel_time_cache (mode, origin, destination, duration_ms)
    VALUES ($1, $2, $3, $4)
	ON CONFLICT (mode, origin, destination) DO UPDATE
	SET duration_ms = EXCLUDED.duration_ms;
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
