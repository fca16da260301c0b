package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fleet-route-service/internal/domain"
)

// SQLite-backed implementation of the StopRepository port.
type SqliteStopRepository struct{ DB *sql.DB }

func NewSqliteStopRepository(db *sql.DB) *SqliteStopRepository {
	return &SqliteStopRepository{DB: db}
}

// Return all candidate stops stored in the database.
func (s *SqliteStopRepository) ListStops(ctx context.Context) ([]domain.Location, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite stop repository: DB is nil")
	}

	query := `
	SELECT
		lat,
		lon
	FROM stops
	ORDER BY stop_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list stops: query stops table: %w", err)
	}
	defer rows.Close()

	stops := make([]domain.Location, 0, 64)
	for rows.Next() {
		var lat, lon float64
		if err := rows.Scan(&lat, &lon); err != nil {
			return nil, fmt.Errorf("list stops: scan row: %w", err)
		}
		stops = append(stops, domain.Location{Lat: lat, Lon: lon})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list stops: row iteration: %w", err)
	}

	return stops, nil
}
