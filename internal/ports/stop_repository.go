package ports

import (
	"context"

	"fleet-route-service/internal/domain"
)

// Port: a boundary for retrieving candidate stops from a data source.
type StopRepository interface {
	// Retrieve all stops available for allocation.
	ListStops(ctx context.Context) ([]domain.Location, error)
}
