package ports

import (
	"context"
	"time"

	"fleet-route-service/internal/domain"
)

// Persistent cache of travel-time estimates, keyed by mode, origin and
// destination location keys. Result maps are keyed by destination Key().
type TravelTimeCache interface {
	// Fetch cached durations from one origin to many destinations.
	// Missing pairs are simply absent from the returned map.
	GetMany(ctx context.Context, mode domain.TravelMode, origin domain.Location, destinations []domain.Location) (map[string]time.Duration, error)

	// Store durations from one origin, keyed by destination Key().
	PutMany(ctx context.Context, mode domain.TravelMode, origin domain.Location, results map[string]time.Duration) error
}
