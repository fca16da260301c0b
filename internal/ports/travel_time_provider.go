package ports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fleet-route-service/internal/domain"
)

// EstimateError is a typed travel-time failure. Transient failures
// (timeouts, connection errors, throttling) are worth retrying;
// permanent ones are not.
type EstimateError struct {
	Op        string
	Transient bool
	Err       error
}

func (e *EstimateError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *EstimateError) Unwrap() error { return e.Err }

// IsTransient reports whether err is a travel-time failure that a
// retry might resolve.
func IsTransient(err error) bool {
	var ee *EstimateError
	return errors.As(err, &ee) && ee.Transient
}

// Contract for estimating travel time between two coordinates.
// Implementations must not be assumed low-latency or always available;
// callers own the retry policy.
type TravelTimeProvider interface {
	// Return the estimated travel duration from origin to destination
	// under the given mode.
	Estimate(ctx context.Context, origin, destination domain.Location, mode domain.TravelMode) (time.Duration, error)
}
