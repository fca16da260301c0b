package generate

import (
	"math/rand"

	"fleet-route-service/internal/domain"
)

// Box is a latitude/longitude bounding box for stop generation.
type Box struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// AarhusBox covers the central Aarhus area used by the demo setup.
var AarhusBox = Box{MinLat: 56.1, MaxLat: 56.2, MinLon: 10.1, MaxLon: 10.2}

// RandomStops draws n uniformly distributed stops inside the box.
// Passing the same rng state reproduces the same stops.
func RandomStops(rng *rand.Rand, box Box, n int) []domain.Location {
	stops := make([]domain.Location, 0, n)
	for i := 0; i < n; i++ {
		stops = append(stops, domain.Location{
			Lat: box.MinLat + rng.Float64()*(box.MaxLat-box.MinLat),
			Lon: box.MinLon + rng.Float64()*(box.MaxLon-box.MinLon),
		})
	}
	return stops
}
