package domain

import "fmt"

// Immutable geographic coordinates (latitude, longitude).
type Location struct {
	Lat float64
	Lon float64
}

// Key returns a stable identity string for the location, rounded to
// six decimal places (~0.1m) so equal coordinates always produce equal
// keys regardless of float formatting noise. Cache keys and pool
// removal both rely on this.
func (l Location) Key() string {
	return fmt.Sprintf("%.6f,%.6f", l.Lat, l.Lon)
}

// TravelMode selects the routing profile used for travel-time estimates.
type TravelMode string

const (
	ModeBike TravelMode = "bike"
	ModeCar  TravelMode = "car"
)
