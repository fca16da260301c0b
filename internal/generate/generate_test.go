package generate

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestRandomStopsWithinBox(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	stops := RandomStops(rng, AarhusBox, 50)

	if len(stops) != 50 {
		t.Fatalf("expected 50 stops, got %d", len(stops))
	}
	for i, s := range stops {
		if s.Lat < AarhusBox.MinLat || s.Lat > AarhusBox.MaxLat {
			t.Errorf("stop %d latitude %f outside box", i, s.Lat)
		}
		if s.Lon < AarhusBox.MinLon || s.Lon > AarhusBox.MaxLon {
			t.Errorf("stop %d longitude %f outside box", i, s.Lon)
		}
	}
}

func TestRandomStopsReproducible(t *testing.T) {
	a := RandomStops(rand.New(rand.NewSource(3)), AarhusBox, 10)
	b := RandomStops(rand.New(rand.NewSource(3)), AarhusBox, 10)

	if !reflect.DeepEqual(a, b) {
		t.Fatal("same seed produced different stops")
	}
}

func TestRandomStopsZero(t *testing.T) {
	stops := RandomStops(rand.New(rand.NewSource(1)), AarhusBox, 0)
	if len(stops) != 0 {
		t.Fatalf("expected no stops, got %d", len(stops))
	}
}
