package domain

import (
	"reflect"
	"testing"
)

func TestLocationKey(t *testing.T) {
	a := Location{Lat: 56.161147, Lon: 10.13455}
	b := Location{Lat: 56.1611470000001, Lon: 10.1345500000001}

	if a.Key() != "56.161147,10.134550" {
		t.Errorf("unexpected key %q", a.Key())
	}
	if a.Key() != b.Key() {
		t.Errorf("keys differ for equal coordinates: %q vs %q", a.Key(), b.Key())
	}
	if a.Key() == (Location{Lat: 56.161148, Lon: 10.13455}).Key() {
		t.Error("distinct coordinates produced the same key")
	}
}

func TestRouteIntermediates(t *testing.T) {
	full := Route{Vehicle: "v", Stops: []int{0, 3, 1, 0}}
	if got := full.Intermediates(); !reflect.DeepEqual(got, []int{3, 1}) {
		t.Errorf("intermediates = %v, want [3 1]", got)
	}

	empty := Route{Vehicle: "v", Stops: []int{0, 0}}
	if got := empty.Intermediates(); got != nil {
		t.Errorf("expected nil intermediates for endpoint-only route, got %v", got)
	}
}

func TestDurationMatrixAt(t *testing.T) {
	m := NewDurationMatrix(3)
	if m.Size() != 3 {
		t.Fatalf("size = %d, want 3", m.Size())
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if m.At(i, j) != 0 {
				t.Fatalf("fresh matrix not zero at %d,%d", i, j)
			}
		}
	}

	m[1][2] = Unreachable
	if m.At(1, 2) != Unreachable {
		t.Error("sentinel not preserved")
	}
}

func TestClassResultRouteLocations(t *testing.T) {
	depot := Location{Lat: 1, Lon: 1}
	stop := Location{Lat: 2, Lon: 2}
	cr := ClassResult{
		Class:     VehicleClass{Name: "bikes"},
		Locations: []Location{depot, stop},
	}

	locs := cr.RouteLocations(Route{Vehicle: "b", Stops: []int{0, 1, 0}})
	want := []Location{depot, stop, depot}
	if !reflect.DeepEqual(locs, want) {
		t.Errorf("route locations = %v, want %v", locs, want)
	}
}
