package present

import (
	"strings"
	"testing"

	"fleet-route-service/internal/domain"
)

func sampleAssignment() domain.Assignment {
	depot := domain.Location{Lat: 56.161147, Lon: 10.13455}
	a := domain.Location{Lat: 56.17, Lon: 10.15}
	b := domain.Location{Lat: 56.18, Lon: 10.16}
	left := domain.Location{Lat: 56.19, Lon: 10.19}

	return domain.Assignment{
		ID: "test",
		Classes: []domain.ClassResult{
			{
				Class: domain.VehicleClass{Name: "bikes", Mode: domain.ModeBike},
				Result: domain.SolveResult{
					Routes: []domain.Route{{Vehicle: "bike-1", Stops: []int{0, 1, 2, 0}}},
				},
				Locations: []domain.Location{depot, a, b},
			},
		},
		Remaining: []domain.Location{left},
	}
}

func TestMapsLink(t *testing.T) {
	url := MapsLink([]domain.Location{
		{Lat: 56.161147, Lon: 10.13455},
		{Lat: 56.17, Lon: 10.15},
	})
	want := "https://www.google.com/maps/dir/56.161147,10.134550/56.170000,10.150000"
	if url != want {
		t.Fatalf("got %q, want %q", url, want)
	}
}

func TestMapsLinkTooShort(t *testing.T) {
	if url := MapsLink([]domain.Location{{Lat: 1, Lon: 2}}); url != "" {
		t.Fatalf("expected empty link, got %q", url)
	}
}

func TestLinks(t *testing.T) {
	links := Links(sampleAssignment())
	if len(links) != 1 {
		t.Fatalf("expected 1 link, got %d", len(links))
	}
	l := links[0]
	if l.Class != "bikes" || l.Vehicle != "bike-1" {
		t.Fatalf("unexpected link metadata: %+v", l)
	}
	if !strings.HasPrefix(l.URL, "https://www.google.com/maps/dir/") {
		t.Fatalf("unexpected url %q", l.URL)
	}
	if got := strings.Count(l.URL, "/56."); got != 4 {
		t.Fatalf("expected 4 waypoints in url, got %d: %q", got, l.URL)
	}
}

func TestGeoJSON(t *testing.T) {
	fc := GeoJSON(sampleAssignment())

	if fc.Type != "FeatureCollection" {
		t.Fatalf("unexpected collection type %q", fc.Type)
	}
	if len(fc.Features) != 2 {
		t.Fatalf("expected 2 features, got %d", len(fc.Features))
	}

	line := fc.Features[0]
	if line.Geometry.Type != "LineString" {
		t.Fatalf("expected LineString, got %q", line.Geometry.Type)
	}
	coords, ok := line.Geometry.Coordinates.([][2]float64)
	if !ok || len(coords) != 4 {
		t.Fatalf("unexpected line coordinates %v", line.Geometry.Coordinates)
	}
	if coords[0] != coords[3] {
		t.Fatal("route should start and end at the depot")
	}
	if line.Properties["class"] != "bikes" || line.Properties["stops"] != 2 {
		t.Fatalf("unexpected properties %v", line.Properties)
	}

	point := fc.Features[1]
	if point.Geometry.Type != "Point" {
		t.Fatalf("expected Point, got %q", point.Geometry.Type)
	}
	if point.Properties["status"] != "unserviced" {
		t.Fatalf("unexpected point properties %v", point.Properties)
	}
}
