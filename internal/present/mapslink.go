// Package present renders an assignment into shareable artifacts:
// Google Maps direction links and a GeoJSON plot of routes and
// unserviced stops.
package present

import (
	"fmt"
	"strings"

	"fleet-route-service/internal/domain"
)

// MapsLink builds a Google Maps directions URL visiting the given
// locations in order. Returns "" for fewer than two points since no
// direction exists.
func MapsLink(locations []domain.Location) string {
	if len(locations) < 2 {
		return ""
	}
	var b strings.Builder
	b.WriteString("https://www.google.com/maps/dir")
	for _, loc := range locations {
		fmt.Fprintf(&b, "/%.6f,%.6f", loc.Lat, loc.Lon)
	}
	return b.String()
}

// RouteLink is one vehicle's route rendered as a directions URL.
type RouteLink struct {
	Class   string `json:"class"`
	Vehicle string `json:"vehicle"`
	URL     string `json:"url"`
}

// Links renders every non-empty route of an assignment as a directions
// URL, in class solve order.
func Links(a domain.Assignment) []RouteLink {
	var links []RouteLink
	for _, cr := range a.Classes {
		for _, r := range cr.Result.Routes {
			url := MapsLink(cr.RouteLocations(r))
			if url == "" {
				continue
			}
			links = append(links, RouteLink{
				Class:   cr.Class.Name,
				Vehicle: r.Vehicle,
				URL:     url,
			})
		}
	}
	return links
}
