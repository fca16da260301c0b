package present

import "fleet-route-service/internal/domain"

// GeoJSON types cover only what the plot needs: LineString features
// for routes and Point features for unserviced stops. Coordinates are
// [lon, lat] per RFC 7946.

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

// GeoJSON renders an assignment as a feature collection: one
// LineString per route tagged with its class and vehicle, and one
// Point per remaining stop.
func GeoJSON(a domain.Assignment) FeatureCollection {
	fc := FeatureCollection{Type: "FeatureCollection", Features: []Feature{}}
	for _, cr := range a.Classes {
		for _, r := range cr.Result.Routes {
			locs := cr.RouteLocations(r)
			coords := make([][2]float64, 0, len(locs))
			for _, loc := range locs {
				coords = append(coords, [2]float64{loc.Lon, loc.Lat})
			}
			fc.Features = append(fc.Features, Feature{
				Type:     "Feature",
				Geometry: Geometry{Type: "LineString", Coordinates: coords},
				Properties: map[string]any{
					"class":   cr.Class.Name,
					"vehicle": r.Vehicle,
					"stops":   len(r.Intermediates()),
				},
			})
		}
	}
	for _, loc := range a.Remaining {
		fc.Features = append(fc.Features, Feature{
			Type:       "Feature",
			Geometry:   Geometry{Type: "Point", Coordinates: [2]float64{loc.Lon, loc.Lat}},
			Properties: map[string]any{"status": "unserviced"},
		})
	}
	return fc
}
