package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"fleet-route-service/internal/api/dto"
	"fleet-route-service/internal/domain"
	"fleet-route-service/internal/ports"
	"fleet-route-service/internal/present"
	"fleet-route-service/internal/services"
)

const maxRequestStops = 500

// AllocationHandler runs a full allocation across all configured
// vehicle classes. It coordinates stop loading, matrix building and
// the per-class solves.
type AllocationHandler struct {
	Repo      ports.StopRepository
	Allocator *services.Allocator
	Classes   []domain.VehicleClass
}

func (h *AllocationHandler) Allocate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.AllocationRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil && err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	if len(req.Stops) > maxRequestStops {
		writeError(w, r, http.StatusBadRequest, "too many stops")
		return
	}
	for _, s := range req.Stops {
		if s.Lat < -90 || s.Lat > 90 || s.Lon < -180 || s.Lon > 180 {
			writeError(w, r, http.StatusBadRequest, "stop coordinates out of range")
			return
		}
	}

	stops := make([]domain.Location, 0, len(req.Stops))
	for _, s := range req.Stops {
		stops = append(stops, domain.Location{Lat: s.Lat, Lon: s.Lon})
	}
	if len(stops) == 0 {
		var err error
		stops, err = h.Repo.ListStops(r.Context())
		if err != nil {
			log.Printf("list stops failed: %v", err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
			return
		}
	}
	if len(stops) == 0 {
		writeError(w, r, http.StatusBadRequest, "no stops to allocate")
		return
	}

	assignment, err := h.Allocator.Allocate(r.Context(), h.Classes, stops)
	if err != nil {
		log.Printf("allocation failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, toAllocationResponse(assignment))
}

func toAllocationResponse(a *domain.Assignment) dto.AllocationResponse {
	res := dto.AllocationResponse{
		ID:        a.ID,
		Classes:   make([]dto.ClassResultDTO, 0, len(a.Classes)),
		Remaining: make([]dto.LocationDTO, 0, len(a.Remaining)),
	}
	for _, cr := range a.Classes {
		crDTO := dto.ClassResultDTO{
			Class:  cr.Class.Name,
			Mode:   string(cr.Class.Mode),
			Routes: make([]dto.RouteDTO, 0, len(cr.Result.Routes)),
		}
		for _, route := range cr.Result.Routes {
			locs := cr.RouteLocations(route)
			stops := make([]dto.LocationDTO, 0, len(locs))
			for _, loc := range locs {
				stops = append(stops, dto.LocationDTO{Lat: loc.Lat, Lon: loc.Lon})
			}
			crDTO.Routes = append(crDTO.Routes, dto.RouteDTO{
				Vehicle: route.Vehicle,
				Stops:   stops,
				MapsURL: present.MapsLink(locs),
			})
		}
		res.Classes = append(res.Classes, crDTO)
	}
	for _, loc := range a.Remaining {
		res.Remaining = append(res.Remaining, dto.LocationDTO{Lat: loc.Lat, Lon: loc.Lon})
	}
	return res
}
