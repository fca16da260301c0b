package dto

type LocationDTO struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// AllocationRequest optionally carries the stops to plan for. When the
// list is absent the service falls back to the stored stop set.
type AllocationRequest struct {
	Stops []LocationDTO `json:"stops"`
}

type RouteDTO struct {
	Vehicle string        `json:"vehicle"`
	Stops   []LocationDTO `json:"stops"`
	MapsURL string        `json:"maps_url,omitempty"`
}

type ClassResultDTO struct {
	Class  string     `json:"class"`
	Mode   string     `json:"mode"`
	Routes []RouteDTO `json:"routes"`
}

type AllocationResponse struct {
	ID        string           `json:"id"`
	Classes   []ClassResultDTO `json:"classes"`
	Remaining []LocationDTO    `json:"remaining"`
}

type ListStopsResponse struct {
	Stops []LocationDTO `json:"stops"`
}
