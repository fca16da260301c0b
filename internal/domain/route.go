package domain

// Route is one vehicle's visiting sequence as indices into the
// location list of the solve that produced it. The first element is
// always the vehicle's start index and the last its end index, even
// when the route has no intermediate stops.
type Route struct {
	Vehicle string
	Stops   []int
}

// Intermediates returns the route's stop indices without the start and
// end endpoints.
func (r Route) Intermediates() []int {
	if len(r.Stops) <= 2 {
		return nil
	}
	return r.Stops[1 : len(r.Stops)-1]
}

// SolveResult is the output of one solver run. Dropped lists the
// optional location indices left unvisited. A completely empty result
// means no feasible assignment existed.
type SolveResult struct {
	Routes  []Route
	Dropped []int
}

func (r SolveResult) Empty() bool { return len(r.Routes) == 0 }

// ClassResult pairs one class's solve with the solve-local location
// list its route indices refer to. Route indices are meaningless
// without that list, so the two travel together.
type ClassResult struct {
	Class     VehicleClass
	Result    SolveResult
	Locations []Location
}

// RouteLocations resolves a route's indices to coordinates.
func (c ClassResult) RouteLocations(r Route) []Location {
	out := make([]Location, 0, len(r.Stops))
	for _, idx := range r.Stops {
		out = append(out, c.Locations[idx])
	}
	return out
}

// Assignment is the result of a full allocation run across all vehicle
// classes: per-class results in solve order plus the stops no class
// serviced. It is read-only planning data.
type Assignment struct {
	ID        string
	Classes   []ClassResult
	Remaining []Location
}
