package domain

// A single vehicle with fixed start and end locations. Start and end
// may coincide (a shared depot).
type Vehicle struct {
	Name  string
	Start Location
	End   Location
}

// VehicleClass groups vehicles that share a travel mode and a
// per-vehicle working-time budget. Classes are solved strictly in
// ascending Priority order; stops claimed by an earlier class are not
// offered to later ones.
type VehicleClass struct {
	Name       string
	Mode       TravelMode
	Priority   int
	WorkBudget Minutes
	Vehicles   []Vehicle
}
