package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"fleet-route-service/internal/domain"
	"fleet-route-service/internal/solver"

	"github.com/google/uuid"
)

// SolverConfig carries the solve parameters shared by every class.
// The per-class work budget comes from the class itself.
type SolverConfig struct {
	StopServiceTime     domain.Minutes
	SkipPenalty         domain.Minutes
	SpanCostCoefficient int64
	TimeLimit           time.Duration
	MaxIterations       int
	Seed                int64
}

// Allocator assigns candidate stops to vehicle classes, solving one
// class at a time in priority order. Stops claimed by an earlier class
// are removed from the pool before the next class is solved; this is a
// deliberate greedy simplification and earlier assignments are never
// revisited.
type Allocator struct {
	Matrix *MatrixBuilder
	Solver SolverConfig
}

// Allocate runs the full pipeline: per class, build the duration
// matrix for endpoints plus the current pool, solve, and shrink the
// pool by the stops the class claimed. Pool removal is keyed on
// coordinate identity, not solve-local indices, since indices are
// reused across classes.
func (a *Allocator) Allocate(
	ctx context.Context,
	classes []domain.VehicleClass,
	stops []domain.Location,
) (*domain.Assignment, error) {
	if err := validate(classes); err != nil {
		return nil, fmt.Errorf("allocate: %w", err)
	}

	ordered := append([]domain.VehicleClass(nil), classes...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Priority < ordered[j].Priority })

	pool := append([]domain.Location(nil), stops...)

	assignment := &domain.Assignment{ID: uuid.NewString()}

	for _, class := range ordered {
		locations, vehicles := classLocations(class, pool)

		log.Printf("allocating class=%s vehicles=%d pool=%d", class.Name, len(class.Vehicles), len(pool))

		matrix, err := a.Matrix.BuildMatrix(ctx, locations, class.Mode)
		if err != nil {
			return nil, fmt.Errorf("allocate: build matrix for class %q: %w", class.Name, err)
		}

		res := solver.Solve(ctx, matrix, vehicles, solver.Params{
			WorkBudget:          class.WorkBudget,
			StopServiceTime:     a.Solver.StopServiceTime,
			SkipPenalty:         a.Solver.SkipPenalty,
			SpanCostCoefficient: a.Solver.SpanCostCoefficient,
			TimeLimit:           a.Solver.TimeLimit,
			MaxIterations:       a.Solver.MaxIterations,
			Seed:                a.Solver.Seed,
		})

		assignment.Classes = append(assignment.Classes, domain.ClassResult{
			Class:     class,
			Result:    res,
			Locations: locations,
		})

		if res.Empty() {
			log.Printf("class=%s found no feasible assignment", class.Name)
			continue
		}

		pool = shrinkPool(pool, locations, res, len(locations)-len(pool))
	}

	assignment.Remaining = pool
	return assignment, nil
}

// classLocations builds the solve-local location list: deduplicated
// vehicle endpoints first, then the pool. Returns the endpoint
// bindings for the solver alongside it.
func classLocations(class domain.VehicleClass, pool []domain.Location) ([]domain.Location, []solver.VehicleEndpoints) {
	locations := make([]domain.Location, 0, 2*len(class.Vehicles)+len(pool))
	index := make(map[string]int)

	intern := func(l domain.Location) int {
		if idx, ok := index[l.Key()]; ok {
			return idx
		}
		idx := len(locations)
		locations = append(locations, l)
		index[l.Key()] = idx
		return idx
	}

	vehicles := make([]solver.VehicleEndpoints, 0, len(class.Vehicles))
	for _, v := range class.Vehicles {
		vehicles = append(vehicles, solver.VehicleEndpoints{
			Name:  v.Name,
			Start: intern(v.Start),
			End:   intern(v.End),
		})
	}

	locations = append(locations, pool...)
	return locations, vehicles
}

// shrinkPool removes every pool stop that appears in any of the
// class's routes. endpointCount is the number of leading endpoint
// entries in the solve-local location list.
func shrinkPool(pool, locations []domain.Location, res domain.SolveResult, endpointCount int) []domain.Location {
	claimed := make(map[string]struct{})
	for _, route := range res.Routes {
		for _, idx := range route.Intermediates() {
			if idx >= endpointCount {
				claimed[locations[idx].Key()] = struct{}{}
			}
		}
	}

	out := make([]domain.Location, 0, len(pool))
	for _, stop := range pool {
		if _, ok := claimed[stop.Key()]; ok {
			continue
		}
		out = append(out, stop)
	}
	return out
}

func validate(classes []domain.VehicleClass) error {
	if len(classes) == 0 {
		return fmt.Errorf("no vehicle classes configured")
	}
	for _, c := range classes {
		if c.Name == "" {
			return fmt.Errorf("vehicle class with empty name")
		}
		if len(c.Vehicles) == 0 {
			return fmt.Errorf("class %q has no vehicles", c.Name)
		}
		if c.WorkBudget <= 0 {
			return fmt.Errorf("class %q has non-positive work budget", c.Name)
		}
		if c.Mode == "" {
			return fmt.Errorf("class %q has no travel mode", c.Name)
		}
		for _, v := range c.Vehicles {
			if v.Name == "" {
				return fmt.Errorf("class %q has a vehicle with empty name", c.Name)
			}
		}
	}
	return nil
}
