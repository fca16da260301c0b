package solver

import (
	"context"
	"reflect"
	"testing"
	"time"

	"fleet-route-service/internal/domain"
)

func matrixFrom(vals [][]int64) domain.DurationMatrix {
	m := domain.NewDurationMatrix(len(vals))
	for i, row := range vals {
		for j, v := range row {
			m[i][j] = domain.Minutes(v)
		}
	}
	return m
}

func baseParams() Params {
	return Params{
		WorkBudget:          420,
		StopServiceTime:     30,
		SkipPenalty:         10000,
		SpanCostCoefficient: 100,
		TimeLimit:           time.Second,
		MaxIterations:       200,
		Seed:                1,
	}
}

func TestSolveDepotOnly(t *testing.T) {
	m := matrixFrom([][]int64{{0}})
	vehicles := []VehicleEndpoints{{Name: "Bike 1", Start: 0, End: 0}}

	res := Solve(context.Background(), m, vehicles, baseParams())

	if res.Empty() {
		t.Fatal("expected a non-empty result")
	}
	if len(res.Routes) != 1 {
		t.Fatalf("expected 1 route, got %d", len(res.Routes))
	}
	if want := []int{0, 0}; !reflect.DeepEqual(res.Routes[0].Stops, want) {
		t.Fatalf("route = %v, want %v", res.Routes[0].Stops, want)
	}
	if len(res.Dropped) != 0 {
		t.Fatalf("expected no dropped stops, got %v", res.Dropped)
	}
}

func TestSolveVisitsAllReachableStops(t *testing.T) {
	// Depot at 0, three mutually close stops.
	m := matrixFrom([][]int64{
		{0, 10, 12, 11},
		{10, 0, 4, 5},
		{12, 4, 0, 3},
		{11, 5, 3, 0},
	})
	vehicles := []VehicleEndpoints{{Name: "Bike 1", Start: 0, End: 0}}

	res := Solve(context.Background(), m, vehicles, baseParams())

	if len(res.Dropped) != 0 {
		t.Fatalf("expected no dropped stops, got %v", res.Dropped)
	}

	route := res.Routes[0]
	if route.Stops[0] != 0 || route.Stops[len(route.Stops)-1] != 0 {
		t.Fatalf("route must start and end at the depot, got %v", route.Stops)
	}

	seen := map[int]int{}
	for _, idx := range route.Intermediates() {
		seen[idx]++
	}
	for _, node := range []int{1, 2, 3} {
		if seen[node] != 1 {
			t.Fatalf("stop %d visited %d times, route %v", node, seen[node], route.Stops)
		}
	}
}

func TestSolveRespectsBudgetAtEveryPrefix(t *testing.T) {
	m := matrixFrom([][]int64{
		{0, 10, 12, 11},
		{10, 0, 4, 5},
		{12, 4, 0, 3},
		{11, 5, 3, 0},
	})
	vehicles := []VehicleEndpoints{{Name: "Bike 1", Start: 0, End: 0}}
	p := baseParams()
	p.WorkBudget = 120

	res := Solve(context.Background(), m, vehicles, p)

	for _, route := range res.Routes {
		acc := domain.Minutes(0)
		for i := 1; i < len(route.Stops); i++ {
			if route.Stops[i] == route.Stops[i-1] {
				continue
			}
			acc += m.At(route.Stops[i-1], route.Stops[i]) + p.StopServiceTime
			if acc > p.WorkBudget {
				t.Fatalf("prefix cost %d exceeds budget %d at stop %d of %v", acc, p.WorkBudget, i, route.Stops)
			}
		}
	}
}

func TestSolveDropsStopBeyondBudget(t *testing.T) {
	// Stop 2 is too far: the leg to it alone exceeds the budget.
	m := matrixFrom([][]int64{
		{0, 10, 300},
		{10, 0, 300},
		{300, 300, 0},
	})
	vehicles := []VehicleEndpoints{{Name: "Bike 1", Start: 0, End: 0}}
	p := baseParams()
	p.WorkBudget = 60
	p.StopServiceTime = 5

	res := Solve(context.Background(), m, vehicles, p)

	if want := []int{2}; !reflect.DeepEqual(res.Dropped, want) {
		t.Fatalf("dropped = %v, want %v", res.Dropped, want)
	}
	for _, idx := range res.Routes[0].Intermediates() {
		if idx == 2 {
			t.Fatalf("stop 2 must not appear in route %v", res.Routes[0].Stops)
		}
	}
}

func TestSolveInfeasibleStartEnd(t *testing.T) {
	// The vehicle cannot even reach its end node within the budget.
	m := matrixFrom([][]int64{
		{0, 500},
		{500, 0},
	})
	vehicles := []VehicleEndpoints{{Name: "Car 1", Start: 0, End: 1}}
	p := baseParams()
	p.WorkBudget = 100

	res := Solve(context.Background(), m, vehicles, p)

	if !res.Empty() {
		t.Fatalf("expected empty result, got %+v", res)
	}
}

func TestSolveDistinctStartEnd(t *testing.T) {
	m := matrixFrom([][]int64{
		{0, 20, 5},
		{20, 0, 18},
		{5, 18, 0},
	})
	vehicles := []VehicleEndpoints{{Name: "Car 1", Start: 0, End: 1}}
	p := baseParams()
	p.StopServiceTime = 2

	res := Solve(context.Background(), m, vehicles, p)

	route := res.Routes[0]
	if route.Stops[0] != 0 {
		t.Fatalf("route must start at 0, got %v", route.Stops)
	}
	if route.Stops[len(route.Stops)-1] != 1 {
		t.Fatalf("route must end at 1, got %v", route.Stops)
	}
	if len(res.Dropped) != 0 {
		t.Fatalf("expected stop 2 to be visited, dropped=%v", res.Dropped)
	}
}

func TestSolveAvoidsUnreachableArc(t *testing.T) {
	// Direct travel between stops 1 and 2 is unknown, but both are
	// reachable via stop 3.
	m := matrixFrom([][]int64{
		{0, 10, 10, 10},
		{10, 0, 0, 5},
		{10, 0, 0, 5},
		{10, 5, 5, 0},
	})
	m[1][2] = domain.Unreachable
	m[2][1] = domain.Unreachable

	vehicles := []VehicleEndpoints{{Name: "Bike 1", Start: 0, End: 0}}
	p := baseParams()
	p.WorkBudget = 1000
	p.StopServiceTime = 0
	p.MaxIterations = 50

	res := Solve(context.Background(), m, vehicles, p)

	if len(res.Dropped) != 0 {
		t.Fatalf("expected all stops visited, dropped=%v", res.Dropped)
	}

	stops := res.Routes[0].Stops
	for i := 1; i < len(stops); i++ {
		a, b := stops[i-1], stops[i]
		if (a == 1 && b == 2) || (a == 2 && b == 1) {
			t.Fatalf("route traverses the unreachable arc: %v", stops)
		}
	}
}

func TestSolveDeterministicForFixedSeed(t *testing.T) {
	m := matrixFrom([][]int64{
		{0, 10, 12, 11, 9},
		{10, 0, 4, 5, 7},
		{12, 4, 0, 3, 6},
		{11, 5, 3, 0, 2},
		{9, 7, 6, 2, 0},
	})
	vehicles := []VehicleEndpoints{
		{Name: "Bike 1", Start: 0, End: 0},
		{Name: "Bike 2", Start: 0, End: 0},
	}
	p := baseParams()
	p.MaxIterations = 300
	p.TimeLimit = 10 * time.Second

	first := Solve(context.Background(), m, vehicles, p)
	second := Solve(context.Background(), m, vehicles, p)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("results differ for identical input and seed:\n%+v\n%+v", first, second)
	}
}

func TestSolveReturnsWithoutConfiguredLimits(t *testing.T) {
	m := matrixFrom([][]int64{
		{0, 10, 12},
		{10, 0, 4},
		{12, 4, 0},
	})
	vehicles := []VehicleEndpoints{{Name: "Bike 1", Start: 0, End: 0}}
	p := Params{WorkBudget: 100, SkipPenalty: 1000, Seed: 1}

	// Neither TimeLimit nor MaxIterations is set; the default iteration
	// cap must still terminate the improvement loop.
	res := Solve(context.Background(), m, vehicles, p)

	if res.Empty() {
		t.Fatal("expected a non-empty result")
	}
	if len(res.Dropped) != 0 {
		t.Fatalf("expected all stops visited, dropped=%v", res.Dropped)
	}
}

func TestSolveNoVehicles(t *testing.T) {
	m := matrixFrom([][]int64{{0}})
	res := Solve(context.Background(), m, nil, baseParams())
	if !res.Empty() {
		t.Fatalf("expected empty result, got %+v", res)
	}
}
