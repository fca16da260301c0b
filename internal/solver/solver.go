package solver

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"fleet-route-service/internal/domain"
	"fleet-route-service/internal/platform/metrics"
)

// VehicleEndpoints locates one vehicle's mandatory start and end nodes
// inside the matrix passed to Solve.
type VehicleEndpoints struct {
	Name  string
	Start int
	End   int
}

// Params controls one solve.
//
// All costs are integral minutes. TimeLimit bounds the improvement
// phase by wall clock; MaxIterations bounds it by count and is what
// makes repeated solves bit-identical for a fixed Seed. When neither
// is set, a default iteration cap applies so the call stays bounded.
type Params struct {
	WorkBudget          domain.Minutes
	StopServiceTime     domain.Minutes
	SkipPenalty         domain.Minutes
	SpanCostCoefficient int64
	TimeLimit           time.Duration
	MaxIterations       int
	Seed                int64
}

const defaultMaxIterations = 20000

func (p Params) withDefaults() Params {
	if p.TimeLimit <= 0 && p.MaxIterations <= 0 {
		p.MaxIterations = defaultMaxIterations
	}
	return p
}

type problem struct {
	m        domain.DurationMatrix
	vehicles []VehicleEndpoints
	p        Params
	optional []int  // ascending node indices that may be skipped
	usable   []bool // vehicle's own start->end leg fits the budget
}

// solution holds per-vehicle intermediate stop sequences. Endpoints are
// implicit; dropped nodes are whatever optional nodes no route contains.
type solution struct {
	routes [][]int
}

func (s solution) clone() solution {
	out := solution{routes: make([][]int, len(s.routes))}
	for i, r := range s.routes {
		out.routes[i] = append([]int(nil), r...)
	}
	return out
}

// Solve computes near-optimal visiting sequences for a set of vehicles
// over a shared duration matrix. Every node that is not some vehicle's
// start or end is optional and may be skipped at SkipPenalty. A
// cheapest-insertion seed is improved by local search under simulated
// annealing until the time limit, iteration cap, or context deadline.
//
// If no vehicle can even cover its own start->end leg within the
// budget, the result is empty.
func Solve(ctx context.Context, m domain.DurationMatrix, vehicles []VehicleEndpoints, p Params) domain.SolveResult {
	if len(vehicles) == 0 || m.Size() == 0 {
		return domain.SolveResult{}
	}

	p = p.withDefaults()
	pr := newProblem(m, vehicles, p)

	anyUsable := false
	for _, u := range pr.usable {
		anyUsable = anyUsable || u
	}
	if !anyUsable {
		return domain.SolveResult{}
	}

	curr := pr.seed()
	currCost := pr.cost(curr)
	best := curr.clone()
	bestCost := currCost

	rng := rand.New(rand.NewSource(p.Seed))
	temp := float64(p.SkipPenalty)/10 + 1
	const cooling = 0.995

	var deadline time.Time
	if p.TimeLimit > 0 {
		deadline = time.Now().Add(p.TimeLimit)
	}

	for it := 0; ; it++ {
		if p.MaxIterations > 0 && it >= p.MaxIterations {
			break
		}
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			break
		}
		if ctx.Err() != nil {
			break
		}
		metrics.SolverIterations.Inc()

		cand := curr.clone()
		k := 1 + rng.Intn(3)
		removed := pr.removeRandom(&cand, k, rng)
		pr.reinsertGreedy(&cand, removed)
		pr.twoOptImprove(&cand)
		pr.relocateImprove(&cand)

		// Removal can break feasibility when the matrix violates the
		// triangle inequality; such candidates are discarded outright.
		if !pr.feasible(cand) {
			continue
		}

		candCost := pr.cost(cand)
		delta := candCost - currCost
		if delta < 0 || rng.Float64() < annealAccept(delta, temp) {
			curr = cand
			currCost = candCost
			if candCost < bestCost {
				best = cand.clone()
				bestCost = candCost
				metrics.SolverImprovements.Inc()
			}
		}
		temp *= cooling
	}

	return pr.result(best)
}

func newProblem(m domain.DurationMatrix, vehicles []VehicleEndpoints, p Params) *problem {
	mandatory := make(map[int]struct{}, 2*len(vehicles))
	for _, v := range vehicles {
		mandatory[v.Start] = struct{}{}
		mandatory[v.End] = struct{}{}
	}

	optional := make([]int, 0, m.Size())
	for i := 0; i < m.Size(); i++ {
		if _, ok := mandatory[i]; !ok {
			optional = append(optional, i)
		}
	}

	pr := &problem{
		m:        m,
		vehicles: vehicles,
		p:        p,
		optional: optional,
		usable:   make([]bool, len(vehicles)),
	}
	for vi := range vehicles {
		_, ok := pr.routeCost(vi, nil)
		pr.usable[vi] = ok
	}
	return pr
}

// arc is the cost of traversing i->j: travel time plus the service
// time charged for handling the destination stop.
func (pr *problem) arc(i, j int) domain.Minutes {
	c := pr.m.At(i, j)
	if c >= domain.Unreachable {
		return domain.Unreachable
	}
	return c + pr.p.StopServiceTime
}

// routeCost walks a route start -> stops -> end accumulating arc costs,
// and reports false as soon as any prefix exceeds the work budget.
func (pr *problem) routeCost(vi int, stops []int) (domain.Minutes, bool) {
	v := pr.vehicles[vi]
	if len(stops) == 0 && v.Start == v.End {
		return 0, true
	}

	total := domain.Minutes(0)
	cur := v.Start
	for _, nxt := range stops {
		total += pr.arc(cur, nxt)
		if total > pr.p.WorkBudget {
			return total, false
		}
		cur = nxt
	}
	total += pr.arc(cur, v.End)
	if total > pr.p.WorkBudget {
		return total, false
	}
	return total, true
}

// cost is the global objective: total route cost, plus the skip
// penalty for every dropped optional node, plus a span term penalizing
// completion-time imbalance across vehicles.
func (pr *problem) cost(s solution) domain.Minutes {
	total := domain.Minutes(0)
	var minTotal, maxTotal domain.Minutes
	counted := 0

	for vi := range pr.vehicles {
		if !pr.usable[vi] {
			continue
		}
		rc, _ := pr.routeCost(vi, s.routes[vi])
		total += rc
		if counted == 0 || rc < minTotal {
			minTotal = rc
		}
		if counted == 0 || rc > maxTotal {
			maxTotal = rc
		}
		counted++
	}

	if counted > 1 {
		total += domain.Minutes(pr.p.SpanCostCoefficient) * (maxTotal - minTotal)
	}

	total += pr.p.SkipPenalty * domain.Minutes(len(pr.dropped(s)))
	return total
}

func (pr *problem) feasible(s solution) bool {
	for vi := range pr.vehicles {
		if !pr.usable[vi] {
			continue
		}
		if _, ok := pr.routeCost(vi, s.routes[vi]); !ok {
			return false
		}
	}
	return true
}

func (pr *problem) dropped(s solution) []int {
	assigned := make(map[int]struct{})
	for _, r := range s.routes {
		for _, n := range r {
			assigned[n] = struct{}{}
		}
	}
	out := make([]int, 0, len(pr.optional))
	for _, n := range pr.optional {
		if _, ok := assigned[n]; !ok {
			out = append(out, n)
		}
	}
	return out
}

// seed builds the first solution by cheapest insertion: repeatedly
// place the globally cheapest feasible (node, vehicle, position) as
// long as inserting beats paying the skip penalty. Ties break on the
// lowest node index, then vehicle, then position, which keeps the seed
// deterministic for a given matrix.
func (pr *problem) seed() solution {
	s := solution{routes: make([][]int, len(pr.vehicles))}

	routeTotals := make([]domain.Minutes, len(pr.vehicles))
	for vi := range pr.vehicles {
		routeTotals[vi], _ = pr.routeCost(vi, nil)
	}

	unassigned := make(map[int]struct{}, len(pr.optional))
	for _, n := range pr.optional {
		unassigned[n] = struct{}{}
	}

	for len(unassigned) > 0 {
		bestDelta := pr.p.SkipPenalty
		bestNode, bestV, bestPos := -1, -1, -1

		for _, node := range pr.optional {
			if _, ok := unassigned[node]; !ok {
				continue
			}
			for vi := range pr.vehicles {
				if !pr.usable[vi] {
					continue
				}
				for pos := 0; pos <= len(s.routes[vi]); pos++ {
					cand := insertAt(s.routes[vi], node, pos)
					total, ok := pr.routeCost(vi, cand)
					if !ok {
						continue
					}
					delta := total - routeTotals[vi]
					if delta < bestDelta {
						bestDelta = delta
						bestNode, bestV, bestPos = node, vi, pos
					}
				}
			}
		}

		if bestNode == -1 {
			break
		}

		s.routes[bestV] = insertAt(s.routes[bestV], bestNode, bestPos)
		routeTotals[bestV], _ = pr.routeCost(bestV, s.routes[bestV])
		delete(unassigned, bestNode)
	}

	return s
}

func insertAt(route []int, node, pos int) []int {
	out := make([]int, 0, len(route)+1)
	out = append(out, route[:pos]...)
	out = append(out, node)
	out = append(out, route[pos:]...)
	return out
}

func (pr *problem) result(s solution) domain.SolveResult {
	res := domain.SolveResult{}
	for vi, v := range pr.vehicles {
		if !pr.usable[vi] {
			continue
		}
		stops := make([]int, 0, len(s.routes[vi])+2)
		stops = append(stops, v.Start)
		stops = append(stops, s.routes[vi]...)
		stops = append(stops, v.End)
		res.Routes = append(res.Routes, domain.Route{Vehicle: v.Name, Stops: stops})
	}
	res.Dropped = pr.dropped(s)
	sort.Ints(res.Dropped)
	return res
}
