package solver

import (
	"math"
	"math/rand"
	"sort"

	"fleet-route-service/internal/domain"
)

func annealAccept(delta domain.Minutes, temp float64) float64 {
	if temp <= 0 {
		return 0
	}
	return math.Exp(-float64(delta) / temp)
}

// removeRandom pulls up to k assigned nodes out of the solution and
// returns them. Positions are drawn from a flattened (vehicle, pos)
// list built in route order so the draw depends only on the rng state.
func (pr *problem) removeRandom(s *solution, k int, rng *rand.Rand) []int {
	type slot struct{ vi, pos int }
	slots := make([]slot, 0)
	for vi, r := range s.routes {
		for pos := range r {
			slots = append(slots, slot{vi, pos})
		}
	}

	removed := make([]int, 0, k)
	for i := 0; i < k && len(slots) > 0; i++ {
		j := rng.Intn(len(slots))
		sl := slots[j]
		removed = append(removed, s.routes[sl.vi][sl.pos])
		s.routes[sl.vi] = append(s.routes[sl.vi][:sl.pos], s.routes[sl.vi][sl.pos+1:]...)

		// Rebuild slots; removal shifted positions in that route.
		slots = slots[:0]
		for vi, r := range s.routes {
			for pos := range r {
				slots = append(slots, slot{vi, pos})
			}
		}
	}
	return removed
}

// reinsertGreedy places removed nodes back at their cheapest feasible
// position, or leaves them dropped when every insertion costs more
// than the skip penalty.
func (pr *problem) reinsertGreedy(s *solution, removed []int) {
	sort.Ints(removed)

	for _, node := range removed {
		bestDelta := pr.p.SkipPenalty
		bestV, bestPos := -1, -1

		for vi := range pr.vehicles {
			if !pr.usable[vi] {
				continue
			}
			base, _ := pr.routeCost(vi, s.routes[vi])
			for pos := 0; pos <= len(s.routes[vi]); pos++ {
				cand := insertAt(s.routes[vi], node, pos)
				total, ok := pr.routeCost(vi, cand)
				if !ok {
					continue
				}
				if delta := total - base; delta < bestDelta {
					bestDelta = delta
					bestV, bestPos = vi, pos
				}
			}
		}

		if bestV >= 0 {
			s.routes[bestV] = insertAt(s.routes[bestV], node, bestPos)
		}
	}
}

// twoOptImprove reverses intra-route segments while that lowers the
// route's own cost and stays within budget.
func (pr *problem) twoOptImprove(s *solution) {
	for vi := range s.routes {
		r := s.routes[vi]
		if len(r) < 3 {
			continue
		}
		base, _ := pr.routeCost(vi, r)
		improved := true
		for improved {
			improved = false
			for i := 0; i < len(r)-1; i++ {
				for j := i + 1; j < len(r); j++ {
					cand := append([]int(nil), r...)
					for a, b := i, j; a < b; a, b = a+1, b-1 {
						cand[a], cand[b] = cand[b], cand[a]
					}
					total, ok := pr.routeCost(vi, cand)
					if ok && total < base {
						r = cand
						base = total
						improved = true
					}
				}
			}
		}
		s.routes[vi] = r
	}
}

// relocateImprove moves single nodes between routes when the combined
// cost of the two routes drops and both stay feasible.
func (pr *problem) relocateImprove(s *solution) {
	improved := true
	for improved {
		improved = false
		for a := range s.routes {
			if !pr.usable[a] {
				continue
			}
			for i := 0; i < len(s.routes[a]); i++ {
				node := s.routes[a][i]
				without := append(append([]int(nil), s.routes[a][:i]...), s.routes[a][i+1:]...)
				baseA, _ := pr.routeCost(a, s.routes[a])
				newA, okA := pr.routeCost(a, without)
				if !okA {
					continue
				}

				for b := range s.routes {
					if b == a || !pr.usable[b] {
						continue
					}
					baseB, _ := pr.routeCost(b, s.routes[b])
					for pos := 0; pos <= len(s.routes[b]); pos++ {
						cand := insertAt(s.routes[b], node, pos)
						newB, okB := pr.routeCost(b, cand)
						if !okB {
							continue
						}
						if newA+newB < baseA+baseB {
							s.routes[a] = without
							s.routes[b] = cand
							improved = true
							break
						}
					}
					if improved {
						break
					}
				}
				if improved {
					break
				}
			}
			if improved {
				break
			}
		}
	}
}
