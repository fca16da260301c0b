package domain

// Minutes is the integral time unit used for all solving arithmetic.
// Travel-time estimates are rounded to whole minutes before they enter
// a matrix so dimension accumulation stays exact.
type Minutes int64

// Unreachable marks a pair whose travel time could not be determined.
// Large enough that any route through it loses to every alternative,
// but finite so summing several such arcs cannot overflow.
const Unreachable Minutes = 1 << 30

// DurationMatrix is a square table of pairwise travel times plus any
// per-arc surcharge the caller bakes in. The diagonal is always zero.
// It is not necessarily symmetric.
type DurationMatrix [][]Minutes

func NewDurationMatrix(n int) DurationMatrix {
	m := make(DurationMatrix, n)
	for i := range m {
		m[i] = make([]Minutes, n)
	}
	return m
}

func (m DurationMatrix) Size() int { return len(m) }

func (m DurationMatrix) At(i, j int) Minutes { return m[i][j] }
