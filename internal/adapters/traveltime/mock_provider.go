package traveltime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fleet-route-service/internal/domain"
	"fleet-route-service/internal/ports"
)

type MockPair struct {
	From, To domain.Location
	Duration time.Duration
}

// MockProvider serves canned travel times for tests. Pairs not present
// in the table fail permanently. FailPair injects failures for a pair;
// with a positive count the failures are transient and clear after
// count calls, with count < 0 the pair fails permanently.
type MockProvider struct {
	mu    sync.Mutex
	m     map[string]time.Duration
	fails map[string]int
	calls map[string]int
}

func NewMockProvider(pairs []MockPair) *MockProvider {
	m := make(map[string]time.Duration, len(pairs))
	for _, p := range pairs {
		m[p.From.Key()+"|"+p.To.Key()] = p.Duration
	}
	return &MockProvider{
		m:     m,
		fails: map[string]int{},
		calls: map[string]int{},
	}
}

func (p *MockProvider) FailPair(from, to domain.Location, count int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fails[from.Key()+"|"+to.Key()] = count
}

// Calls reports how many times a pair was queried.
func (p *MockProvider) Calls(from, to domain.Location) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[from.Key()+"|"+to.Key()]
}

func (p *MockProvider) Estimate(
	_ context.Context,
	origin, destination domain.Location,
	_ domain.TravelMode,
) (time.Duration, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := origin.Key() + "|" + destination.Key()
	p.calls[key]++

	if n, ok := p.fails[key]; ok && n != 0 {
		if n < 0 {
			return 0, &ports.EstimateError{Op: "mock estimate", Transient: false, Err: fmt.Errorf("permanent failure for %s", key)}
		}
		p.fails[key] = n - 1
		return 0, &ports.EstimateError{Op: "mock estimate", Transient: true, Err: fmt.Errorf("transient failure for %s", key)}
	}

	d, ok := p.m[key]
	if !ok {
		return 0, &ports.EstimateError{Op: "mock estimate", Transient: false, Err: fmt.Errorf("missing pair %q", key)}
	}
	return d, nil
}
