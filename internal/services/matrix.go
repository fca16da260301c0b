package services

import (
	"context"
	"errors"
	"log"
	"math"
	"sync"
	"time"

	"fleet-route-service/internal/domain"
	"fleet-route-service/internal/platform/metrics"
	"fleet-route-service/internal/platform/obs"
	"fleet-route-service/internal/ports"
)

// RetryPolicy bounds per-pair travel-time attempts. Only transient
// failures are retried; backoff doubles after each attempt.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

func (r RetryPolicy) withDefaults() RetryPolicy {
	if r.MaxAttempts < 1 {
		r.MaxAttempts = 3
	}
	if r.Backoff <= 0 {
		r.Backoff = 200 * time.Millisecond
	}
	return r
}

// MatrixBuilder assembles complete pairwise duration matrices from a
// travel-time provider. Pair queries run under a bounded worker pool;
// pairs whose estimate fails permanently, exhausts its retries, or is
// cut off by the context resolve to the Unreachable sentinel rather
// than failing the build.
type MatrixBuilder struct {
	Provider ports.TravelTimeProvider
	Cache    ports.TravelTimeCache // optional
	Workers  int
	Retry    RetryPolicy
}

// BuildMatrix produces the full n x n travel-time matrix for the given
// locations and mode, in whole minutes. The diagonal is zero without a
// lookup. The call blocks until every ordered pair has resolved.
func (b *MatrixBuilder) BuildMatrix(
	ctx context.Context,
	locations []domain.Location,
	mode domain.TravelMode,
) (_ domain.DurationMatrix, err error) {
	defer obs.Time(ctx, "matrix.Build")(&err)

	if b.Provider == nil {
		return nil, errors.New("build matrix: provider is nil")
	}
	n := len(locations)
	if n == 0 {
		return nil, errors.New("build matrix: locations must be non-empty")
	}

	m := domain.NewDurationMatrix(n)
	retry := b.Retry.withDefaults()

	workers := b.Workers
	if workers < 1 {
		workers = 8
	}

	// Index destinations by key once: the same coordinate may appear
	// more than once in the location list.
	type pairJob struct{ i, j int }
	pending := make([]pairJob, 0, n*(n-1))

	// Fresh results per origin row, for the cache write-back.
	fresh := make([]map[string]time.Duration, n)
	var freshMu sync.Mutex

	for i := 0; i < n; i++ {
		row := make([]int, 0, n-1)
		dests := make([]domain.Location, 0, n-1)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			row = append(row, j)
			dests = append(dests, locations[j])
		}

		hits := map[string]time.Duration{}
		if b.Cache != nil {
			var cacheErr error
			hits, cacheErr = b.Cache.GetMany(ctx, mode, locations[i], dests)
			if cacheErr != nil {
				log.Printf("travel time cache read failed: %v", cacheErr)
				hits = map[string]time.Duration{}
			}
		}

		for _, j := range row {
			key := locations[j].Key()
			if key == locations[i].Key() {
				// Duplicate coordinate; no travel involved.
				m[i][j] = 0
				continue
			}
			if d, ok := hits[key]; ok {
				metrics.CacheHits.Inc()
				m[i][j] = roundMinutes(d)
				continue
			}
			if b.Cache != nil {
				metrics.CacheMisses.Inc()
			}
			pending = append(pending, pairJob{i, j})
		}
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for _, job := range pending {
		wg.Add(1)
		go func(i, j int) {
			sem <- struct{}{}
			defer wg.Done()
			defer func() { <-sem }()

			d, ok := b.estimateWithRetry(ctx, locations[i], locations[j], mode, retry)
			if !ok {
				metrics.ProviderFailures.WithLabelValues(string(mode)).Inc()
				m[i][j] = domain.Unreachable
				return
			}
			m[i][j] = roundMinutes(d)

			freshMu.Lock()
			if fresh[i] == nil {
				fresh[i] = map[string]time.Duration{}
			}
			fresh[i][locations[j].Key()] = d
			freshMu.Unlock()
		}(job.i, job.j)
	}

	wg.Wait()

	if b.Cache != nil {
		for i, results := range fresh {
			if len(results) == 0 {
				continue
			}
			if err := b.Cache.PutMany(ctx, mode, locations[i], results); err != nil {
				log.Printf("travel time cache write failed: %v", err)
			}
		}
	}

	return m, nil
}

// estimateWithRetry applies the retry policy to a single pair. The
// second return value is false when the pair could not be resolved.
func (b *MatrixBuilder) estimateWithRetry(
	ctx context.Context,
	origin, destination domain.Location,
	mode domain.TravelMode,
	retry RetryPolicy,
) (time.Duration, bool) {
	backoff := retry.Backoff

	for attempt := 1; ; attempt++ {
		if ctx.Err() != nil {
			return 0, false
		}

		d, err := b.Provider.Estimate(ctx, origin, destination, mode)
		if err == nil {
			return d, true
		}

		if !ports.IsTransient(err) || attempt >= retry.MaxAttempts {
			return 0, false
		}

		metrics.ProviderRetries.Inc()

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return 0, false
		case <-timer.C:
		}

		backoff *= 2
	}
}

func roundMinutes(d time.Duration) domain.Minutes {
	mins := domain.Minutes(math.Round(d.Minutes()))
	if mins < 0 {
		return 0
	}
	return mins
}
