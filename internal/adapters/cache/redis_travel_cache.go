package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"fleet-route-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

// RedisTravelTimeCache stores travel-time estimates in Redis with a
// TTL. Suitable when several planner instances share one cache.
type RedisTravelTimeCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisTravelTimeCache(client *redis.Client, ttl time.Duration) *RedisTravelTimeCache {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &RedisTravelTimeCache{Client: client, TTL: ttl}
}

func travelKey(mode domain.TravelMode, originKey, destKey string) string {
	return "tt:" + string(mode) + ":" + originKey + ":" + destKey
}

// Fetch cached durations for one origin and multiple destinations.
func (r *RedisTravelTimeCache) GetMany(
	ctx context.Context,
	mode domain.TravelMode,
	origin domain.Location,
	destinations []domain.Location,
) (map[string]time.Duration, error) {
	if r.Client == nil {
		return nil, errors.New("travel time cache: redis client is nil")
	}

	if len(destinations) == 0 {
		return map[string]time.Duration{}, nil
	}

	originKey := origin.Key()
	destKeys := make([]string, 0, len(destinations))
	keys := make([]string, 0, len(destinations))
	for _, d := range destinations {
		k := d.Key()
		if k == originKey {
			continue
		}
		destKeys = append(destKeys, k)
		keys = append(keys, travelKey(mode, originKey, k))
	}

	if len(keys) == 0 {
		return map[string]time.Duration{}, nil
	}

	vals, err := r.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get travel time cache: redis mget: %w", err)
	}

	out := make(map[string]time.Duration, len(destKeys))
	for i, v := range vals {
		if v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		ms, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("get travel time cache: parse value for %q: %w", keys[i], err)
		}
		out[destKeys[i]] = time.Duration(ms) * time.Millisecond
	}

	return out, nil
}

// Store many cached durations for a single origin.
func (r *RedisTravelTimeCache) PutMany(
	ctx context.Context,
	mode domain.TravelMode,
	origin domain.Location,
	results map[string]time.Duration,
) error {
	if r.Client == nil {
		return errors.New("travel time cache: redis client is nil")
	}

	if len(results) == 0 {
		return nil
	}

	originKey := origin.Key()
	pipe := r.Client.Pipeline()
	for dest, d := range results {
		if dest == "" {
			return errors.New("insert travel time cache: empty destination key")
		}
		pipe.Set(ctx, travelKey(mode, originKey, dest), strconv.FormatInt(d.Milliseconds(), 10), r.TTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert travel time cache: redis pipeline: %w", err)
	}

	return nil
}
