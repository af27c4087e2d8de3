package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"beatsensei/db"
	"beatsensei/model"

	"github.com/redis/go-redis/v9"
)

// Cache keys. Trending is keyed by its request shape so different
// windows and constraints don't collide.
const availableFiltersKey = "filters:available"

const availableFiltersTTL = time.Minute

// GetTrendingKey builds the cache key for a trending request.
func GetTrendingKey(req *model.TrendingRequest) string {
	bpmMin, bpmMax := -1, -1
	if req.BPMMin != nil {
		bpmMin = *req.BPMMin
	}
	if req.BPMMax != nil {
		bpmMax = *req.BPMMax
	}
	return fmt.Sprintf("trending:%s:%s:%d:%d:%d", req.Timeframe, req.Genre, bpmMin, bpmMax, req.Limit)
}

// GetTrending returns a cached trending response, or nil on a miss.
func GetTrending(ctx context.Context, key string) (*model.TrendingResponse, error) {
	if db.RedisClient == nil {
		return nil, nil
	}

	data, err := db.RedisClient.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get trending cache: %w", err)
	}

	var resp model.TrendingResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trending cache: %w", err)
	}
	return &resp, nil
}

// SetTrending stores a trending response with the given TTL.
func SetTrending(ctx context.Context, key string, resp *model.TrendingResponse, ttl time.Duration) error {
	if db.RedisClient == nil || ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal trending response: %w", err)
	}
	if err := db.RedisClient.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set trending cache: %w", err)
	}
	return nil
}

// GetAvailableFilters returns the cached filter metadata, or nil on a miss.
func GetAvailableFilters(ctx context.Context) (*model.AvailableFilters, error) {
	if db.RedisClient == nil {
		return nil, nil
	}

	data, err := db.RedisClient.Get(ctx, availableFiltersKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get filters cache: %w", err)
	}

	var filters model.AvailableFilters
	if err := json.Unmarshal(data, &filters); err != nil {
		return nil, fmt.Errorf("failed to unmarshal filters cache: %w", err)
	}
	return &filters, nil
}

// SetAvailableFilters stores the filter metadata for a short interval.
func SetAvailableFilters(ctx context.Context, filters *model.AvailableFilters) error {
	if db.RedisClient == nil {
		return nil
	}

	data, err := json.Marshal(filters)
	if err != nil {
		return fmt.Errorf("failed to marshal available filters: %w", err)
	}
	if err := db.RedisClient.Set(ctx, availableFiltersKey, data, availableFiltersTTL).Err(); err != nil {
		return fmt.Errorf("failed to set filters cache: %w", err)
	}
	return nil
}
