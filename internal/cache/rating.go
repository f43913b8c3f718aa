package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dakshrana205/StudyNotionnew/internal/domain"
)

const averageKeyPrefix = "rating:avg:"

// RatingCache stores course rating averages in redis.
type RatingCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRatingCache creates a cache whose entries expire after ttl.
func NewRatingCache(client redis.Cmdable, ttl time.Duration) *RatingCache {
	return &RatingCache{client: client, ttl: ttl}
}

func averageKey(courseID string) string {
	return averageKeyPrefix + courseID
}

// GetAverage returns the cached summary. A miss is (nil, false, nil).
func (c *RatingCache) GetAverage(ctx context.Context, courseID string) (*domain.RatingSummary, bool, error) {
	raw, err := c.client.Get(ctx, averageKey(courseID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached average: %w", err)
	}

	var s domain.RatingSummary
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false, fmt.Errorf("decode cached average: %w", err)
	}
	return &s, true, nil
}

// SetAverage caches s.
func (c *RatingCache) SetAverage(ctx context.Context, s *domain.RatingSummary) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode average: %w", err)
	}
	if err := c.client.Set(ctx, averageKey(s.CourseID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache average: %w", err)
	}
	return nil
}

// InvalidateAverage drops the cached summary for a course.
func (c *RatingCache) InvalidateAverage(ctx context.Context, courseID string) error {
	if err := c.client.Del(ctx, averageKey(courseID)).Err(); err != nil {
		return fmt.Errorf("invalidate average: %w", err)
	}
	return nil
}
