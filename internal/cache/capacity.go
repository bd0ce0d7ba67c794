package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"capstone/internal/models"
	"capstone/internal/observability"

	"github.com/redis/go-redis/v9"
)

const supervisorCapacityKeyPrefix = "supervisor:%d:capacity"

// DefaultCapacityTTL bounds how stale a cached view can get if an
// invalidation is lost.
const DefaultCapacityTTL = time.Minute

// SupervisorCapacityKey is the Redis key of one supervisor's capacity view.
func SupervisorCapacityKey(supervisorID uint) string {
	return fmt.Sprintf(supervisorCapacityKeyPrefix, supervisorID)
}

// CapacityCache stores SupervisorCapacityView projections. A nil client turns
// every call into a miss.
type CapacityCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCapacityCache returns a cache over rdb; ttl <= 0 uses DefaultCapacityTTL.
func NewCapacityCache(rdb *redis.Client, ttl time.Duration) *CapacityCache {
	if ttl <= 0 {
		ttl = DefaultCapacityTTL
	}
	return &CapacityCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached view and whether it was present.
func (c *CapacityCache) Get(ctx context.Context, supervisorID uint) (*models.SupervisorCapacityView, bool, error) {
	if c == nil || c.rdb == nil {
		return nil, false, nil
	}
	ctx, span := observability.GetTraceLayer().TraceRedisOperation(ctx, "capacity.get")
	defer span.End()

	raw, err := c.rdb.Get(ctx, SupervisorCapacityKey(supervisorID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var view models.SupervisorCapacityView
	if err := json.Unmarshal(raw, &view); err != nil {
		// Undecodable entries are treated as a miss and overwritten.
		return nil, false, nil
	}
	return &view, true, nil
}

// Set stores view under its supervisor's key.
func (c *CapacityCache) Set(ctx context.Context, view *models.SupervisorCapacityView) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	ctx, span := observability.GetTraceLayer().TraceRedisOperation(ctx, "capacity.set")
	defer span.End()

	raw, err := json.Marshal(view)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, SupervisorCapacityKey(view.SupervisorID), raw, c.ttl).Err()
}

// Invalidate drops the cached view for the supervisors.
func (c *CapacityCache) Invalidate(ctx context.Context, supervisorIDs ...uint) error {
	if c == nil || c.rdb == nil || len(supervisorIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(supervisorIDs))
	for _, id := range supervisorIDs {
		keys = append(keys, SupervisorCapacityKey(id))
	}
	return c.rdb.Del(ctx, keys...).Err()
}
