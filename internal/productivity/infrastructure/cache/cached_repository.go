// Package cache decorates the task repository with a Redis snapshot cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/maccam912/vikunja-ai/internal/productivity/domain/task"
	"github.com/maccam912/vikunja-ai/pkg/observability"
)

const (
	keyPrefix  = "vikunja_ai:tasks:"
	keyIndex   = keyPrefix + "keys"
	DefaultTTL = 30 * time.Second
)

// Store is the subset of redis.Cmdable the cache uses.
type Store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	SAdd(ctx context.Context, key string, members ...any) *redis.IntCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// CachedRepository caches List snapshots. Reads of single tasks and all
// mutations go to the inner repository; mutations also drop every cached
// snapshot. Redis failures are logged and never surface to callers.
type CachedRepository struct {
	inner   task.Repository
	store   Store
	ttl     time.Duration
	metrics observability.Metrics
	logger  *slog.Logger
}

// NewCachedRepository wraps inner. A non-positive ttl uses DefaultTTL.
func NewCachedRepository(inner task.Repository, store Store, ttl time.Duration, metrics observability.Metrics, logger *slog.Logger) *CachedRepository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedRepository{inner: inner, store: store, ttl: ttl, metrics: metrics, logger: logger}
}

func listKey(filter task.ListFilter) string {
	return fmt.Sprintf("%slist:done=%t:project=%d", keyPrefix, filter.IncludeDone, filter.ProjectID)
}

func (r *CachedRepository) List(ctx context.Context, filter task.ListFilter) ([]task.Task, error) {
	key := listKey(filter)

	raw, err := r.store.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var tasks []task.Task
		if err := json.Unmarshal(raw, &tasks); err == nil {
			r.metrics.Counter(observability.MetricCacheHits, 1)
			return tasks, nil
		}
		r.logger.WarnContext(ctx, "discarding undecodable cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		r.logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
	}
	r.metrics.Counter(observability.MetricCacheMisses, 1)

	tasks, err := r.inner.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(tasks)
	if err != nil {
		r.logger.WarnContext(ctx, "cache encode failed", "error", err)
		return tasks, nil
	}
	if err := r.store.Set(ctx, key, payload, r.ttl).Err(); err != nil {
		r.logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
		return tasks, nil
	}
	if err := r.store.SAdd(ctx, keyIndex, key).Err(); err != nil {
		r.logger.WarnContext(ctx, "cache index write failed", "error", err)
	}
	return tasks, nil
}

func (r *CachedRepository) Get(ctx context.Context, id int64) (*task.Task, error) {
	return r.inner.Get(ctx, id)
}

func (r *CachedRepository) Create(ctx context.Context, draft task.Draft) (*task.Task, error) {
	t, err := r.inner.Create(ctx, draft)
	r.Invalidate(ctx)
	return t, err
}

func (r *CachedRepository) Update(ctx context.Context, t *task.Task) (*task.Task, error) {
	updated, err := r.inner.Update(ctx, t)
	r.Invalidate(ctx)
	return updated, err
}

func (r *CachedRepository) Delete(ctx context.Context, id int64) error {
	err := r.inner.Delete(ctx, id)
	r.Invalidate(ctx)
	return err
}

func (r *CachedRepository) AddRelation(ctx context.Context, id int64, kind task.RelationKind, otherID int64) error {
	err := r.inner.AddRelation(ctx, id, kind, otherID)
	r.Invalidate(ctx)
	return err
}

func (r *CachedRepository) RemoveRelation(ctx context.Context, id int64, kind task.RelationKind, otherID int64) error {
	err := r.inner.RemoveRelation(ctx, id, kind, otherID)
	r.Invalidate(ctx)
	return err
}

// Invalidate drops every cached snapshot. A mutation that failed remotely
// may still have applied, so callers invalidate regardless of its error.
func (r *CachedRepository) Invalidate(ctx context.Context) {
	keys, err := r.store.SMembers(ctx, keyIndex).Result()
	if err != nil {
		r.logger.WarnContext(ctx, "cache index read failed", "error", err)
		return
	}
	keys = append(keys, keyIndex)
	if err := r.store.Del(ctx, keys...).Err(); err != nil {
		r.logger.WarnContext(ctx, "cache invalidation failed", "error", err)
	}
}
