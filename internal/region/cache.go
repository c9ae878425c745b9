package region

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	domain "letterc/pkg/domain"
)

const cacheKey = "letterc:regions"

// CachedDirectory decorates a Directory with a redis cache. Cache failures
// fall open: a broken cache must never fail a region lookup, so errors are
// logged and the call falls through to the source.
type CachedDirectory struct {
	source Directory
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedDirectory(source Directory, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedDirectory {
	return &CachedDirectory{
		source: source,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (d *CachedDirectory) List(ctx context.Context) ([]Region, error) {
	raw, err := d.client.Get(ctx, cacheKey).Bytes()
	if err == nil {
		var regions []Region
		if err := json.Unmarshal(raw, &regions); err == nil {
			return regions, nil
		}
		// Corrupt payload; fall through and overwrite below.
	} else if err != redis.Nil {
		d.logger.WarnContext(ctx, "region cache read failed", "error", err)
	}

	regions, err := d.source.List(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(regions); err == nil {
		if err := d.client.Set(ctx, cacheKey, payload, d.ttl).Err(); err != nil {
			d.logger.WarnContext(ctx, "region cache write failed", "error", err)
		}
	}
	return regions, nil
}

func (d *CachedDirectory) Get(ctx context.Context, id domain.RegionID) (Region, error) {
	regions, err := d.List(ctx)
	if err != nil {
		return Region{}, err
	}
	for _, r := range regions {
		if r.ID == id {
			return r, nil
		}
	}
	// Not in the cached snapshot; ask the source directly in case the cache
	// predates a newly added region.
	return d.source.Get(ctx, id)
}

// Invalidate drops the cached snapshot. Exposed for administrative reloads.
func (d *CachedDirectory) Invalidate(ctx context.Context) error {
	return d.client.Del(ctx, cacheKey).Err()
}
