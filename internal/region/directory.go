// Package region provides read-only access to the administrative region
// hierarchy. Regions change rarely, so callers may cache results freely; the
// redis decorator in this package does exactly that.
package region

import (
	"context"
	"sort"
	"sync"

	domain "letterc/pkg/domain"
	"letterc/pkg/platform/sentinel"
)

// Directory lists and resolves administrative regions.
type Directory interface {
	List(ctx context.Context) ([]Region, error)
	Get(ctx context.Context, id domain.RegionID) (Region, error)
}

// StaticDirectory serves a fixed region set from memory. Used in dev mode and
// tests; production wires the postgres directory behind the redis cache.
type StaticDirectory struct {
	mu      sync.RWMutex
	regions map[domain.RegionID]Region
}

func NewStaticDirectory(regions []Region) *StaticDirectory {
	byID := make(map[domain.RegionID]Region, len(regions))
	for _, r := range regions {
		byID[r.ID] = r
	}
	return &StaticDirectory{regions: byID}
}

func (d *StaticDirectory) List(_ context.Context) ([]Region, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Region, 0, len(d.regions))
	for _, r := range d.regions {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (d *StaticDirectory) Get(_ context.Context, id domain.RegionID) (Region, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r, ok := d.regions[id]
	if !ok {
		return Region{}, sentinel.ErrNotFound
	}
	return r, nil
}
