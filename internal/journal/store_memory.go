package journal

import (
	"context"
	"sort"
	"sync"
	"time"

	domain "letterc/pkg/domain"
)

// InMemory holds journal entries per region. Append-only; nothing here
// mutates or removes an entry once stored.
type InMemory struct {
	mu      sync.RWMutex
	entries map[domain.RegionID][]*Entry
}

func NewInMemory() *InMemory {
	return &InMemory{entries: make(map[domain.RegionID][]*Entry)}
}

func (s *InMemory) Append(_ context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	stored := *entry
	s.entries[entry.RegionID] = append(s.entries[entry.RegionID], &stored)
	return nil
}

func (s *InMemory) ListByRegion(_ context.Context, regionID domain.RegionID, limit, offset int) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.entries[regionID]
	ordered := make([]*Entry, len(all))
	copy(ordered, all)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
	})

	if offset >= len(ordered) {
		return nil, nil
	}
	ordered = ordered[offset:]
	if limit > 0 && len(ordered) > limit {
		ordered = ordered[:limit]
	}

	out := make([]*Entry, len(ordered))
	for i, e := range ordered {
		c := *e
		out[i] = &c
	}
	return out, nil
}

func (s *InMemory) CountAndTotal(_ context.Context, regionID domain.RegionID) (int64, float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total float64
	for _, e := range s.entries[regionID] {
		total += e.AreaTransferred
	}
	return int64(len(s.entries[regionID])), total, nil
}

func (s *InMemory) CountByType(_ context.Context, regionID domain.RegionID) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int64)
	for _, e := range s.entries[regionID] {
		counts[e.TransferType.String()]++
	}
	return counts, nil
}
