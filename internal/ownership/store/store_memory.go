package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"letterc/internal/ownership/models"
	domain "letterc/pkg/domain"
	"letterc/pkg/platform/sentinel"
)

// InMemory is the map-backed store used by unit tests and dev mode.
// Atomicity across calls comes from the engine's RunInTx shard lock; the
// internal mutex only guards individual operations.
type InMemory struct {
	mu      sync.RWMutex
	owners  map[domain.OwnershipID]*models.OwnershipRecord
	parcels map[domain.ParcelID]*models.ParcelRecord
}

func NewInMemory() *InMemory {
	return &InMemory{
		owners:  make(map[domain.OwnershipID]*models.OwnershipRecord),
		parcels: make(map[domain.ParcelID]*models.ParcelRecord),
	}
}

func (s *InMemory) FindByOwnerNumberPrefix(_ context.Context, regionID domain.RegionID, prefix string, limit int) ([]*models.OwnershipRecord, error) {
	if prefix == "" {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []*models.OwnershipRecord
	for _, o := range s.owners {
		if o.RegionID != regionID {
			continue
		}
		if strings.HasPrefix(strings.ToLower(o.OwnerNumber.String()), strings.ToLower(prefix)) {
			matches = append(matches, copyOwner(o))
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].OwnerNumber < matches[j].OwnerNumber
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (s *InMemory) GetByID(_ context.Context, id domain.OwnershipID) (*models.OwnershipRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.owners[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyOwner(o), nil
}

func (s *InMemory) GetByOwnerNumber(_ context.Context, regionID domain.RegionID, number domain.OwnerNumber) (*models.OwnershipRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.owners {
		if o.RegionID == regionID && strings.EqualFold(o.OwnerNumber.String(), number.String()) {
			return copyOwner(o), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) GetParcels(_ context.Context, ownershipID domain.OwnershipID) ([]*models.ParcelRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var parcels []*models.ParcelRecord
	for _, p := range s.parcels {
		if p.OwnershipID == ownershipID {
			parcels = append(parcels, copyParcel(p))
		}
	}
	sort.Slice(parcels, func(i, j int) bool {
		return parcels[i].CreatedAt.Before(parcels[j].CreatedAt)
	})
	return parcels, nil
}

func (s *InMemory) GetParcel(_ context.Context, parcelID domain.ParcelID) (*models.ParcelRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.parcels[parcelID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyParcel(p), nil
}

func (s *InMemory) CreateWithParcel(_ context.Context, owner *models.OwnershipRecord, parcel *models.ParcelRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.owners {
		if existing.RegionID == owner.RegionID && strings.EqualFold(existing.OwnerNumber.String(), owner.OwnerNumber.String()) {
			return sentinel.ErrAlreadyUsed
		}
	}
	if parcel.AreaSquareMeters < 0 {
		return sentinel.ErrNegativeArea
	}

	now := time.Now()
	ownerCopy := *owner
	ownerCopy.CreatedAt = now
	ownerCopy.UpdatedAt = now
	s.owners[owner.ID] = &ownerCopy

	parcelCopy := *parcel
	parcelCopy.OwnershipID = owner.ID
	parcelCopy.CreatedAt = now
	parcelCopy.UpdatedAt = now
	s.parcels[parcel.ID] = &parcelCopy
	return nil
}

func (s *InMemory) CreateParcel(_ context.Context, parcel *models.ParcelRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.owners[parcel.OwnershipID]; !ok {
		return sentinel.ErrNotFound
	}
	if parcel.AreaSquareMeters < 0 {
		return sentinel.ErrNegativeArea
	}
	now := time.Now()
	parcelCopy := *parcel
	parcelCopy.CreatedAt = now
	parcelCopy.UpdatedAt = now
	s.parcels[parcel.ID] = &parcelCopy
	return nil
}

func (s *InMemory) DeleteParcel(_ context.Context, parcelID domain.ParcelID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.parcels[parcelID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.parcels, parcelID)
	return nil
}

func (s *InMemory) AdjustParcelArea(_ context.Context, parcelID domain.ParcelID, delta float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.parcels[parcelID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if p.AreaSquareMeters+delta < 0 {
		return sentinel.ErrNegativeArea
	}
	p.AreaSquareMeters += delta
	p.UpdatedAt = time.Now()
	return nil
}

func (s *InMemory) Delete(_ context.Context, ownershipID domain.OwnershipID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.owners[ownershipID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.owners, ownershipID)
	for id, p := range s.parcels {
		if p.OwnershipID == ownershipID {
			delete(s.parcels, id)
		}
	}
	return nil
}

func copyOwner(o *models.OwnershipRecord) *models.OwnershipRecord {
	c := *o
	return &c
}

func copyParcel(p *models.ParcelRecord) *models.ParcelRecord {
	c := *p
	return &c
}
