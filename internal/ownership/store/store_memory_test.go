package store

import (
	"context"
	"testing"

	"letterc/internal/ownership/models"
	domain "letterc/pkg/domain"
	"letterc/pkg/platform/sentinel"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type MemoryStoreSuite struct {
	suite.Suite
	ctx      context.Context
	store    *InMemory
	regionID domain.RegionID
}

func (s *MemoryStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewInMemory()
	s.regionID = domain.RegionID(uuid.New())
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) create(number, name string, area float64) (*models.OwnershipRecord, *models.ParcelRecord) {
	owner := &models.OwnershipRecord{
		ID:          domain.NewOwnershipID(),
		RegionID:    s.regionID,
		OwnerNumber: domain.OwnerNumber(number),
		OwnerName:   name,
	}
	parcel := &models.ParcelRecord{
		ID:               domain.NewParcelID(),
		OwnershipID:      owner.ID,
		AreaSquareMeters: area,
	}
	s.Require().NoError(s.store.CreateWithParcel(s.ctx, owner, parcel))
	return owner, parcel
}

func (s *MemoryStoreSuite) TestPrefixSearch() {
	s.create("C.10", "Budi", 100)
	s.create("C.12", "Wati", 100)
	s.create("C.20", "Siti", 100)

	s.Run("matches by prefix in stable order", func() {
		got, err := s.store.FindByOwnerNumberPrefix(s.ctx, s.regionID, "C.1", 10)
		s.Require().NoError(err)
		s.Require().Len(got, 2)
		s.Equal(domain.OwnerNumber("C.10"), got[0].OwnerNumber)
		s.Equal(domain.OwnerNumber("C.12"), got[1].OwnerNumber)
	})

	s.Run("empty prefix matches nothing", func() {
		got, err := s.store.FindByOwnerNumberPrefix(s.ctx, s.regionID, "", 10)
		s.Require().NoError(err)
		s.Empty(got)
	})

	s.Run("matching is case-insensitive", func() {
		got, err := s.store.FindByOwnerNumberPrefix(s.ctx, s.regionID, "c.2", 10)
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal("Siti", got[0].OwnerName)
	})

	s.Run("limit caps the result", func() {
		got, err := s.store.FindByOwnerNumberPrefix(s.ctx, s.regionID, "C.", 2)
		s.Require().NoError(err)
		s.Len(got, 2)
	})

	s.Run("other regions are invisible", func() {
		got, err := s.store.FindByOwnerNumberPrefix(s.ctx, domain.RegionID(uuid.New()), "C.", 10)
		s.Require().NoError(err)
		s.Empty(got)
	})
}

func (s *MemoryStoreSuite) TestLookups() {
	owner, parcel := s.create("C.10", "Budi", 250)

	s.Run("by id", func() {
		got, err := s.store.GetByID(s.ctx, owner.ID)
		s.Require().NoError(err)
		s.Equal(owner.OwnerNumber, got.OwnerNumber)
	})

	s.Run("by owner number ignores case", func() {
		got, err := s.store.GetByOwnerNumber(s.ctx, s.regionID, domain.OwnerNumber("c.10"))
		s.Require().NoError(err)
		s.Equal(owner.ID, got.ID)
	})

	s.Run("parcels of the owner", func() {
		got, err := s.store.GetParcels(s.ctx, owner.ID)
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(parcel.ID, got[0].ID)
	})

	s.Run("unknown ids return ErrNotFound", func() {
		_, err := s.store.GetByID(s.ctx, domain.NewOwnershipID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
		_, err = s.store.GetParcel(s.ctx, domain.NewParcelID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returned records are copies", func() {
		got, err := s.store.GetByID(s.ctx, owner.ID)
		s.Require().NoError(err)
		got.OwnerName = "clobbered"

		again, err := s.store.GetByID(s.ctx, owner.ID)
		s.Require().NoError(err)
		s.Equal("Budi", again.OwnerName)
	})
}

func (s *MemoryStoreSuite) TestCreateWithParcel() {
	s.Run("duplicate owner number in the same region is rejected", func() {
		s.create("C.10", "Budi", 100)
		dup := &models.OwnershipRecord{
			ID:          domain.NewOwnershipID(),
			RegionID:    s.regionID,
			OwnerNumber: domain.OwnerNumber("c.10"),
			OwnerName:   "Impostor",
		}
		err := s.store.CreateWithParcel(s.ctx, dup, &models.ParcelRecord{
			ID:          domain.NewParcelID(),
			OwnershipID: dup.ID,
		})
		s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)
	})

	s.Run("same owner number in another region is fine", func() {
		otherRegion := domain.RegionID(uuid.New())
		owner := &models.OwnershipRecord{
			ID:          domain.NewOwnershipID(),
			RegionID:    otherRegion,
			OwnerNumber: domain.OwnerNumber("C.10"),
			OwnerName:   "Neighbor",
		}
		s.Require().NoError(s.store.CreateWithParcel(s.ctx, owner, &models.ParcelRecord{
			ID:          domain.NewParcelID(),
			OwnershipID: owner.ID,
		}))
	})

	s.Run("negative initial area is rejected", func() {
		owner := &models.OwnershipRecord{
			ID:          domain.NewOwnershipID(),
			RegionID:    s.regionID,
			OwnerNumber: domain.OwnerNumber("C.77"),
		}
		err := s.store.CreateWithParcel(s.ctx, owner, &models.ParcelRecord{
			ID:               domain.NewParcelID(),
			OwnershipID:      owner.ID,
			AreaSquareMeters: -5,
		})
		s.Require().ErrorIs(err, sentinel.ErrNegativeArea)
	})
}

func (s *MemoryStoreSuite) TestAdjustParcelArea() {
	_, parcel := s.create("C.10", "Budi", 100)

	s.Run("applies positive and negative deltas", func() {
		s.Require().NoError(s.store.AdjustParcelArea(s.ctx, parcel.ID, -40))
		s.Require().NoError(s.store.AdjustParcelArea(s.ctx, parcel.ID, 15))
		got, err := s.store.GetParcel(s.ctx, parcel.ID)
		s.Require().NoError(err)
		s.InDelta(75, got.AreaSquareMeters, 1e-9)
	})

	s.Run("refuses to go negative and leaves stock untouched", func() {
		err := s.store.AdjustParcelArea(s.ctx, parcel.ID, -1000)
		s.Require().ErrorIs(err, sentinel.ErrNegativeArea)
		got, err := s.store.GetParcel(s.ctx, parcel.ID)
		s.Require().NoError(err)
		s.InDelta(75, got.AreaSquareMeters, 1e-9)
	})

	s.Run("draining to exactly zero is allowed", func() {
		s.Require().NoError(s.store.AdjustParcelArea(s.ctx, parcel.ID, -75))
		got, err := s.store.GetParcel(s.ctx, parcel.ID)
		s.Require().NoError(err)
		s.Zero(got.AreaSquareMeters)
	})

	s.Run("unknown parcel returns ErrNotFound", func() {
		s.Require().ErrorIs(s.store.AdjustParcelArea(s.ctx, domain.NewParcelID(), 10), sentinel.ErrNotFound)
	})
}

func (s *MemoryStoreSuite) TestCreateParcel() {
	owner, _ := s.create("C.10", "Budi", 100)

	s.Run("adds a second parcel to an existing owner", func() {
		p := &models.ParcelRecord{
			ID:               domain.NewParcelID(),
			OwnershipID:      owner.ID,
			AreaSquareMeters: 20,
		}
		s.Require().NoError(s.store.CreateParcel(s.ctx, p))
		parcels, err := s.store.GetParcels(s.ctx, owner.ID)
		s.Require().NoError(err)
		s.Len(parcels, 2)
	})

	s.Run("rejects a parcel for an unknown owner", func() {
		p := &models.ParcelRecord{
			ID:          domain.NewParcelID(),
			OwnershipID: domain.NewOwnershipID(),
		}
		s.Require().ErrorIs(s.store.CreateParcel(s.ctx, p), sentinel.ErrNotFound)
	})
}

func (s *MemoryStoreSuite) TestDeleteParcel() {
	owner, parcel := s.create("C.10", "Budi", 100)
	second := &models.ParcelRecord{
		ID:               domain.NewParcelID(),
		OwnershipID:      owner.ID,
		AreaSquareMeters: 20,
	}
	s.Require().NoError(s.store.CreateParcel(s.ctx, second))

	s.Require().NoError(s.store.DeleteParcel(s.ctx, second.ID))

	// Only the named parcel goes; the owner and its first parcel stay.
	_, err := s.store.GetParcel(s.ctx, second.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.GetByID(s.ctx, owner.ID)
	s.Require().NoError(err)
	_, err = s.store.GetParcel(s.ctx, parcel.ID)
	s.Require().NoError(err)

	s.Require().ErrorIs(s.store.DeleteParcel(s.ctx, second.ID), sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestDelete() {
	owner, parcel := s.create("C.10", "Budi", 100)

	s.Require().NoError(s.store.Delete(s.ctx, owner.ID))

	_, err := s.store.GetByID(s.ctx, owner.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
	// Parcels go with the record.
	_, err = s.store.GetParcel(s.ctx, parcel.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	s.Require().ErrorIs(s.store.Delete(s.ctx, owner.ID), sentinel.ErrNotFound)
}
