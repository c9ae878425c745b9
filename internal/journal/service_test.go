package journal

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	domain "letterc/pkg/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type JournalServiceSuite struct {
	suite.Suite
	ctx      context.Context
	store    *InMemory
	service  *Service
	regionID domain.RegionID
}

func (s *JournalServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewInMemory()
	s.service = NewService(s.store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.regionID = domain.RegionID(uuid.New())
}

func TestJournalServiceSuite(t *testing.T) {
	suite.Run(t, new(JournalServiceSuite))
}

func (s *JournalServiceSuite) append(area float64, transferType domain.TransferType, createdAt time.Time) *Entry {
	entry := &Entry{
		ID:                domain.NewEntryID(),
		RegionID:          s.regionID,
		SourceOwnerNumber: domain.OwnerNumber("C.10"),
		TargetOwnerNumber: domain.OwnerNumber("C.99"),
		SourceOwnerName:   "Budi",
		TargetOwnerName:   "Siti",
		AreaTransferred:   area,
		TransferType:      transferType,
		TransferDate:      createdAt,
		CreatedAt:         createdAt,
	}
	s.Require().NoError(s.store.Append(s.ctx, entry))
	return entry
}

func (s *JournalServiceSuite) TestList() {
	base := time.Now().Add(-time.Hour)
	oldest := s.append(100, domain.TransferTypeSale, base)
	middle := s.append(50, domain.TransferTypeGift, base.Add(time.Minute))
	newest := s.append(25, domain.TransferTypeSale, base.Add(2*time.Minute))

	s.Run("newest first", func() {
		got, err := s.service.List(s.ctx, s.regionID, 10, 0)
		s.Require().NoError(err)
		s.Require().Len(got, 3)
		s.Equal(newest.ID, got[0].ID)
		s.Equal(middle.ID, got[1].ID)
		s.Equal(oldest.ID, got[2].ID)
	})

	s.Run("offset pages past newer entries", func() {
		got, err := s.service.List(s.ctx, s.regionID, 10, 2)
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(oldest.ID, got[0].ID)
	})

	s.Run("limit is capped", func() {
		got, err := s.service.List(s.ctx, s.regionID, 10000, 0)
		s.Require().NoError(err)
		s.Len(got, 3)
	})

	s.Run("region with no history lists empty, not nil", func() {
		got, err := s.service.List(s.ctx, domain.RegionID(uuid.New()), 10, 0)
		s.Require().NoError(err)
		s.NotNil(got)
		s.Empty(got)
	})
}

func (s *JournalServiceSuite) TestSummarize() {
	s.Run("fresh region summarizes to zeros", func() {
		got, err := s.service.Summarize(s.ctx, s.regionID)
		s.Require().NoError(err)
		s.Zero(got.TotalCount)
		s.Zero(got.TotalArea)
		s.Empty(got.CountsByType)
		s.NotNil(got.Recent)
		s.Empty(got.Recent)
	})

	s.Run("aggregates across entries", func() {
		base := time.Now().Add(-time.Hour)
		s.append(100, domain.TransferTypeSale, base)
		s.append(50, domain.TransferTypeGift, base.Add(time.Minute))
		s.append(25, domain.TransferTypeSale, base.Add(2*time.Minute))

		got, err := s.service.Summarize(s.ctx, s.regionID)
		s.Require().NoError(err)
		s.EqualValues(3, got.TotalCount)
		s.InDelta(175, got.TotalArea, 1e-9)
		s.EqualValues(2, got.CountsByType["sale"])
		s.EqualValues(1, got.CountsByType["gift"])
		s.Len(got.Recent, 3)
		s.InDelta(25, got.Recent[0].AreaTransferred, 1e-9)
	})
}

func (s *JournalServiceSuite) TestStoreIsAppendOnly() {
	entry := s.append(100, domain.TransferTypeSale, time.Now())

	got, err := s.store.ListByRegion(s.ctx, s.regionID, 1, 0)
	s.Require().NoError(err)
	s.Require().Len(got, 1)

	// Mutating the returned copy must not reach the stored entry.
	got[0].AreaTransferred = 9999
	again, err := s.store.ListByRegion(s.ctx, s.regionID, 1, 0)
	s.Require().NoError(err)
	s.InDelta(100, again[0].AreaTransferred, 1e-9)
	s.Equal(entry.ID, again[0].ID)
}
