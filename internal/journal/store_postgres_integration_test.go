//go:build integration

package journal_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"letterc/internal/journal"
	domain "letterc/pkg/domain"
	"letterc/pkg/testutil/containers"
)

type PostgresJournalSuite struct {
	suite.Suite
	ctx      context.Context
	postgres *containers.PostgresContainer
	store    *journal.Postgres
	regionID domain.RegionID
}

func TestPostgresJournalSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresJournalSuite))
}

func (s *PostgresJournalSuite) SetupSuite() {
	s.ctx = context.Background()
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = journal.NewPostgres(s.postgres.DB)
}

func (s *PostgresJournalSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(s.ctx,
		"journal_entries", "parcel_records", "ownership_records", "regions"))

	s.regionID = domain.RegionID(uuid.New())
	_, err := s.postgres.DB.ExecContext(s.ctx,
		`INSERT INTO regions (id, name) VALUES ($1, $2)`, s.regionID.String(), "Desa Contoh")
	s.Require().NoError(err)
}

func (s *PostgresJournalSuite) append(area float64, transferType domain.TransferType, createdAt time.Time) *journal.Entry {
	entry := &journal.Entry{
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

func (s *PostgresJournalSuite) TestAppendAndList() {
	base := time.Now().Add(-time.Hour).Truncate(time.Microsecond)
	oldest := s.append(100, domain.TransferTypeSale, base)
	newest := s.append(50, domain.TransferTypeGift, base.Add(time.Minute))

	got, err := s.store.ListByRegion(s.ctx, s.regionID, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(newest.ID, got[0].ID)
	s.Equal(oldest.ID, got[1].ID)
	s.Equal(domain.OwnerNumber("C.10"), got[0].SourceOwnerNumber)
	s.InDelta(50, got[0].AreaTransferred, 1e-9)

	paged, err := s.store.ListByRegion(s.ctx, s.regionID, 1, 1)
	s.Require().NoError(err)
	s.Require().Len(paged, 1)
	s.Equal(oldest.ID, paged[0].ID)
}

func (s *PostgresJournalSuite) TestAggregates() {
	s.Run("zero entries yield zeros", func() {
		count, total, err := s.store.CountAndTotal(s.ctx, s.regionID)
		s.Require().NoError(err)
		s.Zero(count)
		s.Zero(total)

		counts, err := s.store.CountByType(s.ctx, s.regionID)
		s.Require().NoError(err)
		s.Empty(counts)
	})

	s.Run("sums and groups by type", func() {
		base := time.Now().Add(-time.Hour)
		s.append(100, domain.TransferTypeSale, base)
		s.append(50, domain.TransferTypeSale, base.Add(time.Minute))
		s.append(25, domain.TransferTypeInheritance, base.Add(2*time.Minute))

		count, total, err := s.store.CountAndTotal(s.ctx, s.regionID)
		s.Require().NoError(err)
		s.EqualValues(3, count)
		s.InDelta(175, total, 1e-9)

		counts, err := s.store.CountByType(s.ctx, s.regionID)
		s.Require().NoError(err)
		s.EqualValues(2, counts["sale"])
		s.EqualValues(1, counts["inheritance"])
	})
}

func (s *PostgresJournalSuite) TestRegionIsolation() {
	s.append(100, domain.TransferTypeSale, time.Now())

	otherRegion := domain.RegionID(uuid.New())
	_, err := s.postgres.DB.ExecContext(s.ctx,
		`INSERT INTO regions (id, name) VALUES ($1, $2)`, otherRegion.String(), "Desa Lain")
	s.Require().NoError(err)

	got, err := s.store.ListByRegion(s.ctx, otherRegion, 10, 0)
	s.Require().NoError(err)
	s.Empty(got)
}
