//go:build integration

package region_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"letterc/internal/region"
	domain "letterc/pkg/domain"
	"letterc/pkg/testutil/containers"
)

// countingDirectory counts source hits so cache hits are observable.
type countingDirectory struct {
	region.Directory
	listCalls int
}

func (d *countingDirectory) List(ctx context.Context) ([]region.Region, error) {
	d.listCalls++
	return d.Directory.List(ctx)
}

type CachedDirectorySuite struct {
	suite.Suite
	ctx    context.Context
	redis  *containers.RedisContainer
	source *countingDirectory
	cached *region.CachedDirectory
	leafID domain.RegionID
}

func TestCachedDirectorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CachedDirectorySuite))
}

func (s *CachedDirectorySuite) SetupSuite() {
	s.ctx = context.Background()
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *CachedDirectorySuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(s.ctx))

	district := region.Region{ID: domain.RegionID(uuid.New()), Name: "Kecamatan Contoh"}
	leaf := region.Region{ID: domain.RegionID(uuid.New()), Name: "Desa Contoh", ParentID: &district.ID}
	s.leafID = leaf.ID

	s.source = &countingDirectory{Directory: region.NewStaticDirectory([]region.Region{district, leaf})}
	s.cached = region.NewCachedDirectory(s.source, s.redis.Client, time.Minute,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (s *CachedDirectorySuite) TestListIsCached() {
	first, err := s.cached.List(s.ctx)
	s.Require().NoError(err)
	s.Len(first, 2)
	s.Equal(1, s.source.listCalls)

	second, err := s.cached.List(s.ctx)
	s.Require().NoError(err)
	s.Equal(first, second)
	s.Equal(1, s.source.listCalls, "second list must come from the cache")
}

func (s *CachedDirectorySuite) TestGetServedFromCachedSnapshot() {
	_, err := s.cached.List(s.ctx)
	s.Require().NoError(err)

	got, err := s.cached.Get(s.ctx, s.leafID)
	s.Require().NoError(err)
	s.Equal("Desa Contoh", got.Name)
	s.True(got.IsLeaf())
	s.Equal(1, s.source.listCalls)
}

func (s *CachedDirectorySuite) TestInvalidateForcesReload() {
	_, err := s.cached.List(s.ctx)
	s.Require().NoError(err)
	s.Require().NoError(s.cached.Invalidate(s.ctx))

	_, err = s.cached.List(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, s.source.listCalls)
}
