package journal

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	domain "letterc/pkg/domain"
	dErrors "letterc/pkg/domain-errors"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
	recentCount      = 5
)

// Service reads the journal. It has no write surface: appends happen only
// through the mutation engine, which takes the Store directly.
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// List returns a region's entries reverse-chronologically.
func (s *Service) List(ctx context.Context, regionID domain.RegionID, limit, offset int) ([]*Entry, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	entries, err := s.store.ListByRegion(ctx, regionID, limit, offset)
	if err != nil {
		return nil, translateErr(ctx, err, "list journal")
	}
	if entries == nil {
		entries = []*Entry{}
	}
	return entries, nil
}

// Summarize aggregates a region's journal. The three aggregate reads are
// independent, so they fan out concurrently.
func (s *Service) Summarize(ctx context.Context, regionID domain.RegionID) (*Summary, error) {
	summary := &Summary{
		CountsByType: map[string]int64{},
		Recent:       []*Entry{},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		count, total, err := s.store.CountAndTotal(gctx, regionID)
		if err != nil {
			return err
		}
		summary.TotalCount = count
		summary.TotalArea = total
		return nil
	})
	g.Go(func() error {
		counts, err := s.store.CountByType(gctx, regionID)
		if err != nil {
			return err
		}
		if counts != nil {
			summary.CountsByType = counts
		}
		return nil
	})
	g.Go(func() error {
		recent, err := s.store.ListByRegion(gctx, regionID, recentCount, 0)
		if err != nil {
			return err
		}
		if recent != nil {
			summary.Recent = recent
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, translateErr(ctx, err, "summarize journal")
	}
	return summary, nil
}

func translateErr(ctx context.Context, err error, op string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, op+" timed out")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, op+" failed")
}
