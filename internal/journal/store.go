package journal

import (
	"context"

	domain "letterc/pkg/domain"
)

// Store is the journal persistence contract. Append is called only by the
// mutation engine inside its commit transaction; nothing else writes here.
type Store interface {
	Append(ctx context.Context, entry *Entry) error

	// ListByRegion returns entries reverse-chronologically.
	ListByRegion(ctx context.Context, regionID domain.RegionID, limit, offset int) ([]*Entry, error)

	// CountAndTotal returns the entry count and summed transferred area.
	CountAndTotal(ctx context.Context, regionID domain.RegionID) (int64, float64, error)

	// CountByType groups entry counts by transfer type.
	CountByType(ctx context.Context, regionID domain.RegionID) (map[string]int64, error)
}
