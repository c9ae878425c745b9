// Package journal keeps the append-only history of committed land mutations.
// The journal is the sole source of truth for "did this transfer happen":
// entries are written only by the mutation engine's commit, inside the same
// transaction as the area adjustments, and are never updated or deleted.
package journal

import (
	"time"

	domain "letterc/pkg/domain"
)

// Entry is one committed transfer. Owners are referenced by their
// human-facing owner number rather than internal id, deliberately: the
// history stays readable even if internal ids are regenerated, at the cost
// of not being a hard foreign key.
type Entry struct {
	ID                domain.EntryID      `json:"id"`
	RegionID          domain.RegionID     `json:"region_id"`
	SourceOwnerNumber domain.OwnerNumber  `json:"source_owner_number"`
	TargetOwnerNumber domain.OwnerNumber  `json:"target_owner_number"`
	SourceOwnerName   string              `json:"source_owner_name"`
	TargetOwnerName   string              `json:"target_owner_name"`
	TargetAddress     string              `json:"target_address"`
	AreaTransferred   float64             `json:"area_transferred"`
	TransferType      domain.TransferType `json:"transfer_type"`
	TransferDate      time.Time           `json:"transfer_date"`
	Note              string              `json:"note"`
	CreatedAt         time.Time           `json:"created_at"`
}

// Summary aggregates a region's journal. Zero entries is a valid state and
// yields zeroed fields, not an error.
type Summary struct {
	TotalCount   int64            `json:"total_count"`
	TotalArea    float64          `json:"total_area"`
	CountsByType map[string]int64 `json:"counts_by_type"`
	Recent       []*Entry         `json:"recent"`
}
