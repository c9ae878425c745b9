// Package store persists ownership and parcel records. Two implementations:
// an in-memory store for unit tests and dev mode, and a postgres store for
// production. Both honor a context-carried transaction via pkg/platform/tx
// (the memory store relies on the RunInTx shard lock instead).
package store

import (
	"context"

	"letterc/internal/ownership/models"
	domain "letterc/pkg/domain"
)

// Store is the ownership record store contract.
//
// Errors are sentinel-based: ErrNotFound for missing records, ErrAlreadyUsed
// for a duplicate owner number within a region, ErrNegativeArea when an
// adjustment would drive a parcel negative.
type Store interface {
	// FindByOwnerNumberPrefix returns up to limit records in the region whose
	// owner number starts with prefix, ordered by owner number. An empty
	// prefix yields an empty result, never the whole region.
	FindByOwnerNumberPrefix(ctx context.Context, regionID domain.RegionID, prefix string, limit int) ([]*models.OwnershipRecord, error)

	// GetByID fetches one ownership record.
	GetByID(ctx context.Context, id domain.OwnershipID) (*models.OwnershipRecord, error)

	// GetByOwnerNumber resolves the region-scoped registry number.
	GetByOwnerNumber(ctx context.Context, regionID domain.RegionID, number domain.OwnerNumber) (*models.OwnershipRecord, error)

	// GetParcels lists all parcels of an ownership record. Usually one, but
	// the contract supports many.
	GetParcels(ctx context.Context, ownershipID domain.OwnershipID) ([]*models.ParcelRecord, error)

	// GetParcel fetches one parcel.
	GetParcel(ctx context.Context, parcelID domain.ParcelID) (*models.ParcelRecord, error)

	// CreateWithParcel atomically inserts an ownership record together with
	// its first parcel. ErrAlreadyUsed when the owner number is taken.
	CreateWithParcel(ctx context.Context, owner *models.OwnershipRecord, parcel *models.ParcelRecord) error

	// CreateParcel inserts an additional parcel under an existing record.
	CreateParcel(ctx context.Context, parcel *models.ParcelRecord) error

	// DeleteParcel removes a single parcel. ErrNotFound when it does not
	// exist.
	DeleteParcel(ctx context.Context, parcelID domain.ParcelID) error

	// AdjustParcelArea sets area = area + delta. ErrNegativeArea when the
	// result would be negative; callers pre-validate, this is the last line
	// of defense.
	AdjustParcelArea(ctx context.Context, parcelID domain.ParcelID, delta float64) error

	// Delete removes an ownership record and cascades to its parcels.
	// Administrative action only; mutations never delete.
	Delete(ctx context.Context, ownershipID domain.OwnershipID) error
}
