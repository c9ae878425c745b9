// Package service exposes ownership record operations to the HTTP layer:
// incremental search, detail lookup, direct registration, and administrative
// deletion. Area changes never happen here; those belong to the mutation
// engine.
package service

import (
	"context"
	"errors"
	"log/slog"

	"letterc/internal/ownership/models"
	"letterc/internal/ownership/store"
	domain "letterc/pkg/domain"
	dErrors "letterc/pkg/domain-errors"
	"letterc/pkg/platform/sentinel"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// Service wraps the ownership store with domain-error translation.
type Service struct {
	store  store.Store
	logger *slog.Logger
}

func NewService(st store.Store, logger *slog.Logger) *Service {
	return &Service{store: st, logger: logger}
}

// Detail bundles an ownership record with its parcels.
type Detail struct {
	Ownership *models.OwnershipRecord `json:"ownership"`
	Parcels   []*models.ParcelRecord  `json:"parcels"`
}

// Search finds ownership records by owner-number prefix. An empty prefix
// returns an empty list so a half-typed search box never pulls a whole
// region.
func (s *Service) Search(ctx context.Context, regionID domain.RegionID, prefix string, limit int) ([]*models.OwnershipRecord, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	owners, err := s.store.FindByOwnerNumberPrefix(ctx, regionID, prefix, limit)
	if err != nil {
		return nil, translateStoreErr(ctx, err, "search ownership records")
	}
	return owners, nil
}

// Get returns the record and all of its parcels.
func (s *Service) Get(ctx context.Context, id domain.OwnershipID) (*Detail, error) {
	owner, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "ownership record not found")
		}
		return nil, translateStoreErr(ctx, err, "get ownership record")
	}
	parcels, err := s.store.GetParcels(ctx, id)
	if err != nil {
		return nil, translateStoreErr(ctx, err, "get parcels")
	}
	return &Detail{Ownership: owner, Parcels: parcels}, nil
}

// RegisterInput carries the fields for direct owner registration.
type RegisterInput struct {
	RegionID     domain.RegionID
	OwnerNumber  domain.OwnerNumber
	OwnerName    string
	OwnerAddress string
	Parcel       models.ParcelTemplate
	Area         float64
}

// Register creates a new ownership record with its first parcel. This is the
// direct path; the mutation engine creates owners implicitly during a commit.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Detail, error) {
	if in.OwnerNumber.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "owner number is required")
	}
	if in.OwnerName == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "owner name is required")
	}
	if in.Area < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "area must not be negative")
	}

	owner := &models.OwnershipRecord{
		ID:           domain.NewOwnershipID(),
		RegionID:     in.RegionID,
		OwnerNumber:  in.OwnerNumber,
		OwnerName:    in.OwnerName,
		OwnerAddress: in.OwnerAddress,
	}
	parcel := &models.ParcelRecord{
		ID:               domain.NewParcelID(),
		OwnershipID:      owner.ID,
		ParcelNumber:     in.Parcel.ParcelNumber,
		LandType:         in.Parcel.LandType,
		Grade:            in.Parcel.Grade,
		AreaSquareMeters: in.Area,
		ProvenanceNote:   in.Parcel.ProvenanceNote,
	}
	if err := s.store.CreateWithParcel(ctx, owner, parcel); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "owner number already registered in this region")
		}
		return nil, translateStoreErr(ctx, err, "create ownership record")
	}

	s.logger.InfoContext(ctx, "ownership record registered",
		"ownership_id", owner.ID.String(),
		"region_id", in.RegionID.String(),
		"owner_number", in.OwnerNumber.String(),
	)
	return &Detail{Ownership: owner, Parcels: []*models.ParcelRecord{parcel}}, nil
}

// Delete removes an ownership record and its parcels. Administrative action;
// journal entries referencing the owner number stay in place.
func (s *Service) Delete(ctx context.Context, id domain.OwnershipID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "ownership record not found")
		}
		return translateStoreErr(ctx, err, "delete ownership record")
	}
	s.logger.InfoContext(ctx, "ownership record deleted", "ownership_id", id.String())
	return nil
}

// translateStoreErr converts infrastructure failures into the retryable half
// of the error taxonomy. Deadline overruns surface as timeouts, everything
// else as unavailable so callers know a retry may succeed.
func translateStoreErr(ctx context.Context, err error, op string) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, op+" timed out")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, op+" unavailable")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, op+" failed")
	}
}
