package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"letterc/internal/ownership/models"
	domain "letterc/pkg/domain"
	"letterc/pkg/platform/sentinel"
	txcontext "letterc/pkg/platform/tx"
)

// Postgres persists ownership and parcel records. All statements resolve
// their executor through pkg/platform/tx so the mutation engine's RunInTx
// boundary covers every write.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const (
	pqUniqueViolation = "23505"
	pqCheckViolation  = "23514"
)

const ownerColumns = `id, region_id, owner_number, owner_name, owner_address, created_at, updated_at`
const parcelColumns = `id, ownership_id, parcel_number, land_type, grade, area_sq_meters, provenance_note, created_at, updated_at`

func (s *Postgres) FindByOwnerNumberPrefix(ctx context.Context, regionID domain.RegionID, prefix string, limit int) ([]*models.OwnershipRecord, error) {
	if prefix == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	q := txcontext.Resolve(ctx, s.db)
	rows, err := q.QueryContext(ctx, `
		SELECT `+ownerColumns+`
		FROM ownership_records
		WHERE region_id = $1 AND owner_number ILIKE $2 || '%'
		ORDER BY owner_number
		LIMIT $3
	`, uuid.UUID(regionID), prefix, limit)
	if err != nil {
		return nil, fmt.Errorf("find by owner number prefix: %w", err)
	}
	defer rows.Close()

	var owners []*models.OwnershipRecord
	for rows.Next() {
		o, err := scanOwner(rows)
		if err != nil {
			return nil, err
		}
		owners = append(owners, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find by owner number prefix: %w", err)
	}
	return owners, nil
}

func (s *Postgres) GetByID(ctx context.Context, id domain.OwnershipID) (*models.OwnershipRecord, error) {
	q := txcontext.Resolve(ctx, s.db)
	row := q.QueryRowContext(ctx, `
		SELECT `+ownerColumns+`
		FROM ownership_records
		WHERE id = $1
	`, uuid.UUID(id))
	o, err := scanOwner(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

func (s *Postgres) GetByOwnerNumber(ctx context.Context, regionID domain.RegionID, number domain.OwnerNumber) (*models.OwnershipRecord, error) {
	q := txcontext.Resolve(ctx, s.db)
	row := q.QueryRowContext(ctx, `
		SELECT `+ownerColumns+`
		FROM ownership_records
		WHERE region_id = $1 AND lower(owner_number) = lower($2)
	`, uuid.UUID(regionID), number.String())
	o, err := scanOwner(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

func (s *Postgres) GetParcels(ctx context.Context, ownershipID domain.OwnershipID) ([]*models.ParcelRecord, error) {
	q := txcontext.Resolve(ctx, s.db)
	rows, err := q.QueryContext(ctx, `
		SELECT `+parcelColumns+`
		FROM parcel_records
		WHERE ownership_id = $1
		ORDER BY created_at
	`, uuid.UUID(ownershipID))
	if err != nil {
		return nil, fmt.Errorf("get parcels: %w", err)
	}
	defer rows.Close()

	var parcels []*models.ParcelRecord
	for rows.Next() {
		p, err := scanParcel(rows)
		if err != nil {
			return nil, err
		}
		parcels = append(parcels, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get parcels: %w", err)
	}
	return parcels, nil
}

func (s *Postgres) GetParcel(ctx context.Context, parcelID domain.ParcelID) (*models.ParcelRecord, error) {
	q := txcontext.Resolve(ctx, s.db)
	row := q.QueryRowContext(ctx, `
		SELECT `+parcelColumns+`
		FROM parcel_records
		WHERE id = $1
	`, uuid.UUID(parcelID))
	p, err := scanParcel(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *Postgres) CreateWithParcel(ctx context.Context, owner *models.OwnershipRecord, parcel *models.ParcelRecord) error {
	q := txcontext.Resolve(ctx, s.db)
	now := time.Now()

	_, err := q.ExecContext(ctx, `
		INSERT INTO ownership_records (id, region_id, owner_number, owner_name, owner_address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
	`, uuid.UUID(owner.ID), uuid.UUID(owner.RegionID), owner.OwnerNumber.String(), owner.OwnerName, owner.OwnerAddress, now)
	if err != nil {
		return translatePQ(err, "insert ownership record")
	}

	parcel.OwnershipID = owner.ID
	if err := s.insertParcel(ctx, q, parcel, now); err != nil {
		return err
	}
	owner.CreatedAt = now
	owner.UpdatedAt = now
	return nil
}

func (s *Postgres) CreateParcel(ctx context.Context, parcel *models.ParcelRecord) error {
	q := txcontext.Resolve(ctx, s.db)
	return s.insertParcel(ctx, q, parcel, time.Now())
}

func (s *Postgres) insertParcel(ctx context.Context, q txcontext.Querier, parcel *models.ParcelRecord, now time.Time) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO parcel_records (id, ownership_id, parcel_number, land_type, grade, area_sq_meters, provenance_note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
	`, uuid.UUID(parcel.ID), uuid.UUID(parcel.OwnershipID), parcel.ParcelNumber, string(parcel.LandType), parcel.Grade, parcel.AreaSquareMeters, parcel.ProvenanceNote, now)
	if err != nil {
		return translatePQ(err, "insert parcel record")
	}
	parcel.CreatedAt = now
	parcel.UpdatedAt = now
	return nil
}

func (s *Postgres) DeleteParcel(ctx context.Context, parcelID domain.ParcelID) error {
	q := txcontext.Resolve(ctx, s.db)
	res, err := q.ExecContext(ctx, `DELETE FROM parcel_records WHERE id = $1`, uuid.UUID(parcelID))
	if err != nil {
		return translatePQ(err, "delete parcel record")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete parcel record: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) AdjustParcelArea(ctx context.Context, parcelID domain.ParcelID, delta float64) error {
	q := txcontext.Resolve(ctx, s.db)

	// The WHERE guard plus the table CHECK constraint both enforce the
	// non-negative invariant; the guard lets us report it without aborting a
	// surrounding transaction on the constraint.
	res, err := q.ExecContext(ctx, `
		UPDATE parcel_records
		SET area_sq_meters = area_sq_meters + $2, updated_at = now()
		WHERE id = $1 AND area_sq_meters + $2 >= 0
	`, uuid.UUID(parcelID), delta)
	if err != nil {
		return translatePQ(err, "adjust parcel area")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("adjust parcel area: %w", err)
	}
	if affected == 1 {
		return nil
	}

	var exists bool
	if err := q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM parcel_records WHERE id = $1)`, uuid.UUID(parcelID)).Scan(&exists); err != nil {
		return fmt.Errorf("adjust parcel area: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrNegativeArea
}

func (s *Postgres) Delete(ctx context.Context, ownershipID domain.OwnershipID) error {
	q := txcontext.Resolve(ctx, s.db)
	// parcel_records has ON DELETE CASCADE on ownership_id.
	res, err := q.ExecContext(ctx, `DELETE FROM ownership_records WHERE id = $1`, uuid.UUID(ownershipID))
	if err != nil {
		return translatePQ(err, "delete ownership record")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete ownership record: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func translatePQ(err error, op string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return sentinel.ErrAlreadyUsed
		case pqCheckViolation:
			return sentinel.ErrNegativeArea
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func scanOwner(row rowScanner) (*models.OwnershipRecord, error) {
	var (
		o           models.OwnershipRecord
		id, region  uuid.UUID
		ownerNumber string
	)
	if err := row.Scan(&id, &region, &ownerNumber, &o.OwnerName, &o.OwnerAddress, &o.CreatedAt, &o.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan ownership record: %w", err)
	}
	o.ID = domain.OwnershipID(id)
	o.RegionID = domain.RegionID(region)
	o.OwnerNumber = domain.OwnerNumber(ownerNumber)
	return &o, nil
}

func scanParcel(row rowScanner) (*models.ParcelRecord, error) {
	var (
		p             models.ParcelRecord
		id, ownership uuid.UUID
		landType      string
	)
	if err := row.Scan(&id, &ownership, &p.ParcelNumber, &landType, &p.Grade, &p.AreaSquareMeters, &p.ProvenanceNote, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan parcel record: %w", err)
	}
	p.ID = domain.ParcelID(id)
	p.OwnershipID = domain.OwnershipID(ownership)
	p.LandType = models.LandType(landType)
	return &p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}
