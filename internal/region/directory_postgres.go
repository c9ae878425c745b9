package region

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	domain "letterc/pkg/domain"
	"letterc/pkg/platform/sentinel"
)

// PostgresDirectory reads regions from the regions table.
type PostgresDirectory struct {
	db *sql.DB
}

func NewPostgresDirectory(db *sql.DB) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

func (d *PostgresDirectory) List(ctx context.Context) ([]Region, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, name, parent_id
		FROM regions
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list regions: %w", err)
	}
	defer rows.Close()

	var regions []Region
	for rows.Next() {
		r, err := scanRegion(rows)
		if err != nil {
			return nil, err
		}
		regions = append(regions, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list regions: %w", err)
	}
	return regions, nil
}

func (d *PostgresDirectory) Get(ctx context.Context, id domain.RegionID) (Region, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, name, parent_id
		FROM regions
		WHERE id = $1
	`, uuid.UUID(id))

	r, err := scanRegion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Region{}, sentinel.ErrNotFound
		}
		return Region{}, err
	}
	return r, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegion(row rowScanner) (Region, error) {
	var (
		id       uuid.UUID
		name     string
		parentID uuid.NullUUID
	)
	if err := row.Scan(&id, &name, &parentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Region{}, err
		}
		return Region{}, fmt.Errorf("scan region: %w", err)
	}
	r := Region{ID: domain.RegionID(id), Name: name}
	if parentID.Valid {
		pid := domain.RegionID(parentID.UUID)
		r.ParentID = &pid
	}
	return r, nil
}
