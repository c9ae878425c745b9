package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	domain "letterc/pkg/domain"
	txcontext "letterc/pkg/platform/tx"
)

// Postgres persists journal entries. Append resolves its executor through
// pkg/platform/tx so the entry lands in the same transaction as the parcel
// adjustments it records.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const entryColumns = `id, region_id, source_owner_number, target_owner_number, source_owner_name,
	target_owner_name, target_address, area_transferred, transfer_type, transfer_date, note, created_at`

func (s *Postgres) Append(ctx context.Context, entry *Entry) error {
	q := txcontext.Resolve(ctx, s.db)
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO journal_entries (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		uuid.UUID(entry.ID),
		uuid.UUID(entry.RegionID),
		entry.SourceOwnerNumber.String(),
		entry.TargetOwnerNumber.String(),
		entry.SourceOwnerName,
		entry.TargetOwnerName,
		entry.TargetAddress,
		entry.AreaTransferred,
		entry.TransferType.String(),
		entry.TransferDate,
		entry.Note,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append journal entry: %w", err)
	}
	return nil
}

func (s *Postgres) ListByRegion(ctx context.Context, regionID domain.RegionID, limit, offset int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	q := txcontext.Resolve(ctx, s.db)
	rows, err := q.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM journal_entries
		WHERE region_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, uuid.UUID(regionID), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	return entries, nil
}

func (s *Postgres) CountAndTotal(ctx context.Context, regionID domain.RegionID) (int64, float64, error) {
	q := txcontext.Resolve(ctx, s.db)
	var (
		count int64
		total float64
	)
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(area_transferred), 0)
		FROM journal_entries
		WHERE region_id = $1
	`, uuid.UUID(regionID)).Scan(&count, &total)
	if err != nil {
		return 0, 0, fmt.Errorf("count journal entries: %w", err)
	}
	return count, total, nil
}

func (s *Postgres) CountByType(ctx context.Context, regionID domain.RegionID) (map[string]int64, error) {
	q := txcontext.Resolve(ctx, s.db)
	rows, err := q.QueryContext(ctx, `
		SELECT transfer_type, COUNT(*)
		FROM journal_entries
		WHERE region_id = $1
		GROUP BY transfer_type
	`, uuid.UUID(regionID))
	if err != nil {
		return nil, fmt.Errorf("count journal entries by type: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var (
			transferType string
			count        int64
		)
		if err := rows.Scan(&transferType, &count); err != nil {
			return nil, fmt.Errorf("scan journal type count: %w", err)
		}
		counts[transferType] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("count journal entries by type: %w", err)
	}
	return counts, nil
}

func scanEntry(rows *sql.Rows) (*Entry, error) {
	var (
		e                         Entry
		id, region                uuid.UUID
		sourceNumber, targetNumber string
		transferType              string
	)
	err := rows.Scan(
		&id, &region, &sourceNumber, &targetNumber, &e.SourceOwnerName,
		&e.TargetOwnerName, &e.TargetAddress, &e.AreaTransferred, &transferType,
		&e.TransferDate, &e.Note, &e.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan journal entry: %w", err)
	}
	e.ID = domain.EntryID(id)
	e.RegionID = domain.RegionID(region)
	e.SourceOwnerNumber = domain.OwnerNumber(sourceNumber)
	e.TargetOwnerNumber = domain.OwnerNumber(targetNumber)
	e.TransferType = domain.TransferType(transferType)
	return &e, nil
}
