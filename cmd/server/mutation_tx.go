package main

import (
	"context"
	"database/sql"
	"time"

	mutationservice "letterc/internal/mutation/service"
	dErrors "letterc/pkg/domain-errors"
	txcontext "letterc/pkg/platform/tx"
)

const defaultMutationTxTimeout = 5 * time.Second

// mutationPostgresTx runs the commit sequence inside a real database
// transaction. The *sql.Tx travels through context (pkg/platform/tx) so the
// ownership and journal stores write through it without signature changes.
type mutationPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newMutationPostgresTx(db *sql.DB) *mutationPostgresTx {
	return &mutationPostgresTx{db: db}
}

func (t *mutationPostgresTx) RunInTx(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultMutationTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "begin transaction")
	}

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		// Past this point the database may or may not have applied the
		// writes; the engine reports the outcome as unknown.
		return &mutationservice.UncertainError{Err: err}
	}
	return nil
}
