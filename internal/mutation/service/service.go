// Package service implements the mutation ledger engine: the two-phase
// preview/commit protocol that moves area between parcels.
//
// Area conservation is the central invariant: a commit subtracts exactly the
// transferred area from the source parcel and adds exactly the same amount to
// the target (zero-based for a newly created owner). The three commit writes
// (source decrement, target create/increment, journal append) happen inside
// one TxRunner boundary; with a memory store, the engine compensates applied
// steps before surfacing the error.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"letterc/internal/journal"
	ownershipmodels "letterc/internal/ownership/models"
	ownershipstore "letterc/internal/ownership/store"
	"letterc/internal/mutation/models"
	draftstore "letterc/internal/mutation/store"
	"letterc/internal/mutation/validator"
	"letterc/internal/platform/metrics"
	domain "letterc/pkg/domain"
	dErrors "letterc/pkg/domain-errors"
	"letterc/pkg/platform/sentinel"
)

// Engine orchestrates previews and commits against the ownership store and
// the journal.
type Engine struct {
	ownership ownershipstore.Store
	journal   journal.Store
	drafts    *draftstore.DraftStore
	txRunner  TxRunner
	publisher journal.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

func NewEngine(
	ownership ownershipstore.Store,
	journalStore journal.Store,
	drafts *draftstore.DraftStore,
	txRunner TxRunner,
	publisher journal.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		ownership: ownership,
		journal:   journalStore,
		drafts:    drafts,
		txRunner:  txRunner,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		tracer:    otel.Tracer("letterc/internal/mutation"),
		now:       time.Now,
	}
}

// snapshot is the resolved ledger state a draft is validated against.
type snapshot struct {
	input        validator.Input
	sourceOwner  *ownershipmodels.OwnershipRecord
	sourceParcel *ownershipmodels.ParcelRecord
	targetOwner  *ownershipmodels.OwnershipRecord
	targetParcel *ownershipmodels.ParcelRecord
	targetIsNew  bool
}

// Preview validates a draft against current store state and, when valid,
// computes the would-be post-transfer balances without writing anything.
// Violations are returned as data; Preview only errors on infrastructure
// failure.
func (e *Engine) Preview(ctx context.Context, draft models.MutationDraft) (*models.Preview, error) {
	ctx, span := e.tracer.Start(ctx, "mutation.preview", trace.WithAttributes(
		attribute.String("region_id", draft.RegionID.String()),
		attribute.String("draft_id", draft.ID.String()),
	))
	defer span.End()

	snap, err := e.buildSnapshot(ctx, draft)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	violations := validator.Check(snap.input)
	e.metrics.IncPreview()

	preview := models.Preview{
		DraftID:    draft.ID,
		Valid:      len(violations) == 0,
		Violations: violations,
	}
	if !preview.Valid {
		e.metrics.ObserveViolations(violationCodes(violations))
		// Invalid previews stay in DRAFT; stored so a commit attempt fails
		// with a clear protocol error instead of an unknown-draft one.
		if err := e.drafts.SaveDraft(ctx, draft); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "save draft")
		}
		return &preview, nil
	}

	preview.ProjectedSourceArea = snap.sourceParcel.AreaSquareMeters - draft.Area
	preview.TargetIsNew = snap.targetIsNew
	if snap.targetIsNew || snap.targetParcel == nil {
		preview.ProjectedTargetArea = draft.Area
	} else {
		preview.ProjectedTargetArea = snap.targetParcel.AreaSquareMeters + draft.Area
	}

	if err := e.drafts.SavePreviewed(ctx, draft, preview); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "save previewed draft")
	}
	return &preview, nil
}

// Commit applies a previewed draft as one atomic unit. It re-validates
// against current store state first: any violation at this point means the
// ledger moved since preview, reported as CodeStale.
//
// Commit is not cancellable once the transaction function starts; a caller
// that times out should check the journal before retrying.
func (e *Engine) Commit(ctx context.Context, draftID domain.DraftID) (*models.CommitResult, error) {
	ctx, span := e.tracer.Start(ctx, "mutation.commit", trace.WithAttributes(
		attribute.String("draft_id", draftID.String()),
	))
	defer span.End()
	start := e.now()

	// TakeForCommit consumes the draft: a concurrent commit on the same id
	// fails here instead of racing the transfer. Every known-failed path
	// below releases the draft so the clerk can retry.
	draft, err := e.drafts.TakeForCommit(ctx, draftID)
	if err != nil {
		return nil, translateDraftErr(err)
	}

	// Re-validation immediately before the atomic write: any violation now
	// means the ledger moved since preview.
	snap, err := e.buildSnapshot(ctx, draft)
	if err != nil {
		span.RecordError(err)
		e.releaseDraft(ctx, draftID)
		return nil, err
	}
	if violations := validator.Check(snap.input); len(violations) > 0 {
		e.metrics.IncStaleConflict()
		e.metrics.ObserveViolations(violationCodes(violations))
		e.releaseDraft(ctx, draftID)
		return nil, dErrors.New(dErrors.CodeStale,
			"ledger state changed since preview: "+violations[0].Message)
	}

	result := &models.CommitResult{
		SourceOwnershipID: snap.sourceOwner.ID,
	}
	entry := e.buildEntry(draft, snap)

	txErr := e.txRunner.RunInTx(ctx, draft.SourceOwnershipID.String(), func(ctx context.Context) error {
		return e.applyTransfer(ctx, draft, snap, entry, result)
	})
	if txErr != nil {
		span.RecordError(txErr)
		var uncertain *UncertainError
		if !errors.As(txErr, &uncertain) {
			// Known not committed. An unknown outcome keeps the draft
			// consumed: a blind retry could apply the transfer twice.
			e.releaseDraft(ctx, draftID)
		}
		return nil, e.translateCommitErr(ctx, txErr)
	}

	if err := e.drafts.MarkCommitted(ctx, draftID); err != nil {
		// The transfer is durable; a draft-state hiccup must not report
		// failure. Log and continue.
		e.logger.ErrorContext(ctx, "mark draft committed", "error", err, "draft_id", draftID.String())
	}

	e.metrics.ObserveCommit(draft.TransferType.String(), draft.Area, e.now().Sub(start).Seconds())
	e.publisher.PublishCommitted(ctx, entry)
	e.logger.InfoContext(ctx, "mutation committed",
		"draft_id", draftID.String(),
		"journal_entry_id", entry.ID.String(),
		"region_id", draft.RegionID.String(),
		"source_owner", entry.SourceOwnerNumber.String(),
		"target_owner", entry.TargetOwnerNumber.String(),
		"area", draft.Area,
		"transfer_type", draft.TransferType.String(),
	)

	result.JournalEntryID = entry.ID
	return result, nil
}

// applyTransfer performs the three-step commit sequence. On failure it
// undoes applied steps in reverse before returning: with the postgres runner
// the rollback makes that a no-op, with the memory runner it is what restores
// the ledger (the shard lock keeps the undo race-free).
func (e *Engine) applyTransfer(
	ctx context.Context,
	draft models.MutationDraft,
	snap *snapshot,
	entry *journal.Entry,
	result *models.CommitResult,
) (err error) {
	var undo []func()

	defer func() {
		if err == nil {
			return
		}
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
	}()

	// Step 1: draw down the source parcel.
	if err = e.ownership.AdjustParcelArea(ctx, snap.sourceParcel.ID, -draft.Area); err != nil {
		return err
	}
	undo = append(undo, func() {
		if uerr := e.ownership.AdjustParcelArea(ctx, snap.sourceParcel.ID, draft.Area); uerr != nil {
			e.logger.ErrorContext(ctx, "compensate source adjustment", "error", uerr)
		}
	})

	// Step 2: credit the target.
	switch {
	case snap.targetIsNew:
		targetOwner := &ownershipmodels.OwnershipRecord{
			ID:           domain.NewOwnershipID(),
			RegionID:     draft.RegionID,
			OwnerNumber:  draft.TargetOwnerNumber,
			OwnerName:    draft.TargetOwnerName,
			OwnerAddress: draft.TargetAddress,
		}
		seeded := seedParcel(snap.sourceParcel, targetOwner.ID, draft.Area)
		if err = e.ownership.CreateWithParcel(ctx, targetOwner, seeded); err != nil {
			return err
		}
		result.TargetOwnershipID = targetOwner.ID
		result.TargetCreated = true
		undo = append(undo, func() {
			if uerr := e.ownership.Delete(ctx, targetOwner.ID); uerr != nil {
				e.logger.ErrorContext(ctx, "compensate target creation", "error", uerr)
			}
		})

	case snap.targetParcel != nil:
		if err = e.ownership.AdjustParcelArea(ctx, snap.targetParcel.ID, draft.Area); err != nil {
			return err
		}
		result.TargetOwnershipID = snap.targetOwner.ID
		targetParcelID := snap.targetParcel.ID
		undo = append(undo, func() {
			if uerr := e.ownership.AdjustParcelArea(ctx, targetParcelID, -draft.Area); uerr != nil {
				e.logger.ErrorContext(ctx, "compensate target adjustment", "error", uerr)
			}
		})

	default:
		// Existing owner with no parcel yet: seed one from the source.
		seeded := seedParcel(snap.sourceParcel, snap.targetOwner.ID, draft.Area)
		if err = e.ownership.CreateParcel(ctx, seeded); err != nil {
			return err
		}
		result.TargetOwnershipID = snap.targetOwner.ID
		undo = append(undo, func() {
			if uerr := e.ownership.DeleteParcel(ctx, seeded.ID); uerr != nil {
				e.logger.ErrorContext(ctx, "compensate seeded parcel", "error", uerr)
			}
		})
	}

	// Step 3: the journal entry, inside the same boundary — a transfer
	// without its journal row must not exist.
	if err = e.journal.Append(ctx, entry); err != nil {
		return err
	}
	return nil
}

func (e *Engine) releaseDraft(ctx context.Context, draftID domain.DraftID) {
	if err := e.drafts.Release(ctx, draftID); err != nil {
		e.logger.ErrorContext(ctx, "release draft after failed commit", "error", err, "draft_id", draftID.String())
	}
}

// Abort cancels a draft before commit. No side effects to undo: previews
// never write.
func (e *Engine) Abort(ctx context.Context, draftID domain.DraftID) error {
	if err := e.drafts.Abort(ctx, draftID); err != nil {
		return translateDraftErr(err)
	}
	return nil
}

func (e *Engine) buildEntry(draft models.MutationDraft, snap *snapshot) *journal.Entry {
	targetName := draft.TargetOwnerName
	targetAddress := draft.TargetAddress
	if snap.targetOwner != nil {
		if targetName == "" {
			targetName = snap.targetOwner.OwnerName
		}
		if targetAddress == "" {
			targetAddress = snap.targetOwner.OwnerAddress
		}
	}
	return &journal.Entry{
		ID:                domain.NewEntryID(),
		RegionID:          draft.RegionID,
		SourceOwnerNumber: snap.sourceOwner.OwnerNumber,
		TargetOwnerNumber: draft.TargetOwnerNumber,
		SourceOwnerName:   snap.sourceOwner.OwnerName,
		TargetOwnerName:   targetName,
		TargetAddress:     targetAddress,
		AreaTransferred:   draft.Area,
		TransferType:      draft.TransferType,
		TransferDate:      draft.TransferDate,
		Note:              draft.Note,
		CreatedAt:         e.now(),
	}
}

// buildSnapshot resolves the draft's references against current store state.
// Missing records become validator facts, not errors; only infrastructure
// failures error out.
func (e *Engine) buildSnapshot(ctx context.Context, draft models.MutationDraft) (*snapshot, error) {
	snap := &snapshot{}
	in := &snap.input
	in.TargetOwnerNumber = draft.TargetOwnerNumber.String()
	in.TargetOwnerName = draft.TargetOwnerName
	in.Area = draft.Area

	if !draft.SourceOwnershipID.IsNil() {
		owner, err := e.ownership.GetByID(ctx, draft.SourceOwnershipID)
		switch {
		case err == nil:
			snap.sourceOwner = owner
			in.SourceSelected = true
		case errors.Is(err, sentinel.ErrNotFound):
			// leaves SourceSelected false
		default:
			return nil, translateStoreErr(ctx, err, "resolve source")
		}
	}

	if snap.sourceOwner != nil {
		parcels, err := e.ownership.GetParcels(ctx, snap.sourceOwner.ID)
		if err != nil {
			return nil, translateStoreErr(ctx, err, "resolve source parcels")
		}
		snap.sourceParcel = pickParcel(parcels, draft.SourceParcelID)
		if snap.sourceParcel != nil {
			in.SourceParcelResolved = true
			in.SourceParcelArea = snap.sourceParcel.AreaSquareMeters
		}
	}

	if !draft.TargetOwnerNumber.IsZero() {
		owner, err := e.ownership.GetByOwnerNumber(ctx, draft.RegionID, draft.TargetOwnerNumber)
		switch {
		case err == nil:
			snap.targetOwner = owner
			in.TargetExists = true
		case errors.Is(err, sentinel.ErrNotFound):
			snap.targetIsNew = true
		default:
			return nil, translateStoreErr(ctx, err, "resolve target")
		}
	}

	if snap.targetOwner != nil {
		parcels, err := e.ownership.GetParcels(ctx, snap.targetOwner.ID)
		if err != nil {
			return nil, translateStoreErr(ctx, err, "resolve target parcels")
		}
		in.TargetParcelCount = len(parcels)
		if !draft.TargetParcelID.IsNil() {
			for _, p := range parcels {
				if p.ID == draft.TargetParcelID {
					snap.targetParcel = p
					in.TargetParcelResolved = true
					break
				}
			}
		}
		if snap.targetParcel == nil && len(parcels) == 1 {
			snap.targetParcel = parcels[0]
			in.TargetParcelResolved = true
		}
		if len(parcels) == 0 {
			// New parcel will be seeded at commit; nothing to resolve.
			in.TargetParcelResolved = true
		}
	}

	return snap, nil
}

// pickParcel chooses the parcel to draw from: the named one when it belongs
// to the record, otherwise the oldest (the canonical first parcel).
func pickParcel(parcels []*ownershipmodels.ParcelRecord, want domain.ParcelID) *ownershipmodels.ParcelRecord {
	if !want.IsNil() {
		for _, p := range parcels {
			if p.ID == want {
				return p
			}
		}
		return nil
	}
	if len(parcels) == 0 {
		return nil
	}
	return parcels[0]
}

func seedParcel(source *ownershipmodels.ParcelRecord, ownerID domain.OwnershipID, area float64) *ownershipmodels.ParcelRecord {
	return &ownershipmodels.ParcelRecord{
		ID:               domain.NewParcelID(),
		OwnershipID:      ownerID,
		ParcelNumber:     source.ParcelNumber,
		LandType:         source.LandType,
		Grade:            source.Grade,
		AreaSquareMeters: area,
		ProvenanceNote:   source.ProvenanceNote,
	}
}

func violationCodes(violations []models.Violation) []string {
	codes := make([]string, len(violations))
	for i, v := range violations {
		codes[i] = string(v.Code)
	}
	return codes
}

// translateDraftErr maps draft store sentinels onto the error taxonomy.
// Everything but not-found is a protocol violation by the client.
func translateDraftErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "draft not found")
	case errors.Is(err, sentinel.ErrExpired):
		return dErrors.Wrap(err, dErrors.CodeInvalidState, "previewed draft expired; preview again")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.Wrap(err, dErrors.CodeInvalidState, "draft already committed")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.Wrap(err, dErrors.CodeInvalidState, "draft is not in a committable state")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "draft store failure")
	}
}

// translateCommitErr maps transaction failures onto the taxonomy, keeping
// the known-not-committed / outcome-unknown distinction.
func (e *Engine) translateCommitErr(ctx context.Context, err error) error {
	var uncertain *UncertainError
	if errors.As(err, &uncertain) {
		return dErrors.Wrap(err, dErrors.CodeUnavailable,
			"commit outcome unknown; check the journal before retrying")
	}
	switch {
	case errors.Is(err, sentinel.ErrNegativeArea):
		e.metrics.IncStaleConflict()
		return dErrors.Wrap(err, dErrors.CodeStale, "source stock changed during commit")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.Wrap(err, dErrors.CodeConflict, "target owner number was registered concurrently")
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "commit timed out before the transaction completed")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "commit failed; no changes were applied")
	}
}

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
