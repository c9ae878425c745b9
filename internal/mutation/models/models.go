// Package models defines the mutation draft value and its lifecycle states.
// A draft is an immutable snapshot of what the clerk asked for; the engine
// never edits one in place — editing means submitting a new preview.
package models

import (
	"time"

	domain "letterc/pkg/domain"
)

// DraftState is the mutation protocol state machine:
// DRAFT → PREVIEWED → COMMITTED, with ABORTED reachable any time before
// commit. There is no state after COMMITTED; corrections are new,
// compensating transfers.
//
// COMMITTING is internal to the protocol: the draft store moves a draft
// there while a commit is in flight so no second commit can consume it.
// A failed commit moves it back to PREVIEWED.
type DraftState string

const (
	StateDraft      DraftState = "DRAFT"
	StatePreviewed  DraftState = "PREVIEWED"
	StateCommitting DraftState = "COMMITTING"
	StateCommitted  DraftState = "COMMITTED"
	StateAborted    DraftState = "ABORTED"
)

// DraftParams carries everything a client supplies for a transfer.
type DraftParams struct {
	RegionID          domain.RegionID
	SourceOwnershipID domain.OwnershipID
	// SourceParcelID optionally names the parcel to draw from; when nil-zero
	// and the source has exactly one parcel, that parcel is used.
	SourceParcelID    domain.ParcelID
	TargetOwnerNumber domain.OwnerNumber
	TargetOwnerName   string
	TargetAddress     string
	// TargetParcelID disambiguates when an existing target owns more than
	// one parcel. Required in that case; ignored otherwise.
	TargetParcelID domain.ParcelID
	Area           float64
	TransferType   domain.TransferType
	TransferDate   time.Time
	Note           string
}

// MutationDraft is the immutable transfer request. Constructed once via
// NewDraft; the engine stores it alongside its state and preview snapshot.
type MutationDraft struct {
	ID                domain.DraftID
	RegionID          domain.RegionID
	SourceOwnershipID domain.OwnershipID
	SourceParcelID    domain.ParcelID
	TargetOwnerNumber domain.OwnerNumber
	TargetOwnerName   string
	TargetAddress     string
	TargetParcelID    domain.ParcelID
	Area              float64
	TransferType      domain.TransferType
	TransferDate      time.Time
	Note              string
	CreatedAt         time.Time
}

// NewDraft mints a draft from client-supplied params.
func NewDraft(params DraftParams) MutationDraft {
	transferDate := params.TransferDate
	if transferDate.IsZero() {
		transferDate = time.Now()
	}
	return MutationDraft{
		ID:                domain.NewDraftID(),
		RegionID:          params.RegionID,
		SourceOwnershipID: params.SourceOwnershipID,
		SourceParcelID:    params.SourceParcelID,
		TargetOwnerNumber: params.TargetOwnerNumber,
		TargetOwnerName:   params.TargetOwnerName,
		TargetAddress:     params.TargetAddress,
		TargetParcelID:    params.TargetParcelID,
		Area:              params.Area,
		TransferType:      params.TransferType,
		TransferDate:      transferDate,
		CreatedAt:         time.Now(),
		Note:              params.Note,
	}
}

// Preview is the computed would-be outcome of a draft, returned without
// writing anything.
type Preview struct {
	DraftID             domain.DraftID `json:"draft_id"`
	Valid               bool           `json:"valid"`
	Violations          []Violation    `json:"violations"`
	ProjectedSourceArea float64        `json:"projected_source_area"`
	ProjectedTargetArea float64        `json:"projected_target_area"`
	TargetIsNew         bool           `json:"target_is_new"`
}

// Violation is one validation failure with a stable reason code. Violations
// are data, not errors: a preview returns every problem at once.
type Violation struct {
	Code    ViolationCode `json:"code"`
	Message string        `json:"message"`
}

// ViolationCode identifies a validation rule. Codes are stable API.
type ViolationCode string

const (
	// MissingSource: no source ownership record selected.
	MissingSource ViolationCode = "MissingSource"
	// MissingTarget: no target owner number supplied.
	MissingTarget ViolationCode = "MissingTarget"
	// MissingTargetName: target owner name blank.
	MissingTargetName ViolationCode = "MissingTargetName"
	// InvalidArea: requested area is not a positive finite number.
	InvalidArea ViolationCode = "InvalidArea"
	// InsufficientStock: requested area exceeds the source parcel's area.
	InsufficientStock ViolationCode = "InsufficientStock"
	// MissingSourceParcel: source record has no resolvable parcel.
	MissingSourceParcel ViolationCode = "MissingSourceParcel"
	// AmbiguousTargetParcel: existing target owns several parcels and the
	// draft names none.
	AmbiguousTargetParcel ViolationCode = "AmbiguousTargetParcel"
)

// CommitResult identifies the records touched by a successful commit.
type CommitResult struct {
	JournalEntryID    domain.EntryID     `json:"journal_entry_id"`
	SourceOwnershipID domain.OwnershipID `json:"source_ownership_id"`
	TargetOwnershipID domain.OwnershipID `json:"target_ownership_id"`
	TargetCreated     bool               `json:"target_created"`
}
