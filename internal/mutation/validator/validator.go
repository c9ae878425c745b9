// Package validator checks a proposed transfer against a snapshot of ledger
// state. Pure and side-effect free: it reads the snapshot it is handed and
// returns violations as data, never as errors, so the engine can run it
// identically at preview time and again immediately before commit.
package validator

import (
	"fmt"
	"math"

	"letterc/internal/mutation/models"
)

// Input is the state snapshot a transfer is validated against. The engine
// assembles it from current store state; the validator never touches stores.
type Input struct {
	// SourceSelected is false when the draft named no source ownership
	// record, or the named one does not exist.
	SourceSelected bool
	// SourceParcelResolved is false when the source record has no parcel to
	// draw from (or the named parcel does not belong to the source).
	SourceParcelResolved bool
	// SourceParcelArea is the current stock on the resolved source parcel.
	SourceParcelArea float64
	// TargetOwnerNumber / TargetOwnerName as supplied by the draft.
	TargetOwnerNumber string
	TargetOwnerName   string
	// TargetExists is true when the owner number resolved to a record.
	TargetExists bool
	// TargetParcelCount is how many parcels the existing target owns.
	TargetParcelCount int
	// TargetParcelResolved is true when the draft named a parcel that
	// belongs to the target, or the target has at most one parcel.
	TargetParcelResolved bool
	// Area is the requested transfer amount.
	Area float64
}

// Check returns the ordered violation list for a proposed transfer. The
// transfer is valid iff the list is empty. Order is stable so repeated
// previews of an unchanged draft compare equal.
func Check(in Input) []models.Violation {
	var violations []models.Violation
	add := func(code models.ViolationCode, message string) {
		violations = append(violations, models.Violation{Code: code, Message: message})
	}

	if !in.SourceSelected {
		add(models.MissingSource, "no source ownership record selected")
	}
	if in.TargetOwnerNumber == "" {
		add(models.MissingTarget, "target owner number is required")
	}
	if in.TargetOwnerName == "" {
		add(models.MissingTargetName, "target owner name is required")
	}
	if !validArea(in.Area) {
		add(models.InvalidArea, "area must be a positive finite number")
	}
	if in.SourceSelected && !in.SourceParcelResolved {
		add(models.MissingSourceParcel, "source ownership record has no parcel to draw from")
	}
	if in.SourceSelected && in.SourceParcelResolved && validArea(in.Area) && in.Area > in.SourceParcelArea {
		add(models.InsufficientStock, fmt.Sprintf(
			"requested area %.2f exceeds available stock %.2f", in.Area, in.SourceParcelArea))
	}
	if in.TargetExists && in.TargetParcelCount > 1 && !in.TargetParcelResolved {
		add(models.AmbiguousTargetParcel, fmt.Sprintf(
			"target owns %d parcels; a target parcel must be named", in.TargetParcelCount))
	}
	return violations
}

func validArea(area float64) bool {
	return area > 0 && !math.IsInf(area, 0) && !math.IsNaN(area)
}
