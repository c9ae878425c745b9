package validator

import (
	"math"
	"testing"

	"letterc/internal/mutation/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput is a snapshot that passes every rule: a selected source with
// stock, a named target that does not exist yet.
func validInput() Input {
	return Input{
		SourceSelected:       true,
		SourceParcelResolved: true,
		SourceParcelArea:     500,
		TargetOwnerNumber:    "C.99",
		TargetOwnerName:      "Siti",
		TargetExists:         false,
		Area:                 200,
	}
}

func codes(violations []models.Violation) []models.ViolationCode {
	out := make([]models.ViolationCode, len(violations))
	for i, v := range violations {
		out[i] = v.Code
	}
	return out
}

func TestCheck_ValidTransfer(t *testing.T) {
	assert.Empty(t, Check(validInput()))
}

func TestCheck_SingleViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
		want   models.ViolationCode
	}{
		{
			name:   "no source selected",
			mutate: func(in *Input) { in.SourceSelected = false },
			want:   models.MissingSource,
		},
		{
			name:   "blank target owner number",
			mutate: func(in *Input) { in.TargetOwnerNumber = "" },
			want:   models.MissingTarget,
		},
		{
			name:   "blank target owner name",
			mutate: func(in *Input) { in.TargetOwnerName = "" },
			want:   models.MissingTargetName,
		},
		{
			name:   "zero area",
			mutate: func(in *Input) { in.Area = 0 },
			want:   models.InvalidArea,
		},
		{
			name:   "negative area",
			mutate: func(in *Input) { in.Area = -50 },
			want:   models.InvalidArea,
		},
		{
			name:   "NaN area",
			mutate: func(in *Input) { in.Area = math.NaN() },
			want:   models.InvalidArea,
		},
		{
			name:   "infinite area",
			mutate: func(in *Input) { in.Area = math.Inf(1) },
			want:   models.InvalidArea,
		},
		{
			name:   "source has no parcel",
			mutate: func(in *Input) { in.SourceParcelResolved = false },
			want:   models.MissingSourceParcel,
		},
		{
			name:   "requested area exceeds stock",
			mutate: func(in *Input) { in.Area = 400; in.SourceParcelArea = 300 },
			want:   models.InsufficientStock,
		},
		{
			name: "multi-parcel target without named parcel",
			mutate: func(in *Input) {
				in.TargetExists = true
				in.TargetParcelCount = 3
				in.TargetParcelResolved = false
			},
			want: models.AmbiguousTargetParcel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			violations := Check(in)
			require.Len(t, violations, 1)
			assert.Equal(t, tt.want, violations[0].Code)
			assert.NotEmpty(t, violations[0].Message)
		})
	}
}

func TestCheck_BoundaryStock(t *testing.T) {
	// Transferring the entire stock is allowed; the source parcel lands on zero.
	in := validInput()
	in.Area = in.SourceParcelArea
	assert.Empty(t, Check(in))
}

func TestCheck_ReportsEveryProblemAtOnce(t *testing.T) {
	violations := Check(Input{})
	assert.Equal(t, []models.ViolationCode{
		models.MissingSource,
		models.MissingTarget,
		models.MissingTargetName,
		models.InvalidArea,
	}, codes(violations))
}

func TestCheck_StableOrder(t *testing.T) {
	in := Input{SourceSelected: true, SourceParcelResolved: true, SourceParcelArea: 10, Area: 100}
	first := Check(in)
	second := Check(in)
	assert.Equal(t, first, second)
	assert.Equal(t, []models.ViolationCode{
		models.MissingTarget,
		models.MissingTargetName,
		models.InsufficientStock,
	}, codes(first))
}

func TestCheck_StockNotCheckedWhenAreaInvalid(t *testing.T) {
	// A nonsensical area never produces a second, misleading stock violation.
	in := validInput()
	in.Area = -10
	in.SourceParcelArea = 5
	violations := Check(in)
	require.Len(t, violations, 1)
	assert.Equal(t, models.InvalidArea, violations[0].Code)
}

func TestCheck_ExistingSingleParcelTargetNeedsNoDisambiguation(t *testing.T) {
	in := validInput()
	in.TargetExists = true
	in.TargetParcelCount = 1
	in.TargetParcelResolved = true
	assert.Empty(t, Check(in))
}
