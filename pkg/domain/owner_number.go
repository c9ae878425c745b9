package domain

import (
	"strings"

	dErrors "letterc/pkg/domain-errors"
)

// OwnerNumber is the human-facing registry number of an ownership record
// (e.g. "C.10"). It is unique within a region and is the key the journal uses
// to reference owners, so history stays readable even if internal ids change.
type OwnerNumber string

// ParseOwnerNumber trims and validates an owner number from external input.
//
// Errors: returns CodeInvalidInput when the value is blank.
func ParseOwnerNumber(s string) (OwnerNumber, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "owner number cannot be empty")
	}
	return OwnerNumber(trimmed), nil
}

// String returns the string representation of the owner number.
func (n OwnerNumber) String() string {
	return string(n)
}

// IsZero reports whether the owner number is unset.
func (n OwnerNumber) IsZero() bool {
	return n == ""
}
