package domain

import dErrors "letterc/pkg/domain-errors"

// TransferType is the legal reason recorded for a mutation.
// Invariant: a draft must carry one of the supported transfer types.
//
// The journal itself stores the value as text, so entries written before a
// type was added (or after one is retired) still read back; only the draft
// boundary enforces the allowlist.
type TransferType string

// Supported transfer types.
const (
	TransferTypeSale        TransferType = "sale"
	TransferTypeGift        TransferType = "gift"
	TransferTypeInheritance TransferType = "inheritance"
	TransferTypeExchange    TransferType = "exchange"
)

// validTransferTypes is the single source of truth for accepted transfer types.
var validTransferTypes = map[TransferType]bool{
	TransferTypeSale:        true,
	TransferTypeGift:        true,
	TransferTypeInheritance: true,
	TransferTypeExchange:    true,
}

// ParseTransferType constructs a TransferType from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseTransferType(s string) (TransferType, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "transfer type cannot be empty")
	}
	t := TransferType(s)
	if !t.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid transfer type: "+s)
	}
	return t, nil
}

// IsValid checks if the transfer type is one of the supported values.
func (t TransferType) IsValid() bool {
	return validTransferTypes[t]
}

// String returns the string representation of the transfer type.
func (t TransferType) String() string {
	return string(t)
}
