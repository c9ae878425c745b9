// Package domain holds the typed identifiers and enumerations shared across
// the ledger. IDs are distinct uuid-backed types so an ownership id can never
// be passed where a parcel id is expected; construct them from external input
// via the Parse functions, which enforce non-nil, well-formed UUIDs.
package domain

import (
	"github.com/google/uuid"

	dErrors "letterc/pkg/domain-errors"
)

// RegionID identifies a leaf of the region directory (a village).
type RegionID uuid.UUID

// OwnershipID identifies an ownership record (kohir).
type OwnershipID uuid.UUID

// ParcelID identifies a parcel record (persil).
type ParcelID uuid.UUID

// EntryID identifies a mutation journal entry.
type EntryID uuid.UUID

// DraftID identifies a server-held mutation draft.
type DraftID uuid.UUID

func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" must not be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+what)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" must not be nil")
	}
	return u, nil
}

// ParseRegionID constructs a RegionID from external input.
func ParseRegionID(s string) (RegionID, error) {
	u, err := parseUUID(s, "region id")
	return RegionID(u), err
}

// ParseOwnershipID constructs an OwnershipID from external input.
func ParseOwnershipID(s string) (OwnershipID, error) {
	u, err := parseUUID(s, "ownership id")
	return OwnershipID(u), err
}

// ParseParcelID constructs a ParcelID from external input.
func ParseParcelID(s string) (ParcelID, error) {
	u, err := parseUUID(s, "parcel id")
	return ParcelID(u), err
}

// ParseDraftID constructs a DraftID from external input.
func ParseDraftID(s string) (DraftID, error) {
	u, err := parseUUID(s, "draft id")
	return DraftID(u), err
}

func (id RegionID) String() string    { return uuid.UUID(id).String() }
func (id OwnershipID) String() string { return uuid.UUID(id).String() }
func (id ParcelID) String() string    { return uuid.UUID(id).String() }
func (id EntryID) String() string     { return uuid.UUID(id).String() }
func (id DraftID) String() string     { return uuid.UUID(id).String() }

func (id RegionID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id OwnershipID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ParcelID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id EntryID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id DraftID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }

// The id types are uuid-backed named types, so they do not inherit the uuid
// package's text marshaling; without these, JSON would render them as byte
// arrays.

func (id RegionID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }
func (id OwnershipID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id ParcelID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }
func (id EntryID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }
func (id DraftID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }

func (id *RegionID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = RegionID(u)
	return nil
}

func (id *OwnershipID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = OwnershipID(u)
	return nil
}

func (id *ParcelID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = ParcelID(u)
	return nil
}

func (id *EntryID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = EntryID(u)
	return nil
}

func (id *DraftID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = DraftID(u)
	return nil
}

// NewOwnershipID mints a fresh ownership id.
func NewOwnershipID() OwnershipID { return OwnershipID(uuid.New()) }

// NewParcelID mints a fresh parcel id.
func NewParcelID() ParcelID { return ParcelID(uuid.New()) }

// NewEntryID mints a fresh journal entry id.
func NewEntryID() EntryID { return EntryID(uuid.New()) }

// NewDraftID mints a fresh draft id.
func NewDraftID() DraftID { return DraftID(uuid.New()) }
