package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into coded domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: ownership record, parcel, or draft does not exist in store
// - ErrExpired: a previewed draft outlived its TTL
// - ErrAlreadyUsed: owner number already taken in the region, or draft consumed
// - ErrInvalidState: entity in wrong state for requested operation
// - ErrNegativeArea: an area adjustment would drive a parcel below zero
// - ErrUnavailable: backing store temporarily unreachable
//
// For validation of user input use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrExpired      = errors.New("expired")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
	ErrNegativeArea = errors.New("negative area")
	ErrUnavailable  = errors.New("unavailable")
)
