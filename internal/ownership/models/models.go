// Package models defines the ownership ledger's persistent records: the
// ownership record (kohir) and its parcel records (persil).
package models

import (
	"time"

	domain "letterc/pkg/domain"
)

// LandType classifies a parcel. The set is open; these are the two values the
// registry books actually use.
type LandType string

const (
	LandTypeDry   LandType = "dry"
	LandTypePaddy LandType = "paddy"
)

// OwnershipRecord is one registered owner-of-record in a region's Letter C
// book. OwnerNumber is the human-facing registry number, unique per region,
// and is the key the mutation journal uses to reference owners.
type OwnershipRecord struct {
	ID           domain.OwnershipID `json:"id"`
	RegionID     domain.RegionID    `json:"region_id"`
	OwnerNumber  domain.OwnerNumber `json:"owner_number"`
	OwnerName    string             `json:"owner_name"`
	OwnerAddress string             `json:"owner_address"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// ParcelRecord is one physical land parcel under an ownership record.
// AreaSquareMeters is the conserved quantity: it never goes negative, and
// mutation commits only move area between parcels.
type ParcelRecord struct {
	ID               domain.ParcelID    `json:"id"`
	OwnershipID      domain.OwnershipID `json:"ownership_id"`
	ParcelNumber     string             `json:"parcel_number"`
	LandType         LandType           `json:"land_type"`
	Grade            string             `json:"grade"`
	AreaSquareMeters float64            `json:"area_sq_meters"`
	ProvenanceNote   string             `json:"provenance_note"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// ParcelTemplate carries the classification fields copied from a source
// parcel when a mutation seeds a new owner's first parcel.
type ParcelTemplate struct {
	ParcelNumber   string   `json:"parcel_number"`
	LandType       LandType `json:"land_type"`
	Grade          string   `json:"grade"`
	ProvenanceNote string   `json:"provenance_note"`
}

// TemplateFrom extracts the template fields of an existing parcel.
func TemplateFrom(p *ParcelRecord) ParcelTemplate {
	return ParcelTemplate{
		ParcelNumber:   p.ParcelNumber,
		LandType:       p.LandType,
		Grade:          p.Grade,
		ProvenanceNote: p.ProvenanceNote,
	}
}
