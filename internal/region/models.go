package region

import (
	domain "letterc/pkg/domain"
)

// Region is one node of the administrative hierarchy. A district has a nil
// parent; villages point at their district. Ownership records and journal
// entries are scoped to village (leaf) regions.
type Region struct {
	ID       domain.RegionID `json:"id"`
	Name     string          `json:"name"`
	ParentID *domain.RegionID `json:"parent_id,omitempty"`
}

// IsLeaf reports whether the region is a village (has a parent).
func (r Region) IsLeaf() bool {
	return r.ParentID != nil
}
