package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item represents a stock-keeping unit. An item is either scoped to one
// organization (OrgID set) or global (OrgID nil). An organization-scoped
// item always shadows a global item of the same name.
type Item struct {
	ID             int64           `json:"id"`
	OrgID          *int64          `json:"org_id,omitempty"`
	Name           string          `json:"name"`
	Threshold      decimal.Decimal `json:"threshold"`
	IncludeInAudit bool            `json:"include_in_audit"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      *time.Time      `json:"deleted_at,omitempty"`
}

// Global reports whether the item is visible to all organizations.
func (i Item) Global() bool {
	return i.OrgID == nil
}

// InventoryRecord is the current quantity of an item at a location.
// Quantity is never negative.
type InventoryRecord struct {
	ItemID     int64           `json:"item_id"`
	LocationID int64           `json:"location_id"`
	OrgID      int64           `json:"org_id"`
	Quantity   decimal.Decimal `json:"quantity"`

	// Joined fields (not always populated).
	ItemName     string `json:"item_name,omitempty"`
	LocationName string `json:"location_name,omitempty"`
}
