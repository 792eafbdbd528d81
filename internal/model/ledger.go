package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ledger actions. The action records the direction of a stock change;
// the magnitude lives in the payload and is always unsigned.
const (
	ActionAddStock      = "ADD_STOCK"
	ActionSubtractStock = "SUBTRACT_STOCK"
)

// Ledger entry types.
const (
	EntryNormal = "normal"
	EntryAudit  = "audit"
)

// LedgerEntry is one immutable record of a stock-changing event. Entries
// are never updated or deleted except by the retention prune; the
// server-assigned timestamp is the only ordering key.
type LedgerEntry struct {
	ID        int64         `json:"id"`
	OrgID     int64         `json:"org_id"`
	UserID    *int64        `json:"user_id,omitempty"`
	Action    string        `json:"action"`
	EntryType string        `json:"entry_type"`
	Payload   LedgerPayload `json:"payload"`
	CreatedAt time.Time     `json:"created_at"`
}

// LedgerPayload is the structured context of an entry. ItemName is a
// snapshot taken at write time so history stays accurate if the item is
// later renamed. Quantity is the unsigned magnitude of the change;
// NewQuantity is the stock level after the change was applied. Audit
// entries additionally carry OldQuantity and an optional note.
type LedgerPayload struct {
	ItemID      int64            `json:"item_id"`
	ItemName    string           `json:"item_name"`
	LocationID  int64            `json:"location_id"`
	Quantity    decimal.Decimal  `json:"quantity"`
	NewQuantity decimal.Decimal  `json:"new_quantity"`
	OldQuantity *decimal.Decimal `json:"old_quantity,omitempty"`
	Note        string           `json:"note,omitempty"`
	AuditID     string           `json:"audit_id,omitempty"`
	Level       string           `json:"level,omitempty"`
}

// Delta returns the signed effect the entry had on stock: positive for
// ADD_STOCK, negative for SUBTRACT_STOCK.
func (e LedgerEntry) Delta() decimal.Decimal {
	if e.Action == ActionSubtractStock {
		return e.Payload.Quantity.Neg()
	}
	return e.Payload.Quantity
}
