// Package replay reconstructs historical stock quantities by walking an
// item's ledger backward from the current value. It is a read-only
// diagnostic: a reconstructed quantity below zero means recorded history
// is inconsistent with current state, which should have been impossible.
package replay

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tapstock/tapstock/internal/model"
)

// Violation records the point at which backward replay first implied
// negative stock. Quantity is the reconstructed value immediately
// before the flagged entry was applied.
type Violation struct {
	EntryID   int64           `json:"entry_id"`
	Timestamp time.Time       `json:"timestamp"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// Result is the outcome of validating one item's history.
type Result struct {
	ItemID     int64           `json:"item_id"`
	Consistent bool            `json:"consistent"`
	Violation  *Violation      `json:"violation,omitempty"`

	// Earliest is the oldest violation found, for diagnostics. It
	// equals Violation unless the history is inconsistent at more than
	// one point.
	Earliest *Violation      `json:"earliest,omitempty"`
	Oldest   decimal.Decimal `json:"oldest_quantity"`
}

// Validate replays an item's entries backward from the current quantity.
// entries must be in descending timestamp order, newest first. Each
// entry's effect is inverted: an ADD_STOCK entry's magnitude is
// subtracted from the running value, a SUBTRACT_STOCK entry's magnitude
// (audit entries included) is added back. The running value after an
// inversion is the quantity immediately before that entry was applied.
//
// The first violation encountered (the most recent in wall-clock terms)
// is the reportable one; the scan continues to the oldest entry so the
// earliest inconsistent point is also available. Validate never writes.
func Validate(itemID int64, current decimal.Decimal, entries []model.LedgerEntry) Result {
	result := Result{ItemID: itemID, Consistent: true}

	running := current
	for _, entry := range entries {
		running = running.Sub(entry.Delta())

		if running.IsNegative() {
			v := &Violation{
				EntryID:   entry.ID,
				Timestamp: entry.CreatedAt,
				Quantity:  running,
			}
			if result.Consistent {
				result.Consistent = false
				result.Violation = v
			}
			result.Earliest = v
		}
	}

	result.Oldest = running
	return result
}
