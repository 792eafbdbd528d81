package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tapstock/tapstock/internal/model"
)

// AuditChange is one counted-vs-recorded correction in a reconciliation
// batch. LocationID may be zero, in which case the change applies to
// the organization's default location (the active location with the
// lowest ID); callers should prefer passing it explicitly.
type AuditChange struct {
	ItemID      int64           `json:"item_id"`
	OldQuantity decimal.Decimal `json:"old_quantity"`
	NewQuantity decimal.Decimal `json:"new_quantity"`
	LocationID  int64           `json:"location_id,omitempty"`
}

// Reconcile applies a batch of physical-count corrections in one
// all-or-nothing transaction. Each change overwrites the recorded
// quantity with the counted one and appends an audit ledger entry whose
// action and magnitude derive from the sign and size of the correction.
// If any change fails, the whole batch rolls back and the returned
// ReconciliationError names the failing item.
//
// Requires the audit capability (or admin, or the wildcard capability).
// All entries of one batch share a generated audit ID so a physical
// count can be traced across the ledger afterwards.
func Reconcile(ctx context.Context, db *sql.DB, actor model.Actor, changes []AuditChange, note string) error {
	if !actor.HasCapability(model.CapAudit) {
		return fmt.Errorf("%w: reconciliation requires the %s capability", ErrPermissionDenied, model.CapAudit)
	}
	if len(changes) == 0 {
		return fmt.Errorf("%w: empty audit batch", ErrInvalidInput)
	}

	// Apply in item-ID order so concurrent batches touch rows in a
	// stable order.
	sorted := make([]AuditChange, len(changes))
	copy(sorted, changes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ItemID < sorted[j].ItemID })

	auditID := uuid.NewString()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, change := range sorted {
		if err := reconcileOneTx(ctx, tx, actor, change, note, auditID); err != nil {
			return &ReconciliationError{ItemID: change.ItemID, Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing reconciliation: %w", err)
	}
	return nil
}

func reconcileOneTx(ctx context.Context, tx *sql.Tx, actor model.Actor, change AuditChange, note, auditID string) error {
	if change.NewQuantity.IsNegative() {
		return fmt.Errorf("%w: counted quantity cannot be negative", ErrInvalidInput)
	}

	item, err := itemForOrgTx(ctx, tx, actor.OrgID, change.ItemID)
	if err != nil {
		return err
	}

	locationID := change.LocationID
	if locationID == 0 {
		locationID, err = defaultLocationTx(ctx, tx, actor.OrgID)
		if err != nil {
			return err
		}
	} else if _, err := locationForOrgTx(ctx, tx, actor.OrgID, locationID); err != nil {
		return err
	}

	if err := setQuantityTx(ctx, tx, actor.OrgID, item.ID, locationID, change.NewQuantity); err != nil {
		return err
	}

	diff := change.NewQuantity.Sub(change.OldQuantity)
	action := model.ActionAddStock
	if diff.IsNegative() {
		action = model.ActionSubtractStock
	}

	old := change.OldQuantity
	entry := model.LedgerEntry{
		OrgID:     actor.OrgID,
		UserID:    &actor.UserID,
		Action:    action,
		EntryType: model.EntryAudit,
		Payload: model.LedgerPayload{
			ItemID:      item.ID,
			ItemName:    item.Name,
			LocationID:  locationID,
			Quantity:    diff.Abs(),
			NewQuantity: change.NewQuantity,
			OldQuantity: &old,
			Note:        note,
			AuditID:     auditID,
		},
	}
	_, err = appendLedgerTx(ctx, tx, entry, "")
	return err
}
