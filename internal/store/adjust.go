package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tapstock/tapstock/internal/model"
)

// AdjustStock applies one signed delta to an (item, location) pair and
// records a matching ledger entry, both inside one transaction. A
// committed quantity change with no ledger entry, or the reverse, would
// be a correctness violation, so neither write exists without the other.
//
// Increases require the add_stock capability (or admin, or the wildcard
// capability); decreases only an authenticated actor. The ledger records
// the requested magnitude even when a decrease clamps at zero, together
// with the resulting quantity, so the applied effect is still readable
// from the entry.
//
// level optionally tags the entry with a categorical label (a bottle
// fill-level reading) for shift reporting. idempotencyKey, when set by
// the caller, makes retries of an unacknowledged commit safe: replays
// are rejected with ErrDuplicateRequest instead of double-logging.
func AdjustStock(ctx context.Context, db *sql.DB, actor model.Actor, itemID, locationID int64, delta decimal.Decimal, level, idempotencyKey string) (decimal.Decimal, error) {
	if delta.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: delta must be non-zero", ErrInvalidInput)
	}
	if delta.IsPositive() && !actor.HasCapability(model.CapAddStock) {
		return decimal.Zero, fmt.Errorf("%w: adding stock requires the %s capability", ErrPermissionDenied, model.CapAddStock)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	loc, err := locationForOrgTx(ctx, tx, actor.OrgID, locationID)
	if err != nil {
		return decimal.Zero, err
	}

	item, err := itemForOrgTx(ctx, tx, actor.OrgID, itemID)
	if err != nil {
		return decimal.Zero, err
	}

	newQty, err := applyDeltaTx(ctx, tx, actor.OrgID, item.ID, loc.ID, delta)
	if err != nil {
		return decimal.Zero, err
	}

	action := model.ActionAddStock
	if delta.IsNegative() {
		action = model.ActionSubtractStock
	}

	entry := model.LedgerEntry{
		OrgID:     actor.OrgID,
		UserID:    &actor.UserID,
		Action:    action,
		EntryType: model.EntryNormal,
		Payload: model.LedgerPayload{
			ItemID:      item.ID,
			ItemName:    item.Name,
			LocationID:  loc.ID,
			Quantity:    delta.Abs(),
			NewQuantity: newQty,
			Level:       level,
		},
	}
	if _, err := appendLedgerTx(ctx, tx, entry, idempotencyKey); err != nil {
		return decimal.Zero, err
	}

	if err := tx.Commit(); err != nil {
		return decimal.Zero, fmt.Errorf("committing adjustment: %w", err)
	}
	return newQty, nil
}

// locationForOrgTx fetches a location inside a transaction and verifies
// it belongs to the organization.
func locationForOrgTx(ctx context.Context, tx *sql.Tx, orgID, id int64) (*model.Location, error) {
	loc := &model.Location{}
	err := tx.QueryRowContext(ctx,
		`SELECT id, org_id, name, created_at, deleted_at FROM locations
		 WHERE id = ? AND org_id = ? AND deleted_at IS NULL`, id, orgID,
	).Scan(&loc.ID, &loc.OrgID, &loc.Name, &loc.CreatedAt, &loc.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: location %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting location: %w", err)
	}
	return loc, nil
}
