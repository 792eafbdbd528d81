package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tapstock/tapstock/internal/model"
)

// GetQuantity returns the current quantity of an item at a location.
// A missing record means zero stock, not an error.
func GetQuantity(ctx context.Context, db *sql.DB, orgID, itemID, locationID int64) (decimal.Decimal, error) {
	var qty string
	err := db.QueryRowContext(ctx,
		`SELECT quantity FROM inventory
		 WHERE org_id = ? AND item_id = ? AND location_id = ?`,
		orgID, itemID, locationID,
	).Scan(&qty)
	if err == sql.ErrNoRows {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("getting quantity: %w", err)
	}
	return parseQuantity(qty)
}

// GetItemTotal returns an item's total quantity across all of an
// organization's locations.
func GetItemTotal(ctx context.Context, db *sql.DB, orgID, itemID int64) (decimal.Decimal, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT quantity FROM inventory WHERE org_id = ? AND item_id = ?`,
		orgID, itemID,
	)
	if err != nil {
		return decimal.Zero, fmt.Errorf("totaling quantity: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var qty string
		if err := rows.Scan(&qty); err != nil {
			return decimal.Zero, fmt.Errorf("scanning quantity: %w", err)
		}
		q, err := parseQuantity(qty)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(q)
	}
	return total, rows.Err()
}

// ListInventory returns an organization's full inventory overview.
func ListInventory(ctx context.Context, db *sql.DB, orgID int64) ([]model.InventoryRecord, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT inv.item_id, inv.location_id, inv.org_id, inv.quantity,
		        i.name AS item_name, l.name AS location_name
		 FROM inventory inv
		 JOIN items i ON i.id = inv.item_id
		 JOIN locations l ON l.id = inv.location_id
		 WHERE inv.org_id = ?
		 ORDER BY i.name, l.name`, orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing inventory: %w", err)
	}
	defer rows.Close()
	return scanInventory(rows)
}

// ListLowStock returns inventory records whose quantity is at or below
// the item's low-stock threshold. Notification dispatch is the caller's
// concern; this is a read.
func ListLowStock(ctx context.Context, db *sql.DB, orgID int64) ([]model.InventoryRecord, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT inv.item_id, inv.location_id, inv.org_id, inv.quantity,
		        i.name AS item_name, l.name AS location_name
		 FROM inventory inv
		 JOIN items i ON i.id = inv.item_id
		 JOIN locations l ON l.id = inv.location_id
		 WHERE inv.org_id = ? AND CAST(inv.quantity AS REAL) <= CAST(i.threshold AS REAL)
		 ORDER BY i.name, l.name`, orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing low stock: %w", err)
	}
	defer rows.Close()
	return scanInventory(rows)
}

// applyDeltaTx applies a signed delta to the quantity record inside a
// write transaction, creating the record at zero if absent. A would-be
// negative result is clamped to zero, not rejected; callers that need
// to detect clamping compare the requested magnitude to the returned
// quantity. SQLite's single-writer transactions serialize concurrent
// calls for the same key.
func applyDeltaTx(ctx context.Context, tx *sql.Tx, orgID, itemID, locationID int64, delta decimal.Decimal) (decimal.Decimal, error) {
	current, err := quantityTx(ctx, tx, orgID, itemID, locationID)
	if err != nil {
		return decimal.Zero, err
	}

	next := current.Add(delta)
	if next.IsNegative() {
		next = decimal.Zero
	}

	if err := setQuantityTx(ctx, tx, orgID, itemID, locationID, next); err != nil {
		return decimal.Zero, err
	}
	return next, nil
}

// setQuantityTx overwrites the quantity record inside a write
// transaction, creating it if absent. Reconciliation uses this directly:
// a physical count is authoritative, not relative.
func setQuantityTx(ctx context.Context, tx *sql.Tx, orgID, itemID, locationID int64, qty decimal.Decimal) error {
	if qty.IsNegative() {
		return fmt.Errorf("%w: quantity cannot be negative", ErrInvalidInput)
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO inventory (item_id, location_id, org_id, quantity) VALUES (?, ?, ?, ?)
		 ON CONFLICT (item_id, location_id) DO UPDATE SET quantity = excluded.quantity`,
		itemID, locationID, orgID, qty.String(),
	)
	if err != nil {
		return fmt.Errorf("setting quantity: %w", err)
	}
	return nil
}

func quantityTx(ctx context.Context, tx *sql.Tx, orgID, itemID, locationID int64) (decimal.Decimal, error) {
	var qty string
	err := tx.QueryRowContext(ctx,
		`SELECT quantity FROM inventory
		 WHERE org_id = ? AND item_id = ? AND location_id = ?`,
		orgID, itemID, locationID,
	).Scan(&qty)
	if err == sql.ErrNoRows {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("getting quantity: %w", err)
	}
	return parseQuantity(qty)
}

func parseQuantity(s string) (decimal.Decimal, error) {
	q, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing quantity %q: %w", s, err)
	}
	return q, nil
}

func scanInventory(rows *sql.Rows) ([]model.InventoryRecord, error) {
	var records []model.InventoryRecord
	for rows.Next() {
		var rec model.InventoryRecord
		var qty string
		if err := rows.Scan(&rec.ItemID, &rec.LocationID, &rec.OrgID, &qty, &rec.ItemName, &rec.LocationName); err != nil {
			return nil, fmt.Errorf("scanning inventory: %w", err)
		}
		q, err := parseQuantity(qty)
		if err != nil {
			return nil, err
		}
		rec.Quantity = q
		records = append(records, rec)
	}
	return records, rows.Err()
}
