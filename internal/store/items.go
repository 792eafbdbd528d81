package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tapstock/tapstock/internal/model"
)

const itemColumns = `id, org_id, name, threshold, include_in_audit, created_at, updated_at, deleted_at`

// CreateItem creates an item. orgID nil makes the item global (visible
// to every organization that has no item of the same name).
func CreateItem(ctx context.Context, db *sql.DB, orgID *int64, name string, threshold decimal.Decimal, includeInAudit bool) (*model.Item, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: item name required", ErrInvalidInput)
	}
	if threshold.IsNegative() {
		return nil, fmt.Errorf("%w: threshold cannot be negative", ErrInvalidInput)
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO items (org_id, name, threshold, include_in_audit)
		 VALUES (?, ?, ?, ?)`,
		orgID, name, threshold.String(), includeInAudit,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, _ := result.LastInsertId()
	return getItemByID(ctx, db, id)
}

// GetItem returns an item by ID if it is visible to the organization:
// either scoped to it or global. Returns nil otherwise.
func GetItem(ctx context.Context, db *sql.DB, orgID, id int64) (*model.Item, error) {
	item, err := getItemByID(ctx, db, id)
	if err != nil || item == nil {
		return item, err
	}
	if item.OrgID != nil && *item.OrgID != orgID {
		return nil, nil
	}
	return item, nil
}

// ResolveItem looks up an item by name for an organization. The lookup
// is two-tier: an organization-scoped item always shadows a global item
// of the same name. Returns nil if neither exists.
func ResolveItem(ctx context.Context, db *sql.DB, orgID int64, name string) (*model.Item, error) {
	item, err := scanItem(db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items
		 WHERE org_id = ? AND name = ? AND deleted_at IS NULL`, orgID, name,
	))
	if err != nil {
		return nil, err
	}
	if item != nil {
		return item, nil
	}
	return scanItem(db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items
		 WHERE org_id IS NULL AND name = ? AND deleted_at IS NULL`, name,
	))
}

// ListItems returns the items visible to an organization: its own items
// plus global items whose names are not shadowed by an org-scoped item.
func ListItems(ctx context.Context, db *sql.DB, orgID int64) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items
		 WHERE deleted_at IS NULL
		   AND (org_id = ?
		        OR (org_id IS NULL AND name NOT IN
		            (SELECT name FROM items WHERE org_id = ? AND deleted_at IS NULL)))
		 ORDER BY name`, orgID, orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

// ListAuditItems returns the visible items flagged for inclusion in
// physical counts, in item-ID order.
func ListAuditItems(ctx context.Context, db *sql.DB, orgID int64) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items
		 WHERE deleted_at IS NULL AND include_in_audit = 1
		   AND (org_id = ?
		        OR (org_id IS NULL AND name NOT IN
		            (SELECT name FROM items WHERE org_id = ? AND deleted_at IS NULL)))
		 ORDER BY id`, orgID, orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing audit items: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

// UpdateItem updates an item's name, threshold and audit flag. Only the
// owning organization may update an org-scoped item; global items are
// managed out of band.
func UpdateItem(ctx context.Context, db *sql.DB, orgID, id int64, name string, threshold decimal.Decimal, includeInAudit bool) error {
	if name == "" {
		return fmt.Errorf("%w: item name required", ErrInvalidInput)
	}
	if threshold.IsNegative() {
		return fmt.Errorf("%w: threshold cannot be negative", ErrInvalidInput)
	}

	result, err := db.ExecContext(ctx,
		`UPDATE items SET name = ?, threshold = ?, include_in_audit = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND org_id = ? AND deleted_at IS NULL`,
		name, threshold.String(), includeInAudit, id, orgID,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: item %d", ErrNotFound, id)
	}
	return nil
}

// DeleteItem soft-deletes an org-scoped item. Ledger history referencing
// the item is kept.
func DeleteItem(ctx context.Context, db *sql.DB, orgID, id int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET deleted_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND org_id = ? AND deleted_at IS NULL`, id, orgID,
	)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: item %d", ErrNotFound, id)
	}
	return nil
}

// itemForOrgTx fetches an item inside a transaction and verifies it is
// visible to the organization. Used by adjust and reconcile to snapshot
// the item name into ledger payloads.
func itemForOrgTx(ctx context.Context, tx *sql.Tx, orgID, id int64) (*model.Item, error) {
	item, err := scanItem(tx.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ? AND deleted_at IS NULL`, id,
	))
	if err != nil {
		return nil, err
	}
	if item == nil || (item.OrgID != nil && *item.OrgID != orgID) {
		return nil, fmt.Errorf("%w: item %d", ErrNotFound, id)
	}
	return item, nil
}

func getItemByID(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	return scanItem(db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItemFields(s rowScanner, item *model.Item) error {
	var threshold string
	if err := s.Scan(&item.ID, &item.OrgID, &item.Name, &threshold, &item.IncludeInAudit,
		&item.CreatedAt, &item.UpdatedAt, &item.DeletedAt); err != nil {
		return err
	}
	t, err := decimal.NewFromString(threshold)
	if err != nil {
		return fmt.Errorf("parsing threshold %q: %w", threshold, err)
	}
	item.Threshold = t
	return nil
}

func scanItem(row *sql.Row) (*model.Item, error) {
	item := &model.Item{}
	err := scanItemFields(row, item)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

func scanItems(rows *sql.Rows) ([]model.Item, error) {
	var items []model.Item
	for rows.Next() {
		var item model.Item
		if err := scanItemFields(rows, &item); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
