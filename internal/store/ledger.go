package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tapstock/tapstock/internal/model"
)

// Ledger ordering for ListLedgerForItem.
const (
	OrderAscending  = "asc"
	OrderDescending = "desc"
)

const ledgerColumns = `id, org_id, user_id, action, entry_type, payload, created_at`

// appendLedgerTx persists one immutable entry inside a write
// transaction. The ledger accepts any well-formed entry; business rules
// live in the services that call it. The timestamp is server-assigned,
// bound through the driver so it compares exactly against the
// driver-bound range and prune horizons.
func appendLedgerTx(ctx context.Context, tx *sql.Tx, entry model.LedgerEntry, idempotencyKey string) (int64, error) {
	payload, err := json.Marshal(entry.Payload)
	if err != nil {
		return 0, fmt.Errorf("encoding payload: %w", err)
	}

	var key any
	if idempotencyKey != "" {
		key = idempotencyKey
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO ledger (org_id, user_id, action, entry_type, payload, idempotency_key, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.OrgID, entry.UserID, entry.Action, entry.EntryType, string(payload), key, time.Now().UTC(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: ledger.idempotency_key") {
			return 0, fmt.Errorf("%w: idempotency key %q", ErrDuplicateRequest, idempotencyKey)
		}
		return 0, fmt.Errorf("appending ledger entry: %w", err)
	}

	id, _ := result.LastInsertId()
	return id, nil
}

// GetLedgerEntry returns one entry by ID, scoped to the organization.
func GetLedgerEntry(ctx context.Context, db *sql.DB, orgID, id int64) (*model.LedgerEntry, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+ledgerColumns+` FROM ledger WHERE id = ? AND org_id = ?`, id, orgID,
	)

	entry := model.LedgerEntry{}
	var payload string
	err := row.Scan(&entry.ID, &entry.OrgID, &entry.UserID, &entry.Action, &entry.EntryType, &payload, &entry.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting ledger entry: %w", err)
	}
	if err := json.Unmarshal([]byte(payload), &entry.Payload); err != nil {
		return nil, fmt.Errorf("decoding payload: %w", err)
	}
	return &entry, nil
}

// ListLedgerForItem returns an item's entries ordered by timestamp.
// Descending order is what backward replay consumes; ascending is for
// chronological reporting. Entry IDs break timestamp ties.
func ListLedgerForItem(ctx context.Context, db *sql.DB, orgID, itemID int64, order string) ([]model.LedgerEntry, error) {
	dir := "ASC"
	if order == OrderDescending {
		dir = "DESC"
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+ledgerColumns+` FROM ledger
		 WHERE org_id = ? AND json_extract(payload, '$.item_id') = ?
		 ORDER BY created_at `+dir+`, id `+dir, orgID, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing ledger for item: %w", err)
	}
	defer rows.Close()
	return scanLedger(rows)
}

// ListLedgerInRange returns an organization's entries with timestamps
// in [start, end], oldest first. Both bounds are inclusive.
func ListLedgerInRange(ctx context.Context, db *sql.DB, orgID int64, start, end time.Time) ([]model.LedgerEntry, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+ledgerColumns+` FROM ledger
		 WHERE org_id = ? AND created_at >= ? AND created_at <= ?
		 ORDER BY created_at, id`, orgID, start.UTC(), end.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("listing ledger in range: %w", err)
	}
	defer rows.Close()
	return scanLedger(rows)
}

// PruneLedger deletes entries older than the horizon. This is the one
// administrative exception to the ledger's append-only contract; the
// quantity store is untouched. Returns the number of deleted entries.
func PruneLedger(ctx context.Context, db *sql.DB, orgID int64, horizon time.Time) (int64, error) {
	result, err := db.ExecContext(ctx,
		`DELETE FROM ledger WHERE org_id = ? AND created_at < ?`,
		orgID, horizon.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("pruning ledger: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}

func scanLedger(rows *sql.Rows) ([]model.LedgerEntry, error) {
	var entries []model.LedgerEntry
	for rows.Next() {
		var entry model.LedgerEntry
		var payload string
		if err := rows.Scan(&entry.ID, &entry.OrgID, &entry.UserID, &entry.Action, &entry.EntryType, &payload, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning ledger entry: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &entry.Payload); err != nil {
			return nil, fmt.Errorf("decoding payload: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
