package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tapstock/tapstock/internal/model"
)

// CreateLocation creates a location for an organization.
func CreateLocation(ctx context.Context, db *sql.DB, orgID int64, name string) (*model.Location, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: location name required", ErrInvalidInput)
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO locations (org_id, name) VALUES (?, ?)`, orgID, name,
	)
	if err != nil {
		return nil, fmt.Errorf("creating location: %w", err)
	}

	id, _ := result.LastInsertId()
	return GetLocation(ctx, db, orgID, id)
}

// GetLocation returns a location by ID, scoped to the organization.
// Returns nil if the location doesn't exist or belongs to another
// organization.
func GetLocation(ctx context.Context, db *sql.DB, orgID, id int64) (*model.Location, error) {
	loc := &model.Location{}
	err := db.QueryRowContext(ctx,
		`SELECT id, org_id, name, created_at, deleted_at FROM locations
		 WHERE id = ? AND org_id = ?`, id, orgID,
	).Scan(&loc.ID, &loc.OrgID, &loc.Name, &loc.CreatedAt, &loc.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting location: %w", err)
	}
	return loc, nil
}

// ListLocations returns an organization's active locations ordered by ID.
func ListLocations(ctx context.Context, db *sql.DB, orgID int64) ([]model.Location, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, org_id, name, created_at, deleted_at FROM locations
		 WHERE org_id = ? AND deleted_at IS NULL ORDER BY id`, orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing locations: %w", err)
	}
	defer rows.Close()

	var locs []model.Location
	for rows.Next() {
		var loc model.Location
		if err := rows.Scan(&loc.ID, &loc.OrgID, &loc.Name, &loc.CreatedAt, &loc.DeletedAt); err != nil {
			return nil, fmt.Errorf("scanning location: %w", err)
		}
		locs = append(locs, loc)
	}
	return locs, rows.Err()
}

// UpdateLocation renames a location.
func UpdateLocation(ctx context.Context, db *sql.DB, orgID, id int64, name string) error {
	if name == "" {
		return fmt.Errorf("%w: location name required", ErrInvalidInput)
	}

	result, err := db.ExecContext(ctx,
		`UPDATE locations SET name = ? WHERE id = ? AND org_id = ? AND deleted_at IS NULL`,
		name, id, orgID,
	)
	if err != nil {
		return fmt.Errorf("updating location: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: location %d", ErrNotFound, id)
	}
	return nil
}

// DeleteLocation soft-deletes a location.
func DeleteLocation(ctx context.Context, db *sql.DB, orgID, id int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE locations SET deleted_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND org_id = ? AND deleted_at IS NULL`, id, orgID,
	)
	if err != nil {
		return fmt.Errorf("deleting location: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: location %d", ErrNotFound, id)
	}
	return nil
}

// defaultLocationTx resolves the organization's default location inside
// a transaction: the active location with the lowest ID. Used only by
// reconciliation when a change omits the location.
func defaultLocationTx(ctx context.Context, tx *sql.Tx, orgID int64) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM locations WHERE org_id = ? AND deleted_at IS NULL
		 ORDER BY id LIMIT 1`, orgID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%w: organization %d has no locations", ErrNotFound, orgID)
	}
	if err != nil {
		return 0, fmt.Errorf("resolving default location: %w", err)
	}
	return id, nil
}
