package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tapstock/tapstock/internal/model"
)

// CreateOrganization creates a new organization.
func CreateOrganization(ctx context.Context, db *sql.DB, name string) (*model.Organization, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: organization name required", ErrInvalidInput)
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO organizations (name) VALUES (?)`, name,
	)
	if err != nil {
		return nil, fmt.Errorf("creating organization: %w", err)
	}

	id, _ := result.LastInsertId()
	return GetOrganization(ctx, db, id)
}

// GetOrganization returns an organization by ID, or nil if it doesn't exist.
func GetOrganization(ctx context.Context, db *sql.DB, id int64) (*model.Organization, error) {
	org := &model.Organization{}
	err := db.QueryRowContext(ctx,
		`SELECT id, name, created_at, deleted_at FROM organizations WHERE id = ?`, id,
	).Scan(&org.ID, &org.Name, &org.CreatedAt, &org.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting organization: %w", err)
	}
	return org, nil
}

// ListOrganizations returns all active organizations.
func ListOrganizations(ctx context.Context, db *sql.DB) ([]model.Organization, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, created_at, deleted_at FROM organizations
		 WHERE deleted_at IS NULL ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing organizations: %w", err)
	}
	defer rows.Close()

	var orgs []model.Organization
	for rows.Next() {
		var org model.Organization
		if err := rows.Scan(&org.ID, &org.Name, &org.CreatedAt, &org.DeletedAt); err != nil {
			return nil, fmt.Errorf("scanning organization: %w", err)
		}
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}
