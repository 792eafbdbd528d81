package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/tapstock/tapstock/internal/model"
)

// CreateUser creates a user within an organization. capabilities may be
// nil for a user with no stock capabilities.
func CreateUser(ctx context.Context, db *sql.DB, orgID int64, username, passwordHash, role string, capabilities []string) (*model.User, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: username required", ErrInvalidInput)
	}
	if role != model.RoleAdmin && role != model.RoleUser {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}

	caps, err := encodeCapabilities(capabilities)
	if err != nil {
		return nil, err
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO users (org_id, username, password_hash, role, capabilities)
		 VALUES (?, ?, ?, ?, ?)`,
		orgID, username, passwordHash, role, caps,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, _ := result.LastInsertId()
	return GetUser(ctx, db, orgID, id)
}

// GetUser returns a user by ID, scoped to the organization.
func GetUser(ctx context.Context, db *sql.DB, orgID, id int64) (*model.User, error) {
	return scanUser(db.QueryRowContext(ctx,
		`SELECT id, org_id, username, password_hash, role, capabilities, created_at, deleted_at
		 FROM users WHERE id = ? AND org_id = ?`, id, orgID,
	))
}

// GetUserByUsername returns an active user by username within an
// organization, for login.
func GetUserByUsername(ctx context.Context, db *sql.DB, orgID int64, username string) (*model.User, error) {
	return scanUser(db.QueryRowContext(ctx,
		`SELECT id, org_id, username, password_hash, role, capabilities, created_at, deleted_at
		 FROM users WHERE org_id = ? AND username = ? AND deleted_at IS NULL`,
		orgID, username,
	))
}

// ListUsers returns an organization's active users.
func ListUsers(ctx context.Context, db *sql.DB, orgID int64) ([]model.User, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, org_id, username, password_hash, role, capabilities, created_at, deleted_at
		 FROM users WHERE org_id = ? AND deleted_at IS NULL ORDER BY username`, orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		var caps string
		if err := rows.Scan(&u.ID, &u.OrgID, &u.Username, &u.PasswordHash, &u.Role, &caps, &u.CreatedAt, &u.DeletedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		if err := json.Unmarshal([]byte(caps), &u.Capabilities); err != nil {
			return nil, fmt.Errorf("decoding capabilities: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUser updates a user's role and capability set.
func UpdateUser(ctx context.Context, db *sql.DB, orgID, id int64, role string, capabilities []string) error {
	if role != model.RoleAdmin && role != model.RoleUser {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}

	caps, err := encodeCapabilities(capabilities)
	if err != nil {
		return err
	}

	result, err := db.ExecContext(ctx,
		`UPDATE users SET role = ?, capabilities = ?
		 WHERE id = ? AND org_id = ? AND deleted_at IS NULL`,
		role, caps, id, orgID,
	)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	return nil
}

// UpdateUserPassword sets a new password hash.
func UpdateUserPassword(ctx context.Context, db *sql.DB, orgID, id int64, passwordHash string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?
		 WHERE id = ? AND org_id = ? AND deleted_at IS NULL`,
		passwordHash, id, orgID,
	)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	return nil
}

// DeleteUser soft-deletes a user.
func DeleteUser(ctx context.Context, db *sql.DB, orgID, id int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE users SET deleted_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND org_id = ? AND deleted_at IS NULL`, id, orgID,
	)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	return nil
}

func scanUser(row *sql.Row) (*model.User, error) {
	u := &model.User{}
	var caps string
	err := row.Scan(&u.ID, &u.OrgID, &u.Username, &u.PasswordHash, &u.Role, &caps, &u.CreatedAt, &u.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	if err := json.Unmarshal([]byte(caps), &u.Capabilities); err != nil {
		return nil, fmt.Errorf("decoding capabilities: %w", err)
	}
	return u, nil
}

func encodeCapabilities(capabilities []string) (string, error) {
	if capabilities == nil {
		capabilities = []string{}
	}
	caps, err := json.Marshal(capabilities)
	if err != nil {
		return "", fmt.Errorf("encoding capabilities: %w", err)
	}
	return string(caps), nil
}
