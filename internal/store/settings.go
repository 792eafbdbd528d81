package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
)

// Defaults for org-independent settings.
const (
	DefaultShiftCutoffHour = 5
	DefaultRetentionDays   = 365
)

// defaultShiftLabels is the configured bottle fill-level label set.
// Labels seen in the data but missing here are still reported.
var defaultShiftLabels = []string{"full", "three_quarters", "half", "quarter", "empty"}

// GetJWTSecret retrieves the JWT secret from the database.
// If no secret exists, it generates one, stores it, and returns it.
// Uses INSERT OR IGNORE + re-SELECT to avoid TOCTOU race on concurrent startup.
func GetJWTSecret(ctx context.Context, db *sql.DB) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}
	candidate := hex.EncodeToString(buf)

	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES ('jwt_secret', ?)`,
		candidate,
	)
	if err != nil {
		return "", fmt.Errorf("storing jwt_secret: %w", err)
	}

	var secret string
	err = db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = 'jwt_secret'`,
	).Scan(&secret)
	if err != nil {
		return "", fmt.Errorf("querying jwt_secret: %w", err)
	}

	return secret, nil
}

// GetShiftCutoffHour returns the configured business-day boundary hour.
func GetShiftCutoffHour(ctx context.Context, db *sql.DB) (int, error) {
	value, err := getSetting(ctx, db, "shift_cutoff_hour")
	if err != nil {
		return 0, err
	}
	if value == "" {
		return DefaultShiftCutoffHour, nil
	}
	hour, err := strconv.Atoi(value)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid shift_cutoff_hour setting %q", value)
	}
	return hour, nil
}

// GetShiftLabels returns the configured shift-report label set.
func GetShiftLabels(ctx context.Context, db *sql.DB) ([]string, error) {
	value, err := getSetting(ctx, db, "shift_labels")
	if err != nil {
		return nil, err
	}
	if value == "" {
		return defaultShiftLabels, nil
	}
	var labels []string
	if err := json.Unmarshal([]byte(value), &labels); err != nil {
		return nil, fmt.Errorf("decoding shift_labels setting: %w", err)
	}
	return labels, nil
}

// GetRetentionDays returns the ledger retention horizon in days, used
// by the administrative prune.
func GetRetentionDays(ctx context.Context, db *sql.DB) (int, error) {
	value, err := getSetting(ctx, db, "retention_days")
	if err != nil {
		return 0, err
	}
	if value == "" {
		return DefaultRetentionDays, nil
	}
	days, err := strconv.Atoi(value)
	if err != nil || days < 1 {
		return 0, fmt.Errorf("invalid retention_days setting %q", value)
	}
	return days, nil
}

// SetSetting stores a setting value, replacing any existing one.
func SetSetting(ctx context.Context, db *sql.DB, key, value string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`, key, value,
	)
	if err != nil {
		return fmt.Errorf("storing setting %q: %w", key, err)
	}
	return nil
}

func getSetting(ctx context.Context, db *sql.DB, key string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("querying setting %q: %w", key, err)
	}
	return value, nil
}
