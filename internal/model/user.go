package model

import "time"

// User represents an authentication user within an organization.
type User struct {
	ID           int64      `json:"id"`
	OrgID        int64      `json:"org_id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	Capabilities []string   `json:"capabilities"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Capabilities.
const (
	CapAddStock = "add_stock"
	CapAudit    = "audit"
	CapAll      = "all"
)

// Actor is the per-request identity the stock services act on behalf
// of. It is derived from token claims, not loaded from the database on
// every call.
type Actor struct {
	UserID       int64
	OrgID        int64
	Role         string
	Capabilities []string
}

// HasCapability reports whether the actor holds the named capability,
// either directly, via the wildcard capability, or via the admin role.
func (a Actor) HasCapability(name string) bool {
	if a.Role == RoleAdmin {
		return true
	}
	for _, c := range a.Capabilities {
		if c == name || c == CapAll {
			return true
		}
	}
	return false
}
