package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tapstock/tapstock/internal/db"
	"github.com/tapstock/tapstock/internal/model"
)

// testFixture is a fresh organization with one location and three
// users (an admin and two plain users), used by most stock tests.
// Ledger entries reference the acting user, so actors must be backed
// by real user rows.
type testFixture struct {
	DB       *sql.DB
	Org      *model.Organization
	Location *model.Location

	admin  *model.User
	plain  *model.User
	helper *model.User
}

func newTestFixture(t *testing.T) *testFixture {
	t.Helper()
	database := db.NewTestDB(t)
	ctx := context.Background()

	org, err := CreateOrganization(ctx, database, "Testbar")
	if err != nil {
		t.Fatalf("CreateOrganization: %v", err)
	}
	loc, err := CreateLocation(ctx, database, org.ID, "Main")
	if err != nil {
		t.Fatalf("CreateLocation: %v", err)
	}

	f := &testFixture{DB: database, Org: org, Location: loc}
	f.admin = f.newUser(t, "admin", model.RoleAdmin)
	f.plain = f.newUser(t, "plain", model.RoleUser)
	f.helper = f.newUser(t, "helper", model.RoleUser)
	return f
}

func (f *testFixture) newUser(t *testing.T, username, role string) *model.User {
	t.Helper()
	user, err := CreateUser(context.Background(), f.DB, f.Org.ID, username, "unused-hash", role, nil)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return user
}

// newItem creates an org-scoped item with default threshold.
func (f *testFixture) newItem(t *testing.T, name string) *model.Item {
	t.Helper()
	item, err := CreateItem(context.Background(), f.DB, &f.Org.ID, name, decimal.Zero, true)
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	return item
}

// adminActor is an actor with the admin role, which implies every
// capability.
func (f *testFixture) adminActor() model.Actor {
	return model.Actor{UserID: f.admin.ID, OrgID: f.Org.ID, Role: model.RoleAdmin}
}

// plainActor is an authenticated actor with no capabilities.
func (f *testFixture) plainActor() model.Actor {
	return model.Actor{UserID: f.plain.ID, OrgID: f.Org.ID, Role: model.RoleUser}
}

// capActor is an authenticated actor with the given capabilities.
func (f *testFixture) capActor(caps ...string) model.Actor {
	return model.Actor{UserID: f.helper.ID, OrgID: f.Org.ID, Role: model.RoleUser, Capabilities: caps}
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parsing decimal %q: %v", s, err)
	}
	return d
}
