package store

import (
	"context"
	"testing"

	"github.com/tapstock/tapstock/internal/model"
)

func TestCreateAndGetUser(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, f.DB, f.Org.ID, "bartender", "hash", model.RoleUser, []string{model.CapAddStock})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Username != "bartender" {
		t.Errorf("expected username 'bartender', got %q", user.Username)
	}
	if len(user.Capabilities) != 1 || user.Capabilities[0] != model.CapAddStock {
		t.Errorf("expected add_stock capability, got %v", user.Capabilities)
	}

	got, err := GetUserByUsername(ctx, f.DB, f.Org.ID, "bartender")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if got == nil || got.ID != user.ID {
		t.Fatalf("expected user %d, got %v", user.ID, got)
	}
}

func TestUsernameScopedPerOrg(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()

	if _, err := CreateUser(ctx, f.DB, f.Org.ID, "sam", "hash", model.RoleUser, nil); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	// Same username in another org is fine; duplicate in the same org is not.
	other, err := CreateOrganization(ctx, f.DB, "Other")
	if err != nil {
		t.Fatalf("CreateOrganization: %v", err)
	}
	if _, err := CreateUser(ctx, f.DB, other.ID, "sam", "hash", model.RoleUser, nil); err != nil {
		t.Errorf("expected username reuse across orgs, got %v", err)
	}
	if _, err := CreateUser(ctx, f.DB, f.Org.ID, "sam", "hash", model.RoleUser, nil); err == nil {
		t.Error("expected duplicate username in same org to fail")
	}
}

func TestUpdateUserCapabilities(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, f.DB, f.Org.ID, "sam", "hash", model.RoleUser, nil)

	if err := UpdateUser(ctx, f.DB, f.Org.ID, user.ID, model.RoleUser, []string{model.CapAudit}); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}

	got, _ := GetUser(ctx, f.DB, f.Org.ID, user.ID)
	if len(got.Capabilities) != 1 || got.Capabilities[0] != model.CapAudit {
		t.Errorf("expected audit capability, got %v", got.Capabilities)
	}
}

func TestActorCapabilities(t *testing.T) {
	cases := []struct {
		name  string
		actor model.Actor
		cap   string
		want  bool
	}{
		{"direct", model.Actor{Role: model.RoleUser, Capabilities: []string{model.CapAddStock}}, model.CapAddStock, true},
		{"wildcard", model.Actor{Role: model.RoleUser, Capabilities: []string{model.CapAll}}, model.CapAudit, true},
		{"admin role", model.Actor{Role: model.RoleAdmin}, model.CapAudit, true},
		{"missing", model.Actor{Role: model.RoleUser, Capabilities: []string{model.CapAddStock}}, model.CapAudit, false},
		{"none", model.Actor{Role: model.RoleUser}, model.CapAddStock, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.actor.HasCapability(tc.cap); got != tc.want {
				t.Errorf("HasCapability(%q) = %v, want %v", tc.cap, got, tc.want)
			}
		})
	}
}
