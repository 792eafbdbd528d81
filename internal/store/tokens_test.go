package store

import (
	"context"
	"testing"
	"time"
)

func TestRevokeToken(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()

	revoked, err := IsTokenRevoked(ctx, f.DB, "jti-1")
	if err != nil {
		t.Fatalf("IsTokenRevoked: %v", err)
	}
	if revoked {
		t.Fatal("unknown JTI reported as revoked")
	}

	if err := RevokeToken(ctx, f.DB, "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}
	revoked, err = IsTokenRevoked(ctx, f.DB, "jti-1")
	if err != nil {
		t.Fatalf("IsTokenRevoked: %v", err)
	}
	if !revoked {
		t.Error("expected JTI to be revoked")
	}

	// Revoking the same JTI again is a no-op.
	if err := RevokeToken(ctx, f.DB, "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Errorf("repeat RevokeToken: %v", err)
	}
}

func TestRevokeTokenSweepsExpired(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()

	if err := RevokeToken(ctx, f.DB, "stale", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}
	if err := RevokeToken(ctx, f.DB, "live", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}

	revoked, err := IsTokenRevoked(ctx, f.DB, "stale")
	if err != nil {
		t.Fatalf("IsTokenRevoked: %v", err)
	}
	if revoked {
		t.Error("expected expired revocation to be swept")
	}
	revoked, err = IsTokenRevoked(ctx, f.DB, "live")
	if err != nil {
		t.Fatalf("IsTokenRevoked: %v", err)
	}
	if !revoked {
		t.Error("expected live revocation to survive the sweep")
	}
}
