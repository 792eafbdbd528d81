package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tapstock/tapstock/internal/model"
)

// insertLedgerRow inserts an ADD_STOCK entry with an explicit timestamp,
// bypassing the services. Only tests need to control created_at.
func insertLedgerRow(t *testing.T, f *testFixture, itemID int64, at time.Time) int64 {
	t.Helper()

	payload, err := json.Marshal(model.LedgerPayload{
		ItemID:      itemID,
		ItemName:    "Test",
		LocationID:  f.Location.ID,
		Quantity:    decimal.NewFromInt(1),
		NewQuantity: decimal.NewFromInt(1),
	})
	if err != nil {
		t.Fatalf("encoding payload: %v", err)
	}

	result, err := f.DB.Exec(
		`INSERT INTO ledger (org_id, action, entry_type, payload, created_at) VALUES (?, 'ADD_STOCK', 'normal', ?, ?)`,
		f.Org.ID, string(payload), at.UTC(),
	)
	if err != nil {
		t.Fatalf("inserting ledger entry: %v", err)
	}
	id, _ := result.LastInsertId()
	return id
}

func TestListLedgerForItemOrdering(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	item := f.newItem(t, "Gin")

	AdjustStock(ctx, f.DB, f.adminActor(), item.ID, f.Location.ID, dec(t, "1"), "", "")
	AdjustStock(ctx, f.DB, f.adminActor(), item.ID, f.Location.ID, dec(t, "2"), "", "")
	AdjustStock(ctx, f.DB, f.adminActor(), item.ID, f.Location.ID, dec(t, "-1"), "", "")

	asc, err := ListLedgerForItem(ctx, f.DB, f.Org.ID, item.ID, OrderAscending)
	if err != nil {
		t.Fatalf("ListLedgerForItem asc: %v", err)
	}
	if len(asc) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(asc))
	}

	desc, err := ListLedgerForItem(ctx, f.DB, f.Org.ID, item.ID, OrderDescending)
	if err != nil {
		t.Fatalf("ListLedgerForItem desc: %v", err)
	}
	if len(desc) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(desc))
	}

	// Descending is the exact reverse of ascending, entry IDs breaking
	// same-second timestamp ties.
	for i := range asc {
		if asc[i].ID != desc[len(desc)-1-i].ID {
			t.Fatalf("ordering mismatch at %d: asc %d vs desc %d", i, asc[i].ID, desc[len(desc)-1-i].ID)
		}
	}

	if asc[2].Action != model.ActionSubtractStock {
		t.Errorf("expected last entry to be SUBTRACT_STOCK, got %s", asc[2].Action)
	}
}

func TestListLedgerForItemScopedToItem(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	gin := f.newItem(t, "Gin")
	rum := f.newItem(t, "Rum")

	AdjustStock(ctx, f.DB, f.adminActor(), gin.ID, f.Location.ID, dec(t, "1"), "", "")
	AdjustStock(ctx, f.DB, f.adminActor(), rum.ID, f.Location.ID, dec(t, "2"), "", "")

	entries, err := ListLedgerForItem(ctx, f.DB, f.Org.ID, gin.ID, OrderAscending)
	if err != nil {
		t.Fatalf("ListLedgerForItem: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry for gin, got %d", len(entries))
	}
	if entries[0].Payload.ItemID != gin.ID {
		t.Errorf("expected item %d, got %d", gin.ID, entries[0].Payload.ItemID)
	}
}

func TestListLedgerInRangeInclusiveBounds(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	item := f.newItem(t, "Gin")

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	before := insertLedgerRow(t, f, item.ID, base.Add(-time.Hour))
	start := insertLedgerRow(t, f, item.ID, base)
	middle := insertLedgerRow(t, f, item.ID, base.Add(time.Hour))
	end := insertLedgerRow(t, f, item.ID, base.Add(2*time.Hour))
	after := insertLedgerRow(t, f, item.ID, base.Add(3*time.Hour))

	entries, err := ListLedgerInRange(ctx, f.DB, f.Org.ID, base, base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("ListLedgerInRange: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries in range, got %d", len(entries))
	}

	got := []int64{entries[0].ID, entries[1].ID, entries[2].ID}
	want := []int64{start, middle, end}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: expected id %d, got %d", i, want[i], got[i])
		}
	}

	for _, e := range entries {
		if e.ID == before || e.ID == after {
			t.Errorf("entry %d outside range was returned", e.ID)
		}
	}
}

func TestListLedgerInRangeIncludesServiceWrites(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	item := f.newItem(t, "Gin")

	if _, err := AdjustStock(ctx, f.DB, f.adminActor(), item.ID, f.Location.ID, dec(t, "3"), "", ""); err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}
	entries, err := ListLedgerForItem(ctx, f.DB, f.Org.ID, item.ID, OrderAscending)
	if err != nil || len(entries) != 1 {
		t.Fatalf("listing entries: %v (%d entries)", err, len(entries))
	}

	// The lower bound equals the entry's own server-assigned timestamp;
	// inclusive bounds must still return it.
	ts := entries[0].CreatedAt
	got, err := ListLedgerInRange(ctx, f.DB, f.Org.ID, ts, ts.Add(time.Hour))
	if err != nil {
		t.Fatalf("ListLedgerInRange: %v", err)
	}
	if len(got) != 1 || got[0].ID != entries[0].ID {
		t.Fatalf("expected the adjustment entry at the range boundary, got %d entries", len(got))
	}
}

func TestPruneLedger(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	item := f.newItem(t, "Gin")

	old := time.Now().AddDate(-2, 0, 0)
	recent := time.Now().Add(-time.Hour)
	insertLedgerRow(t, f, item.ID, old)
	insertLedgerRow(t, f, item.ID, old.AddDate(0, 1, 0))
	keep := insertLedgerRow(t, f, item.ID, recent)

	deleted, err := PruneLedger(ctx, f.DB, f.Org.ID, time.Now().AddDate(-1, 0, 0))
	if err != nil {
		t.Fatalf("PruneLedger: %v", err)
	}
	if deleted != 2 {
		t.Errorf("expected 2 pruned entries, got %d", deleted)
	}

	entries, err := ListLedgerForItem(ctx, f.DB, f.Org.ID, item.ID, OrderAscending)
	if err != nil {
		t.Fatalf("ListLedgerForItem: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != keep {
		t.Errorf("expected only the recent entry to survive, got %v", entries)
	}
}

func TestGetLedgerEntryScopedToOrg(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	item := f.newItem(t, "Gin")

	AdjustStock(ctx, f.DB, f.adminActor(), item.ID, f.Location.ID, dec(t, "1"), "", "")
	entries, err := ListLedgerForItem(ctx, f.DB, f.Org.ID, item.ID, OrderAscending)
	if err != nil || len(entries) != 1 {
		t.Fatalf("listing entries: %v (%d entries)", err, len(entries))
	}

	other, err := CreateOrganization(ctx, f.DB, "Other")
	if err != nil {
		t.Fatalf("CreateOrganization: %v", err)
	}

	entry, err := GetLedgerEntry(ctx, f.DB, other.ID, entries[0].ID)
	if err != nil {
		t.Fatalf("GetLedgerEntry: %v", err)
	}
	if entry != nil {
		t.Error("expected no cross-org ledger access")
	}
}
