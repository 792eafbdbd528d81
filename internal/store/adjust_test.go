package store

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapstock/tapstock/internal/model"
)

func TestAdjustStockIncrease(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	item := f.newItem(t, "Gin")

	_, err := AdjustStock(ctx, f.DB, f.adminActor(), item.ID, f.Location.ID, dec(t, "3"), "", "")
	require.NoError(t, err)

	newQty, err := AdjustStock(ctx, f.DB, f.adminActor(), item.ID, f.Location.ID, dec(t, "5"), "", "")
	require.NoError(t, err)
	assert.True(t, newQty.Equal(dec(t, "8")), "expected 8, got %s", newQty)

	qty, err := GetQuantity(ctx, f.DB, f.Org.ID, item.ID, f.Location.ID)
	require.NoError(t, err)
	assert.True(t, qty.Equal(dec(t, "8")))

	entries, err := ListLedgerForItem(ctx, f.DB, f.Org.ID, item.ID, OrderAscending)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	last := entries[1]
	assert.Equal(t, model.ActionAddStock, last.Action)
	assert.Equal(t, model.EntryNormal, last.EntryType)
	assert.Equal(t, "Gin", last.Payload.ItemName)
	assert.True(t, last.Payload.Quantity.Equal(dec(t, "5")))
	assert.True(t, last.Payload.NewQuantity.Equal(dec(t, "8")))
}

func TestAdjustStockRecordsActingUser(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	item := f.newItem(t, "Gin")

	// The ledger references the acting user's row, so the write fails
	// outright for an actor that does not exist.
	actor := f.capActor(model.CapAddStock)
	_, err := AdjustStock(ctx, f.DB, actor, item.ID, f.Location.ID, dec(t, "2"), "", "")
	require.NoError(t, err)

	entries, err := ListLedgerForItem(ctx, f.DB, f.Org.ID, item.ID, OrderAscending)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].UserID)
	assert.Equal(t, actor.UserID, *entries[0].UserID)
}

func TestAdjustStockFractional(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	item := f.newItem(t, "Vermouth")

	newQty, err := AdjustStock(ctx, f.DB, f.adminActor(), item.ID, f.Location.ID, dec(t, "0.5"), "", "")
	require.NoError(t, err)
	assert.True(t, newQty.Equal(dec(t, "0.5")))

	newQty, err = AdjustStock(ctx, f.DB, f.adminActor(), item.ID, f.Location.ID, dec(t, "0.25"), "", "")
	require.NoError(t, err)
	assert.True(t, newQty.Equal(dec(t, "0.75")))
}

func TestAdjustStockZeroDeltaRejected(t *testing.T) {
	f := newTestFixture(t)
	item := f.newItem(t, "Rum")

	_, err := AdjustStock(context.Background(), f.DB, f.adminActor(), item.ID, f.Location.ID, decimal.Zero, "", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAdjustStockIncreaseNeedsCapability(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	item := f.newItem(t, "Whiskey")

	_, err := AdjustStock(ctx, f.DB, f.plainActor(), item.ID, f.Location.ID, dec(t, "6"), "", "")
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// Nothing was written.
	qty, err := GetQuantity(ctx, f.DB, f.Org.ID, item.ID, f.Location.ID)
	require.NoError(t, err)
	assert.True(t, qty.IsZero())
	entries, err := ListLedgerForItem(ctx, f.DB, f.Org.ID, item.ID, OrderAscending)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// The capability, the wildcard, and the admin role all unlock it.
	for _, actor := range []model.Actor{
		f.capActor(model.CapAddStock),
		f.capActor(model.CapAll),
		f.adminActor(),
	} {
		_, err := AdjustStock(ctx, f.DB, actor, item.ID, f.Location.ID, dec(t, "1"), "", "")
		assert.NoError(t, err)
	}
}

func TestAdjustStockDecreaseNeedsNoCapability(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	item := f.newItem(t, "Tequila")

	_, err := AdjustStock(ctx, f.DB, f.adminActor(), item.ID, f.Location.ID, dec(t, "6"), "", "")
	require.NoError(t, err)

	newQty, err := AdjustStock(ctx, f.DB, f.plainActor(), item.ID, f.Location.ID, dec(t, "-2"), "", "")
	require.NoError(t, err)
	assert.True(t, newQty.Equal(dec(t, "4")))

	entries, err := ListLedgerForItem(ctx, f.DB, f.Org.ID, item.ID, OrderAscending)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, model.ActionSubtractStock, entries[1].Action)
	assert.True(t, entries[1].Payload.Quantity.Equal(dec(t, "2")))
}

func TestAdjustStockClampsAtZero(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	item := f.newItem(t, "Vodka")

	_, err := AdjustStock(ctx, f.DB, f.adminActor(), item.ID, f.Location.ID, dec(t, "3"), "", "")
	require.NoError(t, err)

	// Over-subtraction floors at zero; the ledger keeps the requested
	// magnitude, so logged intent and applied effect diverge here.
	newQty, err := AdjustStock(ctx, f.DB, f.adminActor(), item.ID, f.Location.ID, dec(t, "-10"), "", "")
	require.NoError(t, err)
	assert.True(t, newQty.IsZero(), "expected clamp to 0, got %s", newQty)

	entries, err := ListLedgerForItem(ctx, f.DB, f.Org.ID, item.ID, OrderAscending)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[1].Payload.Quantity.Equal(dec(t, "10")))
	assert.True(t, entries[1].Payload.NewQuantity.IsZero())
}

func TestAdjustStockUnknownItem(t *testing.T) {
	f := newTestFixture(t)

	_, err := AdjustStock(context.Background(), f.DB, f.adminActor(), 9999, f.Location.ID, dec(t, "1"), "", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdjustStockForeignLocation(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	item := f.newItem(t, "Campari")

	other, err := CreateOrganization(ctx, f.DB, "Other")
	require.NoError(t, err)
	foreignLoc, err := CreateLocation(ctx, f.DB, other.ID, "Elsewhere")
	require.NoError(t, err)

	_, err = AdjustStock(ctx, f.DB, f.adminActor(), item.ID, foreignLoc.ID, dec(t, "1"), "", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdjustStockForeignItem(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()

	other, err := CreateOrganization(ctx, f.DB, "Other")
	require.NoError(t, err)
	foreignItem, err := CreateItem(ctx, f.DB, &other.ID, "Theirs", decimal.Zero, true)
	require.NoError(t, err)

	_, err = AdjustStock(ctx, f.DB, f.adminActor(), foreignItem.ID, f.Location.ID, dec(t, "1"), "", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdjustStockIdempotencyKey(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	item := f.newItem(t, "Aperol")

	_, err := AdjustStock(ctx, f.DB, f.adminActor(), item.ID, f.Location.ID, dec(t, "5"), "", "req-1")
	require.NoError(t, err)

	// A retried request with the same key must not double-log or
	// double-apply.
	_, err = AdjustStock(ctx, f.DB, f.adminActor(), item.ID, f.Location.ID, dec(t, "5"), "", "req-1")
	assert.ErrorIs(t, err, ErrDuplicateRequest)

	qty, err := GetQuantity(ctx, f.DB, f.Org.ID, item.ID, f.Location.ID)
	require.NoError(t, err)
	assert.True(t, qty.Equal(dec(t, "5")))

	entries, err := ListLedgerForItem(ctx, f.DB, f.Org.ID, item.ID, OrderAscending)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestAdjustStockGlobalItemVisible(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()

	global, err := CreateItem(ctx, f.DB, nil, "House Wine", decimal.Zero, true)
	require.NoError(t, err)

	newQty, err := AdjustStock(ctx, f.DB, f.adminActor(), global.ID, f.Location.ID, dec(t, "2"), "", "")
	require.NoError(t, err)
	assert.True(t, newQty.Equal(dec(t, "2")))
}
