package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/tapstock/tapstock/internal/model"
	"github.com/tapstock/tapstock/internal/store"
)

// InventoryHandler handles inventory read endpoints.
type InventoryHandler struct {
	DB *sql.DB
}

// List handles GET /api/inventory.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	inventory, err := store.ListInventory(r.Context(), h.DB, act.OrgID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list inventory")
		return
	}
	if inventory == nil {
		inventory = []model.InventoryRecord{}
	}
	jsonResponse(w, http.StatusOK, inventory)
}

// LowStock handles GET /api/inventory/low. The low-stock comparison
// lives here; dispatching notifications is up to whoever polls this.
func (h *InventoryHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	inventory, err := store.ListLowStock(r.Context(), h.DB, act.OrgID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list low stock")
		return
	}
	if inventory == nil {
		inventory = []model.InventoryRecord{}
	}
	jsonResponse(w, http.StatusOK, inventory)
}

// Quantity handles GET /api/inventory/quantity?item=&location=.
// A missing record reads as zero stock.
func (h *InventoryHandler) Quantity(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	itemID, err := strconv.ParseInt(r.URL.Query().Get("item"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	locationID, err := strconv.ParseInt(r.URL.Query().Get("location"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid location id")
		return
	}

	qty, err := store.GetQuantity(r.Context(), h.DB, act.OrgID, itemID, locationID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get quantity")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]decimal.Decimal{"quantity": qty})
}
