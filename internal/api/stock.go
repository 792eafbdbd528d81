package api

import (
	"database/sql"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/tapstock/tapstock/internal/store"
)

// StockHandler handles stock adjustments and audits.
type StockHandler struct {
	DB *sql.DB
}

type adjustRequest struct {
	ItemID     int64           `json:"item_id"`
	LocationID int64           `json:"location_id"`
	Delta      decimal.Decimal `json:"delta"`
	Level      string          `json:"level,omitempty"`
	RequestID  string          `json:"request_id,omitempty"`
}

// Adjust handles POST /api/stock/adjust. The capability check for
// increases lives in the service, not here: decreases only need an
// authenticated actor.
func (h *StockHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req adjustRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ItemID <= 0 || req.LocationID <= 0 {
		jsonError(w, http.StatusBadRequest, "item_id and location_id are required")
		return
	}

	newQty, err := store.AdjustStock(r.Context(), h.DB, act, req.ItemID, req.LocationID, req.Delta, req.Level, req.RequestID)
	if err != nil {
		serveError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]decimal.Decimal{"new_quantity": newQty})
}

type auditRequest struct {
	Changes []store.AuditChange `json:"changes"`
	Note    string              `json:"note,omitempty"`
}

// Audit handles POST /api/audits.
func (h *StockHandler) Audit(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req auditRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.Reconcile(r.Context(), h.DB, act, req.Changes, req.Note); err != nil {
		serveError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "audit recorded"})
}
