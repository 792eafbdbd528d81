package api

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/tapstock/tapstock/internal/model"
	"github.com/tapstock/tapstock/internal/replay"
	"github.com/tapstock/tapstock/internal/store"
)

// LedgerHandler handles activity log reads, replay validation, and the
// retention prune.
type LedgerHandler struct {
	DB *sql.DB
}

// List handles GET /api/ledger?from=&to= (RFC 3339 bounds, inclusive).
func (h *LedgerHandler) List(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid from timestamp")
		return
	}
	to, err := time.Parse(time.RFC3339, r.URL.Query().Get("to"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid to timestamp")
		return
	}

	entries, err := store.ListLedgerInRange(r.Context(), h.DB, act.OrgID, from, to)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list ledger")
		return
	}
	if entries == nil {
		entries = []model.LedgerEntry{}
	}
	jsonResponse(w, http.StatusOK, entries)
}

// ItemHistory handles GET /api/items/{id}/ledger?order=asc|desc.
func (h *LedgerHandler) ItemHistory(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	itemID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	order := store.OrderAscending
	if r.URL.Query().Get("order") == store.OrderDescending {
		order = store.OrderDescending
	}

	entries, err := store.ListLedgerForItem(r.Context(), h.DB, act.OrgID, itemID, order)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list item history")
		return
	}
	if entries == nil {
		entries = []model.LedgerEntry{}
	}
	jsonResponse(w, http.StatusOK, entries)
}

// Replay handles GET /api/items/{id}/replay. It validates that the
// item's recorded history is consistent with its current total
// quantity. Read-only; violations are reported, never auto-corrected.
func (h *LedgerHandler) Replay(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	itemID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, act.OrgID, itemID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	current, err := store.GetItemTotal(r.Context(), h.DB, act.OrgID, itemID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get current quantity")
		return
	}

	entries, err := store.ListLedgerForItem(r.Context(), h.DB, act.OrgID, itemID, store.OrderDescending)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list item history")
		return
	}

	jsonResponse(w, http.StatusOK, replay.Validate(itemID, current, entries))
}

// Prune handles POST /api/ledger/prune (admin only). Deletes entries
// older than the configured retention horizon.
func (h *LedgerHandler) Prune(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	days, err := store.GetRetentionDays(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to read retention setting")
		return
	}

	horizon := time.Now().AddDate(0, 0, -days)
	deleted, err := store.PruneLedger(r.Context(), h.DB, act.OrgID, horizon)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to prune ledger")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]int64{"deleted": deleted})
}
