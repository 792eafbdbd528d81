package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/tapstock/tapstock/internal/shift"
	"github.com/tapstock/tapstock/internal/store"
)

// ReportsHandler handles shift reporting.
type ReportsHandler struct {
	DB *sql.DB
}

// Shifts handles GET /api/reports/shifts?from=&to= (RFC 3339 bounds,
// inclusive). Entries with a fill-level label are counted per business
// day; the day boundary is the configured cutoff hour, not midnight.
func (h *ReportsHandler) Shifts(w http.ResponseWriter, r *http.Request) {
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

	cutoff, err := store.GetShiftCutoffHour(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to read shift settings")
		return
	}
	labels, err := store.GetShiftLabels(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to read shift settings")
		return
	}

	entries, err := store.ListLedgerInRange(r.Context(), h.DB, act.OrgID, from, to)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list ledger")
		return
	}

	jsonResponse(w, http.StatusOK, shift.BuildReport(entries, labels, cutoff))
}
