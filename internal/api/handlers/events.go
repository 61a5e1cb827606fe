package handlers

import (
	"net/http"
	"strconv"

	"cobrosmart/internal/config"
	"cobrosmart/internal/store"
)

func handleDebtorEvents(cfg *config.Config, ds store.Datastore, w http.ResponseWriter, r *http.Request, debtorID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}

	// Ownership check before exposing the event log.
	if _, err := ds.GetDebtor(r.Context(), cfg.BusinessID, debtorID); err != nil {
		handleError(w, err)
		return
	}

	items, err := ds.ListEvents(r.Context(), debtorID, limit)
	if err != nil {
		handleError(w, err)
		return
	}
	if items == nil {
		items = []store.DebtorEvent{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}
