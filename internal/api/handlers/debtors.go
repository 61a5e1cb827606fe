package handlers

import (
	"net/http"
	"strings"

	"cobrosmart/internal/collection"
	"cobrosmart/internal/config"
	"cobrosmart/internal/store"
)

func HandleListDebtors(cfg *config.Config, ds store.Datastore) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, "GET")
			return
		}

		sort := "created"
		if r.URL.Query().Get("sort") == "priority" {
			sort = "priority"
		}

		items, err := ds.ListDebtors(r.Context(), cfg.BusinessID, sort)
		if err != nil {
			handleError(w, err)
			return
		}
		if items == nil {
			items = []store.Debtor{}
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
	})
}

// HandleDebtorRoutes dispatches /debtors/{id}/{events|status|message}.
func HandleDebtorRoutes(cfg *config.Config, ds store.Datastore, pipeline *collection.Pipeline) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/debtors/")
		parts := strings.Split(strings.Trim(path, "/"), "/")
		if len(parts) != 2 || parts[0] == "" {
			writeError(w, http.StatusBadRequest, "missing_debtor_id", "Missing debtor id in route.")
			return
		}
		debtorID, action := parts[0], parts[1]

		switch action {
		case "events":
			handleDebtorEvents(cfg, ds, w, r, debtorID)
		case "status":
			handleDebtorStatus(cfg, ds, w, r, debtorID)
		case "message":
			handleDebtorMessage(cfg, pipeline, w, r, debtorID)
		default:
			writeError(w, http.StatusNotFound, "not_found", "Unknown debtor operation.")
		}
	})
}
