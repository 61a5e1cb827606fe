package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"cobrosmart/internal/config"
	"cobrosmart/internal/store"
)

// HandleSettings reads (GET) or full-merge-upserts (POST) the business
// settings row. Reads fall back to defaults when no row exists.
func HandleSettings(cfg *config.Config, ds store.Datastore) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			settings, err := ds.GetBusinessSettings(r.Context(), cfg.BusinessID)
			if err != nil {
				handleError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]interface{}{"item": settings})

		case http.MethodPost:
			// TODO: protect settings endpoint with auth.
			var patch store.SettingsPatch
			if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
				writeError(w, http.StatusBadRequest, "invalid_json", "Body is not valid JSON.")
				return
			}
			saved, err := ds.UpsertBusinessSettings(r.Context(), cfg.BusinessID, patch)
			if err != nil {
				handleError(w, err)
				return
			}
			zap.L().Info("business settings updated", zap.String("business_id", cfg.BusinessID))
			writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "item": saved})

		default:
			methodNotAllowed(w, "GET and POST")
		}
	})
}
