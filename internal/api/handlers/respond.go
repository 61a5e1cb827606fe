package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"cobrosmart/internal/store"
)

type errorBody struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{OK: false, Error: code, Message: message})
}

// handleError maps datastore and pipeline failures to structured responses.
// Unclassified errors become a generic internal error that leaks no detail.
func handleError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "Debtor not found.")
		return
	}
	zap.L().Error("request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_server_error", "An unexpected error occurred.")
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Only "+allowed+" is allowed.")
}

func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
