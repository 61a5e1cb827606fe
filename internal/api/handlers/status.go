package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"cobrosmart/internal/collection"
	"cobrosmart/internal/config"
	"cobrosmart/internal/store"
)

var allowedStatuses = map[string]bool{
	"sent": true, "promise": true, "paid": true, "no_response": true, "replied": true,
}

type statusRequest struct {
	Status      string `json:"status"`
	PromiseDate string `json:"promise_date,omitempty"`
	MessageText string `json:"message_text,omitempty"`
	Tone        string `json:"tone,omitempty"`
	Channel     string `json:"channel,omitempty"`
}

func parsePromiseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}

// handleDebtorStatus appends an immutable debtor event, patches the debtor's
// contact state and recomputes the denormalized priority snapshot from the
// event log.
func handleDebtorStatus(cfg *config.Config, ds store.Datastore, w http.ResponseWriter, r *http.Request, debtorID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var body statusRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Body is not valid JSON.")
		return
	}
	if !allowedStatuses[body.Status] {
		writeError(w, http.StatusBadRequest, "invalid_status",
			"Status must be one of sent/promise/paid/no_response/replied.")
		return
	}

	promiseDate := parsePromiseDate(body.PromiseDate)
	if body.Status == "promise" && promiseDate == nil {
		writeError(w, http.StatusBadRequest, "missing_promise_date",
			"promise_date is required for status=promise.")
		return
	}

	ctx := r.Context()
	debtor, err := ds.GetDebtor(ctx, cfg.BusinessID, debtorID)
	if err != nil {
		handleError(w, err)
		return
	}

	now := time.Now().UTC()
	payload := map[string]any{
		"status":  body.Status,
		"at":      now.Format(time.RFC3339),
		"channel": channelOrDefault(body.Channel),
	}
	if promiseDate != nil {
		payload["promise_date"] = promiseDate.Format(time.RFC3339)
	}
	if text := strings.TrimSpace(body.MessageText); text != "" {
		payload["message_text"] = text
	}
	if body.Tone != "" {
		payload["tone"] = collection.NormalizeTone(body.Tone)
	}

	if err := ds.InsertEvent(ctx, store.DebtorEvent{
		DebtorID: debtor.ID,
		Type:     body.Status,
		Payload:  payload,
	}); err != nil {
		handleError(w, err)
		return
	}

	debtor.LastStatus = body.Status
	debtor.LastContactAt = &now
	if body.Status == "promise" {
		debtor.PromiseDate = promiseDate
	}
	if body.Status == "paid" {
		debtor.PromiseDate = nil
	}

	priority, err := collection.RecalculatePriority(ctx, ds, debtor)
	if err != nil {
		handleError(w, err)
		return
	}
	debtor.PriorityScore = priority.Score
	debtor.PriorityReason = priority.Reason

	updated, err := ds.UpdateDebtor(ctx, debtor)
	if err != nil {
		handleError(w, err)
		return
	}

	zap.L().Info("debtor status updated",
		zap.String("debtor_id", debtor.ID),
		zap.String("status", body.Status),
	)
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "item": updated})
}

func channelOrDefault(channel string) string {
	if c := strings.TrimSpace(channel); c != "" {
		return c
	}
	return "whatsapp_manual"
}
