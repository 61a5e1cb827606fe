package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	twilio "github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"cobrosmart/internal/collection"
	"cobrosmart/internal/config"
	"cobrosmart/internal/store"
)

type smsRequest struct {
	To       string `json:"to"`
	Message  string `json:"message,omitempty"`
	DebtorID string `json:"debtor_id,omitempty"`
	Tone     string `json:"tone,omitempty"`
}

type smsResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	SID     string `json:"sid,omitempty"`
}

// HandleSendSMS delivers a collection message over SMS. The text can be
// supplied directly or pulled from the message cache via debtor_id + tone.
func HandleSendSMS(cfg *config.Config, ds store.Datastore) http.Handler {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, "POST")
			return
		}

		var req smsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", "Body is not valid JSON.")
			return
		}
		if req.To == "" {
			writeError(w, http.StatusBadRequest, "invalid_payload", "to is required.")
			return
		}

		text := strings.TrimSpace(req.Message)
		if text == "" && req.DebtorID != "" {
			entry, hit, err := ds.GetMessageCache(r.Context(), req.DebtorID, collection.NormalizeTone(req.Tone))
			if err != nil {
				handleError(w, err)
				return
			}
			if hit {
				text = entry.MessageText
			}
		}
		if text == "" {
			writeError(w, http.StatusBadRequest, "invalid_payload",
				"message is required, or debtor_id with a cached message.")
			return
		}

		params := &openapi.CreateMessageParams{}
		params.SetTo(req.To)
		params.SetFrom(cfg.TwilioPhoneNumber)
		params.SetBody(text)

		resp, err := client.Api.CreateMessage(params)
		if err != nil {
			zap.L().Error("sms send failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "sms_send_failed", "Failed to send SMS.")
			return
		}

		writeJSON(w, http.StatusOK, smsResponse{
			Success: true,
			Message: "SMS sent successfully",
			SID:     *resp.Sid,
		})
	})
}
