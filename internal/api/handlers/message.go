package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"cobrosmart/internal/collection"
	"cobrosmart/internal/config"
)

type messageRequest struct {
	Tone       string `json:"tone,omitempty"`
	Regenerate *bool  `json:"regenerate,omitempty"`
}

// handleDebtorMessage runs the generation pipeline for one debtor and tone.
// An empty body defaults to a cached "amable" message.
func handleDebtorMessage(cfg *config.Config, pipeline *collection.Pipeline, w http.ResponseWriter, r *http.Request, debtorID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var body messageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "invalid_json", "Body is not valid JSON.")
		return
	}

	regenerate := false
	if body.Regenerate != nil {
		regenerate = *body.Regenerate
	} else if raw := strings.ToLower(r.URL.Query().Get("regenerate")); raw == "true" || raw == "1" {
		regenerate = true
	}

	result, err := pipeline.Generate(r.Context(), collection.MessageRequest{
		BusinessID: cfg.BusinessID,
		DebtorID:   debtorID,
		Tone:       collection.NormalizeTone(body.Tone),
		Regenerate: regenerate,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	zap.L().Info("debtor message generated",
		zap.String("debtor_id", debtorID),
		zap.String("tone", collection.NormalizeTone(body.Tone)),
		zap.Bool("regenerate", regenerate),
		zap.Bool("cached", result.Cached),
		zap.Bool("fallback", result.Fallback),
	)
	writeJSON(w, http.StatusOK, result)
}
