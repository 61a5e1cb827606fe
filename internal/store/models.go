package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a business-scoped row does not exist.
var ErrNotFound = errors.New("not found")

type Debtor struct {
	ID             string     `json:"id"`
	BusinessID     string     `json:"business_id"`
	Name           string     `json:"name"`
	Phone          string     `json:"phone"`
	AmountARS      int64      `json:"amount_ars"`
	DaysOverdue    int        `json:"days_overdue"`
	Note           string     `json:"note,omitempty"`
	LastStatus     string     `json:"last_status,omitempty"`
	LastContactAt  *time.Time `json:"last_contact_at,omitempty"`
	PromiseDate    *time.Time `json:"promise_date,omitempty"`
	PriorityScore  int        `json:"priority_score"`
	PriorityReason string     `json:"priority_reason,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// DebtorEvent rows are append-only; they are never updated or deleted.
type DebtorEvent struct {
	ID        string         `json:"id"`
	DebtorID  string         `json:"debtor_id"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// MessageCacheEntry holds the last generated message for one (debtor, tone)
// pair. The table carries a UNIQUE (debtor_id, tone) constraint and entries
// are always upserted in place.
type MessageCacheEntry struct {
	DebtorID        string    `json:"debtor_id"`
	Tone            string    `json:"tone"`
	MessageText     string    `json:"message_text"`
	MessageReason   string    `json:"message_reason"`
	Model           string    `json:"model"`
	LastVariationID string    `json:"last_variation_id"`
	LastPromptHash  string    `json:"last_prompt_hash"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type BusinessSettings struct {
	BusinessID         string    `json:"business_id"`
	SenderName         string    `json:"sender_name"`
	SenderRole         string    `json:"sender_role"`
	GreetingStyle      string    `json:"greeting_style"`
	Pronoun            string    `json:"pronoun"`
	Signature          string    `json:"signature"`
	PaymentMethod      string    `json:"payment_method"`
	PaymentDetails     string    `json:"payment_details"`
	PaymentCallout     string    `json:"payment_callout"`
	EntityGreetingRule string    `json:"entity_greeting_rule"`
	StyleNotes         string    `json:"style_notes"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// SettingsPatch is a partial update; nil fields keep the stored value.
type SettingsPatch struct {
	SenderName         *string `json:"sender_name,omitempty"`
	SenderRole         *string `json:"sender_role,omitempty"`
	GreetingStyle      *string `json:"greeting_style,omitempty"`
	Pronoun            *string `json:"pronoun,omitempty"`
	Signature          *string `json:"signature,omitempty"`
	PaymentMethod      *string `json:"payment_method,omitempty"`
	PaymentDetails     *string `json:"payment_details,omitempty"`
	PaymentCallout     *string `json:"payment_callout,omitempty"`
	EntityGreetingRule *string `json:"entity_greeting_rule,omitempty"`
	StyleNotes         *string `json:"style_notes,omitempty"`
}

// DefaultBusinessSettings is used when the business has no settings row yet.
func DefaultBusinessSettings(businessID string) BusinessSettings {
	return BusinessSettings{
		BusinessID:         businessID,
		SenderName:         "Tavo",
		SenderRole:         "Corralon El Puente",
		GreetingStyle:      "Buen dia",
		Pronoun:            "vos",
		Signature:          "Tavo - El Puente",
		PaymentMethod:      "alias",
		PaymentDetails:     "",
		PaymentCallout:     "Te paso alias para que te quede simple.",
		EntityGreetingRule: "si es empresa/coop/municipalidad: pedir administracion o cuentas a pagar",
		StyleNotes:         "rioplatense, corto, sin amenaza, concreto",
		UpdatedAt:          time.Now().UTC(),
	}
}

// MergeSettings applies a patch on top of current settings. Empty or missing
// patch fields keep the prior value; pronoun and payment_method fall back to
// their defaults when set to an unknown value.
func MergeSettings(current BusinessSettings, patch SettingsPatch) BusinessSettings {
	out := current
	out.SenderName = mergeText(current.SenderName, patch.SenderName)
	out.SenderRole = mergeText(current.SenderRole, patch.SenderRole)
	out.GreetingStyle = mergeText(current.GreetingStyle, patch.GreetingStyle)
	out.Pronoun = normalizePronoun(mergeText(current.Pronoun, patch.Pronoun))
	out.Signature = mergeText(current.Signature, patch.Signature)
	out.PaymentMethod = normalizePaymentMethod(mergeText(current.PaymentMethod, patch.PaymentMethod))
	if patch.PaymentDetails != nil {
		out.PaymentDetails = trim(*patch.PaymentDetails)
	}
	out.PaymentCallout = mergeText(current.PaymentCallout, patch.PaymentCallout)
	out.EntityGreetingRule = mergeText(current.EntityGreetingRule, patch.EntityGreetingRule)
	out.StyleNotes = mergeText(current.StyleNotes, patch.StyleNotes)
	out.UpdatedAt = time.Now().UTC()
	return out
}

func mergeText(current string, patch *string) string {
	if patch == nil {
		return current
	}
	if v := trim(*patch); v != "" {
		return v
	}
	return current
}

func normalizePronoun(v string) string {
	if v == "usted" {
		return "usted"
	}
	return "vos"
}

func normalizePaymentMethod(v string) string {
	switch v {
	case "cbu", "mp", "custom":
		return v
	default:
		return "alias"
	}
}
