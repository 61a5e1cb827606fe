package collection

import (
	"fmt"
	"strings"

	"cobrosmart/internal/ai"
	"cobrosmart/internal/store"
)

// FallbackModel is recorded in the cache when the message came from the
// local template instead of the generation service.
const FallbackModel = "local-fallback"

// fallbackInput is everything the deterministic template needs; it never
// touches the network.
type fallbackInput struct {
	Debtor    store.Debtor
	Settings  store.BusinessSettings
	Addressee AddresseeResult
	Tone      string
}

// fallbackMessage builds the templated message used when the generation
// service is unavailable, unconfigured or too slow. Wording is kept terse so
// the full message, signature included, stays inside the 280-char contract
// with the default settings; the pipeline clamp still guards exotic ones.
func fallbackMessage(in fallbackInput) string {
	var parts []string

	greeting := strings.TrimSpace(in.Addressee.Line)
	if !strings.HasSuffix(greeting, "?") && !strings.HasSuffix(greeting, ".") {
		greeting += "."
	}
	parts = append(parts, greeting)

	parts = append(parts, fmt.Sprintf(
		"Saldo vencido con %s: %s (%d dias).",
		in.Settings.SenderRole,
		ai.FormatAmountARS(in.Debtor.AmountARS),
		maxInt(0, in.Debtor.DaysOverdue),
	))
	parts = append(parts, "Pagas hoy o coordinamos fecha? / Pay today or set a date?")
	parts = append(parts, fmt.Sprintf(
		"Podes abonar por %s.",
		ai.PaymentInstruction(in.Settings.PaymentMethod, in.Settings.PaymentDetails),
	))
	if in.Addressee.Type == AddresseeEntity && !strings.Contains(strings.ToLower(greeting), "cuentas") {
		parts = append(parts, "Si no sos del area, pasanos con cuentas a pagar.")
	}
	if in.Tone == "ultimo" {
		parts = append(parts, "Para no frenar entregas, necesitamos resolverlo hoy.")
	}
	parts = append(parts, in.Settings.Signature)

	return strings.Join(parts, " ")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
