package ai

import (
	"fmt"
	"strings"
)

// MessagePromptParams carries everything the generation instruction embeds.
// Values arrive pre-rendered (greeting line, payment line, formatted amount
// inputs) so the builder stays plain string assembly.
type MessagePromptParams struct {
	VariationID string

	SenderName string
	SenderRole string
	Signature  string

	GreetingLine    string
	EntityAddressee bool

	DebtorName  string
	AmountARS   int64
	DaysOverdue int
	Note        string

	Tone    string
	Pronoun string

	Sent       int
	NoResponse int
	Promise    int
	Paid       int
	Replied    int

	SoftTreatment bool

	PaymentLine        string
	EntityGreetingRule string
	StyleNotes         string
	LastMessage        string
}

// BuildMessagePrompt renders the full generation instruction for one debtor
// message. Deterministic except for the caller-supplied variation id.
func BuildMessagePrompt(p MessagePromptParams) string {
	softLine := "Mantene firmeza profesional sin amenazas."
	if p.SoftTreatment {
		softLine = "Cliente sensible (VIP o pago previo): usa tono conciliador y evita dureza."
	}

	ultimoLine := "No menciones cortes ni bloqueo."
	if p.Tone == "ultimo" {
		ultimoLine = `Inclui consecuencia suave: "para no cortar la cuenta corriente o seguir entregando". Sin amenazas legales.`
	}

	entityLine := "Saluda por el nombre de pila."
	if p.EntityAddressee {
		entityLine = "Es una entidad: no saludes por nombre de pila y pedi con el area correcta (administracion o cuentas a pagar)."
	}

	var b strings.Builder
	fmt.Fprintf(&b, `Genera UN mensaje de WhatsApp en espanol rioplatense, humano y claro.
Maximo 280 caracteres (ideal 180-220). Sin amenazas legales.
Variacion %s: usa una redaccion distinta a intentos anteriores.

Contexto fijo:
- Negocio: %s (%s)
- Cliente: %s
- Saludo sugerido: %s
- Monto pendiente: %s
- Dias vencido: %d
- Tono solicitado: %s
- Trato: %s
- Historial: sent=%d, no_response=%d, promise=%d, paid=%d, replied=%d
- Medio de pago: %s

Requisitos obligatorios:
1) Saludo corto y natural basado en el saludo sugerido.
2) Contexto de cuenta pendiente del negocio.
3) Incluir monto.
4) CTA con estas dos opciones: "pagas hoy" o "coordinamos fecha".
5) %s
6) %s
7) %s
8) Menciona el medio de pago de forma natural.
9) Cerra con la firma: %s`,
		p.VariationID,
		p.SenderName, p.SenderRole,
		p.DebtorName,
		p.GreetingLine,
		FormatAmountARS(p.AmountARS),
		p.DaysOverdue,
		p.Tone,
		p.Pronoun,
		p.Sent, p.NoResponse, p.Promise, p.Paid, p.Replied,
		p.PaymentLine,
		ultimoLine,
		softLine,
		entityLine,
		p.Signature,
	)

	if strings.TrimSpace(p.Note) != "" {
		fmt.Fprintf(&b, "\n\nNota interna sobre el cliente: %s", strings.TrimSpace(p.Note))
	}
	if strings.TrimSpace(p.EntityGreetingRule) != "" {
		fmt.Fprintf(&b, "\nRegla para entidades: %s", strings.TrimSpace(p.EntityGreetingRule))
	}
	if strings.TrimSpace(p.StyleNotes) != "" {
		fmt.Fprintf(&b, "\nNotas de estilo: %s", strings.TrimSpace(p.StyleNotes))
	}
	if strings.TrimSpace(p.LastMessage) != "" {
		fmt.Fprintf(&b, "\nUltimo mensaje ya enviado (no repitas su redaccion): %q", strings.TrimSpace(p.LastMessage))
	}

	b.WriteString("\n\nDevuelve solo el texto final del mensaje, sin comillas ni explicaciones.")
	return b.String()
}

// BuildClassifyPrompt asks the service to decide person vs entity for a name.
// Used at temperature 0; the answer is matched on the substring "entity".
func BuildClassifyPrompt(name string) string {
	return fmt.Sprintf(`Clasifica si el destinatario es persona o entidad.
Nombre: %q
Responde SOLO una palabra: person o entity.`, name)
}

// PaymentInstruction renders the configured payment method as a natural
// language line for prompts and fallback messages.
func PaymentInstruction(method, details string) string {
	details = strings.TrimSpace(details)
	switch method {
	case "cbu":
		if details == "" {
			return "transferencia por CBU"
		}
		return "transferencia al CBU " + details
	case "mp":
		if details == "" {
			return "Mercado Pago"
		}
		return "Mercado Pago al alias " + details
	case "custom":
		if details == "" {
			return "el medio de pago de siempre"
		}
		return details
	default: // alias
		if details == "" {
			return "transferencia por alias"
		}
		return "transferencia al alias " + details
	}
}

// FormatAmountARS renders a minor-unit-free peso amount with es-AR thousand
// separators, e.g. 300000 -> "$300.000".
func FormatAmountARS(amount int64) string {
	if amount < 0 {
		amount = 0
	}
	digits := fmt.Sprintf("%d", amount)
	var b strings.Builder
	b.WriteByte('$')
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
		if len(digits) > lead {
			b.WriteByte('.')
		}
	}
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			b.WriteByte('.')
		}
	}
	return b.String()
}
