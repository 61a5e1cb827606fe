package collection

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"cobrosmart/internal/ai"
	"cobrosmart/internal/store"
)

type AddresseeType string

const (
	AddresseePerson AddresseeType = "person"
	AddresseeEntity AddresseeType = "entity"

	addresseeUnknown AddresseeType = "unknown"
)

// AddresseeResult is a tagged classification: the source of the decision is
// observable so the conservative-default policy can be tested.
type AddresseeResult struct {
	Type   AddresseeType `json:"addressee_type"`
	Line   string        `json:"addressee_line"`
	Source string        `json:"source"` // "heuristic" or "llm"
}

// Completer is the slice of the generation client the classifier and the
// pipeline use.
type Completer interface {
	Usable() bool
	Model() string
	Complete(ctx context.Context, prompt string, opts ai.CompletionOptions) (string, error)
}

var entityKeywords = []string{
	"coop", "cooperativa", "sa", "srl", "s.a.", "s.r.l.",
	"constructora", "municipalidad", "taller", "ferreteria",
	"inmobiliaria", "servicios", "obras", "transporte", "estudio",
}

var (
	doubtMarkers    = regexp.MustCompile(`["'()/]|[A-Z]{2}|[.&]`)
	personToken     = regexp.MustCompile(`^[A-Za-zÁÉÍÓÚÑáéíóúñ]+$`)
	firstNameFilter = regexp.MustCompile(`[^\p{L}\-]`)
)

func heuristicType(name string) AddresseeType {
	normalized := strings.ToLower(name)
	for _, kw := range entityKeywords {
		if strings.Contains(normalized, kw) {
			return AddresseeEntity
		}
	}

	if doubtMarkers.MatchString(name) {
		return addresseeUnknown
	}

	if isPersonLike(name) {
		return AddresseePerson
	}
	return addresseeUnknown
}

func isPersonLike(name string) bool {
	parts := strings.Fields(name)
	if len(parts) < 2 || len(parts) > 3 {
		return false
	}
	for _, p := range parts {
		if !personToken.MatchString(p) {
			return false
		}
	}
	return true
}

func firstName(name string) string {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "che"
	}
	cleaned := firstNameFilter.ReplaceAllString(parts[0], "")
	if cleaned == "" {
		return "che"
	}
	return cleaned
}

func greetingLine(t AddresseeType, name string, settings store.BusinessSettings) string {
	greeting := settings.GreetingStyle
	if greeting == "" {
		greeting = "Hola"
	}
	if t == AddresseePerson {
		return fmt.Sprintf("%s %s", greeting, firstName(name))
	}

	rule := strings.ToLower(settings.EntityGreetingRule)
	if strings.Contains(rule, "admin") || strings.Contains(rule, "cuentas") {
		return fmt.Sprintf("%s, con administracion o cuentas a pagar?", greeting)
	}
	return fmt.Sprintf("%s, como estan? Les escribo de %s.", greeting, settings.SenderRole)
}

// ClassifyAddressee decides person vs entity for a debtor name: a fast
// heuristic first, the generation service only for ambiguous names. When the
// service is unusable or fails, the conservative default is entity, marked
// heuristic-sourced.
func ClassifyAddressee(ctx context.Context, llm Completer, name string, settings store.BusinessSettings) AddresseeResult {
	if t := heuristicType(name); t != addresseeUnknown {
		return AddresseeResult{Type: t, Line: greetingLine(t, name, settings), Source: "heuristic"}
	}

	if llm == nil || !llm.Usable() {
		return AddresseeResult{Type: AddresseeEntity, Line: greetingLine(AddresseeEntity, name, settings), Source: "heuristic"}
	}

	answer, err := llm.Complete(ctx, ai.BuildClassifyPrompt(name), ai.CompletionOptions{
		Temperature: 0,
		TopP:        1,
		MaxTokens:   5,
	})
	if err != nil {
		return AddresseeResult{Type: AddresseeEntity, Line: greetingLine(AddresseeEntity, name, settings), Source: "heuristic"}
	}

	t := AddresseePerson
	if strings.Contains(strings.ToLower(answer), "entity") {
		t = AddresseeEntity
	}
	return AddresseeResult{Type: t, Line: greetingLine(t, name, settings), Source: "llm"}
}
