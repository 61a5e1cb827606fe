package collection

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ImportRow is one raw row from a bulk import payload. Amounts and day
// counts arrive either as JSON numbers or as free-form strings.
type ImportRow struct {
	ClienteNombre string `json:"cliente_nombre"`
	Telefono      any    `json:"telefono"`
	Monto         any    `json:"monto"`
	DiasVencido   any    `json:"dias_vencido"`
	Obra          any    `json:"obra"`
}

type NormalizedRow struct {
	Name        string
	Phone       string
	AmountARS   int64
	DaysOverdue int
	Note        string
}

var (
	phoneSeparators = regexp.MustCompile(`[\s\-()]`)
	phoneNonDigits  = regexp.MustCompile(`[^\d+]`)
	phoneCore       = regexp.MustCompile(`^\d{8,15}$`)
	amountNoise     = regexp.MustCompile(`[^\d,.\-]`)
)

// NormalizeImportRow validates one raw row. The returned error carries the
// client-facing per-row message.
func NormalizeImportRow(row ImportRow) (NormalizedRow, error) {
	name := strings.TrimSpace(row.ClienteNombre)
	if name == "" {
		return NormalizedRow{}, errors.New("cliente_nombre es obligatorio")
	}

	phone := NormalizePhone(row.Telefono)
	if phone == "" {
		return NormalizedRow{}, errors.New("telefono invalido")
	}

	amount := ParseAmountARS(row.Monto)
	if amount <= 0 {
		return NormalizedRow{}, errors.New("monto debe ser mayor a 0")
	}

	days, ok := ParseDaysOverdue(row.DiasVencido)
	if !ok {
		return NormalizedRow{}, errors.New("dias_vencido debe ser >= 0")
	}

	note := ""
	if s, ok := row.Obra.(string); ok {
		note = strings.TrimSpace(s)
	}

	return NormalizedRow{
		Name:        name,
		Phone:       phone,
		AmountARS:   amount,
		DaysOverdue: days,
		Note:        note,
	}, nil
}

// NormalizePhone accepts 8-15 digit phone numbers with an optional leading
// "+", tolerating spaces, dashes and parentheses. Returns "" when invalid.
func NormalizePhone(raw any) string {
	s, ok := raw.(string)
	if !ok {
		return ""
	}
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ""
	}

	compact := phoneSeparators.ReplaceAllString(trimmed, "")
	plusCount := strings.Count(compact, "+")
	if plusCount > 1 || (plusCount == 1 && !strings.HasPrefix(compact, "+")) {
		return ""
	}

	normalized := phoneNonDigits.ReplaceAllString(compact, "")
	core := strings.TrimPrefix(normalized, "+")
	if !phoneCore.MatchString(core) {
		return ""
	}

	if strings.HasPrefix(normalized, "+") {
		return "+" + core
	}
	return core
}

// ParseAmountARS parses a positive amount from a number or a locale-tolerant
// string ("12.500", "12500,50"). Returns 0 when invalid.
func ParseAmountARS(raw any) int64 {
	switch v := raw.(type) {
	case float64:
		return positiveRound(v)
	case int:
		return positiveRound(float64(v))
	case int64:
		return positiveRound(float64(v))
	case string:
		cleaned := strings.TrimSpace(amountNoise.ReplaceAllString(v, ""))
		if cleaned == "" {
			return 0
		}
		hasComma := strings.Contains(cleaned, ",")
		hasDot := strings.Contains(cleaned, ".")
		switch {
		case hasComma && hasDot:
			// "12.500,50": dots group thousands, the comma is the decimal.
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		case hasComma:
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		case hasDot:
			// Three digits after the last dot means thousands grouping.
			if idx := strings.LastIndex(cleaned, "."); len(cleaned)-idx-1 == 3 {
				cleaned = strings.ReplaceAll(cleaned, ".", "")
			}
		}
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0
		}
		return positiveRound(parsed)
	default:
		return 0
	}
}

func positiveRound(v float64) int64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	rounded := int64(math.Round(v))
	if rounded <= 0 {
		return 0
	}
	return rounded
}

// ParseDaysOverdue parses a non-negative integer day count from a number or
// a numeric string.
func ParseDaysOverdue(raw any) (int, bool) {
	switch v := raw.(type) {
	case float64:
		n := int(math.Floor(v))
		return n, n >= 0
	case int:
		return v, v >= 0
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		n := int(math.Floor(parsed))
		return n, n >= 0
	default:
		return 0, false
	}
}
