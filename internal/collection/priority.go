package collection

import (
	"fmt"
	"math"
	"strings"
)

// PriorityInput are the debtor facts the scorer looks at. Negative values
// are clamped to zero.
type PriorityInput struct {
	DaysOverdue int
	AmountARS   int64
	Note        string
}

// PriorityResult is recomputed on demand; the debtor row only carries it as a
// denormalized snapshot for listing and sorting.
type PriorityResult struct {
	Score         int    `json:"priority_score"`
	Reason        string `json:"priority_reason"`
	SoftTreatment bool   `json:"soft_treatment"`
}

func clampF(v, min, max float64) float64 {
	return math.Max(min, math.Min(max, v))
}

func isVIP(note string) bool {
	return strings.Contains(strings.ToLower(note), "vip")
}

// CalculatePriority maps debtor facts plus history counters to a bounded
// collection-priority score and a human-readable reason. Total function; no
// error conditions.
func CalculatePriority(in PriorityInput, history HistorySummary) PriorityResult {
	days := float64(in.DaysOverdue)
	if days < 0 {
		days = 0
	}
	amount := float64(in.AmountARS)
	if amount < 0 {
		amount = 0
	}

	vip := isVIP(in.Note)
	soft := vip || history.Paid > 0

	// Logarithmic growth: very old debts saturate near the 58-point ceiling
	// around 120 days instead of dominating linearly.
	daysScore := clampF(math.Log1p(days)/math.Log(121)*58, 0, 58)

	// Amounts below ~10k contribute nothing; the next two orders of
	// magnitude add up to 24 points.
	amountScore := clampF((math.Log10(math.Max(1, amount))-4)/2*24, 0, 24)

	historyScore := clampF(
		float64(history.NoResponse*6+history.Sent*1-history.Promise*4-history.Paid*8),
		-20, 28)

	reputationAdjustment := 0.0
	if soft {
		reputationAdjustment = -10
	}

	score := int(clampF(math.Round(daysScore+amountScore+historyScore+reputationAdjustment), 0, 100))

	return PriorityResult{
		Score:         score,
		Reason:        priorityReason(in, history, vip, soft),
		SoftTreatment: soft,
	}
}

func priorityReason(in PriorityInput, history HistorySummary, vip, soft bool) string {
	var parts []string

	switch {
	case in.DaysOverdue >= 45:
		parts = append(parts, "antiguedad alta")
	case in.DaysOverdue >= 20:
		parts = append(parts, "antiguedad media")
	default:
		parts = append(parts, "antiguedad baja")
	}

	if in.AmountARS >= 250000 {
		parts = append(parts, "monto alto")
	} else if in.AmountARS >= 100000 {
		parts = append(parts, "monto medio")
	}

	parts = append(parts, historyLabel(history))

	if soft {
		if vip {
			parts = append(parts, "VIP")
		} else {
			parts = append(parts, "buen historial")
		}
	}

	return strings.Join(parts, " | ")
}

func historyLabel(h HistorySummary) string {
	switch {
	case h.NoResponse > 0:
		return fmt.Sprintf("ignoro %d veces", h.NoResponse)
	case h.Promise > 0:
		return fmt.Sprintf("prometio %d veces", h.Promise)
	case h.Paid > 0:
		return "ya pago antes"
	case h.Replied > 0:
		return fmt.Sprintf("respondio %d veces", h.Replied)
	default:
		return "sin historial"
	}
}
