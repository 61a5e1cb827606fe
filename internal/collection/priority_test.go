package collection

import (
	"math"
	"strings"
	"testing"
)

func TestPriorityScoreBounds(t *testing.T) {
	cases := []struct {
		days   int
		amount int64
	}{
		{0, 0}, {1, 1}, {20, 9999}, {45, 100000}, {120, 250000}, {5000, 100000000}, {-10, -500},
	}
	for _, c := range cases {
		for _, h := range []HistorySummary{{}, {NoResponse: 10, Sent: 10}, {Promise: 5, Paid: 5}} {
			result := CalculatePriority(PriorityInput{DaysOverdue: c.days, AmountARS: c.amount}, h)
			if result.Score < 0 || result.Score > 100 {
				t.Errorf("score out of bounds for days=%d amount=%d: %d", c.days, c.amount, result.Score)
			}
		}
	}
}

func TestPriorityMonotonicInDays(t *testing.T) {
	history := HistorySummary{NoResponse: 1}
	prev := -1
	for days := 0; days <= 200; days += 5 {
		result := CalculatePriority(PriorityInput{DaysOverdue: days, AmountARS: 50000}, history)
		if result.Score < prev {
			t.Fatalf("score decreased at days=%d: %d < %d", days, result.Score, prev)
		}
		prev = result.Score
	}
}

func TestPriorityMonotonicInAmount(t *testing.T) {
	prev := -1
	for _, amount := range []int64{0, 1000, 10000, 50000, 100000, 250000, 1000000, 10000000} {
		result := CalculatePriority(PriorityInput{DaysOverdue: 30, AmountARS: amount}, HistorySummary{})
		if result.Score < prev {
			t.Fatalf("score decreased at amount=%d: %d < %d", amount, result.Score, prev)
		}
		prev = result.Score
	}
}

func TestSoftTreatment(t *testing.T) {
	vip := CalculatePriority(PriorityInput{DaysOverdue: 60, AmountARS: 300000, Note: "cliente VIP, obra grande"}, HistorySummary{})
	if !vip.SoftTreatment {
		t.Fatal("expected soft treatment for vip note")
	}
	if !strings.HasSuffix(vip.Reason, "VIP") {
		t.Errorf("expected VIP suffix, got %q", vip.Reason)
	}

	paid := CalculatePriority(PriorityInput{DaysOverdue: 60, AmountARS: 300000}, HistorySummary{Paid: 1})
	if !paid.SoftTreatment {
		t.Fatal("expected soft treatment after prior payment")
	}
	if !strings.HasSuffix(paid.Reason, "buen historial") {
		t.Errorf("expected buen historial suffix, got %q", paid.Reason)
	}

	plain := CalculatePriority(PriorityInput{DaysOverdue: 60, AmountARS: 300000, Note: "obra norte"}, HistorySummary{})
	if plain.SoftTreatment {
		t.Fatal("unexpected soft treatment")
	}

	// Soft treatment is worth exactly -10 before the final clamp.
	if got, want := plain.Score-vip.Score, 10; got != want {
		t.Errorf("vip adjustment = %d, want %d", got, want)
	}
}

func TestPriorityExactScenario(t *testing.T) {
	// days=60, amount=300000, history no_response=2.
	result := CalculatePriority(
		PriorityInput{DaysOverdue: 60, AmountARS: 300000},
		HistorySummary{NoResponse: 2},
	)

	daysScore := math.Log1p(60) / math.Log(121) * 58
	amountScore := (math.Log10(300000) - 4) / 2 * 24
	historyScore := 12.0
	want := int(math.Round(daysScore + amountScore + historyScore))

	if result.Score != want {
		t.Errorf("score = %d, want %d", result.Score, want)
	}
	if result.Score != 79 {
		t.Errorf("score = %d, want 79", result.Score)
	}
	if result.SoftTreatment {
		t.Error("unexpected soft treatment")
	}
	if result.Reason != "antiguedad alta | monto alto | ignoro 2 veces" {
		t.Errorf("unexpected reason: %q", result.Reason)
	}
}

func TestPriorityReasonBuckets(t *testing.T) {
	cases := []struct {
		days   int
		amount int64
		want   string
	}{
		{10, 50000, "antiguedad baja | sin historial"},
		{25, 120000, "antiguedad media | monto medio | sin historial"},
		{50, 260000, "antiguedad alta | monto alto | sin historial"},
	}
	for _, c := range cases {
		result := CalculatePriority(PriorityInput{DaysOverdue: c.days, AmountARS: c.amount}, HistorySummary{})
		if result.Reason != c.want {
			t.Errorf("days=%d amount=%d: reason = %q, want %q", c.days, c.amount, result.Reason, c.want)
		}
	}
}

func TestHistoryLabelPrecedence(t *testing.T) {
	h := HistorySummary{NoResponse: 3, Promise: 2, Paid: 1, Replied: 4}
	if got := historyLabel(h); got != "ignoro 3 veces" {
		t.Errorf("label = %q, want ignoro 3 veces", got)
	}
	if got := historyLabel(HistorySummary{Promise: 2, Paid: 1}); got != "prometio 2 veces" {
		t.Errorf("label = %q, want prometio 2 veces", got)
	}
	if got := historyLabel(HistorySummary{Paid: 1, Replied: 2}); got != "ya pago antes" {
		t.Errorf("label = %q, want ya pago antes", got)
	}
	if got := historyLabel(HistorySummary{Replied: 2}); got != "respondio 2 veces" {
		t.Errorf("label = %q, want respondio 2 veces", got)
	}
	if got := historyLabel(HistorySummary{}); got != "sin historial" {
		t.Errorf("label = %q, want sin historial", got)
	}
}
