package collection

import (
	"context"
	"testing"

	"cobrosmart/internal/store"
)

func TestHistoryByDebtorIDs(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()

	events := []string{"sent", "sent", "no_response", "promise", "paid", "replied", "call_scheduled"}
	for _, typ := range events {
		if err := mem.InsertEvent(ctx, store.DebtorEvent{DebtorID: "a", Type: typ}); err != nil {
			t.Fatal(err)
		}
	}
	if err := mem.InsertEvent(ctx, store.DebtorEvent{DebtorID: "other", Type: "sent"}); err != nil {
		t.Fatal(err)
	}

	got, err := HistoryByDebtorIDs(ctx, mem, []string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}

	want := HistorySummary{Sent: 2, NoResponse: 1, Promise: 1, Paid: 1, Replied: 1}
	if got["a"] != want {
		t.Errorf("summary for a = %+v, want %+v", got["a"], want)
	}

	// Requested ids with no events are present, zero-valued.
	if got["b"] != (HistorySummary{}) {
		t.Errorf("summary for b = %+v, want zero value", got["b"])
	}
}

func TestHistoryByDebtorIDsEmpty(t *testing.T) {
	got, err := HistoryByDebtorIDs(context.Background(), store.NewMemory(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty map, got %d entries", len(got))
	}
}

func TestRecalculatePriority(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	debtor := store.Debtor{ID: "d1", BusinessID: "b1", Name: "Carlos Gomez", AmountARS: 300000, DaysOverdue: 60}

	for i := 0; i < 2; i++ {
		if err := mem.InsertEvent(ctx, store.DebtorEvent{DebtorID: "d1", Type: "no_response"}); err != nil {
			t.Fatal(err)
		}
	}

	result, err := RecalculatePriority(ctx, mem, debtor)
	if err != nil {
		t.Fatal(err)
	}
	if result.Score != 79 {
		t.Errorf("score = %d, want 79", result.Score)
	}
}
