package collection

import (
	"context"

	"cobrosmart/internal/store"
)

// HistorySummary holds the per-debtor behavioral counters derived from the
// append-only event log. Counters are always recomputed from the log, never
// stored incrementally.
type HistorySummary struct {
	Sent       int `json:"sent"`
	NoResponse int `json:"no_response"`
	Promise    int `json:"promise"`
	Paid       int `json:"paid"`
	Replied    int `json:"replied"`
}

func (h *HistorySummary) apply(eventType string) {
	switch eventType {
	case "sent":
		h.Sent++
	case "no_response":
		h.NoResponse++
	case "promise":
		h.Promise++
	case "paid":
		h.Paid++
	case "replied":
		h.Replied++
	default:
		// Unknown event types are ignored for forward compatibility.
	}
}

// EventLister is the slice of the datastore the aggregator needs.
type EventLister interface {
	ListEventsByDebtorIDs(ctx context.Context, debtorIDs []string) ([]store.DebtorEvent, error)
}

// HistoryByDebtorIDs folds the event log into counters. Every requested id is
// present in the result, zero-initialized, so callers never distinguish
// "missing" from "no events".
func HistoryByDebtorIDs(ctx context.Context, events EventLister, debtorIDs []string) (map[string]HistorySummary, error) {
	out := make(map[string]HistorySummary, len(debtorIDs))
	for _, id := range debtorIDs {
		out[id] = HistorySummary{}
	}
	if len(debtorIDs) == 0 {
		return out, nil
	}

	rows, err := events.ListEventsByDebtorIDs(ctx, debtorIDs)
	if err != nil {
		return nil, err
	}
	for _, ev := range rows {
		summary, ok := out[ev.DebtorID]
		if !ok {
			continue
		}
		summary.apply(ev.Type)
		out[ev.DebtorID] = summary
	}
	return out, nil
}

// HistoryByDebtorID is the single-debtor convenience form.
func HistoryByDebtorID(ctx context.Context, events EventLister, debtorID string) (HistorySummary, error) {
	all, err := HistoryByDebtorIDs(ctx, events, []string{debtorID})
	if err != nil {
		return HistorySummary{}, err
	}
	return all[debtorID], nil
}

// RecalculatePriority recomputes the debtor's priority snapshot from the
// event log. Every write path goes through this; the snapshot is never
// patched incrementally.
func RecalculatePriority(ctx context.Context, events EventLister, debtor store.Debtor) (PriorityResult, error) {
	history, err := HistoryByDebtorID(ctx, events, debtor.ID)
	if err != nil {
		return PriorityResult{}, err
	}
	return CalculatePriority(PriorityInput{
		DaysOverdue: debtor.DaysOverdue,
		AmountARS:   debtor.AmountARS,
		Note:        debtor.Note,
	}, history), nil
}
