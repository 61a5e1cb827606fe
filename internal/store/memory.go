package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-memory Datastore used by tests. Semantics mirror the
// postgres implementation: business scoping, last-writer-wins cache upsert,
// defaults for missing settings.
type Memory struct {
	mu       sync.Mutex
	debtors  map[string]Debtor
	events   []DebtorEvent
	cache    map[string]MessageCacheEntry
	settings map[string]BusinessSettings

	// FailCacheRead and FailCacheWrite force datastore errors, for testing
	// the fatal-persistence-error path.
	FailCacheRead  error
	FailCacheWrite error
}

var _ Datastore = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		debtors:  make(map[string]Debtor),
		cache:    make(map[string]MessageCacheEntry),
		settings: make(map[string]BusinessSettings),
	}
}

func cacheKey(debtorID, tone string) string {
	return debtorID + "|" + tone
}

func (m *Memory) GetDebtor(_ context.Context, businessID, debtorID string) (Debtor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.debtors[debtorID]
	if !ok || d.BusinessID != businessID {
		return Debtor{}, ErrNotFound
	}
	return d, nil
}

func (m *Memory) ListDebtors(_ context.Context, businessID, sortBy string) ([]Debtor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Debtor
	for _, d := range m.debtors {
		if d.BusinessID == businessID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if sortBy == "priority" {
			return out[i].PriorityScore > out[j].PriorityScore
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) FindDebtorsByPhones(_ context.Context, businessID string, phones []string) ([]Debtor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[string]bool, len(phones))
	for _, p := range phones {
		want[p] = true
	}
	var out []Debtor
	for _, d := range m.debtors {
		if d.BusinessID == businessID && want[d.Phone] {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *Memory) InsertDebtor(_ context.Context, d Debtor) (Debtor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
	m.debtors[d.ID] = d
	return d, nil
}

func (m *Memory) UpdateDebtor(_ context.Context, d Debtor) (Debtor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.debtors[d.ID]
	if !ok || existing.BusinessID != d.BusinessID {
		return Debtor{}, ErrNotFound
	}
	d.CreatedAt = existing.CreatedAt
	d.UpdatedAt = time.Now().UTC()
	m.debtors[d.ID] = d
	return d, nil
}

func (m *Memory) InsertEvent(_ context.Context, ev DebtorEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	m.events = append(m.events, ev)
	return nil
}

func (m *Memory) ListEvents(_ context.Context, debtorID string, limit int) ([]DebtorEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []DebtorEvent
	for _, ev := range m.events {
		if ev.DebtorID == debtorID {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) ListEventsByDebtorIDs(_ context.Context, debtorIDs []string) ([]DebtorEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[string]bool, len(debtorIDs))
	for _, id := range debtorIDs {
		want[id] = true
	}
	var out []DebtorEvent
	for _, ev := range m.events {
		if want[ev.DebtorID] {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *Memory) GetMessageCache(_ context.Context, debtorID, tone string) (MessageCacheEntry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailCacheRead != nil {
		return MessageCacheEntry{}, false, m.FailCacheRead
	}
	e, ok := m.cache[cacheKey(debtorID, tone)]
	return e, ok, nil
}

func (m *Memory) UpsertMessageCache(_ context.Context, e MessageCacheEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailCacheWrite != nil {
		return m.FailCacheWrite
	}
	now := time.Now().UTC()
	key := cacheKey(e.DebtorID, e.Tone)
	if prev, ok := m.cache[key]; ok {
		e.CreatedAt = prev.CreatedAt
	} else {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	m.cache[key] = e
	return nil
}

func (m *Memory) GetBusinessSettings(_ context.Context, businessID string) (BusinessSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.settings[businessID]; ok {
		return s, nil
	}
	return DefaultBusinessSettings(businessID), nil
}

func (m *Memory) UpsertBusinessSettings(ctx context.Context, businessID string, patch SettingsPatch) (BusinessSettings, error) {
	current, err := m.GetBusinessSettings(ctx, businessID)
	if err != nil {
		return BusinessSettings{}, err
	}
	merged := MergeSettings(current, patch)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[businessID] = merged
	return merged, nil
}
