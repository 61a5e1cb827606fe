package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryDebtorScoping(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	d, err := m.InsertDebtor(ctx, Debtor{BusinessID: "b1", Name: "Carlos Gomez", Phone: "1155550001"})
	if err != nil {
		t.Fatal(err)
	}
	if d.ID == "" {
		t.Fatal("insert must assign an id")
	}

	if _, err := m.GetDebtor(ctx, "b1", d.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := m.GetDebtor(ctx, "b2", d.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-business read: err = %v, want ErrNotFound", err)
	}

	d.BusinessID = "b2"
	if _, err := m.UpdateDebtor(ctx, d); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-business update: err = %v, want ErrNotFound", err)
	}
}

func TestMemoryListDebtorsPrioritySort(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for _, d := range []Debtor{
		{ID: "low", BusinessID: "b1", PriorityScore: 10},
		{ID: "high", BusinessID: "b1", PriorityScore: 90},
		{ID: "mid", BusinessID: "b1", PriorityScore: 50},
		{ID: "foreign", BusinessID: "b2", PriorityScore: 99},
	} {
		if _, err := m.InsertDebtor(ctx, d); err != nil {
			t.Fatal(err)
		}
	}

	out, err := m.ListDebtors(ctx, "b1", "priority")
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 {
		t.Fatalf("len = %d, want 3", len(out))
	}
	for i, want := range []string{"high", "mid", "low"} {
		if out[i].ID != want {
			t.Errorf("position %d = %s, want %s", i, out[i].ID, want)
		}
	}
}

func TestMemoryListEventsOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		err := m.InsertEvent(ctx, DebtorEvent{
			DebtorID:  "d1",
			Type:      "sent",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	out, err := m.ListEvents(ctx, "d1", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 {
		t.Fatalf("len = %d, want 3", len(out))
	}
	for i := 1; i < len(out); i++ {
		if out[i].CreatedAt.After(out[i-1].CreatedAt) {
			t.Fatal("events not in newest-first order")
		}
	}
}

func TestMemoryCacheUpsert(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, hit, err := m.GetMessageCache(ctx, "d1", "amable"); err != nil || hit {
		t.Fatalf("empty cache: hit=%v err=%v", hit, err)
	}

	first := MessageCacheEntry{DebtorID: "d1", Tone: "amable", MessageText: "v1", Model: "gpt-4o-mini"}
	if err := m.UpsertMessageCache(ctx, first); err != nil {
		t.Fatal(err)
	}
	second := MessageCacheEntry{DebtorID: "d1", Tone: "amable", MessageText: "v2", Model: "local-fallback"}
	if err := m.UpsertMessageCache(ctx, second); err != nil {
		t.Fatal(err)
	}

	got, hit, err := m.GetMessageCache(ctx, "d1", "amable")
	if err != nil || !hit {
		t.Fatalf("hit=%v err=%v", hit, err)
	}
	if got.MessageText != "v2" || got.Model != "local-fallback" {
		t.Errorf("last write must win: %+v", got)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.Before(got.CreatedAt) {
		t.Errorf("timestamps inconsistent: %+v", got)
	}

	// Tones are independent entries.
	if _, hit, _ := m.GetMessageCache(ctx, "d1", "directo"); hit {
		t.Error("unexpected hit for other tone")
	}
}

func TestMemorySettingsDefaultsAndUpsert(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	got, err := m.GetBusinessSettings(ctx, "b1")
	if err != nil {
		t.Fatal(err)
	}
	if got.SenderName != "Tavo" || got.Pronoun != "vos" {
		t.Errorf("defaults = %+v", got)
	}

	name := "Marta"
	merged, err := m.UpsertBusinessSettings(ctx, "b1", SettingsPatch{SenderName: &name})
	if err != nil {
		t.Fatal(err)
	}
	if merged.SenderName != "Marta" {
		t.Errorf("merged = %+v", merged)
	}

	again, err := m.GetBusinessSettings(ctx, "b1")
	if err != nil {
		t.Fatal(err)
	}
	if again.SenderName != "Marta" {
		t.Errorf("persisted = %+v", again)
	}
}
