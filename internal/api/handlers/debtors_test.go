package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"cobrosmart/internal/ai"
	"cobrosmart/internal/collection"
	"cobrosmart/internal/config"
	"cobrosmart/internal/store"
)

func testConfig() *config.Config {
	return &config.Config{BusinessID: "b1"}
}

// stubCompleter stands in for the generation service in handler tests.
type stubCompleter struct {
	usable bool
	reply  string
}

func (s *stubCompleter) Usable() bool  { return s.usable }
func (s *stubCompleter) Model() string { return "gpt-4o-mini" }
func (s *stubCompleter) Complete(ctx context.Context, prompt string, opts ai.CompletionOptions) (string, error) {
	return s.reply, nil
}

func seedTestDebtor(t *testing.T, mem *store.Memory, d store.Debtor) store.Debtor {
	t.Helper()
	if d.BusinessID == "" {
		d.BusinessID = "b1"
	}
	inserted, err := mem.InsertDebtor(context.Background(), d)
	if err != nil {
		t.Fatal(err)
	}
	return inserted
}

func TestHandleListDebtors(t *testing.T) {
	mem := store.NewMemory()
	seedTestDebtor(t, mem, store.Debtor{ID: "low", Name: "Ana Diaz", PriorityScore: 10})
	seedTestDebtor(t, mem, store.Debtor{ID: "high", Name: "Carlos Gomez", PriorityScore: 90})

	req := httptest.NewRequest(http.MethodGet, "/debtors?sort=priority", nil)
	rr := httptest.NewRecorder()
	HandleListDebtors(testConfig(), mem).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp struct {
		Items []store.Debtor `json:"items"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Items) != 2 || resp.Items[0].ID != "high" {
		t.Errorf("items = %+v, want high first", resp.Items)
	}
}

func TestHandleListDebtorsEmpty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/debtors", nil)
	rr := httptest.NewRecorder()
	HandleListDebtors(testConfig(), store.NewMemory()).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	// Empty list must serialize as [], not null.
	var resp map[string]json.RawMessage
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if string(resp["items"]) != "[]" {
		t.Errorf("items = %s, want []", resp["items"])
	}
}

func TestHandleDebtorRoutesDispatch(t *testing.T) {
	mem := store.NewMemory()
	seedTestDebtor(t, mem, store.Debtor{ID: "d1", Name: "Carlos Gomez"})
	pipeline := collection.NewPipeline(mem, &stubCompleter{usable: false})
	handler := HandleDebtorRoutes(testConfig(), mem, pipeline)

	cases := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/debtors/d1/events", http.StatusOK},
		{http.MethodGet, "/debtors//events", http.StatusBadRequest},
		{http.MethodGet, "/debtors/d1", http.StatusBadRequest},
		{http.MethodGet, "/debtors/d1/unknown", http.StatusNotFound},
		{http.MethodGet, "/debtors/missing/events", http.StatusNotFound},
	}
	for _, c := range cases {
		req := httptest.NewRequest(c.method, c.path, nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != c.want {
			t.Errorf("%s %s: status = %d, want %d", c.method, c.path, rr.Code, c.want)
		}
	}
}

func TestHandleDebtorEvents(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	seedTestDebtor(t, mem, store.Debtor{ID: "d1", Name: "Carlos Gomez"})
	for i := 0; i < 30; i++ {
		if err := mem.InsertEvent(ctx, store.DebtorEvent{DebtorID: "d1", Type: "sent"}); err != nil {
			t.Fatal(err)
		}
	}
	pipeline := collection.NewPipeline(mem, &stubCompleter{usable: false})
	handler := HandleDebtorRoutes(testConfig(), mem, pipeline)

	req := httptest.NewRequest(http.MethodGet, "/debtors/d1/events", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	var resp struct {
		Items []store.DebtorEvent `json:"items"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Items) != 20 {
		t.Errorf("default limit returned %d events, want 20", len(resp.Items))
	}

	req = httptest.NewRequest(http.MethodGet, "/debtors/d1/events?limit=500", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Items) != 30 {
		t.Errorf("limit=500: got %d events, want all 30 (cap is 100)", len(resp.Items))
	}
}
