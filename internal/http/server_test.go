package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"expensetracker/internal/core"
	"expensetracker/internal/services"
	"expensetracker/internal/storage"
)

type fakeStore struct {
	expenses []core.Expense
	nextID   int64
}

func newFakeStore() *fakeStore { return &fakeStore{nextID: 1} }

func (f *fakeStore) Insert(ctx context.Context, e core.Expense) (int64, error) {
	e.ID = f.nextID
	f.nextID++
	f.expenses = append(f.expenses, e)
	return e.ID, nil
}

func (f *fakeStore) Delete(ctx context.Context, id int64) error {
	for i, e := range f.expenses {
		if e.ID == id {
			f.expenses = append(f.expenses[:i], f.expenses[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeStore) Get(ctx context.Context, id int64) (core.Expense, error) {
	for _, e := range f.expenses {
		if e.ID == id {
			return e, nil
		}
	}
	return core.Expense{}, storage.ErrNotFound
}

func (f *fakeStore) ListAll(ctx context.Context) ([]core.Expense, error) {
	out := make([]core.Expense, len(f.expenses))
	copy(out, f.expenses)
	return out, nil
}

func (f *fakeStore) SumAmount(ctx context.Context) (core.Money, error) {
	var total int64
	for _, e := range f.expenses {
		total += e.Amount.Cents
	}
	return core.Money{Cents: total}, nil
}

func (f *fakeStore) Close() error { return nil }

func newTestServer(store *fakeStore) *Server {
	dispatcher := services.NewDispatcher(services.NewExpenseService(store, nil))
	return NewServer(":0", store, dispatcher, "₹")
}

func postForm(t *testing.T, srv *Server, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestIndexAndHealth(t *testing.T) {
	srv := newTestServer(newFakeStore())

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("index status=%d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"Expense Tracker", "Add Expense", "Food", "Others", "Total: ₹0.00"} {
		if !strings.Contains(body, want) {
			t.Fatalf("index body missing %q", want)
		}
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestCreateExpenseValidation(t *testing.T) {
	store := newFakeStore()
	srv := newTestServer(store)

	cases := []struct {
		name       string
		form       url.Values
		wantNotice string
	}{
		{
			name: "missing amount",
			form: url.Values{
				"date": {"2024-01-05"}, "category": {"Food"},
				"amount": {""}, "description": {"Lunch"},
			},
			wantNotice: "Please enter an amount.",
		},
		{
			name: "missing description",
			form: url.Values{
				"date": {"2024-01-05"}, "category": {"Food"},
				"amount": {"12.34"}, "description": {"  "},
			},
			wantNotice: "Please enter a description.",
		},
		{
			name: "non-numeric amount",
			form: url.Values{
				"date": {"2024-01-05"}, "category": {"Food"},
				"amount": {"abc"}, "description": {"Lunch"},
			},
			wantNotice: "Amount must be a positive number.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := postForm(t, srv, "/expenses", tc.form)
			if rr.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status=%d, want 422", rr.Code)
			}
			if !strings.Contains(rr.Body.String(), tc.wantNotice) {
				t.Fatalf("body %q missing %q", rr.Body.String(), tc.wantNotice)
			}
			if !strings.Contains(rr.Header().Get("HX-Trigger"), "form:focus") {
				t.Fatalf("missing focus trigger: %q", rr.Header().Get("HX-Trigger"))
			}
		})
	}

	if len(store.expenses) != 0 {
		t.Fatalf("rejected submissions created records: %+v", store.expenses)
	}
}

func TestCreateExpenseSuccess(t *testing.T) {
	store := newFakeStore()
	srv := newTestServer(store)

	rr := postForm(t, srv, "/expenses", url.Values{
		"date":        {"2024-01-05"},
		"category":    {"Food"},
		"amount":      {"250.00"},
		"description": {"Lunch"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}

	trigger := rr.Header().Get("HX-Trigger")
	for _, want := range []string{"expenses:changed", "form:reset"} {
		if !strings.Contains(trigger, want) {
			t.Fatalf("HX-Trigger %q missing %q", trigger, want)
		}
	}

	if len(store.expenses) != 1 {
		t.Fatalf("expected one stored expense, got %d", len(store.expenses))
	}
	e := store.expenses[0]
	if e.Amount.Cents != 25000 || e.Description != "Lunch" || e.Category != core.Food {
		t.Fatalf("unexpected stored expense: %+v", e)
	}
}

func TestDeleteExpense(t *testing.T) {
	store := newFakeStore()
	srv := newTestServer(store)

	// Seed one expense through the create handler.
	postForm(t, srv, "/expenses", url.Values{
		"date":        {"2024-01-05"},
		"category":    {"Bills"},
		"amount":      {"1000"},
		"description": {"Rent"},
	})

	// Missing selection.
	rr := postForm(t, srv, "/expenses/delete", url.Values{})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("no-selection status=%d, want 422", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Please select an expense to delete.") {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}
	if len(store.expenses) != 1 {
		t.Fatal("no-selection delete must not mutate")
	}

	// Confirmed delete.
	rr = postForm(t, srv, "/expenses/delete", url.Values{"id": {"1"}})
	if rr.Code != http.StatusOK {
		t.Fatalf("delete status=%d body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), "expenses:changed") {
		t.Fatalf("delete must trigger refresh: %q", rr.Header().Get("HX-Trigger"))
	}
	if len(store.expenses) != 0 {
		t.Fatalf("expense not removed: %+v", store.expenses)
	}

	// Deleting an id that no longer exists is a no-op, not an error.
	rr = postForm(t, srv, "/expenses/delete", url.Values{"id": {"1"}})
	if rr.Code != http.StatusOK {
		t.Fatalf("repeat delete status=%d", rr.Code)
	}
}

func TestExpenseTablePartial(t *testing.T) {
	store := newFakeStore()
	srv := newTestServer(store)

	for _, form := range []url.Values{
		{"date": {"2024-01-05"}, "category": {"Food"}, "amount": {"250.00"}, "description": {"Lunch"}},
		{"date": {"2024-01-01"}, "category": {"Bills"}, "amount": {"1000.00"}, "description": {"Rent"}},
	} {
		if rr := postForm(t, srv, "/expenses", form); rr.Code != http.StatusOK {
			t.Fatalf("seed failed: %d %s", rr.Code, rr.Body.String())
		}
	}

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ui/expenses", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("partial status=%d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"Lunch", "Rent", "₹250.00", "₹1,000.00", "Total: ₹1,250.00"} {
		if !strings.Contains(body, want) {
			t.Fatalf("partial missing %q in %s", want, body)
		}
	}
}

func TestResetForm(t *testing.T) {
	srv := newTestServer(newFakeStore())

	rr := postForm(t, srv, "/form/reset", url.Values{})
	if rr.Code != http.StatusOK {
		t.Fatalf("reset status=%d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), "form:reset") {
		t.Fatalf("missing form:reset trigger: %q", rr.Header().Get("HX-Trigger"))
	}
}
