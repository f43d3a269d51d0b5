package supabase

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/infra/resilience"

	"go.uber.org/zap"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.Client(), srv.URL, "anon", "service", resilience.NewCircuitBreaker("test"),
		resilience.Config{MaxRetries: 1, InitialBackoff: time.Millisecond}, nil, zap.NewNop())
}

func TestListDebts_DecodesStorageShape(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/debts" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("mode"); got != "eq.PJ" {
			t.Errorf("expected mode filter, got %q", got)
		}
		if r.Header.Get("Authorization") != "Bearer service" {
			t.Errorf("missing service key")
		}
		w.Write([]byte(`[{"id":"d1","user_id":"u1","name":"Card","balance":1234.56,"interest_rate":2.5,"minimum_payment":null,"status":"LATE","mode":"PJ"}]`))
	})

	debts, err := c.ListDebts(context.Background(), "u1", domain.ViewPJ)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(debts) != 1 {
		t.Fatalf("expected 1 debt, got %d", len(debts))
	}
	d := debts[0]
	if d.Balance != 123456 || d.MinimumPayment != 0 || d.Ledger != domain.LedgerPJ || d.Status != domain.DebtLate {
		t.Errorf("unexpected debt %+v", d)
	}
}

func TestListTransactions_ConsolidatedHasNoLedgerFilter(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Has("mode") {
			t.Errorf("consolidated view must not filter by mode")
		}
		if q.Get("date") == "" {
			t.Errorf("expected date filter")
		}
		w.Write([]byte(`[{"id":"t1","user_id":"u1","description":"x","amount":"10.5","type":"EXPENSE","status":"PAID","date":"2024-03-01","mode":"PF","import_batch_id":"b1"}]`))
	})

	txs, err := c.ListTransactions(context.Background(), domain.TransactionFilter{
		UserID: "u1",
		View:   domain.ViewConsolidated,
		From:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txs) != 1 || txs[0].Amount != 1050 || txs[0].ImportBatchID != "b1" {
		t.Fatalf("unexpected transactions %+v", txs)
	}
	if !txs[0].Date.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected date %s", txs[0].Date)
	}
}

func TestGetBatch_NotFoundIsNotRetried(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`[]`))
	})

	_, err := c.GetBatch(context.Background(), "u1", "missing")
	var nf *domain.ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected a single call, got %d", calls)
	}
}

func TestCreateRule_ConflictMapped(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"duplicate key"}`))
	})

	err := c.CreateRule(context.Background(), &domain.CategorizationRule{ID: "r1"})
	var conflict *domain.ErrConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestServerError_RetriedThenExternal(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.ListRules(context.Background(), "u1", domain.ViewPF)
	var ext *domain.ErrExternalService
	if !errors.As(err, &ext) {
		t.Fatalf("expected ErrExternalService, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
}

func TestDeleteTransactionsByBatch_CountsDeleted(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("expected DELETE, got %s", r.Method)
		}
		if r.URL.Query().Get("import_batch_id") != "eq.b1" {
			t.Errorf("expected batch filter")
		}
		w.Write([]byte(`[{"id":"t1","amount":1},{"id":"t2","amount":2}]`))
	})

	n, err := c.DeleteTransactionsByBatch(context.Background(), "u1", "b1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 deleted, got %d", n)
	}
}

func TestCreateRows_SendsBulkPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if !strings.HasPrefix(string(body), "[") || strings.Count(string(body), `"batch_id":"b1"`) != 2 {
			t.Errorf("unexpected payload %s", body)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write(body)
	})

	err := c.CreateRows(context.Background(), []domain.ImportRow{
		{ID: "r1", BatchID: "b1", Amount: 100, Direction: domain.DirectionIn},
		{ID: "r2", BatchID: "b1", Amount: 200, Direction: domain.DirectionOut},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/token" || r.URL.Query().Get("grant_type") != "password" {
			t.Errorf("unexpected request %s", r.URL)
		}
		body, _ := io.ReadAll(r.Body)
		if strings.Contains(string(body), `"password":"wrong"`) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"access_token":"x","user":{"id":"u1","email":"ana@example.com"}}`))
	})

	p, err := c.Authenticate(context.Background(), "ana@example.com", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != "u1" || p.Email != "ana@example.com" {
		t.Errorf("unexpected principal %+v", p)
	}

	_, err = c.Authenticate(context.Background(), "ana@example.com", "wrong")
	var unauth *domain.ErrUnauthorized
	if !errors.As(err, &unauth) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestStorage_PutGet(t *testing.T) {
	objects := map[string][]byte{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(r.URL.Path, "/storage/v1/object/statements/")
		switch r.Method {
		case http.MethodPost:
			body, _ := io.ReadAll(r.Body)
			objects[key] = body
			w.Write([]byte(`{"Key":"ok"}`))
		case http.MethodGet:
			data, ok := objects[key]
			if !ok {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			w.Write(data)
		}
	}))
	defer srv.Close()

	s := NewStorage(srv.Client(), srv.URL, "service", "statements", 1, zap.NewNop())
	ctx := context.Background()

	if err := s.Put(ctx, "u1/f1.csv", "text/csv", []byte("a;b")); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	got, err := s.Get(ctx, "u1/f1.csv")
	if err != nil || string(got) != "a;b" {
		t.Fatalf("get failed: %q %v", got, err)
	}

	_, err = s.Get(ctx, "u1/missing.csv")
	var nf *domain.ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPing(t *testing.T) {
	healthy := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/debts" || r.URL.Query().Get("limit") != "1" {
			t.Errorf("unexpected ping request %s", r.URL)
		}
		_, _ = w.Write([]byte("[]"))
	})
	if err := healthy.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}

	down := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	if err := down.Ping(context.Background()); err == nil {
		t.Fatal("expected error from unhealthy backend")
	}
}
