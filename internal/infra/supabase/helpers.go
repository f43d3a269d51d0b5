package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/infra/resilience"

	"github.com/shopspring/decimal"
)

// ============================================================
// HTTP helpers for GET, POST, PATCH, DELETE
// ============================================================

func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, nil, "")
}

// doPost inserts payload (a row or a slice of rows) and returns the
// created representation.
func (c *Client) doPost(ctx context.Context, table string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, resilience.Permanent(err)
	}
	return c.do(ctx, http.MethodPost, table, bytes.NewReader(body), "return=representation")
}

func (c *Client) doPatch(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, resilience.Permanent(err)
	}
	return c.do(ctx, http.MethodPatch, path, bytes.NewReader(body), "return=representation")
}

// doDelete returns the deleted rows so callers can count them.
func (c *Client) doDelete(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodDelete, path, nil, "return=representation")
}

// decodeRows decodes a PostgREST array response; empty bodies are no rows.
func decodeRows[T any](body []byte) ([]T, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	var rows []T
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, resilience.Permanent(fmt.Errorf("failed to decode response: %w", err))
	}
	return rows, nil
}

// decodeOne decodes the first row or reports resource/id as not found.
func decodeOne[T any](body []byte, resource, id string) (*T, error) {
	rows, err := decodeRows[T](body)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, resilience.Permanent(&domain.ErrNotFound{Resource: resource, ID: id})
	}
	return &rows[0], nil
}

// ============================================================
// Query building
// ============================================================

// query builds "table?col=op.value&..." with escaped values.
type query struct {
	table  string
	params []string
}

func from(table string) *query {
	return &query{table: table}
}

func (q *query) eq(col, val string) *query {
	q.params = append(q.params, col+"=eq."+url.QueryEscape(val))
	return q
}

func (q *query) gte(col, val string) *query {
	q.params = append(q.params, col+"=gte."+url.QueryEscape(val))
	return q
}

func (q *query) lte(col, val string) *query {
	q.params = append(q.params, col+"=lte."+url.QueryEscape(val))
	return q
}

// view adds the ledger filter; CONSOLIDATED adds nothing.
func (q *query) view(col string, v domain.LedgerView) *query {
	if l, ok := v.Ledger(); ok {
		q.eq(col, string(l))
	}
	return q
}

func (q *query) order(spec string) *query {
	q.params = append(q.params, "order="+spec)
	return q
}

func (q *query) String() string {
	if len(q.params) == 0 {
		return q.table
	}
	return q.table + "?" + strings.Join(q.params, "&")
}

// ============================================================
// Storage shape conversions
// ============================================================

// Amounts are stored as numeric major units (12.34); the domain uses cents.
func toMajor(c domain.Cents) decimal.Decimal {
	return c.Decimal()
}

func fromMajor(d decimal.Decimal) domain.Cents {
	return domain.FromMajor(d)
}

// parseDate accepts a DATE column ("2024-03-01") or a timestamp.
func parseDate(s string) time.Time {
	if t, err := time.Parse(domain.DateLayout, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}

func formatDate(t time.Time) string {
	return t.Format(domain.DateLayout)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
