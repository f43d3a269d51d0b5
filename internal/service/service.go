// Package service provides the business logic layer (use cases).
// Every operation is scoped by the authenticated user's ID and talks to
// persistence only through the ports in internal/port.
package service

import (
	"time"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("service")

func newID() string {
	return uuid.NewString()
}

// today returns the calendar date of t at midnight UTC.
func today(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysApart counts calendar days between a and b, ignoring order.
func daysApart(a, b time.Time) int {
	d := int(today(a).Sub(today(b)).Hours() / 24)
	if d < 0 {
		return -d
	}
	return d
}

// monthRange returns the first and last day of t's month.
func monthRange(t time.Time) (time.Time, time.Time) {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}

// ParseMonth parses "YYYY-MM"; an empty string means the month of now.
func ParseMonth(s string, now time.Time) (time.Time, error) {
	if s == "" {
		first, _ := monthRange(now)
		return first, nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return time.Time{}, &domain.ErrValidation{Field: "month", Message: "must be YYYY-MM"}
	}
	return t, nil
}
