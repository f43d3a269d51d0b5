// Package cli provides formatting and rendering utilities for finctl output.
package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"
)

// FormatMoney formats cents in the Brazilian style: 123456 -> "R$ 1.234,56".
func FormatMoney(c domain.Cents) string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	major := FormatNumber(int64(c / 100))
	return fmt.Sprintf("%sR$ %s,%02d", sign, major, int64(c%100))
}

// FormatNumber adds dot separators to an integer: 1234567 -> "1.234.567".
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatMonths renders a month count as "2a 3m" once it passes a year.
func FormatMonths(n int) string {
	if n < 12 {
		return fmt.Sprintf("%dm", n)
	}
	if n%12 == 0 {
		return fmt.Sprintf("%da", n/12)
	}
	return fmt.Sprintf("%da %dm", n/12, n%12)
}

// FormatDate renders a date as DD/MM/YYYY.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02/01/2006")
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}
