package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   domain.Cents
		want string
	}{
		{0, "R$ 0,00"},
		{5, "R$ 0,05"},
		{123456, "R$ 1.234,56"},
		{-12050, "-R$ 120,50"},
		{100000000, "R$ 1.000.000,00"},
	}
	for _, tt := range tests {
		if got := FormatMoney(tt.in); got != tt.want {
			t.Errorf("FormatMoney(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatMonths(t *testing.T) {
	tests := map[int]string{0: "0m", 7: "7m", 12: "1a", 27: "2a 3m"}
	for in, want := range tests {
		if got := FormatMonths(in); got != want {
			t.Errorf("FormatMonths(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	if got := FormatDate(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)); got != "05/03/2026" {
		t.Errorf("got %q", got)
	}
	if got := FormatDate(time.Time{}); got != "-" {
		t.Errorf("zero date = %q", got)
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Dívida", "Saldo"},
		Rows:    [][]string{{"Cartão", "R$ 1.000,00"}, {"---"}, {"Total", "R$ 1.000,00"}},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("expected 7 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(out, "Cartão") || !strings.Contains(out, "Total") {
		t.Errorf("missing cells:\n%s", out)
	}
	if RenderTable(Table{}) != "" {
		t.Error("empty table should render nothing")
	}
}
