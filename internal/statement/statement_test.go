package statement_test

import (
	"errors"
	"testing"
	"time"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/statement"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want domain.Cents
		dir  domain.Direction
	}{
		{"1.234,56", 123456, domain.DirectionIn},
		{"1234,56", 123456, domain.DirectionIn},
		{"1234.56", 123456, domain.DirectionIn},
		{"1.234", 123400, domain.DirectionIn},
		{"1,234.56", 123456, domain.DirectionIn},
		{"12.5", 1250, domain.DirectionIn},
		{"-150,00", 15000, domain.DirectionOut},
		{"150,00-", 15000, domain.DirectionOut},
		{"(12,30)", 1230, domain.DirectionOut},
		{"R$ 5.000,00", 500000, domain.DirectionIn},
		{"42", 4200, domain.DirectionIn},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, dir, err := statement.ParseAmount(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.dir, dir)
		})
	}
}

func TestParseAmount_Rejects(t *testing.T) {
	for _, in := range []string{"", "abc", "01/03/2024", "PIX 123", "-"} {
		_, _, err := statement.ParseAmount(in)
		assert.Error(t, err, in)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"25/12/2024", day(2024, 12, 25)},
		{"2024-12-25", day(2024, 12, 25)},
		{"25/12/24", day(2024, 12, 25)},
		{"12/25/2024", day(2024, 12, 25)},
		{"25-12-2024", day(2024, 12, 25)},
		{"25/12", day(2023, 12, 25)},
		{"01/02/2024", day(2024, 2, 1)},
		{"5/3/2024", day(2024, 3, 5)},
		{"15/3/2024", day(2024, 3, 15)},
		{"2024-3-5", day(2024, 3, 5)},
		{"5/3", day(2023, 3, 5)},
	}
	for _, tt := range tests {
		got, ok := statement.ParseDate(tt.in, 2023)
		require.True(t, ok, tt.in)
		assert.True(t, tt.want.Equal(got), "%s: got %s", tt.in, got)
	}

	for _, bad := range []string{"not-a-date", "", "32/13/2024", "31/02"} {
		_, ok := statement.ParseDate(bad, 2023)
		assert.False(t, ok, bad)
	}
}

func TestDetectDelimiter(t *testing.T) {
	assert.Equal(t, ';', statement.DetectDelimiter("a;b;c\n1;2;3"))
	assert.Equal(t, '|', statement.DetectDelimiter("a|b|c"))
	assert.Equal(t, '\t', statement.DetectDelimiter("a\tb\tc"))
	assert.Equal(t, ',', statement.DetectDelimiter("no delimiters here"))
	assert.Equal(t, ';', statement.DetectDelimiter("\nData;Valor;Historico\n01/03/2024;-1.150,00;Pag boleto, luz, agua, gas"))
	assert.Equal(t, ',', statement.DetectDelimiter(`"Data;x",Valor,Historico`))
}

func TestParse_CSVCommasInsideFields(t *testing.T) {
	data := []byte("Data;Valor;Historico\n" +
		"01/03/2024;-1.150,00;Pag boleto, luz, agua, gas\n" +
		"02/03/2024;5.000,00;Salario, empresa, marco\n")

	raws, err := statement.Parse(data, domain.SourceCSV)
	require.NoError(t, err)
	require.Len(t, raws, 2)

	rows, dropped := statement.Normalize(raws, 2024)
	require.Len(t, rows, 2)
	assert.Zero(t, dropped)
	assert.Equal(t, domain.Cents(115000), rows[0].Amount)
	assert.Equal(t, domain.DirectionOut, rows[0].Direction)
	assert.Equal(t, "Pag boleto, luz, agua, gas", rows[0].Description)
	assert.Equal(t, domain.Cents(500000), rows[1].Amount)
}

func TestParse_CSVWithHeader(t *testing.T) {
	data := []byte("Data;Valor;Historico\n01/03/2024;-150,00;Mercado\n02/03/2024;5000,00;Salario\n")

	raws, err := statement.Parse(data, domain.SourceCSV)
	require.NoError(t, err)
	require.Len(t, raws, 2)
	assert.Equal(t, 2, raws[0].Line)

	rows, dropped := statement.Normalize(raws, 2024)
	require.Len(t, rows, 2)
	assert.Zero(t, dropped)

	assert.Equal(t, domain.DirectionOut, rows[0].Direction)
	assert.Equal(t, domain.Cents(15000), rows[0].Amount)
	assert.Equal(t, "Mercado", rows[0].Description)
	assert.True(t, day(2024, 3, 1).Equal(rows[0].Date))

	assert.Equal(t, domain.DirectionIn, rows[1].Direction)
	assert.Equal(t, domain.Cents(500000), rows[1].Amount)

	cands := statement.Categorize(rows, nil)
	assert.Zero(t, statement.FlagDuplicates(cands, nil))
	for _, c := range cands {
		assert.Equal(t, domain.RowNew, c.Status())
		assert.Equal(t, domain.ConfidenceLow, c.Confidence)
	}
}

func TestParse_CSVCreditDebitColumns(t *testing.T) {
	data := []byte("Data;Histórico;Crédito;Débito;Saldo\n" +
		"05/03/2024;PIX RECEBIDO;1.000,00;;5.000,00\n" +
		"06/03/2024;BOLETO   LUZ;;250,50;4.749,50\n")

	raws, err := statement.Parse(data, domain.SourceCSV)
	require.NoError(t, err)

	rows, _ := statement.Normalize(raws, 2024)
	require.Len(t, rows, 2)
	assert.Equal(t, domain.Cents(100000), rows[0].Amount)
	assert.Equal(t, domain.DirectionIn, rows[0].Direction)
	assert.Equal(t, domain.Cents(25050), rows[1].Amount)
	assert.Equal(t, domain.DirectionOut, rows[1].Direction)
	assert.Equal(t, "BOLETO LUZ", rows[1].Description)
	assert.Equal(t, "BOLETO   LUZ", rows[1].RawDescription)
}

func TestParse_CSVWindows1252(t *testing.T) {
	// "Histórico" encoded as Windows-1252.
	data := []byte("Data;Valor;Hist\xf3rico\n10/04/2024;-20,00;Padaria\n")

	raws, err := statement.Parse(data, domain.SourceCSV)
	require.NoError(t, err)
	require.Len(t, raws, 1)
	assert.Equal(t, "Padaria", raws[0].DescriptionText)
}

func TestParse_CSVHeuristicFallback(t *testing.T) {
	data := []byte("EXTRATO CONTA\n" +
		"01/03/2024,Padaria Central,-12.50\n" +
		"saldo anterior\n" +
		"03/03/2024,Transferencia recebida,300.00\n")

	raws, err := statement.Parse(data, domain.SourceCSV)
	require.NoError(t, err)
	require.Len(t, raws, 2)

	assert.Equal(t, 2, raws[0].Line)
	assert.Equal(t, "Padaria Central", raws[0].DescriptionText)
	assert.Equal(t, "-12.50", raws[0].AmountText)
	assert.Equal(t, 4, raws[1].Line)

	rows, _ := statement.Normalize(raws, 2024)
	require.Len(t, rows, 2)
	assert.Equal(t, domain.Cents(1250), rows[0].Amount)
	assert.Equal(t, domain.Cents(30000), rows[1].Amount)
}

func TestParse_NoRowsIsParseError(t *testing.T) {
	_, err := statement.Parse([]byte("hello\nworld"), domain.SourceCSV)
	require.Error(t, err)

	var perr *domain.ErrParse
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 2, perr.Debug.LineCount)
	assert.Equal(t, domain.SourceCSV, perr.Debug.SourceType)
	assert.Equal(t, "hello\nworld", perr.Debug.Sample)
}

func TestParse_UnsupportedSource(t *testing.T) {
	_, err := statement.Parse([]byte("x"), domain.SourceType("XLS"))
	var perr *domain.ErrParse
	assert.True(t, errors.As(err, &perr))
}

func TestParse_MalformedPDF(t *testing.T) {
	_, err := statement.Parse([]byte("definitely not a pdf"), domain.SourcePDF)
	var perr *domain.ErrParse
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, domain.SourcePDF, perr.Debug.SourceType)
}

func TestParseText(t *testing.T) {
	text := "EXTRATO\n" +
		"01/03 SUPERMERCADO EXTRA 1.234,56\n" +
		"02/03/2024 PIX RECEBIDO JOAO -50,00\n" +
		"Total 1.184,56\n"

	raws := statement.ParseText(text)
	require.Len(t, raws, 2)

	assert.Equal(t, 2, raws[0].Line)
	assert.Equal(t, "01/03", raws[0].DateText)
	assert.Equal(t, "1.234,56", raws[0].AmountText)
	assert.Equal(t, "SUPERMERCADO EXTRA", raws[0].DescriptionText)

	assert.Equal(t, "02/03/2024", raws[1].DateText)
	assert.Equal(t, "-50,00", raws[1].AmountText)
	assert.Equal(t, "PIX RECEBIDO JOAO", raws[1].DescriptionText)

	rows, _ := statement.Normalize(raws, 2024)
	require.Len(t, rows, 2)
	assert.True(t, day(2024, 3, 1).Equal(rows[0].Date))
	assert.Equal(t, domain.DirectionOut, rows[1].Direction)
}

func TestNormalize_DropsInvalidRows(t *testing.T) {
	raws := []statement.RawRow{
		{Line: 1, DateText: "xx", AmountText: "10,00"},
		{Line: 2, DateText: "01/01/2024", AmountText: "0,00"},
		{Line: 3, DateText: "01/01/2024", AmountText: "abc"},
		{Line: 4, DateText: "01/01/2024", AmountText: "10,00", Raw: "01/01/2024;10,00"},
	}
	rows, dropped := statement.Normalize(raws, 2024)
	require.Len(t, rows, 1)
	assert.Equal(t, 3, dropped)
	assert.Equal(t, 4, rows[0].Line)
	assert.Equal(t, "01/01/2024;10,00", rows[0].RawDescription)
}

func TestCategorize(t *testing.T) {
	rules := []domain.CategorizationRule{
		{ID: "r1", Pattern: "mercado", MatchType: domain.MatchContains, Priority: 1, CategoryID: "food", Active: true},
		{ID: "r2", Pattern: "SUPERMERCADO  EXTRA", MatchType: domain.MatchExact, Priority: 5, CategoryID: "groceries", Active: true},
		{ID: "r3", Pattern: "pix", MatchType: domain.MatchContains, Priority: 10, CategoryID: "transfers", Active: false},
		{ID: "r4", Pattern: "supermercado extra", MatchType: domain.MatchExact, Priority: 9, CategoryID: "never", Active: true},
	}
	rows := []statement.NormalizedRow{
		{Description: "SUPERMERCADO EXTRA"},
		{Description: "Mercado Livre"},
		{Description: "PIX RECEBIDO"},
	}

	cands := statement.Categorize(rows, rules)
	require.Len(t, cands, 3)

	assert.Equal(t, "groceries", cands[0].SuggestedCategoryID)
	assert.Equal(t, domain.ConfidenceHigh, cands[0].Confidence)
	assert.Equal(t, "food", cands[1].SuggestedCategoryID)
	assert.Empty(t, cands[2].SuggestedCategoryID)
	assert.Equal(t, domain.ConfidenceLow, cands[2].Confidence)
}

func TestOrderRules_StableByPriority(t *testing.T) {
	rules := []domain.CategorizationRule{
		{ID: "a", Priority: 1, Active: true},
		{ID: "b", Priority: 3, Active: true},
		{ID: "c", Priority: 1, Active: true},
		{ID: "d", Priority: 3, Active: false},
	}
	ordered := statement.OrderRules(rules)
	ids := make([]string, len(ordered))
	for i, r := range ordered {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"b", "a", "c"}, ids)
}

func TestFlagDuplicates(t *testing.T) {
	existing := []domain.Transaction{
		{ID: "t1", Date: day(2024, 3, 3), Amount: 15005},
	}
	cands := []statement.Candidate{
		{NormalizedRow: statement.NormalizedRow{Date: day(2024, 3, 1), Amount: 15000}},
		{NormalizedRow: statement.NormalizedRow{Date: day(2024, 2, 27), Amount: 15000}},
		{NormalizedRow: statement.NormalizedRow{Date: day(2024, 3, 2), Amount: 15020}},
		{NormalizedRow: statement.NormalizedRow{Date: day(2024, 3, 5), Amount: 14995}},
	}

	n := statement.FlagDuplicates(cands, existing)
	assert.Equal(t, 2, n)
	assert.Equal(t, "t1", cands[0].DuplicateOfID)
	assert.Equal(t, domain.RowDuplicateSuspect, cands[0].Status())
	assert.Equal(t, domain.RowNew, cands[1].Status())
	assert.Equal(t, domain.RowNew, cands[2].Status())
	assert.Equal(t, "t1", cands[3].DuplicateOfID)
}

func TestDuplicateWindow(t *testing.T) {
	_, _, ok := statement.DuplicateWindow(nil)
	assert.False(t, ok)

	from, to, ok := statement.DuplicateWindow([]statement.NormalizedRow{
		{Date: day(2024, 3, 3)},
		{Date: day(2024, 3, 1)},
	})
	require.True(t, ok)
	assert.True(t, day(2024, 2, 25).Equal(from))
	assert.True(t, day(2024, 3, 8).Equal(to))
}

func TestParseSourceType(t *testing.T) {
	st, err := statement.ParseSourceType("csv")
	require.NoError(t, err)
	assert.Equal(t, domain.SourceCSV, st)

	_, err = statement.ParseSourceType("xls")
	var verr *domain.ErrValidation
	assert.True(t, errors.As(err, &verr))
}

func TestDateRange(t *testing.T) {
	from, to, ok := statement.DateRange([]statement.NormalizedRow{
		{Date: day(2024, 3, 3)},
		{Date: day(2024, 3, 1)},
		{Date: day(2024, 3, 2)},
	})
	require.True(t, ok)
	assert.True(t, day(2024, 3, 1).Equal(from))
	assert.True(t, day(2024, 3, 3).Equal(to))
}

func TestNoValidRows(t *testing.T) {
	err := statement.NoValidRows([]statement.RawRow{
		{Line: 2, Raw: "xx/yy;abc;foo"},
		{Line: 3, Raw: "??;0,00;bar"},
	}, domain.SourceCSV)

	assert.Equal(t, 2, err.Debug.LineCount)
	assert.Equal(t, domain.SourceCSV, err.Debug.SourceType)
	assert.Equal(t, "xx/yy;abc;foo\n??;0,00;bar", err.Debug.Sample)
}
