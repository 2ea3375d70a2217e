package report

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aqlanhadi/sbtax/ledger"
	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleEntries() []ledger.Entry {
	return []ledger.Entry{
		{Date: day(2025, time.March, 3), Description: "CREDIT TRANSFER ACME", Amount: dec("20000"), Category: "Income", CategoryType: "income", AccountNumber: "123456789"},
		{Date: day(2025, time.March, 10), Description: "AFRIHOST", Amount: dec("-600"), Category: "Internet (Afrihost)", CategoryType: "business_expense"},
		{Date: day(2025, time.March, 11), Description: "WOOLWORTHS", Amount: dec("-450"), Category: "Groceries/Personal Shopping", CategoryType: "personal_expense"},
		{Date: day(2025, time.April, 1), Description: "IB TRANSFER TO", Amount: dec("-5000"), Category: "Transfers (Excluded)", CategoryType: "excluded"},
		{Date: day(2025, time.April, 2), Description: "GITHUB", Amount: dec("-150"), Category: "Technology/Software", CategoryType: "business_expense"},
		{Date: day(2025, time.April, 5), Description: "MYSTERY", Amount: dec("-20")},
		{Date: day(2025, time.April, 20), Description: "CREDIT TRANSFER ACME", Amount: dec("30000"), Category: "Income", CategoryType: "income"},
	}
}

func TestAggregate(t *testing.T) {
	s := Aggregate(sampleEntries())

	mar := s.Months[time.March-1]
	assert.Equal(t, "Mar", mar.Name)
	assert.True(t, dec("20000").Equal(mar.Income))
	assert.True(t, dec("600").Equal(mar.BusinessExpenses))
	assert.True(t, dec("450").Equal(mar.PersonalExpenses))
	assert.True(t, dec("19400").Equal(mar.Profit))

	apr := s.Months[time.April-1]
	assert.True(t, dec("5000").Equal(apr.Excluded))
	assert.True(t, dec("20").Equal(apr.PersonalExpenses), "uncategorised counts as personal")

	assert.True(t, dec("50000").Equal(s.Totals.Income))
	assert.True(t, dec("750").Equal(s.Totals.BusinessExpenses))
	assert.True(t, dec("470").Equal(s.Totals.PersonalExpenses))
	assert.True(t, dec("49250").Equal(s.Totals.Profit))

	require.Len(t, s.Categories.BusinessExpenses, 2)
	assert.Equal(t, "Internet (Afrihost)", s.Categories.BusinessExpenses[0].Name)
	assert.Equal(t, "Technology/Software", s.Categories.BusinessExpenses[1].Name)

	require.Len(t, s.Categories.Income, 1)
	assert.Equal(t, 2, s.Categories.Income[0].Count)

	names := make([]string, 0, len(s.Detailed))
	for _, d := range s.Detailed {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{
		"Income",
		"Internet (Afrihost)",
		"Technology/Software",
		"Transfers (Excluded)",
		"Groceries/Personal Shopping",
		Uncategorized,
	}, names)
	assert.True(t, dec("-600").Equal(s.Detailed[1].Months[time.March-1]))
}

func TestAggregateEmpty(t *testing.T) {
	s := Aggregate(nil)
	assert.True(t, s.Totals.Profit.IsZero())
	assert.Empty(t, s.Detailed)
	assert.NotNil(t, s.Categories.Income)
}

func TestPeriod(t *testing.T) {
	first, err := Period(FirstPeriod, 2025)
	require.NoError(t, err)
	assert.Equal(t, day(2025, time.March, 1), first.Start)
	assert.Equal(t, day(2025, time.August, 31), first.End)
	assert.Equal(t, "PnLMarAugforAug2025", first.Name)

	second, err := Period(SecondPeriod, 2025)
	require.NoError(t, err)
	assert.Equal(t, day(2025, time.September, 1), second.Start)
	assert.Equal(t, day(2026, time.February, 28), second.End)
	assert.Equal(t, "PnLSepFebforFeb2026", second.Name)

	leap, err := Period(SecondPeriod, 2027)
	require.NoError(t, err)
	assert.Equal(t, day(2028, time.February, 29), leap.End)

	_, err = Period("third", 2025)
	assert.True(t, errors.Is(err, ErrUnknownPeriod))
}

func TestMonthsIn(t *testing.T) {
	months := MonthsIn(day(2025, time.September, 1), day(2026, time.February, 28))
	require.Len(t, months, 6)
	assert.Equal(t, day(2025, time.September, 1), months[0])
	assert.Equal(t, day(2026, time.February, 1), months[5])
}

func readSheets(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	sheets := map[string][]byte{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		sheets[f.Name] = body
	}
	return sheets
}

func TestWriteTaxExport(t *testing.T) {
	window, err := Period(FirstPeriod, 2025)
	require.NoError(t, err)

	var buf bytes.Buffer
	err = WriteTaxExport(&buf, ExportInput{Start: window.Start, End: window.End, Entries: sampleEntries()})
	require.NoError(t, err)

	sheets := readSheets(t, buf.Bytes())
	assert.Len(t, sheets, 11)
	for _, name := range []string{
		"01_income_summary.csv",
		"02_expenses_2025-03.csv",
		"07_expenses_2025-08.csv",
		"08_business_summary.csv",
		"09_personal_summary.csv",
		"10_net_profit.csv",
		"11_annual_summary.csv",
	} {
		assert.Contains(t, sheets, name)
	}

	var income []incomeRow
	require.NoError(t, gocsv.UnmarshalBytes(sheets["01_income_summary.csv"], &income))
	require.Len(t, income, 3)
	assert.Equal(t, "Mar-25", income[0].Month)
	assert.Equal(t, "Statement 123456789", income[0].Source)
	assert.Equal(t, incomeRow{Month: "TOTAL", Amount: "50000.00"}, income[2])

	var march []expenseRow
	require.NoError(t, gocsv.UnmarshalBytes(sheets["02_expenses_2025-03.csv"], &march))
	require.Len(t, march, 4)
	assert.Equal(t, "600.00", march[0].Amount)
	assert.Equal(t, "10-Mar", march[0].Date)
	assert.Equal(t, "SUBTOTAL BUSINESS", march[1].Category)
	assert.Equal(t, "SUBTOTAL PERSONAL", march[3].Category)

	var profit []profitRow
	require.NoError(t, gocsv.UnmarshalBytes(sheets["10_net_profit.csv"], &profit))
	require.Len(t, profit, 7)
	assert.Equal(t, profitRow{Month: "TOTAL", Income: "50000.00", BusinessExpenses: "750.00", NetProfit: "49250.00"}, profit[6])

	var annual []summaryRow
	require.NoError(t, gocsv.UnmarshalBytes(sheets["11_annual_summary.csv"], &annual))
	require.Len(t, annual, 6)
	assert.Equal(t, "Period Income (Mar 2025 - Aug 2025)", annual[0].Description)
	assert.Equal(t, "100000.00", annual[3].Amount)
	assert.Equal(t, "98500.00", annual[5].Amount)

	var business []categoryMonthRow
	require.NoError(t, gocsv.UnmarshalBytes(sheets["08_business_summary.csv"], &business))
	last := business[len(business)-1]
	assert.Equal(t, "MONTHLY TOTALS", last.Category)
	assert.Equal(t, "Aug-25", last.Month)
}

func TestAggregateSkipsOwnAccountTransfers(t *testing.T) {
	entries := []ledger.Entry{
		{Date: day(2025, time.March, 3), Description: "CREDIT TRANSFER ACME", Amount: dec("20000"), Category: "Income", CategoryType: "income"},
		{Date: day(2025, time.March, 4), Description: "IB TRANSFER FROM SAVINGS", Amount: dec("8000"), Category: "Income", CategoryType: "income", InterAccount: true},
	}

	s := Aggregate(entries)
	assert.True(t, dec("20000").Equal(s.Totals.Income))
	assert.True(t, dec("8000").Equal(s.Months[time.March-1].Excluded))
	require.Len(t, s.Categories.Income, 1)
	assert.Equal(t, 1, s.Categories.Income[0].Count)
}
