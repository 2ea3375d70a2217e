package report

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/aqlanhadi/sbtax/categorizer"
	"github.com/aqlanhadi/sbtax/ledger"
	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ExportInput is the period and ledger behind a tax export.
type ExportInput struct {
	Start   time.Time
	End     time.Time
	Entries []ledger.Entry
}

type incomeRow struct {
	Month       string `csv:"Month"`
	Description string `csv:"Description"`
	Amount      string `csv:"Amount (R)"`
	Source      string `csv:"Source"`
}

type expenseRow struct {
	Section     string `csv:"Section"`
	Category    string `csv:"Category"`
	Description string `csv:"Description"`
	Amount      string `csv:"Amount (R)"`
	Date        string `csv:"Date"`
	Source      string `csv:"Source"`
}

type categoryMonthRow struct {
	Category string `csv:"Category"`
	Month    string `csv:"Month"`
	Amount   string `csv:"Amount (R)"`
}

type profitRow struct {
	Month            string `csv:"Month"`
	Income           string `csv:"Income (R)"`
	BusinessExpenses string `csv:"Business Expenses (R)"`
	NetProfit        string `csv:"Net Profit (R)"`
}

type summaryRow struct {
	Description string `csv:"Description"`
	Amount      string `csv:"Amount (R)"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func monthLabel(t time.Time) string {
	return t.Format("Jan-06")
}

func monthKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func source(e ledger.Entry) string {
	if e.AccountNumber == "" {
		return "Statement"
	}
	return "Statement " + e.AccountNumber
}

func isType(e ledger.Entry, t categorizer.Type) bool {
	return e.Category != "" && categorizer.Type(e.CategoryType) == t
}

// spending reports whether e is money out against a category of type t.
func spending(e ledger.Entry, t categorizer.Type) bool {
	return isType(e, t) && e.Amount.IsNegative()
}

type exporter struct {
	in      ExportInput
	months  []time.Time
	byMonth map[time.Time][]ledger.Entry
}

// WriteTaxExport writes a ZIP of CSV sheets for the practitioner: income by
// month, each month's expenses, business and personal summaries, net profit
// by month and the annualised figures for provisional tax.
func WriteTaxExport(w io.Writer, in ExportInput) error {
	entries := ledger.Between(in.Entries, in.Start, in.End)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})

	x := &exporter{
		in:      in,
		months:  MonthsIn(in.Start, in.End),
		byMonth: map[time.Time][]ledger.Entry{},
	}
	for _, e := range entries {
		key := monthKey(e.Date)
		x.byMonth[key] = append(x.byMonth[key], e.Effective())
	}

	zw := zip.NewWriter(w)
	sheet := 1
	write := func(name string, rows interface{}) error {
		file := fmt.Sprintf("%02d_%s.csv", sheet, name)
		sheet++
		f, err := zw.Create(file)
		if err != nil {
			return fmt.Errorf("failed to add %s: %w", file, err)
		}
		if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csv.NewWriter(f))); err != nil {
			return fmt.Errorf("failed to write %s: %w", file, err)
		}
		return nil
	}

	if err := write("income_summary", x.income()); err != nil {
		return err
	}
	for _, m := range x.months {
		if err := write("expenses_"+m.Format("2006-01"), x.expenses(m)); err != nil {
			return err
		}
	}
	if err := write("business_summary", x.categoryMonths(categorizer.BusinessExpense)); err != nil {
		return err
	}
	if err := write("personal_summary", x.categoryMonths(categorizer.PersonalExpense)); err != nil {
		return err
	}
	if err := write("net_profit", x.profit()); err != nil {
		return err
	}
	if err := write("annual_summary", x.annual()); err != nil {
		return err
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish export archive: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"start":   in.Start.Format(time.DateOnly),
		"end":     in.End.Format(time.DateOnly),
		"entries": len(entries),
		"sheets":  sheet - 1,
	}).Debug("wrote tax export")
	return nil
}

func (x *exporter) income() []incomeRow {
	rows := []incomeRow{}
	total := decimal.Zero
	for _, m := range x.months {
		for _, e := range x.byMonth[m] {
			if !isType(e, categorizer.Income) {
				continue
			}
			rows = append(rows, incomeRow{
				Month:       monthLabel(m),
				Description: e.Description,
				Amount:      money(e.Amount),
				Source:      source(e),
			})
			total = total.Add(e.Amount)
		}
	}
	return append(rows, incomeRow{Month: "TOTAL", Amount: money(total)})
}

func (x *exporter) expenses(m time.Time) []expenseRow {
	rows := []expenseRow{}
	sections := []struct {
		name string
		typ  categorizer.Type
	}{
		{"BUSINESS", categorizer.BusinessExpense},
		{"PERSONAL", categorizer.PersonalExpense},
	}
	for _, s := range sections {
		subtotal := decimal.Zero
		for _, e := range x.byMonth[m] {
			if !spending(e, s.typ) {
				continue
			}
			rows = append(rows, expenseRow{
				Section:     s.name,
				Category:    e.Category,
				Description: e.Description,
				Amount:      money(e.Amount.Abs()),
				Date:        e.Date.Format("02-Jan"),
				Source:      source(e),
			})
			subtotal = subtotal.Add(e.Amount.Abs())
		}
		rows = append(rows, expenseRow{Section: s.name, Category: "SUBTOTAL " + s.name, Amount: money(subtotal)})
	}
	return rows
}

// categoryNames lists every table category of type t, then any other names
// seen in the period in alphabetical order.
func (x *exporter) categoryNames(t categorizer.Type) []string {
	seen := map[string]bool{}
	var names []string
	for _, c := range categorizer.Table() {
		if c.Type == t && !seen[c.Name] {
			seen[c.Name] = true
			names = append(names, c.Name)
		}
	}

	var extra []string
	for _, m := range x.months {
		for _, e := range x.byMonth[m] {
			if isType(e, t) && !seen[e.Category] {
				seen[e.Category] = true
				extra = append(extra, e.Category)
			}
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}

func (x *exporter) categoryMonths(t categorizer.Type) []categoryMonthRow {
	rows := []categoryMonthRow{}
	monthTotals := make([]decimal.Decimal, len(x.months))

	for _, name := range x.categoryNames(t) {
		total := decimal.Zero
		for i, m := range x.months {
			sum := decimal.Zero
			for _, e := range x.byMonth[m] {
				if spending(e, t) && e.Category == name {
					sum = sum.Add(e.Amount.Abs())
				}
			}
			rows = append(rows, categoryMonthRow{Category: name, Month: monthLabel(m), Amount: money(sum)})
			total = total.Add(sum)
			monthTotals[i] = monthTotals[i].Add(sum)
		}
		rows = append(rows, categoryMonthRow{Category: name, Month: "Total", Amount: money(total)})
	}

	for i, m := range x.months {
		rows = append(rows, categoryMonthRow{Category: "MONTHLY TOTALS", Month: monthLabel(m), Amount: money(monthTotals[i])})
	}
	return rows
}

func (x *exporter) periodTotals(m time.Time) (income, expenses decimal.Decimal) {
	for _, e := range x.byMonth[m] {
		switch {
		case isType(e, categorizer.Income):
			income = income.Add(e.Amount)
		case spending(e, categorizer.BusinessExpense):
			expenses = expenses.Add(e.Amount.Abs())
		}
	}
	return income, expenses
}

func (x *exporter) profit() []profitRow {
	rows := []profitRow{}
	income, expenses := decimal.Zero, decimal.Zero
	for _, m := range x.months {
		mi, me := x.periodTotals(m)
		rows = append(rows, profitRow{
			Month:            monthLabel(m),
			Income:           money(mi),
			BusinessExpenses: money(me),
			NetProfit:        money(mi.Sub(me)),
		})
		income = income.Add(mi)
		expenses = expenses.Add(me)
	}
	return append(rows, profitRow{
		Month:            "TOTAL",
		Income:           money(income),
		BusinessExpenses: money(expenses),
		NetProfit:        money(income.Sub(expenses)),
	})
}

func (x *exporter) annual() []summaryRow {
	income, expenses := decimal.Zero, decimal.Zero
	for _, m := range x.months {
		mi, me := x.periodTotals(m)
		income = income.Add(mi)
		expenses = expenses.Add(me)
	}

	factor := decimal.NewFromInt(12)
	if n := len(x.months); n > 0 {
		factor = factor.Div(decimal.NewFromInt(int64(n)))
	}
	span := fmt.Sprintf("(%s - %s)", x.in.Start.Format("Jan 2006"), x.in.End.Format("Jan 2006"))

	annualIncome := income.Mul(factor).Round(2)
	annualExpenses := expenses.Mul(factor).Round(2)
	return []summaryRow{
		{Description: "Period Income " + span, Amount: money(income)},
		{Description: "Period Expenses " + span, Amount: money(expenses)},
		{Description: "Period Net Profit", Amount: money(income.Sub(expenses))},
		{Description: "Annualized Income (Projected)", Amount: money(annualIncome)},
		{Description: "Annualized Expenses (Projected)", Amount: money(annualExpenses)},
		{Description: "Annualized Net Profit (for Provisional Tax)", Amount: money(annualIncome.Sub(annualExpenses))},
	}
}
