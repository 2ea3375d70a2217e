// Package report aggregates ledger entries into monthly and per-category
// summaries and writes the tax practitioner export.
package report

import (
	"sort"
	"time"

	"github.com/aqlanhadi/sbtax/categorizer"
	"github.com/aqlanhadi/sbtax/ledger"
	"github.com/shopspring/decimal"
)

// Uncategorized names entries without a category. They count as personal.
const Uncategorized = "Uncategorized"

type Month struct {
	Month            time.Month      `json:"-"`
	Name             string          `json:"month_name"`
	Income           decimal.Decimal `json:"income"`
	BusinessExpenses decimal.Decimal `json:"business_expenses"`
	PersonalExpenses decimal.Decimal `json:"personal_expenses"`
	Excluded         decimal.Decimal `json:"excluded"`
	Profit           decimal.Decimal `json:"profit"`
}

type Totals struct {
	Income           decimal.Decimal `json:"income"`
	BusinessExpenses decimal.Decimal `json:"business_expenses"`
	PersonalExpenses decimal.Decimal `json:"personal_expenses"`
	Excluded         decimal.Decimal `json:"excluded"`
	Profit           decimal.Decimal `json:"profit"`
}

type CategoryTotal struct {
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// CategorySummary lists each type's categories by total, largest first.
type CategorySummary struct {
	Income           []CategoryTotal `json:"income"`
	BusinessExpenses []CategoryTotal `json:"business_expenses"`
	PersonalExpenses []CategoryTotal `json:"personal_expenses"`
	Excluded         []CategoryTotal `json:"excluded"`
}

// CategoryDetail holds signed monthly sums for one category, indexed by
// month-1.
type CategoryDetail struct {
	Name   string              `json:"name"`
	Type   categorizer.Type    `json:"type"`
	Months [12]decimal.Decimal `json:"months"`
	Total  decimal.Decimal     `json:"total"`
}

type Summary struct {
	Months     [12]Month        `json:"monthly_summary"`
	Totals     Totals           `json:"totals"`
	Categories CategorySummary  `json:"category_summary"`
	Detailed   []CategoryDetail `json:"detailed_monthly"`
}

func classify(e ledger.Entry) (string, categorizer.Type) {
	if e.Category == "" {
		return Uncategorized, categorizer.PersonalExpense
	}
	t := categorizer.Type(e.CategoryType)
	if !t.Valid() {
		t = categorizer.PersonalExpense
	}
	return e.Category, t
}

// Aggregate folds entries by calendar month regardless of year. Income is
// summed as recorded, less own-account transfers; expenses and excluded amounts are summed as absolute
// values. Profit is income less business expenses.
func Aggregate(entries []ledger.Entry) Summary {
	var s Summary
	for i := range s.Months {
		m := time.Month(i + 1)
		s.Months[i] = Month{Month: m, Name: m.String()[:3]}
	}

	type categoryAcc struct {
		typ   categorizer.Type
		total decimal.Decimal
		count int
	}
	categories := map[string]*categoryAcc{}
	detailed := map[string]*CategoryDetail{}

	for _, e := range entries {
		name, typ := classify(e.Effective())
		idx := int(e.Date.Month()) - 1
		month := &s.Months[idx]

		acc, ok := categories[name]
		if !ok {
			acc = &categoryAcc{typ: typ}
			categories[name] = acc
		}
		acc.count++

		switch typ {
		case categorizer.Income:
			month.Income = month.Income.Add(e.Amount)
			acc.total = acc.total.Add(e.Amount)
		case categorizer.BusinessExpense:
			month.BusinessExpenses = month.BusinessExpenses.Add(e.Amount.Abs())
			acc.total = acc.total.Add(e.Amount.Abs())
		case categorizer.Excluded:
			month.Excluded = month.Excluded.Add(e.Amount.Abs())
			acc.total = acc.total.Add(e.Amount.Abs())
		default:
			month.PersonalExpenses = month.PersonalExpenses.Add(e.Amount.Abs())
			acc.total = acc.total.Add(e.Amount.Abs())
		}

		d, ok := detailed[name]
		if !ok {
			d = &CategoryDetail{Name: name, Type: typ}
			detailed[name] = d
		}
		d.Months[idx] = d.Months[idx].Add(e.Amount)
		d.Total = d.Total.Add(e.Amount)
	}

	for i := range s.Months {
		m := &s.Months[i]
		m.Profit = m.Income.Sub(m.BusinessExpenses)

		s.Totals.Income = s.Totals.Income.Add(m.Income)
		s.Totals.BusinessExpenses = s.Totals.BusinessExpenses.Add(m.BusinessExpenses)
		s.Totals.PersonalExpenses = s.Totals.PersonalExpenses.Add(m.PersonalExpenses)
		s.Totals.Excluded = s.Totals.Excluded.Add(m.Excluded)
	}
	s.Totals.Profit = s.Totals.Income.Sub(s.Totals.BusinessExpenses)

	byType := map[categorizer.Type][]CategoryTotal{}
	for name, acc := range categories {
		byType[acc.typ] = append(byType[acc.typ], CategoryTotal{Name: name, Total: acc.total, Count: acc.count})
	}
	s.Categories = CategorySummary{
		Income:           sortTotals(byType[categorizer.Income]),
		BusinessExpenses: sortTotals(byType[categorizer.BusinessExpense]),
		PersonalExpenses: sortTotals(byType[categorizer.PersonalExpense]),
		Excluded:         sortTotals(byType[categorizer.Excluded]),
	}

	s.Detailed = make([]CategoryDetail, 0, len(detailed))
	for _, d := range detailed {
		s.Detailed = append(s.Detailed, *d)
	}
	sort.Slice(s.Detailed, func(i, j int) bool {
		a, b := s.Detailed[i], s.Detailed[j]
		if ra, rb := typeRank(a.Type), typeRank(b.Type); ra != rb {
			return ra < rb
		}
		if c := a.Total.Abs().Cmp(b.Total.Abs()); c != 0 {
			return c > 0
		}
		return a.Name < b.Name
	})

	return s
}

func typeRank(t categorizer.Type) int {
	switch t {
	case categorizer.Income:
		return 0
	case categorizer.BusinessExpense:
		return 1
	}
	return 2
}

func sortTotals(totals []CategoryTotal) []CategoryTotal {
	if totals == nil {
		return []CategoryTotal{}
	}
	sort.Slice(totals, func(i, j int) bool {
		if c := totals[i].Total.Cmp(totals[j].Total); c != 0 {
			return c > 0
		}
		return totals[i].Name < totals[j].Name
	})
	return totals
}
