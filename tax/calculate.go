package tax

import (
	"time"

	"github.com/aqlanhadi/sbtax/categorizer"
	"github.com/aqlanhadi/sbtax/ledger"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// DefaultHomeOfficeCategories are the household costs claimed in proportion
// to the floor area used as an office.
var DefaultHomeOfficeCategories = []string{
	"Interest (Mortgage)",
	"Maintenance",
	"Municipal",
	"Insurance",
}

var cent = decimal.New(1, -2)

// Params describe the period and taxpayer for Calculate.
type Params struct {
	PeriodStart       time.Time
	PeriodEnd         time.Time
	Age               int
	MedicalAidMembers int
	PreviousPayments  decimal.Decimal
	// TaxYear overrides the year derived from PeriodEnd.
	TaxYear int

	OfficeSqm            decimal.Decimal
	HouseSqm             decimal.Decimal
	HomeOfficeCategories []string

	// Tables overrides the configured tables for the tax year.
	Tables *Tables
}

type Apportionment struct {
	Full        decimal.Decimal `json:"full"`
	Apportioned decimal.Decimal `json:"apportioned"`
	Reduction   decimal.Decimal `json:"reduction"`
}

type HomeOffice struct {
	OfficeSqm      decimal.Decimal          `json:"office_sqm"`
	HouseSqm       decimal.Decimal          `json:"house_sqm"`
	Percentage     decimal.Decimal          `json:"percentage"`
	Categories     []string                 `json:"apportioned_categories"`
	TotalReduction decimal.Decimal          `json:"total_reduction"`
	Detail         map[string]Apportionment `json:"detail"`
}

type Counts struct {
	Income          int `json:"income"`
	BusinessExpense int `json:"business_expense"`
	PersonalExpense int `json:"personal_expense"`
	Excluded        int `json:"excluded"`
	Uncategorized   int `json:"uncategorized"`
	Total           int `json:"total"`
}

// Result is a provisional tax estimate with the breakdowns behind it.
type Result struct {
	Provisional

	TaxYear               int                        `json:"tax_year"`
	IncomeBreakdown       map[string]decimal.Decimal `json:"income_breakdown"`
	ExpenseBreakdown      map[string]decimal.Decimal `json:"expense_breakdown"`
	ExpenseBreakdownFull  map[string]decimal.Decimal `json:"expense_breakdown_full"`
	PersonalBreakdown     map[string]decimal.Decimal `json:"personal_breakdown"`
	ExcludedBreakdown     map[string]decimal.Decimal `json:"excluded_breakdown"`
	TotalPersonalExpenses decimal.Decimal            `json:"total_personal_expenses"`
	TotalExcluded         decimal.Decimal            `json:"total_excluded"`
	HomeOffice            HomeOffice                 `json:"home_office"`
	Counts                Counts                     `json:"transaction_counts"`
}

// YearFor returns the tax year a date falls in. Tax years start on 1 March.
func YearFor(t time.Time) int {
	if t.Month() >= time.March {
		return t.Year()
	}
	return t.Year() - 1
}

// MonthsBetween counts calendar months from start to end, at least one.
func MonthsBetween(start, end time.Time) int {
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	if months < 1 {
		return 1
	}
	return months
}

func add(m map[string]decimal.Decimal, key string, v decimal.Decimal) {
	m[key] = m[key].Add(v)
}

// Calculate summarises categorised entries for a period and estimates the
// provisional tax on them. Only business expenses are deducted; entries with
// no category are counted as personal.
func Calculate(entries []ledger.Entry, p Params) (Result, error) {
	year := p.TaxYear
	if year == 0 {
		year = YearFor(p.PeriodEnd)
	}

	tables := p.Tables
	if tables == nil {
		loaded, err := LoadTables(viper.GetViper(), year)
		if err != nil {
			return Result{}, err
		}
		tables = &loaded
	}

	categories := p.HomeOfficeCategories
	if categories == nil {
		categories = DefaultHomeOfficeCategories
	}
	apportioned := make(map[string]bool, len(categories))
	for _, c := range categories {
		apportioned[c] = true
	}

	share := decimal.Zero
	if p.HouseSqm.IsPositive() {
		share = p.OfficeSqm.Div(p.HouseSqm)
	}

	res := Result{
		TaxYear:              year,
		IncomeBreakdown:      map[string]decimal.Decimal{},
		ExpenseBreakdown:     map[string]decimal.Decimal{},
		ExpenseBreakdownFull: map[string]decimal.Decimal{},
		PersonalBreakdown:    map[string]decimal.Decimal{},
		ExcludedBreakdown:    map[string]decimal.Decimal{},
		HomeOffice: HomeOffice{
			OfficeSqm:  p.OfficeSqm,
			HouseSqm:   p.HouseSqm,
			Percentage: share.Mul(hundred).Round(1),
			Categories: categories,
			Detail:     map[string]Apportionment{},
		},
	}

	income := decimal.Zero
	business := decimal.Zero

	for _, e := range entries {
		e = e.Effective()
		amount := e.Amount.Abs()

		switch categorizer.Type(e.CategoryType) {
		case categorizer.Income:
			res.Counts.Income++
			income = income.Add(amount)
			add(res.IncomeBreakdown, e.Category, amount)

		case categorizer.BusinessExpense:
			res.Counts.BusinessExpense++
			add(res.ExpenseBreakdownFull, e.Category, amount)

			claim := amount
			if apportioned[e.Category] {
				claim = amount.Mul(share).RoundBank(2)
				reduction := amount.Sub(claim)
				res.HomeOffice.TotalReduction = res.HomeOffice.TotalReduction.Add(reduction)

				detail := res.HomeOffice.Detail[e.Category]
				detail.Full = detail.Full.Add(amount)
				detail.Apportioned = detail.Apportioned.Add(claim)
				detail.Reduction = detail.Reduction.Add(reduction)
				res.HomeOffice.Detail[e.Category] = detail
			}
			business = business.Add(claim)
			add(res.ExpenseBreakdown, e.Category, claim)

		case categorizer.PersonalExpense:
			res.Counts.PersonalExpense++
			res.TotalPersonalExpenses = res.TotalPersonalExpenses.Add(amount)
			add(res.PersonalBreakdown, e.Category, amount)

		case categorizer.Excluded:
			res.Counts.Excluded++
			res.TotalExcluded = res.TotalExcluded.Add(amount)
			add(res.ExcludedBreakdown, e.Category, amount)

		default:
			res.Counts.Uncategorized++
			res.TotalPersonalExpenses = res.TotalPersonalExpenses.Add(amount)
		}
	}

	res.Counts.Total = res.Counts.Income + res.Counts.BusinessExpense + res.Counts.PersonalExpense +
		res.Counts.Excluded + res.Counts.Uncategorized

	calc := NewCalculator(*tables)
	res.Provisional = calc.Provisional(income, business, MonthsBetween(p.PeriodStart, p.PeriodEnd),
		p.Age, p.MedicalAidMembers, p.PreviousPayments)
	return res, nil
}
