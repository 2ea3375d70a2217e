package tax

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Calculator applies one year's tables.
type Calculator struct {
	tables Tables
}

func NewCalculator(tables Tables) *Calculator {
	return &Calculator{tables: tables}
}

func (c *Calculator) Tables() Tables {
	return c.tables
}

// Assessment is the breakdown of an annual tax calculation.
type Assessment struct {
	TaxableIncome     decimal.Decimal `json:"taxable_income"`
	TaxBeforeRebates  decimal.Decimal `json:"tax_before_rebates"`
	Rebates           decimal.Decimal `json:"rebates"`
	MedicalCredits    decimal.Decimal `json:"medical_credits"`
	Liability         decimal.Decimal `json:"tax_liability"`
	EffectiveRate     decimal.Decimal `json:"effective_rate"`
	Age               int             `json:"age"`
	MedicalAidMembers int             `json:"medical_aid_members"`
}

// AnnualTax computes the liability on a year's taxable income. members counts
// everyone on the medical aid, the main member included.
func (c *Calculator) AnnualTax(income decimal.Decimal, age, members int) Assessment {
	before := c.taxOnIncome(income)
	rebates := c.rebates(age)
	credits := c.medicalCredits(members)

	liability := before.Sub(rebates).Sub(credits)
	if liability.IsNegative() {
		liability = decimal.Zero
	}

	rate := decimal.Zero
	if income.IsPositive() {
		rate = liability.Div(income).Mul(hundred).Round(2)
	}

	return Assessment{
		TaxableIncome:     income,
		TaxBeforeRebates:  before,
		Rebates:           rebates,
		MedicalCredits:    credits,
		Liability:         liability,
		EffectiveRate:     rate,
		Age:               age,
		MedicalAidMembers: members,
	}
}

func (c *Calculator) taxOnIncome(income decimal.Decimal) decimal.Decimal {
	if !income.IsPositive() || len(c.tables.Brackets) == 0 {
		return decimal.Zero
	}

	bracket := c.tables.Brackets[len(c.tables.Brackets)-1]
	for _, b := range c.tables.Brackets {
		if b.covers(income) {
			bracket = b
			break
		}
	}
	return bracket.Base.Add(income.Sub(bracket.Min).Mul(bracket.Rate))
}

func (c *Calculator) rebates(age int) decimal.Decimal {
	r := c.tables.Rebates.Primary
	if age >= 65 {
		r = r.Add(c.tables.Rebates.Secondary)
	}
	if age >= 75 {
		r = r.Add(c.tables.Rebates.Tertiary)
	}
	return r
}

func (c *Calculator) medicalCredits(members int) decimal.Decimal {
	mc := c.tables.MedicalCredits
	twelve := decimal.NewFromInt(12)

	switch {
	case members <= 0:
		return decimal.Zero
	case members == 1:
		return mc.Main.Mul(twelve)
	}
	additional := mc.Additional.Mul(decimal.NewFromInt(int64(members - 2)))
	return mc.Main.Add(mc.FirstDependent).Add(additional).Mul(twelve)
}

// Provisional is an estimate of the payment due for a provisional period.
type Provisional struct {
	PeriodMonths       int             `json:"period_months"`
	PeriodIncome       decimal.Decimal `json:"period_income"`
	PeriodExpenses     decimal.Decimal `json:"period_expenses"`
	PeriodProfit       decimal.Decimal `json:"period_profit"`
	AnnualEstimate     decimal.Decimal `json:"annual_estimate"`
	EstimatedAnnualTax decimal.Decimal `json:"estimated_annual_tax"`
	PreviousPayments   decimal.Decimal `json:"previous_payments"`
	Payment            decimal.Decimal `json:"provisional_payment"`
	EffectiveRate      decimal.Decimal `json:"effective_rate"`
	Breakdown          Assessment      `json:"tax_breakdown"`
}

// Provisional annualises the profit of a period and returns what is still owed
// on it after previous payments.
func (c *Calculator) Provisional(income, expenses decimal.Decimal, months, age, members int, previous decimal.Decimal) Provisional {
	if months < 1 {
		months = 1
	}

	profit := income.Sub(expenses)
	annual := profit.Div(decimal.NewFromInt(int64(months))).Mul(decimal.NewFromInt(12))
	assessment := c.AnnualTax(annual, age, members)

	payment := assessment.Liability.Sub(previous)
	if payment.IsNegative() {
		payment = decimal.Zero
	}

	return Provisional{
		PeriodMonths:       months,
		PeriodIncome:       income,
		PeriodExpenses:     expenses,
		PeriodProfit:       profit,
		AnnualEstimate:     annual,
		EstimatedAnnualTax: assessment.Liability,
		PreviousPayments:   previous,
		Payment:            payment,
		EffectiveRate:      assessment.EffectiveRate,
		Breakdown:          assessment,
	}
}
