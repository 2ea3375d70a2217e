package vat

import (
	"time"

	"github.com/aqlanhadi/sbtax/ledger"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Breakdown splits an amount into its VAT components.
type Breakdown struct {
	Rate        decimal.Decimal `json:"vat_rate"`
	RatePercent decimal.Decimal `json:"vat_rate_percent"`
	Exclusive   decimal.Decimal `json:"amount_excl_vat"`
	VAT         decimal.Decimal `json:"vat_amount"`
	Inclusive   decimal.Decimal `json:"amount_incl_vat"`
}

func (b Breakdown) negate() Breakdown {
	b.Exclusive = b.Exclusive.Neg()
	b.VAT = b.VAT.Neg()
	b.Inclusive = b.Inclusive.Neg()
	return b
}

// FromInclusive extracts VAT from an amount that already includes it.
func FromInclusive(incl, rate decimal.Decimal) Breakdown {
	b := Breakdown{Rate: rate, RatePercent: rate.Mul(hundred), Exclusive: incl, VAT: decimal.Zero, Inclusive: incl}
	if rate.IsZero() {
		return b
	}
	excl := incl.Div(decimal.NewFromInt(1).Add(rate))
	b.Exclusive = excl.RoundBank(2)
	b.VAT = incl.Sub(excl).RoundBank(2)
	return b
}

// FromExclusive adds VAT to an amount recorded before VAT.
func FromExclusive(excl, rate decimal.Decimal) Breakdown {
	b := Breakdown{Rate: rate, RatePercent: rate.Mul(hundred), Exclusive: excl, VAT: decimal.Zero, Inclusive: excl}
	if rate.IsZero() {
		return b
	}
	vat := excl.Mul(rate)
	b.VAT = vat.RoundBank(2)
	b.Inclusive = excl.Add(vat).RoundBank(2)
	return b
}

// ForEntry computes VAT on the absolute amount of e and gives the components
// the sign of the entry.
func (c *Calculator) ForEntry(e ledger.Entry) Breakdown {
	rate := c.RateFor(e.Date, e.VATRateType)

	var b Breakdown
	if e.VATExclusive {
		b = FromExclusive(e.Amount.Abs(), rate)
	} else {
		b = FromInclusive(e.Amount.Abs(), rate)
	}
	if e.Amount.IsNegative() {
		return b.negate()
	}
	return b
}

// Line is an entry with its VAT components.
type Line struct {
	ledger.Entry
	Breakdown
}

// Summary is the VAT position for a return period. A positive NetVAT is owed
// to SARS, a negative one is a refund.
type Summary struct {
	PeriodStart  time.Time                  `json:"period_start"`
	PeriodEnd    time.Time                  `json:"period_end"`
	OutputVAT    decimal.Decimal            `json:"output_vat"`
	InputVAT     decimal.Decimal            `json:"input_vat"`
	NetVAT       decimal.Decimal            `json:"net_vat"`
	OutputByRate map[string]decimal.Decimal `json:"output_vat_by_rate"`
	InputByRate  map[string]decimal.Decimal `json:"input_vat_by_rate"`
	Lines        []Line                     `json:"transactions,omitempty"`
	Count        int                        `json:"transaction_count"`
}

func rateType(e ledger.Entry) string {
	if e.VATRateType == "" {
		return Standard
	}
	return e.VATRateType
}

// Summarize totals output VAT on money received and claimable input VAT on
// money spent for the entries dated within [start, end].
func (c *Calculator) Summarize(entries []ledger.Entry, start, end time.Time) Summary {
	inPeriod := ledger.Between(entries, start, end)

	s := Summary{
		PeriodStart:  start,
		PeriodEnd:    end,
		OutputByRate: map[string]decimal.Decimal{},
		InputByRate:  map[string]decimal.Decimal{},
		Lines:        make([]Line, 0, len(inPeriod)),
		Count:        len(inPeriod),
	}

	output := decimal.Zero
	input := decimal.Zero
	for _, e := range inPeriod {
		b := c.ForEntry(e)
		s.Lines = append(s.Lines, Line{Entry: e, Breakdown: b})

		vat := b.VAT.Abs()
		kind := rateType(e)
		switch {
		case e.Amount.IsPositive() && !e.InterAccount:
			output = output.Add(vat)
			s.OutputByRate[kind] = s.OutputByRate[kind].Add(vat)
		case e.Amount.IsNegative() && e.VATClaimable:
			input = input.Add(vat)
			s.InputByRate[kind] = s.InputByRate[kind].Add(vat)
		}
	}

	s.OutputVAT = output.RoundBank(2)
	s.InputVAT = input.RoundBank(2)
	s.NetVAT = output.Sub(input).RoundBank(2)
	return s
}
