// Package vat extracts South African VAT from ledger amounts and summarises
// output and input VAT for a return period.
package vat

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Rate types recorded against a ledger entry.
const (
	Standard = "standard"
	Zero     = "zero"
	Exempt   = "exempt"
	NoVAT    = "no_vat"
)

// FallbackRate applies to dates no configured period covers.
var FallbackRate = decimal.RequireFromString("0.15")

// RatePeriod is the standard rate in force from From to To, both inclusive.
// A nil To is open ended.
type RatePeriod struct {
	From time.Time       `json:"from"`
	To   *time.Time      `json:"to,omitempty"`
	Rate decimal.Decimal `json:"rate"`
}

func (p RatePeriod) covers(t time.Time) bool {
	if t.Before(p.From) {
		return false
	}
	return p.To == nil || !t.After(*p.To)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DefaultRates are the rates since VAT was introduced.
func DefaultRates() []RatePeriod {
	end := day(2018, time.March, 31)
	return []RatePeriod{
		{From: day(1993, time.April, 1), To: &end, Rate: decimal.RequireFromString("0.14")},
		{From: day(2018, time.April, 1), Rate: decimal.RequireFromString("0.15")},
	}
}

type rawPeriod struct {
	From string  `mapstructure:"from"`
	To   string  `mapstructure:"to"`
	Rate float64 `mapstructure:"rate"`
}

// LoadRates reads vat.rates from v. An unset key gives the defaults.
func LoadRates(v *viper.Viper) ([]RatePeriod, error) {
	if !v.IsSet("vat.rates") {
		return DefaultRates(), nil
	}

	var raw []rawPeriod
	if err := v.UnmarshalKey("vat.rates", &raw); err != nil {
		return nil, fmt.Errorf("failed to decode vat rates: %w", err)
	}

	rates := make([]RatePeriod, 0, len(raw))
	for i, r := range raw {
		from, err := time.Parse(time.DateOnly, r.From)
		if err != nil {
			return nil, fmt.Errorf("vat.rates[%d].from: %w", i, err)
		}
		period := RatePeriod{From: from, Rate: decimal.NewFromFloat(r.Rate)}
		if r.To != "" {
			to, err := time.Parse(time.DateOnly, r.To)
			if err != nil {
				return nil, fmt.Errorf("vat.rates[%d].to: %w", i, err)
			}
			if to.Before(from) {
				return nil, fmt.Errorf("vat.rates[%d] ends before it starts", i)
			}
			period.To = &to
		}
		rates = append(rates, period)
	}
	return rates, nil
}

// Calculator resolves rates for dates and computes VAT on entries.
type Calculator struct {
	rates []RatePeriod
}

// NewCalculator keeps its own copy of rates, latest period first.
func NewCalculator(rates []RatePeriod) *Calculator {
	sorted := make([]RatePeriod, len(rates))
	copy(sorted, rates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].From.After(sorted[j].From)
	})
	return &Calculator{rates: sorted}
}

// RateFor returns the rate applicable on date for the given rate type. Zero
// rated, exempt and no-VAT entries carry no VAT.
func (c *Calculator) RateFor(date time.Time, rateType string) decimal.Decimal {
	switch rateType {
	case Zero, Exempt, NoVAT:
		return decimal.Zero
	}

	y, m, d := date.Date()
	on := day(y, m, d)
	for _, p := range c.rates {
		if p.covers(on) {
			return p.Rate
		}
	}
	return FallbackRate
}
