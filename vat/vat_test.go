package vat

import (
	"testing"
	"time"

	"github.com/aqlanhadi/sbtax/config"
	"github.com/aqlanhadi/sbtax/ledger"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func equalDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	if !dec(want).Equal(got) {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestRateFor(t *testing.T) {
	c := NewCalculator(DefaultRates())

	equalDecimal(t, "0.14", c.RateFor(day(2017, time.June, 1), Standard))
	equalDecimal(t, "0.14", c.RateFor(time.Date(2018, time.March, 31, 17, 30, 0, 0, time.UTC), Standard))
	equalDecimal(t, "0.15", c.RateFor(day(2018, time.April, 1), Standard))
	equalDecimal(t, "0.15", c.RateFor(day(2025, time.May, 1), ""))
	equalDecimal(t, "0.15", c.RateFor(day(1990, time.January, 1), Standard))

	for _, kind := range []string{Zero, Exempt, NoVAT} {
		equalDecimal(t, "0", c.RateFor(day(2025, time.May, 1), kind))
	}
}

func TestLoadRatesFromDefaults(t *testing.T) {
	v := viper.New()
	require.NoError(t, config.ReadDefaults(v))

	rates, err := LoadRates(v)
	require.NoError(t, err)
	require.Len(t, rates, 2)
	assert.Nil(t, rates[1].To)
	equalDecimal(t, "0.15", rates[1].Rate)
	assert.Equal(t, day(2018, time.March, 31), *rates[0].To)
}

func TestLoadRatesUnset(t *testing.T) {
	rates, err := LoadRates(viper.New())
	require.NoError(t, err)
	assert.Equal(t, DefaultRates(), rates)
}

func TestLoadRatesInvalid(t *testing.T) {
	v := viper.New()
	v.Set("vat.rates", []map[string]interface{}{{"from": "01/04/2018", "rate": 0.15}})
	_, err := LoadRates(v)
	assert.Error(t, err)

	v = viper.New()
	v.Set("vat.rates", []map[string]interface{}{{"from": "2018-04-01", "to": "2018-01-01", "rate": 0.15}})
	_, err = LoadRates(v)
	assert.Error(t, err)
}

func TestFromInclusive(t *testing.T) {
	b := FromInclusive(dec("115"), dec("0.15"))
	equalDecimal(t, "100", b.Exclusive)
	equalDecimal(t, "15", b.VAT)
	equalDecimal(t, "115", b.Inclusive)
	equalDecimal(t, "15", b.RatePercent)

	b = FromInclusive(dec("100"), dec("0.15"))
	equalDecimal(t, "86.96", b.Exclusive)
	equalDecimal(t, "13.04", b.VAT)

	b = FromInclusive(dec("100"), decimal.Zero)
	equalDecimal(t, "100", b.Exclusive)
	equalDecimal(t, "0", b.VAT)
}

func TestFromExclusive(t *testing.T) {
	b := FromExclusive(dec("100"), dec("0.15"))
	equalDecimal(t, "15", b.VAT)
	equalDecimal(t, "115", b.Inclusive)

	b = FromExclusive(dec("10.01"), dec("0.15"))
	equalDecimal(t, "1.50", b.VAT)
	equalDecimal(t, "11.51", b.Inclusive)
}

func TestForEntryKeepsSign(t *testing.T) {
	c := NewCalculator(DefaultRates())

	b := c.ForEntry(ledger.Entry{Date: day(2025, time.May, 1), Amount: dec("-115")})
	equalDecimal(t, "-100", b.Exclusive)
	equalDecimal(t, "-15", b.VAT)
	equalDecimal(t, "-115", b.Inclusive)

	b = c.ForEntry(ledger.Entry{Date: day(2025, time.May, 1), Amount: dec("200"), VATExclusive: true})
	equalDecimal(t, "30", b.VAT)
	equalDecimal(t, "230", b.Inclusive)
}

func TestSummarize(t *testing.T) {
	c := NewCalculator(DefaultRates())
	entries := []ledger.Entry{
		{Date: day(2025, time.March, 3), Amount: dec("1150")},
		{Date: day(2025, time.March, 10), Amount: dec("-230"), VATClaimable: true},
		{Date: day(2025, time.March, 11), Amount: dec("-115")},
		{Date: day(2025, time.April, 2), Amount: dec("500"), VATRateType: Zero},
		{Date: day(2025, time.June, 1), Amount: dec("1150")},
	}

	s := c.Summarize(entries, day(2025, time.March, 1), day(2025, time.April, 30))

	assert.Equal(t, 4, s.Count)
	assert.Len(t, s.Lines, 4)
	equalDecimal(t, "150", s.OutputVAT)
	equalDecimal(t, "30", s.InputVAT)
	equalDecimal(t, "120", s.NetVAT)
	equalDecimal(t, "150", s.OutputByRate[Standard])
	equalDecimal(t, "0", s.OutputByRate[Zero])
	equalDecimal(t, "30", s.InputByRate[Standard])
}

func TestSummarizeRefund(t *testing.T) {
	c := NewCalculator(DefaultRates())
	entries := []ledger.Entry{
		{Date: day(2025, time.March, 10), Amount: dec("-2300"), VATClaimable: true},
	}

	s := c.Summarize(entries, day(2025, time.March, 1), day(2025, time.March, 31))
	equalDecimal(t, "-300", s.NetVAT)
}

func TestSummarizeSkipsOwnAccountTransfers(t *testing.T) {
	c := NewCalculator(DefaultRates())
	entries := []ledger.Entry{
		{Date: day(2025, time.March, 3), Amount: dec("1150")},
		{Date: day(2025, time.March, 4), Amount: dec("11500"), InterAccount: true},
	}

	s := c.Summarize(entries, day(2025, time.March, 1), day(2025, time.March, 31))
	equalDecimal(t, "150", s.OutputVAT)
	assert.Equal(t, 2, s.Count)
}
