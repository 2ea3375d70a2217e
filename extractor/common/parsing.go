package common

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Statement dates come in four spellings: abbreviated or full month name, two or
// four digit year. The day may be one or two digits.
var dateLayouts = []string{
	"2 Jan 06",
	"2 January 06",
	"2 Jan 2006",
	"2 January 2006",
}

var (
	amountRe      = regexp.MustCompile(`^[-+]?\d+\.\d{2}$`)
	unsignedAmtRe = regexp.MustCompile(`^[\d,]+\.\d{2}$`)
	amountNoiseRe = regexp.MustCompile(`[R,\s]`)
)

// ParseDate parses a statement date such as "01 Apr 25" or "1 April 2025".
func ParseDate(value string) (time.Time, error) {
	normalized := strings.Join(strings.Fields(value), " ")
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, normalized, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("could not parse date: %q", value)
}

// ParseAmount parses a money string, tolerating a rand prefix, thousands
// separators and a leading sign: "R1,234.56", "-99.00", "+ 10.00".
func ParseAmount(value string) (decimal.Decimal, error) {
	clean := amountNoiseRe.ReplaceAllString(value, "")
	clean = strings.TrimPrefix(clean, "+")
	if clean == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	return decimal.NewFromString(clean)
}

// Body is a transaction line split into its description and its first amount.
type Body struct {
	Description string
	Amount      decimal.Decimal
	// Credit is set when the amount carried an explicit "+".
	Credit bool
}

// SplitBody separates description tokens from amount tokens. The first amount is
// the transaction amount; any later one is a running balance and is dropped. A
// sign printed as its own token ("- 199.98") is folded into the following number.
// Bodies with fewer than two tokens or without an amount are rejected.
func SplitBody(body string) (Body, bool) {
	parts := strings.Fields(body)
	if len(parts) < 2 {
		return Body{}, false
	}

	var amounts, description []string
	for i := 0; i < len(parts); i++ {
		part := parts[i]

		if (part == "-" || part == "+") && i+1 < len(parts) {
			if unsignedAmtRe.MatchString(parts[i+1]) {
				amounts = append(amounts, part+strings.ReplaceAll(parts[i+1], ",", ""))
				i++
				continue
			}
			description = append(description, part)
			continue
		}

		clean := strings.ReplaceAll(part, ",", "")
		if amountRe.MatchString(clean) {
			amounts = append(amounts, clean)
			continue
		}
		description = append(description, part)
	}

	if len(amounts) == 0 {
		return Body{}, false
	}

	first := amounts[0]
	amount, err := decimal.NewFromString(strings.TrimPrefix(first, "+"))
	if err != nil {
		return Body{}, false
	}

	return Body{
		Description: strings.Join(description, " "),
		Amount:      amount,
		Credit:      strings.HasPrefix(first, "+"),
	}, true
}

// TwoDigitYear renders a configured fallback year (25 or 2025) as "25".
func TwoDigitYear(year int) string {
	return fmt.Sprintf("%02d", year%100)
}
