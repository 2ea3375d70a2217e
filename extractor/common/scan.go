package common

import (
	"regexp"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const defaultFallbackYear = "25"

// Patterns are the ordered header regex alternatives of one statement family.
type Patterns struct {
	AccountNumber []*regexp.Regexp
	DateRange     []*regexp.Regexp
}

// LoadPatterns reads statement.<key>.patterns.account_number and .date_range.
func LoadPatterns(key string) Patterns {
	prefix := "statement." + key + ".patterns."
	return Patterns{
		AccountNumber: CompilePatterns(viper.GetStringSlice(prefix + "account_number")),
		DateRange:     CompilePatterns(viper.GetStringSlice(prefix + "date_range")),
	}
}

// FallbackYear is the two-digit year used when a row, its block and the
// statement header all fail to give one.
func FallbackYear() string {
	if !viper.IsSet("parser.fallback_year") {
		return defaultFallbackYear
	}
	return TwoDigitYear(viper.GetInt("parser.fallback_year"))
}

// AmountRule rewrites a parsed amount for a dialect's sign convention.
type AmountRule func(Body) decimal.Decimal

// KeepSign leaves the printed sign alone.
func KeepSign(b Body) decimal.Decimal {
	return b.Amount
}

// parserState is threaded through a single scan. Nothing survives between
// scans, so independent statements can be parsed concurrently.
type parserState struct {
	meta Metadata
	year string
	txs  []Transaction
}

func (s *parserState) yearFor(inline, fallback string) string {
	switch {
	case inline != "":
		return inline
	case s.year != "":
		return s.year
	case s.meta.StartYear() != "":
		return s.meta.StartYear()
	}
	return fallback
}

// ParseRow turns a date string and a transaction body into a transaction. Rows
// with a bad date or no amount are dropped.
func ParseRow(date, body string, rule AmountRule) (Transaction, bool) {
	d, err := ParseDate(date)
	if err != nil {
		return Transaction{}, false
	}
	b, ok := SplitBody(body)
	if !ok {
		return Transaction{}, false
	}
	if rule == nil {
		rule = KeepSign
	}
	return Transaction{Date: d, Description: b.Description, Amount: rule(b)}, true
}

func (s *parserState) add(date, body string, rule AmountRule) {
	tx, ok := ParseRow(date, body, rule)
	if !ok {
		return
	}
	tx.Sequence = len(s.txs) + 1
	s.txs = append(s.txs, tx)
}

// ScanDetailed reads the detailed monthly layout: rows open with "dd Mon" and an
// optional year, bare year lines set the year for the rows below them, and a
// row whose body has no letters takes its description from the next line.
func ScanDetailed(pages []string, p Patterns, fallbackYear string, rule AmountRule) (Metadata, []Transaction) {
	var state parserState

	for _, page := range pages {
		state.meta.Capture(page, p.AccountNumber, p.DateRange)

		lines := Lines(page)
		for i := 0; i < len(lines); i++ {
			line := lines[i]

			if yy, ok := YearMarker(line); ok {
				state.year = yy
				continue
			}

			dl, ok := MatchDateLine(line)
			if !ok {
				continue
			}

			body := dl.Body
			if !HasLetters(body) && i+1 < len(lines) && Continuation(lines[i+1], StartsWithDate) {
				body = lines[i+1] + " " + body
				i++
			}

			state.add(dl.DayMonth+" "+state.yearFor(dl.Year, fallbackYear), body, rule)
		}
	}

	return state.meta, state.txs
}

// ScanSummary reads the six-month summary layout: every row carries a full
// "dd Mon yy" date and the line below a row, when it is not itself a row, holds
// the rest of the description.
func ScanSummary(pages []string, p Patterns, rule AmountRule) (Metadata, []Transaction) {
	var state parserState

	for _, page := range pages {
		state.meta.Capture(page, p.AccountNumber, p.DateRange)

		lines := Lines(page)
		for i, line := range lines {
			date, body, ok := MatchSummaryLine(line)
			if !ok {
				continue
			}
			if i+1 < len(lines) && Continuation(lines[i+1], StartsWithFullDate) {
				body = body + " " + lines[i+1]
			}
			state.add(date, body, rule)
		}
	}

	return state.meta, state.txs
}
