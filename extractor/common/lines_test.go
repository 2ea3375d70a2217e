package common

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMatchDateLine(t *testing.T) {
	dl, ok := MatchDateLine("15 Mar 25 SOMETHING -99.00")
	assert.True(t, ok)
	assert.Equal(t, "15 Mar", dl.DayMonth)
	assert.Equal(t, "25", dl.Year)
	assert.Equal(t, "SOMETHING -99.00", dl.Body)

	dl, ok = MatchDateLine("3 Apr SHOPRITE 12.50")
	assert.True(t, ok)
	assert.Equal(t, "", dl.Year)
	assert.Equal(t, "SHOPRITE 12.50", dl.Body)

	// A two-digit amount is not mistaken for a year.
	dl, ok = MatchDateLine("3 Apr 12.50 1,000.00")
	assert.True(t, ok)
	assert.Equal(t, "", dl.Year)
	assert.Equal(t, "12.50 1,000.00", dl.Body)

	_, ok = MatchDateLine("Balance brought forward")
	assert.False(t, ok)
}

func TestMatchSummaryLine(t *testing.T) {
	date, body, ok := MatchSummaryLine("23 May 25 IB PAYMENT -500.00 1,500.00")
	assert.True(t, ok)
	assert.Equal(t, "23 May 25", date)
	assert.Equal(t, "IB PAYMENT -500.00 1,500.00", body)

	_, _, ok = MatchSummaryLine("23 May IB PAYMENT -500.00")
	assert.False(t, ok)
}

func TestYearMarker(t *testing.T) {
	yy, ok := YearMarker("2024")
	assert.True(t, ok)
	assert.Equal(t, "24", yy)

	_, ok = YearMarker("20245")
	assert.False(t, ok)
	_, ok = YearMarker("Year 2024")
	assert.False(t, ok)
}

func TestContinuation(t *testing.T) {
	assert.True(t, Continuation("CAPE TOWN ZA", StartsWithDate))
	assert.False(t, Continuation("", StartsWithDate))
	assert.False(t, Continuation("16 Mar 25 NEXT ROW 1.00", StartsWithDate))
	assert.False(t, Continuation("Customer Care 0860 123 000", StartsWithDate))
	assert.False(t, Continuation("The Standard Bank of South Africa", StartsWithDate))
	assert.False(t, Continuation("2025", StartsWithDate))
}

func TestHasLetters(t *testing.T) {
	assert.False(t, HasLetters("-99.00 1,000.00"))
	assert.True(t, HasLetters("-99.00 FEE"))
}

func TestLines(t *testing.T) {
	assert.Equal(t, []string{"a", "", "b"}, Lines("  a \r\n\n b"))
}

func TestMatchAccountNumber(t *testing.T) {
	patterns := CompilePatterns([]string{
		`Account:\s*Credit Card\s*([\d\-x]+)`,
		`Account number:\s*([\d\* ]+)`,
	})

	assert.Equal(t, "5520********9115", MatchAccountNumber("Account: Credit Card 5520-xxxx-xxxx-9115", patterns))
	assert.Equal(t, "5520****7880", MatchAccountNumber("Account number: 5520 **** 7880", patterns))
	assert.Equal(t, "", MatchAccountNumber("nothing here", patterns))
}

func TestCompilePatterns_SkipsInvalid(t *testing.T) {
	patterns := CompilePatterns([]string{`(`, `ok`})
	assert.Len(t, patterns, 1)
}

func TestMatchDateRange(t *testing.T) {
	patterns := []*regexp.Regexp{
		regexp.MustCompile(`Transaction date range:\s*(\d+\s+\w+\s+\d+)\s*-\s*(\d+\s+\w+\s+\d+)`),
		regexp.MustCompile(`(?s)From:\s*(\d+\s+\w+\s+\d+).*?To:\s*(\d+\s+\w+\s+\d+)`),
	}

	start, end, ok := MatchDateRange("Transaction date range: 01 March 2025 - 31 August 2025", patterns)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC), end)

	start, end, ok = MatchDateRange("From: 01 Sep 2024\nsome header\nTo: 28 Feb 2025", patterns)
	assert.True(t, ok)
	assert.Equal(t, 2024, start.Year())
	assert.Equal(t, time.February, end.Month())

	_, _, ok = MatchDateRange("no dates", patterns)
	assert.False(t, ok)
}

func TestMatchDateRange_Reversed(t *testing.T) {
	patterns := CompilePatterns([]string{`(\d+\s+\w+\s+\d+)\s*-\s*(\d+\s+\w+\s+\d+)`})
	start, end, ok := MatchDateRange("31 Aug 2025 - 01 Mar 2025", patterns)
	assert.True(t, ok)
	assert.True(t, start.Before(end))
}

func TestMetadata_CapturesOnce(t *testing.T) {
	acc := CompilePatterns([]string{`Account number:\s*(\d+\s+\d+)`})
	rng := CompilePatterns([]string{`Transaction date range:\s*(\d+\s+\w+\s+\d+)\s*-\s*(\d+\s+\w+\s+\d+)`})

	var m Metadata
	m.Capture("Account number: 10 21\nTransaction date range: 01 March 2025 - 31 August 2025", acc, rng)
	m.Capture("Account number: 99 99\nTransaction date range: 01 March 2020 - 31 August 2020", acc, rng)

	assert.Equal(t, "1021", m.AccountNumber)
	assert.Equal(t, 2025, m.PeriodStart.Year())
	assert.Equal(t, "25", m.StartYear())
}

func TestParseError(t *testing.T) {
	err := &ParseError{Source: "a.pdf", Dialect: CardDetailed, Err: ErrUnparsableStatement}
	assert.ErrorIs(t, err, ErrUnparsableStatement)
	assert.Contains(t, err.Error(), "a.pdf")
	assert.Contains(t, err.Error(), string(CardDetailed))
}

func TestDialectAccountType(t *testing.T) {
	assert.Equal(t, AccountChecking, ChequeSummary.AccountType())
	assert.Equal(t, AccountCreditCard, CardDetailed.AccountType())
	assert.Equal(t, AccountMortgage, HomeLoan.AccountType())
	assert.True(t, CardSummary.Summary())
	assert.False(t, HomeLoan.Summary())
}
