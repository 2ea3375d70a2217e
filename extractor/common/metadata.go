package common

import (
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

var accountNoiseRe = regexp.MustCompile(`[\s\-]`)

// CompilePatterns compiles configured regex alternatives in order. A broken
// pattern is logged and skipped so one bad config entry does not disable the
// others.
func CompilePatterns(exprs []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		re, err := regexp.Compile(expr)
		if err != nil {
			logrus.WithError(err).WithField("pattern", expr).Warn("skipping invalid statement pattern")
			continue
		}
		compiled = append(compiled, re)
	}
	return compiled
}

// NormalizeAccountNumber drops separators and turns masked digits ("x") into "*".
func NormalizeAccountNumber(raw string) string {
	clean := accountNoiseRe.ReplaceAllString(raw, "")
	return strings.ReplaceAll(clean, "x", "*")
}

// MatchAccountNumber returns the first capture of the first pattern that matches.
func MatchAccountNumber(text string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		if n := NormalizeAccountNumber(m[1]); n != "" {
			return n
		}
	}
	return ""
}

// MatchDateRange returns the period captured by the first pattern whose two
// groups both parse as dates. A reversed range is put back in order.
func MatchDateRange(text string, patterns []*regexp.Regexp) (start, end time.Time, ok bool) {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if len(m) < 3 {
			continue
		}
		s, err := ParseDate(m[1])
		if err != nil {
			continue
		}
		e, err := ParseDate(m[2])
		if err != nil {
			continue
		}
		if e.Before(s) {
			s, e = e, s
		}
		return s, e, true
	}
	return time.Time{}, time.Time{}, false
}

// Metadata accumulates the header fields of a statement. Each field is captured
// from the first page that yields it and never overwritten.
type Metadata struct {
	AccountNumber string
	PeriodStart   *time.Time
	PeriodEnd     *time.Time
}

func (m *Metadata) Capture(page string, accountPatterns, rangePatterns []*regexp.Regexp) {
	if m.AccountNumber == "" {
		m.AccountNumber = MatchAccountNumber(page, accountPatterns)
	}
	if m.PeriodStart == nil {
		if s, e, ok := MatchDateRange(page, rangePatterns); ok {
			m.PeriodStart, m.PeriodEnd = &s, &e
		}
	}
}

// StartYear is the two-digit year of the period start, or "" when unknown.
func (m *Metadata) StartYear() string {
	if m.PeriodStart == nil {
		return ""
	}
	return TwoDigitYear(m.PeriodStart.Year())
}

// Apply copies the captured header onto a statement.
func (m *Metadata) Apply(stmt *Statement) {
	stmt.AccountNumber = m.AccountNumber
	stmt.PeriodStart = m.PeriodStart
	stmt.PeriodEnd = m.PeriodEnd
}
