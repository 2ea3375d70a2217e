package common

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	yearMarkerRe     = regexp.MustCompile(`^\d{4}$`)
	dateLineRe       = regexp.MustCompile(`^(\d{1,2}\s+\w{3})(?:\s+(\d{2}))?\s+(.+)`)
	summaryLineRe    = regexp.MustCompile(`^(\d{1,2}\s+\w{3}\s+\d{2})\s+(.+)`)
	datePrefixRe     = regexp.MustCompile(`^\d{1,2}\s+\w{3}`)
	fullDatePrefixRe = regexp.MustCompile(`^\d{1,2}\s+\w{3}\s+\d{2}`)
)

var boilerplatePrefixes = []string{"Customer Care", "The Standard"}

// Lines splits page text into trimmed lines, keeping blank ones so that line
// offsets stay meaningful.
func Lines(page string) []string {
	raw := strings.Split(page, "\n")
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = strings.TrimSpace(l)
	}
	return lines
}

// YearMarker reports whether line is a bare four-digit year and returns its last
// two digits.
func YearMarker(line string) (string, bool) {
	if !yearMarkerRe.MatchString(line) {
		return "", false
	}
	return line[2:], true
}

// DateLine is a line opening with "dd Mon" and an optional two-digit year.
type DateLine struct {
	DayMonth string
	Year     string // empty when the row carries no year
	Body     string
}

func MatchDateLine(line string) (DateLine, bool) {
	m := dateLineRe.FindStringSubmatch(line)
	if m == nil {
		return DateLine{}, false
	}
	return DateLine{DayMonth: m[1], Year: m[2], Body: m[3]}, true
}

// MatchSummaryLine matches the summary layouts, where every row starts with a
// full "dd Mon yy" date.
func MatchSummaryLine(line string) (date, body string, ok bool) {
	m := summaryLineRe.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

func StartsWithDate(line string) bool {
	return datePrefixRe.MatchString(line)
}

func StartsWithFullDate(line string) bool {
	return fullDatePrefixRe.MatchString(line)
}

// IsBoilerplate reports page furniture that must never be merged into a
// transaction description.
func IsBoilerplate(line string) bool {
	for _, p := range boilerplatePrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

func HasLetters(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// Continuation reports whether line can be read as the wrapped part of the
// previous row's description. startsRow decides what counts as a new row for
// the layout at hand.
func Continuation(line string, startsRow func(string) bool) bool {
	if line == "" || startsRow(line) || IsBoilerplate(line) {
		return false
	}
	_, isYear := YearMarker(line)
	return !isYear
}
