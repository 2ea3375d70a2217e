package report

import (
	"errors"
	"fmt"
	"time"
)

// Provisional period kinds.
const (
	FirstPeriod  = "first"
	SecondPeriod = "second"
)

var ErrUnknownPeriod = errors.New("unknown provisional period")

// Window is a provisional tax period and the name its export is filed under.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Name  string    `json:"name"`
}

// Period returns the provisional period of the tax year starting in March of
// year. The first runs March to August, the second September to the end of
// the following February.
func Period(kind string, year int) (Window, error) {
	switch kind {
	case FirstPeriod:
		return Window{
			Start: time.Date(year, time.March, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(year, time.August, 31, 0, 0, 0, 0, time.UTC),
			Name:  fmt.Sprintf("PnLMarAugforAug%d", year),
		}, nil
	case SecondPeriod:
		return Window{
			Start: time.Date(year, time.September, 1, 0, 0, 0, 0, time.UTC),
			// Day zero of March is the last day of February.
			End:  time.Date(year+1, time.March, 0, 0, 0, 0, 0, time.UTC),
			Name: fmt.Sprintf("PnLSepFebforFeb%d", year+1),
		}, nil
	}
	return Window{}, fmt.Errorf("%w: %q (must be %q or %q)", ErrUnknownPeriod, kind, FirstPeriod, SecondPeriod)
}

// MonthsIn returns the first day of every month touched by [start, end].
func MonthsIn(start, end time.Time) []time.Time {
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)

	var months []time.Time
	for !cur.After(last) {
		months = append(months, cur)
		cur = cur.AddDate(0, 1, 0)
	}
	return months
}
