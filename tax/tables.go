// Package tax estimates South African personal income tax and provisional tax
// payments for a sole proprietor.
package tax

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Bracket charges Base plus Rate on the income above Min. A zero Max marks the
// open top bracket.
type Bracket struct {
	Min  decimal.Decimal `json:"min"`
	Max  decimal.Decimal `json:"max"`
	Rate decimal.Decimal `json:"rate"`
	Base decimal.Decimal `json:"base"`
}

func (b Bracket) covers(income decimal.Decimal) bool {
	return b.Max.IsZero() || income.LessThanOrEqual(b.Max)
}

type Rebates struct {
	Primary   decimal.Decimal `json:"primary"`
	Secondary decimal.Decimal `json:"secondary"`
	Tertiary  decimal.Decimal `json:"tertiary"`
}

// MedicalCredits are monthly amounts.
type MedicalCredits struct {
	Main           decimal.Decimal `json:"main"`
	FirstDependent decimal.Decimal `json:"first_dependent"`
	Additional     decimal.Decimal `json:"additional"`
}

// Tables are the published figures for one tax year. Year 2025 is the year
// running from March 2025 to February 2026.
type Tables struct {
	Year           int            `json:"year"`
	Description    string         `json:"description"`
	Brackets       []Bracket      `json:"brackets"`
	Rebates        Rebates        `json:"rebates"`
	MedicalCredits MedicalCredits `json:"medical_credits"`
}

func d(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// DefaultTables returns the 2025/2026 tables.
func DefaultTables() Tables {
	return Tables{
		Year:        2025,
		Description: "2025/2026 Tax Year",
		Brackets: []Bracket{
			{Min: d(0), Max: d(237100), Rate: d(0.18), Base: d(0)},
			{Min: d(237100), Max: d(370500), Rate: d(0.26), Base: d(42678)},
			{Min: d(370500), Max: d(512800), Rate: d(0.31), Base: d(77362)},
			{Min: d(512800), Max: d(673000), Rate: d(0.36), Base: d(121475)},
			{Min: d(673000), Max: d(857900), Rate: d(0.39), Base: d(179147)},
			{Min: d(857900), Max: d(1817000), Rate: d(0.41), Base: d(251258)},
			{Min: d(1817000), Max: d(0), Rate: d(0.45), Base: d(644489)},
		},
		Rebates: Rebates{
			Primary:   d(17235),
			Secondary: d(9444),
			Tertiary:  d(3145),
		},
		MedicalCredits: MedicalCredits{
			Main:           d(364),
			FirstDependent: d(246),
			Additional:     d(246),
		},
	}
}

type rawBracket struct {
	Min  float64 `mapstructure:"min"`
	Max  float64 `mapstructure:"max"`
	Rate float64 `mapstructure:"rate"`
	Base float64 `mapstructure:"base"`
}

type rawTables struct {
	Year        int          `mapstructure:"year"`
	Description string       `mapstructure:"description"`
	Brackets    []rawBracket `mapstructure:"brackets"`
	Rebates     struct {
		Primary   float64 `mapstructure:"primary"`
		Secondary float64 `mapstructure:"secondary"`
		Tertiary  float64 `mapstructure:"tertiary"`
	} `mapstructure:"rebates"`
	MedicalCredits struct {
		Main           float64 `mapstructure:"main"`
		FirstDependent float64 `mapstructure:"first_dependent"`
		Additional     float64 `mapstructure:"additional"`
	} `mapstructure:"medical_credits"`
}

func (r rawTables) tables() Tables {
	t := Tables{
		Year:        r.Year,
		Description: r.Description,
		Brackets:    make([]Bracket, 0, len(r.Brackets)),
		Rebates: Rebates{
			Primary:   d(r.Rebates.Primary),
			Secondary: d(r.Rebates.Secondary),
			Tertiary:  d(r.Rebates.Tertiary),
		},
		MedicalCredits: MedicalCredits{
			Main:           d(r.MedicalCredits.Main),
			FirstDependent: d(r.MedicalCredits.FirstDependent),
			Additional:     d(r.MedicalCredits.Additional),
		},
	}
	for _, b := range r.Brackets {
		t.Brackets = append(t.Brackets, Bracket{Min: d(b.Min), Max: d(b.Max), Rate: d(b.Rate), Base: d(b.Base)})
	}
	return t
}

// LoadTables reads tax.tables from v and picks the given year. When the year
// is not configured the built-in tables are used.
func LoadTables(v *viper.Viper, year int) (Tables, error) {
	var raw []rawTables
	if err := v.UnmarshalKey("tax.tables", &raw); err != nil {
		return Tables{}, fmt.Errorf("failed to decode tax tables: %w", err)
	}

	for _, r := range raw {
		if r.Year != year {
			continue
		}
		if len(r.Brackets) == 0 {
			return Tables{}, fmt.Errorf("tax tables for %d have no brackets", year)
		}
		return r.tables(), nil
	}

	logrus.WithField("year", year).Warn("no tax tables configured for year, using built-in 2025/2026 tables")
	return DefaultTables(), nil
}
