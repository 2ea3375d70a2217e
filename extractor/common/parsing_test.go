package common

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseDate_AllLayoutsRoundTrip(t *testing.T) {
	dates := []time.Time{
		time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		time.Date(2001, 9, 9, 0, 0, 0, 0, time.UTC),
	}

	for _, layout := range dateLayouts {
		for _, d := range dates {
			formatted := d.Format(layout)
			got, err := ParseDate(formatted)
			if err != nil {
				t.Fatalf("ParseDate(%q) failed: %v", formatted, err)
			}
			if !got.Equal(d) {
				t.Errorf("ParseDate(%q) = %v, want %v", formatted, got, d)
			}
		}
	}
}

func TestParseDate_ZeroPaddedDay(t *testing.T) {
	got, err := ParseDate("01 Apr 25")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestParseDate_FullMonthAndExtraSpaces(t *testing.T) {
	got, err := ParseDate("31   August  2025")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.Month() != time.August || got.Day() != 31 || got.Year() != 2025 {
		t.Errorf("Unexpected date %v", got)
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, value := range []string{"", "invalid", "32 Jan 25", "15 Foo 25", "15/03/25"} {
		if _, err := ParseDate(value); err == nil {
			t.Errorf("Expected error for %q", value)
		}
	}
}

func TestParseAmount(t *testing.T) {
	cases := map[string]string{
		"R1,234.56": "1234.56",
		"-99.00":    "-99",
		"+ 10.00":   "10",
		"1 000.50":  "1000.5",
	}
	for in, want := range cases {
		got, err := ParseAmount(in)
		if err != nil {
			t.Fatalf("ParseAmount(%q) failed: %v", in, err)
		}
		if !got.Equal(decimal.RequireFromString(want)) {
			t.Errorf("ParseAmount(%q) = %s, want %s", in, got, want)
		}
	}

	if _, err := ParseAmount("R"); err == nil {
		t.Error("Expected error for empty amount")
	}
}

func TestSplitBody_DescriptionAmountBalance(t *testing.T) {
	body, ok := SplitBody("NETFLIX.COM LOS GATOS -99.00 12,345.67")
	if !ok {
		t.Fatal("Expected body to split")
	}
	if body.Description != "NETFLIX.COM LOS GATOS" {
		t.Errorf("Unexpected description %q", body.Description)
	}
	if !body.Amount.Equal(decimal.RequireFromString("-99.00")) {
		t.Errorf("Expected -99.00, got %s", body.Amount)
	}
	if body.Credit {
		t.Error("Expected no explicit credit")
	}
}

func TestSplitBody_DetachedSign(t *testing.T) {
	body, ok := SplitBody("TAKEALOT CAPE TOWN - 1,199.98 5,000.00")
	if !ok {
		t.Fatal("Expected body to split")
	}
	if !body.Amount.Equal(decimal.RequireFromString("-1199.98")) {
		t.Errorf("Expected -1199.98, got %s", body.Amount)
	}
	if body.Description != "TAKEALOT CAPE TOWN" {
		t.Errorf("Unexpected description %q", body.Description)
	}
}

func TestSplitBody_DetachedPlusIsCredit(t *testing.T) {
	body, ok := SplitBody("PAYMENT RECEIVED + 2,500.00")
	if !ok {
		t.Fatal("Expected body to split")
	}
	if !body.Credit {
		t.Error("Expected explicit credit")
	}
	if !body.Amount.Equal(decimal.NewFromInt(2500)) {
		t.Errorf("Expected 2500, got %s", body.Amount)
	}
}

func TestSplitBody_DashInsideDescription(t *testing.T) {
	body, ok := SplitBody("DEBIT ORDER - DO 1,000.00")
	if !ok {
		t.Fatal("Expected body to split")
	}
	if body.Description != "DEBIT ORDER - DO" {
		t.Errorf("Unexpected description %q", body.Description)
	}
}

func TestSplitBody_Rejects(t *testing.T) {
	for _, in := range []string{"", "-99.00", "NO AMOUNT HERE", "FEE 12.5"} {
		if _, ok := SplitBody(in); ok {
			t.Errorf("Expected %q to be rejected", in)
		}
	}
}

func TestSplitBody_EmptyDescriptionAllowed(t *testing.T) {
	body, ok := SplitBody("-50.00 1,000.00")
	if !ok {
		t.Fatal("Expected body to split")
	}
	if body.Description != "" {
		t.Errorf("Expected empty description, got %q", body.Description)
	}
}

func TestTwoDigitYear(t *testing.T) {
	if got := TwoDigitYear(2025); got != "25" {
		t.Errorf("Expected 25, got %s", got)
	}
	if got := TwoDigitYear(5); got != "05" {
		t.Errorf("Expected 05, got %s", got)
	}
}
