// Package ledger holds the categorised transaction rows shared by the tax, VAT
// and report calculations.
package ledger

import (
	"time"

	"github.com/aqlanhadi/sbtax/categorizer"
	"github.com/shopspring/decimal"
)

// InterAccountCategory names income rows that turned out to be transfers
// between the taxpayer's own accounts.
const InterAccountCategory = "Inter-account Transfers (Excluded)"

// Entry is one active, categorised ledger row. Amount is signed: positive for
// money in, negative for money out.
type Entry struct {
	ID            int64           `json:"id,omitempty"`
	Date          time.Time       `json:"date"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	Category      string          `json:"category,omitempty"`
	CategoryType  string          `json:"category_type,omitempty"`
	AccountNumber string          `json:"account_number,omitempty"`

	// VATRateType is one of standard, zero, exempt or no_vat. Empty means
	// standard.
	VATRateType string `json:"vat_rate_type,omitempty"`
	// VATExclusive marks amounts recorded before VAT was added.
	VATExclusive bool `json:"vat_exclusive,omitempty"`
	VATClaimable bool `json:"vat_claimable"`

	// InterAccount marks transfers between the taxpayer's own accounts.
	InterAccount bool `json:"inter_account,omitempty"`
}

// Effective returns the entry as totals should see it. An own-account
// transfer never counts as income, whatever category it matched.
func (e Entry) Effective() Entry {
	if e.InterAccount && categorizer.Type(e.CategoryType) == categorizer.Income {
		e.Category = InterAccountCategory
		e.CategoryType = string(categorizer.Excluded)
	}
	return e
}

// Between returns the entries dated within [start, end], both days inclusive.
func Between(entries []Entry, start, end time.Time) []Entry {
	from := truncateDay(start)
	to := truncateDay(end)

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		d := truncateDay(e.Date)
		if d.Before(from) || d.After(to) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
