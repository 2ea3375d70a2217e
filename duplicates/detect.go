// Package duplicates finds transactions that appear more than once in the
// ledger, usually because overlapping statements were imported.
package duplicates

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// ScoreExact is given to pairs whose descriptions are identical.
	ScoreExact = 1.0
	// ScorePartial is given to pairs where one description contains the other.
	ScorePartial = 0.8
)

// Transaction is the slice of a ledger row needed to compare it with others.
type Transaction struct {
	ID            int64           `json:"id"`
	Date          time.Time       `json:"date"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	AccountNumber string          `json:"account_number,omitempty"`
}

// Candidate pairs two positions of the input slice. IndexA is always the
// lower index.
type Candidate struct {
	IndexA int     `json:"index_a"`
	IndexB int     `json:"index_b"`
	Score  float64 `json:"score"`
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Detect compares every pair of transactions. A pair qualifies only when the
// date and the amount are equal, with no tolerance on either. Short generic
// descriptions can produce partial matches against unrelated longer ones.
func Detect(txs []Transaction) []Candidate {
	upper := make([]string, len(txs))
	for i, tx := range txs {
		upper[i] = strings.ToUpper(tx.Description)
	}

	var candidates []Candidate
	for i := 0; i < len(txs); i++ {
		for j := i + 1; j < len(txs); j++ {
			if !sameDay(txs[i].Date, txs[j].Date) || !txs[i].Amount.Equal(txs[j].Amount) {
				continue
			}

			switch {
			case upper[i] == upper[j]:
				candidates = append(candidates, Candidate{IndexA: i, IndexB: j, Score: ScoreExact})
			case strings.Contains(upper[i], upper[j]) || strings.Contains(upper[j], upper[i]):
				candidates = append(candidates, Candidate{IndexA: i, IndexB: j, Score: ScorePartial})
			}
		}
	}
	return candidates
}

// Pair identifies two transactions regardless of order.
type Pair struct {
	A int64 `json:"a"`
	B int64 `json:"b"`
}

func NewPair(a, b int64) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// Match is a candidate resolved to the transactions it points at. Duplicate is
// the later one in scan order and is the row that gets marked.
type Match struct {
	Original  Transaction `json:"original"`
	Duplicate Transaction `json:"duplicate"`
	Score     float64     `json:"score"`
}

func (m Match) Pair() Pair {
	return NewPair(m.Original.ID, m.Duplicate.ID)
}

// SameAccount reports whether both sides come from the same known account.
func (m Match) SameAccount() bool {
	return m.Original.AccountNumber != "" && m.Original.AccountNumber == m.Duplicate.AccountNumber
}

func resolve(txs []Transaction, c Candidate) Match {
	return Match{Original: txs[c.IndexA], Duplicate: txs[c.IndexB], Score: c.Score}
}

// Matches resolves candidates against the slice they were detected in.
func Matches(txs []Transaction, candidates []Candidate) []Match {
	out := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, resolve(txs, c))
	}
	return out
}

// WithoutDismissed drops candidates the user has already said are distinct.
func WithoutDismissed(txs []Transaction, candidates []Candidate, dismissed map[Pair]bool) []Candidate {
	if len(dismissed) == 0 {
		return candidates
	}
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if dismissed[NewPair(txs[c.IndexA].ID, txs[c.IndexB].ID)] {
			continue
		}
		out = append(out, c)
	}
	return out
}

// AutoAccept splits candidates into pairs that can be marked without asking
// and pairs a person should review. Exact matches are always accepted; partial
// matches only when both rows belong to the same account. Once a row is marked
// it takes no further part in this pass.
func AutoAccept(txs []Transaction, candidates []Candidate, dismissed map[Pair]bool) (accepted, review []Match) {
	marked := make(map[int]bool)

	for _, c := range WithoutDismissed(txs, candidates, dismissed) {
		if marked[c.IndexA] || marked[c.IndexB] {
			continue
		}

		m := resolve(txs, c)
		if c.Score >= ScoreExact || (c.Score >= ScorePartial && m.SameAccount()) {
			accepted = append(accepted, m)
			marked[c.IndexB] = true
			continue
		}
		review = append(review, m)
	}
	return accepted, review
}
