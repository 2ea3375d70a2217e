package common

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dialect identifies a statement layout: the account type plus, for cheque and
// card statements, the detailed monthly or six-month summary table variant.
type Dialect string

const (
	ChequeDetailed Dialect = "SBSA_CHEQUE_DETAILED"
	ChequeSummary  Dialect = "SBSA_CHEQUE_SUMMARY"
	CardDetailed   Dialect = "SBSA_CARD_DETAILED"
	CardSummary    Dialect = "SBSA_CARD_SUMMARY"
	HomeLoan       Dialect = "SBSA_HOME_LOAN"
)

const (
	AccountChecking   = "checking"
	AccountCreditCard = "credit_card"
	AccountMortgage   = "mortgage"
)

// AccountType maps a dialect to the account type stored with its statement.
func (d Dialect) AccountType() string {
	switch d {
	case ChequeDetailed, ChequeSummary:
		return AccountChecking
	case CardDetailed, CardSummary:
		return AccountCreditCard
	case HomeLoan:
		return AccountMortgage
	}
	return ""
}

// Summary reports whether the dialect is a six-month summary layout.
func (d Dialect) Summary() bool {
	return d == ChequeSummary || d == CardSummary
}

type Statement struct {
	Source        string        `json:"source"`
	Dialect       Dialect       `json:"dialect"`
	AccountType   string        `json:"account_type"`
	AccountNumber string        `json:"account_number,omitempty"`
	PeriodStart   *time.Time    `json:"period_start,omitempty"`
	PeriodEnd     *time.Time    `json:"period_end,omitempty"`
	Transactions  []Transaction `json:"transactions"`
}

// Transaction is one statement row. The category fields stay empty until the
// statement goes through the categorizer.
type Transaction struct {
	Sequence     int             `json:"sequence"`
	Date         time.Time       `json:"date"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	Category     string          `json:"category,omitempty"`
	CategoryType string          `json:"category_type,omitempty"`
	Confidence   float64         `json:"confidence"`
	InterAccount bool            `json:"inter_account,omitempty"`
	NeedsSplit   bool            `json:"needs_split,omitempty"`
}
