package card

import (
	"path/filepath"
	"strings"

	"github.com/aqlanhadi/sbtax/extractor/common"
	"github.com/shopspring/decimal"
)

const statementKey = "SBSA_CARD"

type patternConfig struct {
	Patterns     common.Patterns
	FallbackYear string
}

func loadConfig() patternConfig {
	return patternConfig{
		Patterns:     common.LoadPatterns(statementKey),
		FallbackYear: common.FallbackYear(),
	}
}

// detailedSign makes purchases negative. The detailed card layout prints spend
// without a sign, so only an explicit "+" marks money coming back.
func detailedSign(b common.Body) decimal.Decimal {
	if b.Credit || b.Amount.IsNegative() {
		return b.Amount
	}
	return b.Amount.Neg()
}

// Extract parses the pages of a credit card statement.
func Extract(path string, pages []string, dialect common.Dialect) common.Statement {
	cfg := loadConfig()

	statement := common.Statement{
		Source:       strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Dialect:      dialect,
		AccountType:  dialect.AccountType(),
		Transactions: []common.Transaction{},
	}

	var (
		meta common.Metadata
		txs  []common.Transaction
	)
	if dialect.Summary() {
		meta, txs = common.ScanSummary(pages, cfg.Patterns, common.KeepSign)
	} else {
		meta, txs = common.ScanDetailed(pages, cfg.Patterns, cfg.FallbackYear, detailedSign)
	}

	meta.Apply(&statement)
	if txs != nil {
		statement.Transactions = txs
	}
	return statement
}
