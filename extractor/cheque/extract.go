package cheque

import (
	"path/filepath"
	"strings"

	"github.com/aqlanhadi/sbtax/extractor/common"
)

const statementKey = "SBSA_CHEQUE"

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

// Extract parses the pages of a cheque account statement in either the detailed
// or the summary layout. Amounts keep the sign printed on the statement.
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
		meta, txs = common.ScanDetailed(pages, cfg.Patterns, cfg.FallbackYear, common.KeepSign)
	}

	meta.Apply(&statement)
	if txs != nil {
		statement.Transactions = txs
	}
	return statement
}
