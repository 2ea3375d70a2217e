package homeloan

import (
	"path/filepath"
	"strings"

	"github.com/aqlanhadi/sbtax/extractor/common"
)

const (
	statementKey = "SBSA_HOME_LOAN"

	// yearLookback is how far above a row a year heading may sit and still
	// apply to it.
	yearLookback = 10
)

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

// nearestYear returns the closest year heading above lines[i], at most
// yearLookback lines up.
func nearestYear(lines []string, i int) string {
	for j := i - 1; j >= 0 && j >= i-yearLookback; j-- {
		if yy, ok := common.YearMarker(lines[j]); ok {
			return yy
		}
	}
	return ""
}

// Extract parses a home loan statement. Descriptions in this layout always
// wrap, so the line below a row is appended unless it starts another row.
func Extract(path string, pages []string, dialect common.Dialect) common.Statement {
	cfg := loadConfig()

	statement := common.Statement{
		Source:       strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Dialect:      dialect,
		AccountType:  dialect.AccountType(),
		Transactions: []common.Transaction{},
	}

	var meta common.Metadata
	for _, page := range pages {
		meta.Capture(page, cfg.Patterns.AccountNumber, cfg.Patterns.DateRange)

		lines := common.Lines(page)
		for i, line := range lines {
			dl, ok := common.MatchDateLine(line)
			if !ok {
				continue
			}

			year := dl.Year
			if year == "" {
				year = nearestYear(lines, i)
			}
			if year == "" {
				year = meta.StartYear()
			}
			if year == "" {
				year = cfg.FallbackYear
			}

			body := dl.Body
			if i+1 < len(lines) && common.Continuation(lines[i+1], common.StartsWithDate) {
				body = body + " " + lines[i+1]
			}

			tx, ok := common.ParseRow(dl.DayMonth+" "+year, body, common.KeepSign)
			if !ok {
				continue
			}
			tx.Sequence = len(statement.Transactions) + 1
			statement.Transactions = append(statement.Transactions, tx)
		}
	}

	meta.Apply(&statement)
	return statement
}
