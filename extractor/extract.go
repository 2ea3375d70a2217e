package extractor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aqlanhadi/sbtax/extractor/card"
	"github.com/aqlanhadi/sbtax/extractor/cheque"
	"github.com/aqlanhadi/sbtax/extractor/common"
	"github.com/aqlanhadi/sbtax/extractor/homeloan"
	"github.com/aqlanhadi/sbtax/logging"
	"github.com/sirupsen/logrus"
)

// Options shape what ExecuteAgainstPath prints.
type Options struct {
	TransactionOnly bool
	StatementOnly   bool
	// Transform, when set, runs on every parsed statement before output.
	Transform func(common.Statement) common.Statement
}

// Parse classifies the pages and hands them to the matching dialect parser.
// Failures come back as *common.ParseError.
func Parse(source string, pages []string) (common.Statement, error) {
	name := filepath.Base(source)

	if len(pages) == 0 {
		return common.Statement{}, &common.ParseError{Source: name, Err: common.ErrUnparsableStatement}
	}

	dialect, err := Classify(pages[0])
	if err != nil {
		return common.Statement{}, &common.ParseError{Source: name, Err: err}
	}

	logrus.WithFields(logrus.Fields{
		logging.FieldFile:    name,
		logging.FieldDialect: dialect,
	}).Debug("parsing statement")

	var statement common.Statement
	switch dialect {
	case common.ChequeDetailed, common.ChequeSummary:
		statement = cheque.Extract(source, pages, dialect)
	case common.CardDetailed, common.CardSummary:
		statement = card.Extract(source, pages, dialect)
	case common.HomeLoan:
		statement = homeloan.Extract(source, pages, dialect)
	default:
		return common.Statement{}, &common.ParseError{Source: name, Err: common.ErrUnknownDialect}
	}

	if len(statement.Transactions) == 0 {
		return statement, &common.ParseError{Source: name, Dialect: dialect, Err: common.ErrUnparsableStatement}
	}
	return statement, nil
}

// ProcessReader extracts page text from a PDF stream and parses it.
func ProcessReader(reader io.Reader, filename string) (common.Statement, error) {
	pages, err := common.ExtractPages(reader)
	if err != nil {
		return common.Statement{}, fmt.Errorf("reading %s: %w", filepath.Base(filename), err)
	}
	return Parse(filename, pages)
}

// ProcessFile parses the statement stored at path.
func ProcessFile(path string) (common.Statement, error) {
	pages, err := common.ExtractPagesFromFile(path)
	if err != nil {
		return common.Statement{}, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	return Parse(path, pages)
}

// ExecuteAgainstPath parses a single PDF or every PDF in a directory and writes
// the result as JSON. In directory mode a file that fails is logged and left
// out; the others are still written.
func ExecuteAgainstPath(w io.Writer, path string, opts Options) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		logrus.WithField(logging.FieldFile, path).Info("scanning file")
		statement, err := ProcessFile(path)
		if err != nil {
			return err
		}
		return json.NewEncoder(w).Encode(finalize(statement, opts))
	}

	logrus.WithField(logging.FieldFile, path).Info("scanning directory")
	entries, err := os.ReadDir(path)
	if err != nil {
		return err
	}

	result := []interface{}{}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}

		file := filepath.Join(path, e.Name())
		statement, err := ProcessFile(file)
		if err != nil {
			logrus.WithError(err).WithField(logging.FieldFile, file).Warn("skipping statement")
			continue
		}
		result = append(result, finalize(statement, opts))
	}

	return json.NewEncoder(w).Encode(result)
}

func finalize(statement common.Statement, opts Options) interface{} {
	if opts.Transform != nil {
		statement = opts.Transform(statement)
	}
	return CreateFinalOutput(statement, opts.TransactionOnly, opts.StatementOnly)
}

// CreateFinalOutput trims a statement down to what the caller asked for:
// only its transactions, only its header, or both.
func CreateFinalOutput(statement common.Statement, transactionOnly, statementOnly bool) interface{} {
	if transactionOnly {
		return statement.Transactions
	}

	output := map[string]interface{}{
		"source":       statement.Source,
		"dialect":      statement.Dialect,
		"account_type": statement.AccountType,
	}
	if statement.AccountNumber != "" {
		output["account_number"] = statement.AccountNumber
	}
	if statement.PeriodStart != nil {
		output["period_start"] = statement.PeriodStart.Format(time.DateOnly)
	}
	if statement.PeriodEnd != nil {
		output["period_end"] = statement.PeriodEnd.Format(time.DateOnly)
	}

	if !statementOnly {
		output["transactions"] = statement.Transactions
	}
	return output
}

// IsParseError reports whether err is a per-file parse failure rather than an
// I/O problem.
func IsParseError(err error) bool {
	var pe *common.ParseError
	return errors.As(err, &pe)
}
