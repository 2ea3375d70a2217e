package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aqlanhadi/sbtax/categorizer"
	"github.com/aqlanhadi/sbtax/extractor"
	"github.com/aqlanhadi/sbtax/extractor/common"
	"github.com/aqlanhadi/sbtax/logging"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
)

// ImportResult tracks the outcome of an import operation
type ImportResult struct {
	Processed int      `json:"processed"`
	Skipped   int      `json:"skipped"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

func (r *ImportResult) add(o ImportResult) {
	r.Processed += o.Processed
	r.Skipped += o.Skipped
	r.Failed += o.Failed
	r.Errors = append(r.Errors, o.Errors...)
}

// ImportOptions configures the import behavior
type ImportOptions struct {
	Force bool // Replace statements that were already imported
}

var errAlreadyImported = errors.New("statement already imported")

func failure(file string, err error) ImportResult {
	return ImportResult{Failed: 1, Errors: []string{fmt.Sprintf("%s: %v", file, err)}}
}

// validateStatement checks the fields that make up the statement's natural key.
// A missing account number is allowed; the statement then belongs to the
// unidentified account of its type.
func validateStatement(stmt common.Statement) error {
	if stmt.PeriodStart == nil || stmt.PeriodEnd == nil {
		return errors.New("no statement period extracted")
	}
	return nil
}

// ImportFile parses, categorises and stores one statement. All of the file's
// writes happen in one transaction, so a failure leaves nothing behind.
func (db *DB) ImportFile(ctx context.Context, filePath string, opts ImportOptions) ImportResult {
	fileName := filepath.Base(filePath)

	stmt, err := extractor.ProcessFile(filePath)
	if err != nil {
		return failure(fileName, err)
	}
	if err := validateStatement(stmt); err != nil {
		return failure(fileName, err)
	}

	rules, err := db.ActiveRules(ctx)
	if err != nil {
		return failure(fileName, err)
	}
	stmt = categorizer.Annotate(stmt, rules)

	importID := uuid.New()
	log := db.log.WithFields(logrus.Fields{
		logging.FieldFile:     fileName,
		logging.FieldAccount:  stmt.AccountNumber,
		logging.FieldDialect:  stmt.Dialect,
		logging.FieldImportID: importID.String(),
	})

	err = pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		accountID, err := getOrCreateAccount(ctx, tx, stmt)
		if err != nil {
			return err
		}

		exists, existingID, err := statementExists(ctx, tx, accountID, *stmt.PeriodStart, *stmt.PeriodEnd)
		if err != nil {
			return err
		}
		if exists {
			if !opts.Force {
				return errAlreadyImported
			}
			if err := deleteStatement(ctx, tx, existingID); err != nil {
				return err
			}
		}

		statementID, err := createStatement(ctx, tx, accountID, stmt, importID)
		if err != nil {
			return err
		}
		return insertTransactions(ctx, tx, statementID, stmt.Transactions)
	})

	switch {
	case errors.Is(err, errAlreadyImported):
		log.Info("statement already imported, skipping")
		return ImportResult{Skipped: 1}
	case err != nil:
		log.WithError(err).Warn("import failed")
		return failure(fileName, err)
	}

	log.WithField(logging.FieldCount, len(stmt.Transactions)).Info("imported statement")
	return ImportResult{Processed: 1}
}

// statementFiles lists the PDF files directly inside dir, in name order.
func statementFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

// ImportDirectory imports every PDF in a directory. One file failing does not
// stop the others.
func (db *DB) ImportDirectory(ctx context.Context, dirPath string, opts ImportOptions) (*ImportResult, error) {
	files, err := statementFiles(dirPath)
	if err != nil {
		return nil, err
	}

	db.log.WithField(logging.FieldFile, dirPath).WithField(logging.FieldCount, len(files)).Info("scanning directory")

	result := &ImportResult{}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.add(db.ImportFile(ctx, path, opts))
	}
	return result, nil
}

// Import handles both file and directory imports
func (db *DB) Import(ctx context.Context, path string, opts ImportOptions) (*ImportResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	if info.IsDir() {
		return db.ImportDirectory(ctx, path, opts)
	}

	result := db.ImportFile(ctx, path, opts)
	return &result, nil
}
