package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aqlanhadi/sbtax/categorizer"
	"github.com/aqlanhadi/sbtax/extractor/common"
	"github.com/aqlanhadi/sbtax/ledger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// InterAccountNote marks transfers between the user's own accounts.
const InterAccountNote = "Skipped: inter-account transfer"

// ErrSplitMismatch is returned when split parts do not add up to the parent.
var ErrSplitMismatch = errors.New("split amounts do not sum to the original amount")

func noteFor(tx common.Transaction) string {
	if tx.InterAccount {
		return InterAccountNote
	}
	return ""
}

// categoryIDs resolves category names to ids, creating categories that only
// exist in user rules.
type categoryIDs struct {
	q   querier
	ids map[string]int64
}

func (c *categoryIDs) lookup(ctx context.Context, name string, typ categorizer.Type) (*int64, error) {
	if name == "" {
		return nil, nil
	}
	if id, ok := c.ids[name]; ok {
		return &id, nil
	}
	id, err := ensureCategory(ctx, c.q, "", name, typ)
	if err != nil {
		return nil, err
	}
	c.ids[name] = id
	return &id, nil
}

// insertTransactions bulk inserts the statement's rows in one batch
func insertTransactions(ctx context.Context, q querier, statementID int64, txs []common.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	cats := &categoryIDs{q: q, ids: map[string]int64{}}
	batch := &pgx.Batch{}
	for _, tx := range txs {
		categoryID, err := cats.lookup(ctx, tx.Category, categorizer.Type(tx.CategoryType))
		if err != nil {
			return err
		}
		batch.Queue(`
			INSERT INTO transactions (
				statement_id, sequence, date, description, amount, category_id, confidence,
				notes, needs_split, is_inter_account
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, statementID, tx.Sequence, tx.Date, tx.Description, tx.Amount, categoryID, tx.Confidence,
			noteFor(tx), tx.NeedsSplit, tx.InterAccount)
	}

	br := q.SendBatch(ctx, batch)
	defer br.Close()

	for _, tx := range txs {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to insert transaction %d: %w", tx.Sequence, err)
		}
	}
	return nil
}

const ledgerQuery = `
	SELECT t.id, t.date, t.description, t.amount,
	       COALESCE(c.name, ''), COALESCE(c.category_type, ''),
	       COALESCE(a.account_number, ''), t.vat_rate_type, t.vat_exclusive, t.vat_claimable,
	       t.is_inter_account
	FROM transactions t
	JOIN statements s ON s.id = t.statement_id
	JOIN accounts a ON a.id = s.account_id
	LEFT JOIN categories c ON c.id = t.category_id
	WHERE NOT t.is_deleted AND NOT t.is_duplicate
	  AND t.date BETWEEN $1 AND $2
	ORDER BY t.date, t.id
`

// LedgerEntries returns the active rows dated within [start, end].
func (db *DB) LedgerEntries(ctx context.Context, start, end time.Time) ([]ledger.Entry, error) {
	rows, err := db.Pool.Query(ctx, ledgerQuery, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ledger.Entry, error) {
		var e ledger.Entry
		err := row.Scan(&e.ID, &e.Date, &e.Description, &e.Amount,
			&e.Category, &e.CategoryType,
			&e.AccountNumber, &e.VATRateType, &e.VATExclusive, &e.VATClaimable,
			&e.InterAccount)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	return entries, nil
}

// SplitPart is one piece of a transaction being split.
type SplitPart struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
}

func validateSplit(parent decimal.Decimal, parts []SplitPart) error {
	if len(parts) < 2 {
		return fmt.Errorf("a split needs at least two parts, got %d", len(parts))
	}
	sum := decimal.Zero
	for _, p := range parts {
		sum = sum.Add(p.Amount)
	}
	if !sum.Equal(parent) {
		return fmt.Errorf("%w: parts sum to %s, original is %s", ErrSplitMismatch, sum.StringFixed(2), parent.StringFixed(2))
	}
	return nil
}

// SplitTransaction replaces an active transaction with manual children that
// sum to its amount. The parent is soft deleted and the children share a
// split group id, which is returned with their ids.
func (db *DB) SplitTransaction(ctx context.Context, id int64, parts []SplitPart) (uuid.UUID, []int64, error) {
	group := uuid.New()
	var children []int64

	err := pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		var (
			statementID int64
			date        time.Time
			amount      decimal.Decimal
			description string
		)
		err := tx.QueryRow(ctx, `
			SELECT statement_id, date, amount, description FROM transactions
			WHERE id = $1 AND NOT is_deleted
			FOR UPDATE
		`, id).Scan(&statementID, &date, &amount, &description)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("transaction %d: %w", id, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to load transaction %d: %w", id, err)
		}

		if err := validateSplit(amount, parts); err != nil {
			return err
		}

		cats := &categoryIDs{q: tx, ids: map[string]int64{}}
		for _, p := range parts {
			typ := categorizer.Type("")
			if c, ok := categorizer.Lookup(p.Category); ok {
				typ = c.Type
			}
			categoryID, err := cats.lookup(ctx, p.Category, typ)
			if err != nil {
				return err
			}

			desc := strings.TrimSpace(p.Description)
			if desc == "" {
				desc = description
			}

			var childID int64
			err = tx.QueryRow(ctx, `
				INSERT INTO transactions (
					statement_id, date, description, amount, category_id, confidence,
					notes, is_manual, parent_id, split_group
				) VALUES ($1, $2, $3, $4, $5, 1, $6, true, $7, $8)
				RETURNING id
			`, statementID, date, desc, p.Amount, categoryID, fmt.Sprintf("Split from #%d", id), id, group).Scan(&childID)
			if err != nil {
				return fmt.Errorf("failed to insert split part: %w", err)
			}
			children = append(children, childID)
		}

		_, err = tx.Exec(ctx, `UPDATE transactions SET is_deleted = true WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return uuid.Nil, nil, err
	}

	db.log.WithField("transaction", id).WithField("parts", len(children)).Info("split transaction")
	return group, children, nil
}

// SoftDeleteTransaction hides a transaction from the ledger and duplicate scans.
func (db *DB) SoftDeleteTransaction(ctx context.Context, id int64) error {
	tag, err := db.Pool.Exec(ctx, `UPDATE transactions SET is_deleted = true WHERE id = $1 AND NOT is_deleted`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction %d: %w", id, ErrNotFound)
	}
	return nil
}
