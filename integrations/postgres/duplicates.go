package postgres

import (
	"context"
	"fmt"

	"github.com/aqlanhadi/sbtax/duplicates"
	"github.com/jackc/pgx/v5"
)

var _ duplicates.Store = (*DB)(nil)

// ActiveTransactions returns every row that is neither deleted nor marked as
// a duplicate, oldest first.
func (db *DB) ActiveTransactions(ctx context.Context) ([]duplicates.Transaction, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT t.id, t.date, t.description, t.amount, COALESCE(a.account_number, '')
		FROM transactions t
		JOIN statements s ON s.id = t.statement_id
		JOIN accounts a ON a.id = s.account_id
		WHERE NOT t.is_deleted AND NOT t.is_duplicate
		ORDER BY t.date, t.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query active transactions: %w", err)
	}

	txs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (duplicates.Transaction, error) {
		var tx duplicates.Transaction
		err := row.Scan(&tx.ID, &tx.Date, &tx.Description, &tx.Amount, &tx.AccountNumber)
		return tx, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read active transactions: %w", err)
	}
	return txs, nil
}

func (db *DB) DismissedPairs(ctx context.Context) ([]duplicates.Pair, error) {
	rows, err := db.Pool.Query(ctx, `SELECT transaction_a, transaction_b FROM dismissed_duplicates`)
	if err != nil {
		return nil, fmt.Errorf("failed to query dismissed pairs: %w", err)
	}

	pairs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (duplicates.Pair, error) {
		var a, b int64
		err := row.Scan(&a, &b)
		return duplicates.NewPair(a, b), err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read dismissed pairs: %w", err)
	}
	return pairs, nil
}

// MarkDuplicate flags duplicateID as a copy of originalID.
func (db *DB) MarkDuplicate(ctx context.Context, duplicateID, originalID int64) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE transactions
		SET is_duplicate = true, duplicate_of_id = $2
		WHERE id = $1 AND NOT is_deleted
	`, duplicateID, originalID)
	if err != nil {
		return fmt.Errorf("failed to mark transaction %d as duplicate: %w", duplicateID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction %d: %w", duplicateID, ErrNotFound)
	}
	return nil
}

// DismissPair records that two transactions are not duplicates. Dismissing a
// pair twice is a no-op.
func (db *DB) DismissPair(ctx context.Context, pair duplicates.Pair) error {
	pair = duplicates.NewPair(pair.A, pair.B)
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO dismissed_duplicates (transaction_a, transaction_b)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, pair.A, pair.B)
	if err != nil {
		return fmt.Errorf("failed to dismiss pair %d/%d: %w", pair.A, pair.B, err)
	}
	return nil
}
