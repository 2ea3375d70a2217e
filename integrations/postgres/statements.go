package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aqlanhadi/sbtax/extractor/common"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// statementExists checks the natural key (account, period).
func statementExists(ctx context.Context, q querier, accountID int64, start, end time.Time) (bool, int64, error) {
	var id int64
	err := q.QueryRow(ctx, `
		SELECT id FROM statements
		WHERE account_id = $1 AND period_start = $2 AND period_end = $3
	`, accountID, start, end).Scan(&id)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, 0, nil
		}
		return false, 0, fmt.Errorf("failed to check statement: %w", err)
	}
	return true, id, nil
}

func createStatement(ctx context.Context, q querier, accountID int64, stmt common.Statement, importID uuid.UUID) (int64, error) {
	var id int64
	err := q.QueryRow(ctx, `
		INSERT INTO statements (account_id, source, dialect, period_start, period_end, import_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, accountID, stmt.Source, string(stmt.Dialect), *stmt.PeriodStart, *stmt.PeriodEnd, importID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create statement: %w", err)
	}
	return id, nil
}

// deleteStatement removes a statement and its transactions (cascade)
func deleteStatement(ctx context.Context, q querier, statementID int64) error {
	if _, err := q.Exec(ctx, `DELETE FROM statements WHERE id = $1`, statementID); err != nil {
		return fmt.Errorf("failed to delete statement: %w", err)
	}
	return nil
}
