package postgres

import (
	"context"
	"fmt"

	"github.com/aqlanhadi/sbtax/extractor/common"
)

// accountNumber maps a missing account number to NULL.
func accountNumber(stmt common.Statement) *string {
	if stmt.AccountNumber == "" {
		return nil
	}
	n := stmt.AccountNumber
	return &n
}

// getOrCreateAccount upserts the statement's account and returns its id. The
// account type follows the latest statement. Statements without an account
// number share one unidentified account per account type.
func getOrCreateAccount(ctx context.Context, q querier, stmt common.Statement) (int64, error) {
	number := accountNumber(stmt)

	var id int64
	var err error
	if number == nil {
		err = q.QueryRow(ctx, `
			INSERT INTO accounts (account_number, account_type)
			VALUES (NULL, $1)
			ON CONFLICT (account_type) WHERE account_number IS NULL DO UPDATE
			SET updated_at = NOW()
			RETURNING id
		`, stmt.AccountType).Scan(&id)
	} else {
		err = q.QueryRow(ctx, `
			INSERT INTO accounts (account_number, account_type)
			VALUES ($1, $2)
			ON CONFLICT (account_number) DO UPDATE
			SET account_type = EXCLUDED.account_type,
			    updated_at = NOW()
			RETURNING id
		`, *number, stmt.AccountType).Scan(&id)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to upsert account: %w", err)
	}
	return id, nil
}
