package postgres

import (
	"context"
	"fmt"
)

const ddl = `
CREATE TABLE IF NOT EXISTS accounts (
    id BIGSERIAL PRIMARY KEY,
    account_number VARCHAR(50),
    account_type VARCHAR(20) NOT NULL,
    created_at TIMESTAMPTZ DEFAULT NOW(),
    updated_at TIMESTAMPTZ DEFAULT NOW(),

    UNIQUE(account_number)
);

-- Natural key: an account has one statement per period
CREATE TABLE IF NOT EXISTS statements (
    id BIGSERIAL PRIMARY KEY,
    account_id BIGINT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
    source VARCHAR(255) NOT NULL,
    dialect VARCHAR(30) NOT NULL,
    period_start DATE NOT NULL,
    period_end DATE NOT NULL,
    import_id UUID NOT NULL,
    created_at TIMESTAMPTZ DEFAULT NOW(),

    UNIQUE(account_id, period_start, period_end)
);

CREATE TABLE IF NOT EXISTS categories (
    id BIGSERIAL PRIMARY KEY,
    key VARCHAR(50),
    name VARCHAR(100) NOT NULL,
    category_type VARCHAR(20) NOT NULL,

    UNIQUE(name)
);

CREATE TABLE IF NOT EXISTS expense_rules (
    id BIGSERIAL PRIMARY KEY,
    pattern TEXT NOT NULL,
    is_regex BOOLEAN NOT NULL DEFAULT false,
    category_id BIGINT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
    priority INTEGER NOT NULL DEFAULT 0,
    is_active BOOLEAN NOT NULL DEFAULT true,
    created_at TIMESTAMPTZ DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS transactions (
    id BIGSERIAL PRIMARY KEY,
    statement_id BIGINT NOT NULL REFERENCES statements(id) ON DELETE CASCADE,
    sequence INTEGER,
    date DATE NOT NULL,
    description TEXT NOT NULL,
    amount NUMERIC(18,2) NOT NULL,
    category_id BIGINT REFERENCES categories(id) ON DELETE SET NULL,
    confidence NUMERIC(4,2) NOT NULL DEFAULT 0,
    notes TEXT NOT NULL DEFAULT '',
    needs_split BOOLEAN NOT NULL DEFAULT false,
    is_inter_account BOOLEAN NOT NULL DEFAULT false,
    is_duplicate BOOLEAN NOT NULL DEFAULT false,
    duplicate_of_id BIGINT REFERENCES transactions(id) ON DELETE SET NULL,
    is_deleted BOOLEAN NOT NULL DEFAULT false,
    is_manual BOOLEAN NOT NULL DEFAULT false,
    parent_id BIGINT REFERENCES transactions(id) ON DELETE CASCADE,
    split_group UUID,
    vat_rate_type VARCHAR(10) NOT NULL DEFAULT 'standard',
    vat_exclusive BOOLEAN NOT NULL DEFAULT false,
    vat_claimable BOOLEAN NOT NULL DEFAULT true,
    created_at TIMESTAMPTZ DEFAULT NOW(),

    -- Split children carry no sequence
    UNIQUE(statement_id, sequence)
);

-- Unordered pairs, stored smaller id first
CREATE TABLE IF NOT EXISTS dismissed_duplicates (
    transaction_a BIGINT NOT NULL REFERENCES transactions(id) ON DELETE CASCADE,
    transaction_b BIGINT NOT NULL REFERENCES transactions(id) ON DELETE CASCADE,
    dismissed_at TIMESTAMPTZ DEFAULT NOW(),

    PRIMARY KEY (transaction_a, transaction_b),
    CHECK (transaction_a < transaction_b)
);

-- Upgrades for databases created before account numbers became optional
ALTER TABLE accounts ALTER COLUMN account_number DROP NOT NULL;
ALTER TABLE transactions ADD COLUMN IF NOT EXISTS is_inter_account BOOLEAN NOT NULL DEFAULT false;

-- One unidentified account per account type
CREATE UNIQUE INDEX IF NOT EXISTS idx_accounts_unidentified ON accounts(account_type)
    WHERE account_number IS NULL;
CREATE INDEX IF NOT EXISTS idx_statements_account_id ON statements(account_id);
CREATE INDEX IF NOT EXISTS idx_transactions_statement_id ON transactions(statement_id);
CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
CREATE INDEX IF NOT EXISTS idx_transactions_active ON transactions(date)
    WHERE NOT is_deleted AND NOT is_duplicate;
CREATE INDEX IF NOT EXISTS idx_expense_rules_active ON expense_rules(priority DESC) WHERE is_active;
`

// EnsureSchema creates tables and indexes if they don't exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
