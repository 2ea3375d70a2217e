package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/aqlanhadi/sbtax/categorizer"
	"github.com/aqlanhadi/sbtax/logging"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
)

// ensureCategory returns the id of the named category, creating it when
// missing. Unknown types are stored as personal expenses.
func ensureCategory(ctx context.Context, q querier, key, name string, typ categorizer.Type) (int64, error) {
	if !typ.Valid() {
		typ = categorizer.PersonalExpense
	}

	var id int64
	err := q.QueryRow(ctx, `SELECT id FROM categories WHERE name = $1`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("failed to look up category %q: %w", name, err)
	}

	err = q.QueryRow(ctx, `
		INSERT INTO categories (key, name, category_type)
		VALUES (NULLIF($1, ''), $2, $3)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, key, name, string(typ)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create category %q: %w", name, err)
	}
	return id, nil
}

// SeedCategories inserts the static category table, leaving existing rows
// alone. It returns how many categories were added.
func (db *DB) SeedCategories(ctx context.Context) (int, error) {
	table := categorizer.Table()
	batch := &pgx.Batch{}
	for _, c := range table {
		batch.Queue(`
			INSERT INTO categories (key, name, category_type)
			VALUES ($1, $2, $3)
			ON CONFLICT (name) DO NOTHING
		`, c.Key, c.Name, string(c.Type))
	}

	br := db.Pool.SendBatch(ctx, batch)
	defer br.Close()

	added := 0
	for _, c := range table {
		tag, err := br.Exec()
		if err != nil {
			return added, fmt.Errorf("failed to seed category %q: %w", c.Name, err)
		}
		added += int(tag.RowsAffected())
	}
	return added, nil
}

const rulesQuery = `
	SELECT r.id, r.pattern, r.is_regex, c.name, c.category_type, r.priority, r.is_active
	FROM expense_rules r
	JOIN categories c ON c.id = r.category_id
`

func (db *DB) queryRules(ctx context.Context, where string) ([]categorizer.Rule, error) {
	rows, err := db.Pool.Query(ctx, rulesQuery+where+` ORDER BY r.priority DESC, r.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}

	rules, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (categorizer.Rule, error) {
		var (
			r   categorizer.Rule
			typ string
		)
		err := row.Scan(&r.ID, &r.Pattern, &r.IsRegex, &r.CategoryName, &typ, &r.Priority, &r.IsActive)
		r.CategoryType = categorizer.Type(typ)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}
	return rules, nil
}

// ActiveRules returns the rules the categorizer should apply, highest
// priority first.
func (db *DB) ActiveRules(ctx context.Context) ([]categorizer.Rule, error) {
	return db.queryRules(ctx, ` WHERE r.is_active`)
}

// ListRules returns every rule, active or not.
func (db *DB) ListRules(ctx context.Context) ([]categorizer.Rule, error) {
	return db.queryRules(ctx, "")
}

// CreateRule validates and stores a rule, creating its category if needed.
func (db *DB) CreateRule(ctx context.Context, r categorizer.Rule) (int64, error) {
	if r.CategoryType == "" {
		if c, ok := categorizer.Lookup(r.CategoryName); ok {
			r.CategoryType = c.Type
		}
	}
	if err := r.Validate(); err != nil {
		return 0, err
	}

	var id int64
	err := pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		categoryID, err := ensureCategory(ctx, tx, "", r.CategoryName, r.CategoryType)
		if err != nil {
			return err
		}
		return tx.QueryRow(ctx, `
			INSERT INTO expense_rules (pattern, is_regex, category_id, priority, is_active)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, r.Pattern, r.IsRegex, categoryID, r.Priority, r.IsActive).Scan(&id)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create rule: %w", err)
	}

	db.log.WithFields(logrus.Fields{
		"rule":                id,
		logging.FieldCategory: r.CategoryName,
	}).Info("created rule")
	return id, nil
}

// SetRuleActive enables or disables a rule.
func (db *DB) SetRuleActive(ctx context.Context, id int64, active bool) error {
	tag, err := db.Pool.Exec(ctx, `UPDATE expense_rules SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("failed to update rule %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("rule %d: %w", id, ErrNotFound)
	}
	return nil
}
