// Package categorizer assigns a tax category to transaction descriptions using
// curated database rules first and a built-in pattern table second.
package categorizer

import (
	_ "embed"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Type is the coarse tax bucket of a category.
type Type string

const (
	Income          Type = "income"
	BusinessExpense Type = "business_expense"
	PersonalExpense Type = "personal_expense"
	Excluded        Type = "excluded"
)

func (t Type) Valid() bool {
	switch t {
	case Income, BusinessExpense, PersonalExpense, Excluded:
		return true
	}
	return false
}

// Category is one row of the static table.
type Category struct {
	Key      string   `yaml:"key" json:"key"`
	Name     string   `yaml:"name" json:"name"`
	Type     Type     `yaml:"type" json:"type"`
	Patterns []string `yaml:"patterns" json:"patterns"`

	compiled []*regexp.Regexp
}

const feeCategoryKey = "banking_fees"

//go:embed categories.yaml
var categoriesYAML []byte

func loadTable(data []byte) ([]Category, error) {
	var table []Category
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parsing category table: %w", err)
	}

	seen := make(map[string]bool, len(table))
	for i := range table {
		c := &table[i]
		if !c.Type.Valid() {
			return nil, fmt.Errorf("category %q: unknown type %q", c.Key, c.Type)
		}
		if seen[c.Key] {
			return nil, fmt.Errorf("category %q defined twice", c.Key)
		}
		seen[c.Key] = true

		// Income markers are matched literally.
		if c.Type == Income {
			continue
		}
		c.compiled = make([]*regexp.Regexp, 0, len(c.Patterns))
		for _, p := range c.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("category %q: %w", c.Key, err)
			}
			c.compiled = append(c.compiled, re)
		}
	}
	return table, nil
}

func mustLoadTable() []Category {
	table, err := loadTable(categoriesYAML)
	if err != nil {
		panic(err)
	}
	return table
}

// Table returns a copy of the built-in category table in match order.
func Table() []Category {
	src := defaultEngine().table
	out := make([]Category, len(src))
	for i, c := range src {
		out[i] = Category{
			Key:      c.Key,
			Name:     c.Name,
			Type:     c.Type,
			Patterns: append([]string(nil), c.Patterns...),
		}
	}
	return out
}

// Lookup finds a built-in category by display name.
func Lookup(name string) (Category, bool) {
	for _, c := range Table() {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}
