package categorizer

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rule is a user curated pattern that overrides the static table.
type Rule struct {
	ID           int64  `json:"id,omitempty"`
	Pattern      string `json:"pattern"`
	IsRegex      bool   `json:"is_regex"`
	CategoryName string `json:"category"`
	CategoryType Type   `json:"category_type"`
	Priority     int    `json:"priority"`
	IsActive     bool   `json:"is_active"`
}

// ruleEntry is the on-disk form of a Rule. is_active may be left out and then
// defaults to true.
type ruleEntry struct {
	ID           int64  `yaml:"id,omitempty"`
	Pattern      string `yaml:"pattern"`
	IsRegex      bool   `yaml:"is_regex,omitempty"`
	CategoryName string `yaml:"category"`
	CategoryType Type   `yaml:"category_type,omitempty"`
	Priority     int    `yaml:"priority,omitempty"`
	IsActive     *bool  `yaml:"is_active,omitempty"`
}

func (e ruleEntry) rule() Rule {
	return Rule{
		ID:           e.ID,
		Pattern:      e.Pattern,
		IsRegex:      e.IsRegex,
		CategoryName: e.CategoryName,
		CategoryType: e.CategoryType,
		Priority:     e.Priority,
		IsActive:     e.IsActive == nil || *e.IsActive,
	}
}

func entryFor(r Rule) ruleEntry {
	active := r.IsActive
	return ruleEntry{
		ID:           r.ID,
		Pattern:      r.Pattern,
		IsRegex:      r.IsRegex,
		CategoryName: r.CategoryName,
		CategoryType: r.CategoryType,
		Priority:     r.Priority,
		IsActive:     &active,
	}
}

type rulesFile struct {
	Rules []ruleEntry `yaml:"rules"`
}

// Validate checks that a rule can be stored and matched.
func (r Rule) Validate() error {
	if r.Pattern == "" {
		return errors.New("rule pattern is empty")
	}
	if r.CategoryName == "" {
		return fmt.Errorf("rule %q has no category", r.Pattern)
	}
	if r.CategoryType != "" && !r.CategoryType.Valid() {
		return fmt.Errorf("rule %q: unknown category type %q", r.Pattern, r.CategoryType)
	}
	return nil
}

// LoadRules reads a YAML rules file. A missing file yields no rules. Rules that
// name a built-in category without a type inherit the category's type.
func LoadRules(path string) ([]Rule, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading rules file: %w", err)
	}

	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing rules file %s: %w", path, err)
	}

	rules := make([]Rule, 0, len(file.Rules))
	for _, entry := range file.Rules {
		r := entry.rule()
		if r.CategoryType == "" {
			if c, ok := Lookup(r.CategoryName); ok {
				r.CategoryType = c.Type
			}
		}
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// SaveRules writes rules to path, replacing its contents.
func SaveRules(path string, rules []Rule) error {
	file := rulesFile{Rules: make([]ruleEntry, len(rules))}
	for i, r := range rules {
		file.Rules[i] = entryFor(r)
	}

	data, err := yaml.Marshal(&file)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
