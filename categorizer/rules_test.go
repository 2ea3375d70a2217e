package categorizer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := `rules:
  - pattern: AFRIHOST
    category: Internet (Afrihost)
    priority: 10
  - pattern: '^SHOP\d+'
    is_regex: true
    category: Cleaning
    category_type: business_expense
    is_active: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	rules, err := LoadRules(path)
	require.NoError(t, err)
	require.Len(t, rules, 2)

	assert.Equal(t, BusinessExpense, rules[0].CategoryType, "type comes from the built-in category")
	assert.True(t, rules[0].IsActive, "is_active defaults to true")
	assert.Equal(t, 10, rules[0].Priority)

	assert.True(t, rules[1].IsRegex)
	assert.False(t, rules[1].IsActive)
}

func TestLoadRulesMissingFile(t *testing.T) {
	rules, err := LoadRules(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.NoError(t, err)
	assert.Empty(t, rules)

	rules, err = LoadRules("")
	assert.NoError(t, err)
	assert.Empty(t, rules)
}

func TestLoadRulesInvalid(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty-pattern.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("rules:\n  - category: Gym\n"), 0o600))
	_, err := LoadRules(empty)
	assert.Error(t, err)

	malformed := filepath.Join(dir, "malformed.yaml")
	require.NoError(t, os.WriteFile(malformed, []byte("rules: [unclosed"), 0o600))
	_, err = LoadRules(malformed)
	assert.Error(t, err)
}

func TestSaveRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	rules := []Rule{
		{Pattern: "UBER", CategoryName: "Travel/Accommodation", CategoryType: BusinessExpense, Priority: 3, IsActive: true},
		{Pattern: "SPUR", CategoryName: "Coffee/Meals (Business)", CategoryType: BusinessExpense, IsActive: false},
	}

	require.NoError(t, SaveRules(path, rules))

	loaded, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, rules, loaded)
}
