package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aqlanhadi/sbtax/categorizer"
	"github.com/aqlanhadi/sbtax/integrations/postgres"
	"github.com/spf13/cobra"
)

var (
	rulesUseDB bool

	newRule     categorizer.Rule
	newRuleType string
	newRuleOff  bool
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage categorisation rules",
	Long: `Lists and edits the user rules applied before the built-in table. Rules
live in the rules file unless --db is given.`,
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !rulesUseDB {
			rules, err := categorizer.LoadRules(appConfig.Rules.File)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), nonNilRules(rules))
		}
		return withDB(cmd, func(ctx context.Context, db *postgres.DB) error {
			rules, err := db.ListRules(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), nonNilRules(rules))
		})
	},
}

var rulesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a rule",
	Long: `Adds a rule. When no type is given and the category is a built-in one,
the rule takes the built-in category's type.

Examples:
  sbtax rules add --pattern "ZAPPER*CAFE" --category "Entertainment (Business)" --priority 10
  sbtax rules add --pattern "^UBER" --regex --category "Travel" --db`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r := newRule
		r.CategoryType = categorizer.Type(newRuleType)
		r.IsActive = !newRuleOff
		if r.CategoryType == "" {
			if c, ok := categorizer.Lookup(r.CategoryName); ok {
				r.CategoryType = c.Type
			}
		}
		if err := r.Validate(); err != nil {
			return err
		}

		if !rulesUseDB {
			if appConfig.Rules.File == "" {
				return fmt.Errorf("rules.file is not configured")
			}
			rules, err := categorizer.LoadRules(appConfig.Rules.File)
			if err != nil {
				return err
			}
			r.ID = nextRuleID(rules)
			if err := categorizer.SaveRules(appConfig.Rules.File, append(rules, r)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added rule %d to %s\n", r.ID, appConfig.Rules.File)
			return nil
		}

		return withDB(cmd, func(ctx context.Context, db *postgres.DB) error {
			id, err := db.CreateRule(ctx, r)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added rule %d\n", id)
			return nil
		})
	},
}

var rulesToggleCmd = &cobra.Command{
	Use:   "toggle <id> <on|off>",
	Short: "Enable or disable a database rule",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid rule id %q", args[0])
		}
		var active bool
		switch args[1] {
		case "on":
			active = true
		case "off":
		default:
			return fmt.Errorf("expected on or off, got %q", args[1])
		}

		return withDB(cmd, func(ctx context.Context, db *postgres.DB) error {
			return db.SetRuleActive(ctx, id, active)
		})
	},
}

func nonNilRules(rules []categorizer.Rule) []categorizer.Rule {
	if rules == nil {
		return []categorizer.Rule{}
	}
	return rules
}

func nextRuleID(rules []categorizer.Rule) int64 {
	var highest int64
	for _, r := range rules {
		if r.ID > highest {
			highest = r.ID
		}
	}
	return highest + 1
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd, rulesAddCmd, rulesToggleCmd)

	rulesCmd.PersistentFlags().BoolVar(&rulesUseDB, "db", false, "use rules stored in the database")
	addDBFlags(rulesListCmd)
	addDBFlags(rulesAddCmd)
	addDBFlags(rulesToggleCmd)

	rulesAddCmd.Flags().StringVar(&newRule.Pattern, "pattern", "", "substring or regular expression to match (required)")
	rulesAddCmd.Flags().BoolVar(&newRule.IsRegex, "regex", false, "treat the pattern as a regular expression")
	rulesAddCmd.Flags().StringVar(&newRule.CategoryName, "category", "", "category name (required)")
	rulesAddCmd.Flags().StringVar(&newRuleType, "type", "", "income, business_expense, personal_expense or excluded")
	rulesAddCmd.Flags().IntVar(&newRule.Priority, "priority", 0, "higher priorities are tried first")
	rulesAddCmd.Flags().BoolVar(&newRuleOff, "inactive", false, "store the rule disabled")
	rulesAddCmd.MarkFlagRequired("pattern")
	rulesAddCmd.MarkFlagRequired("category")
}
