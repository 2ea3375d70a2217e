package cmd

import (
	"os"

	"github.com/aqlanhadi/sbtax/categorizer"
	"github.com/aqlanhadi/sbtax/extractor"
	"github.com/aqlanhadi/sbtax/extractor/common"
	"github.com/spf13/cobra"
)

var (
	extractTransactionOnly bool
	extractStatementOnly   bool
	extractCategorize      bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <file-or-folder>",
	Short: "Extracts statement(s)",
	Long: `Extracts a given statement, or every PDF in a folder, and prints the
result as JSON. Files that cannot be parsed are logged and skipped when
scanning a folder.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtract(cmd, args[0])
	},
}

func addExtractFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&extractTransactionOnly, "transaction-only", false, "print only the transactions")
	cmd.Flags().BoolVar(&extractStatementOnly, "statement-only", false, "print only the statement header")
	cmd.Flags().BoolVar(&extractCategorize, "categorize", false, "categorise transactions with the static table and the rules file")
}

func runExtract(cmd *cobra.Command, target string) error {
	opts := extractor.Options{
		TransactionOnly: extractTransactionOnly,
		StatementOnly:   extractStatementOnly,
	}

	if extractCategorize {
		rules, err := categorizer.LoadRules(appConfig.Rules.File)
		if err != nil {
			return err
		}
		opts.Transform = func(s common.Statement) common.Statement {
			return categorizer.Annotate(s, rules)
		}
	}

	return extractor.ExecuteAgainstPath(os.Stdout, target, opts)
}

func init() {
	rootCmd.AddCommand(extractCmd)
	addExtractFlags(extractCmd)
}
