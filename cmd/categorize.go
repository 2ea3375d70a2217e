package cmd

import (
	"strings"

	"github.com/aqlanhadi/sbtax/categorizer"
	"github.com/spf13/cobra"
)

var categorizeCmd = &cobra.Command{
	Use:   "categorize <description>...",
	Short: "Show how descriptions would be categorised",
	Long: `Runs each description through the rules file and the built-in table and
prints the category, its type and the transfer and split flags.

Examples:
  sbtax categorize "DNH*GODADDY.COM" "TAKEALOT.COM"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rules, err := categorizer.LoadRules(appConfig.Rules.File)
		if err != nil {
			return err
		}

		type row struct {
			Description string `json:"description"`
			categorizer.Result
			InterAccount bool `json:"inter_account"`
			NeedsSplit   bool `json:"needs_split"`
		}
		out := make([]row, 0, len(args))
		for _, d := range args {
			d = strings.TrimSpace(d)
			out = append(out, row{
				Description:  d,
				Result:       categorizer.Categorize(d, rules),
				InterAccount: categorizer.IsInterAccountTransfer(d),
				NeedsSplit:   categorizer.IsMixedPersonalBusiness(d),
			})
		}
		return printJSON(cmd.OutOrStdout(), out)
	},
}

func init() {
	rootCmd.AddCommand(categorizeCmd)
}
