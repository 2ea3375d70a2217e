package cmd

import (
	"context"

	"github.com/aqlanhadi/sbtax/integrations/postgres"
	"github.com/aqlanhadi/sbtax/vat"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	vatPeriod periodFlags
	vatLines  bool
)

var vatCmd = &cobra.Command{
	Use:   "vat",
	Short: "Summarise output and input VAT for a period",
	Long: `Splits every ledger amount in the period into its VAT exclusive and VAT
parts at the rate in force on the transaction date, and totals output VAT
on income against claimable input VAT on expenses.

Examples:
  sbtax vat --from 2025-03-01 --to 2025-04-30
  sbtax vat --period first --year 2025 --lines`,
	RunE: func(cmd *cobra.Command, args []string) error {
		window, err := vatPeriod.window()
		if err != nil {
			return err
		}
		rates, err := vat.LoadRates(viper.GetViper())
		if err != nil {
			return err
		}
		calc := vat.NewCalculator(rates)

		return withDB(cmd, func(ctx context.Context, db *postgres.DB) error {
			entries, err := db.LedgerEntries(ctx, window.Start, window.End)
			if err != nil {
				return err
			}

			summary := calc.Summarize(entries, window.Start, window.End)
			if !vatLines {
				summary.Lines = nil
			}
			return printJSON(cmd.OutOrStdout(), summary)
		})
	},
}

func init() {
	rootCmd.AddCommand(vatCmd)
	vatPeriod.register(vatCmd)
	addDBFlags(vatCmd)

	vatCmd.Flags().BoolVar(&vatLines, "lines", false, "include the per-transaction breakdown")
}
