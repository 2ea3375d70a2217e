package cmd

import (
	"context"

	"github.com/aqlanhadi/sbtax/integrations/postgres"
	"github.com/aqlanhadi/sbtax/tax"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	taxPeriod           periodFlags
	taxAge              int
	taxMedicalMembers   int
	taxPreviousPayments string
)

var taxCmd = &cobra.Command{
	Use:   "tax",
	Short: "Estimate provisional tax for a period",
	Long: `Estimates the provisional tax payment for a period from the ledger:
annualised taxable income, brackets, rebates, medical credits and the home
office apportionment.

Examples:
  sbtax tax --period first --year 2025
  sbtax tax --period second --year 2025 --previous 21549.96`,
	RunE: func(cmd *cobra.Command, args []string) error {
		window, err := taxPeriod.window()
		if err != nil {
			return err
		}
		previous, err := decimal.NewFromString(taxPreviousPayments)
		if err != nil {
			return err
		}

		age := appConfig.Taxpayer.Age
		if cmd.Flags().Changed("age") {
			age = taxAge
		}
		members := appConfig.Taxpayer.MedicalAidMembers
		if cmd.Flags().Changed("medical-members") {
			members = taxMedicalMembers
		}

		return withDB(cmd, func(ctx context.Context, db *postgres.DB) error {
			entries, err := db.LedgerEntries(ctx, window.Start, window.End)
			if err != nil {
				return err
			}

			result, err := tax.Calculate(entries, tax.Params{
				PeriodStart:          window.Start,
				PeriodEnd:            window.End,
				Age:                  age,
				MedicalAidMembers:    members,
				PreviousPayments:     previous,
				OfficeSqm:            decimal.NewFromFloat(appConfig.HomeOffice.OfficeSqm),
				HouseSqm:             decimal.NewFromFloat(appConfig.HomeOffice.HouseSqm),
				HomeOfficeCategories: appConfig.HomeOffice.Categories,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		})
	},
}

func init() {
	rootCmd.AddCommand(taxCmd)
	taxPeriod.register(taxCmd)
	addDBFlags(taxCmd)

	taxCmd.Flags().IntVar(&taxAge, "age", 0, "taxpayer age (default from taxpayer.age)")
	taxCmd.Flags().IntVar(&taxMedicalMembers, "medical-members", 0, "medical aid members including the taxpayer")
	taxCmd.Flags().StringVar(&taxPreviousPayments, "previous", "0", "provisional tax already paid this year")
}
