package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aqlanhadi/sbtax/extractor/common"
	"github.com/aqlanhadi/sbtax/integrations/postgres"
	"github.com/spf13/cobra"
)

var splitParts []string

var transactionsCmd = &cobra.Command{
	Use:     "transactions",
	Aliases: []string{"tx"},
	Short:   "Edit ledger transactions",
}

var transactionsSplitCmd = &cobra.Command{
	Use:   "split <id>",
	Short: "Split a transaction into categorised parts",
	Long: `Replaces a transaction with two or more parts whose amounts add up to the
original. Each part is given as description|amount|category; amounts may
carry a rand prefix and thousands separators.

Examples:
  sbtax tx split 412 --part "Printer paper|-R1,300|Office Supplies" --part "Groceries|-200|Groceries"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid transaction id %q", args[0])
		}
		parts, err := parseSplitParts(splitParts)
		if err != nil {
			return err
		}

		return withDB(cmd, func(ctx context.Context, db *postgres.DB) error {
			group, ids, err := db.SplitTransaction(ctx, id, parts)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"split_group": group,
				"ids":         ids,
			})
		})
	},
}

var transactionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a transaction from reports",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid transaction id %q", args[0])
		}
		return withDB(cmd, func(ctx context.Context, db *postgres.DB) error {
			return db.SoftDeleteTransaction(ctx, id)
		})
	},
}

func parseSplitParts(raw []string) ([]postgres.SplitPart, error) {
	parts := make([]postgres.SplitPart, 0, len(raw))
	for _, r := range raw {
		fields := strings.Split(r, "|")
		if len(fields) != 3 {
			return nil, fmt.Errorf("part %q: expected description|amount|category", r)
		}
		amount, err := common.ParseAmount(fields[1])
		if err != nil {
			return nil, fmt.Errorf("part %q: %w", r, err)
		}
		parts = append(parts, postgres.SplitPart{
			Description: strings.TrimSpace(fields[0]),
			Amount:      amount,
			Category:    strings.TrimSpace(fields[2]),
		})
	}
	return parts, nil
}

func init() {
	rootCmd.AddCommand(transactionsCmd)
	transactionsCmd.AddCommand(transactionsSplitCmd, transactionsDeleteCmd)
	transactionsCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "PostgreSQL connection URL (or set DATABASE_URL env)")

	transactionsSplitCmd.Flags().StringArrayVar(&splitParts, "part", nil, "description|amount|category, repeat for each part")
	transactionsSplitCmd.MarkFlagRequired("part")
}
