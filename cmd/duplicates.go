package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aqlanhadi/sbtax/duplicates"
	"github.com/aqlanhadi/sbtax/integrations/postgres"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var duplicatesCmd = &cobra.Command{
	Use:   "duplicates",
	Short: "Find and resolve duplicate transactions",
	Long: `Overlapping statements put the same transaction in the ledger twice.
These commands list suspected pairs, mark the safe ones automatically and
record decisions on the rest.`,
}

var duplicatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List open duplicate candidates",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDuplicates(cmd, func(ctx context.Context, svc *duplicates.Service) error {
			matches, err := svc.Candidates(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), nonNilMatches(matches))
		})
	},
}

var duplicatesAutoCmd = &cobra.Command{
	Use:   "auto",
	Short: "Mark exact and same-account duplicates",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDuplicates(cmd, func(ctx context.Context, svc *duplicates.Service) error {
			accepted, review, err := svc.AutoAccept(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"accepted": nonNilMatches(accepted),
				"review":   nonNilMatches(review),
			})
		})
	},
}

var duplicatesConfirmCmd = &cobra.Command{
	Use:   "confirm <duplicate-id> <original-id>",
	Short: "Mark a reviewed pair as duplicate",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dup, orig, err := parseIDPair(args)
		if err != nil {
			return err
		}
		return withDuplicates(cmd, func(ctx context.Context, svc *duplicates.Service) error {
			return svc.Confirm(ctx, dup, orig)
		})
	},
}

var duplicatesDismissCmd = &cobra.Command{
	Use:   "dismiss <id> <id>",
	Short: "Record that two transactions are distinct",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, b, err := parseIDPair(args)
		if err != nil {
			return err
		}
		return withDuplicates(cmd, func(ctx context.Context, svc *duplicates.Service) error {
			return svc.Dismiss(ctx, a, b)
		})
	},
}

func withDuplicates(cmd *cobra.Command, fn func(ctx context.Context, svc *duplicates.Service) error) error {
	return withDB(cmd, func(ctx context.Context, db *postgres.DB) error {
		return fn(ctx, duplicates.NewService(db, logrus.StandardLogger()))
	})
}

func parseIDPair(args []string) (int64, int64, error) {
	a, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid transaction id %q", args[0])
	}
	b, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid transaction id %q", args[1])
	}
	return a, b, nil
}

func nonNilMatches(m []duplicates.Match) []duplicates.Match {
	if m == nil {
		return []duplicates.Match{}
	}
	return m
}

func init() {
	rootCmd.AddCommand(duplicatesCmd)
	duplicatesCmd.AddCommand(duplicatesListCmd, duplicatesAutoCmd, duplicatesConfirmCmd, duplicatesDismissCmd)
	duplicatesCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "PostgreSQL connection URL (or set DATABASE_URL env)")
}
