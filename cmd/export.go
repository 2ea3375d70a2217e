package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aqlanhadi/sbtax/integrations/postgres"
	"github.com/aqlanhadi/sbtax/logging"
	"github.com/aqlanhadi/sbtax/report"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	exportPeriod periodFlags
	exportDir    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the provisional tax workbook",
	Long: `Writes a ZIP of CSV sheets for a provisional period: income, monthly
expenses, business and personal summaries, net profit and the annualised
summary. The file is named after the period, e.g. PnLMarAugforAug2025.zip.

Examples:
  sbtax export --period first --year 2025 -o ./out`,
	RunE: func(cmd *cobra.Command, args []string) error {
		window, err := exportPeriod.window()
		if err != nil {
			return err
		}

		return withDB(cmd, func(ctx context.Context, db *postgres.DB) error {
			entries, err := db.LedgerEntries(ctx, window.Start, window.End)
			if err != nil {
				return err
			}

			path := filepath.Join(exportDir, window.Name+".zip")
			f, err := os.Create(path)
			if err != nil {
				return err
			}

			err = report.WriteTaxExport(f, report.ExportInput{Start: window.Start, End: window.End, Entries: entries})
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}

			logrus.WithFields(logrus.Fields{
				logging.FieldFile:  path,
				logging.FieldCount: len(entries),
			}).Info("export written")
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportPeriod.register(exportCmd)
	addDBFlags(exportCmd)

	exportCmd.Flags().StringVarP(&exportDir, "out", "o", ".", "directory to write the export to")
}
