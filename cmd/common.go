package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aqlanhadi/sbtax/integrations/postgres"
	"github.com/aqlanhadi/sbtax/logging"
	"github.com/aqlanhadi/sbtax/report"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var dbURL string

// addDBFlags registers the connection flags shared by database commands.
func addDBFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&dbURL, "db-url", "", "PostgreSQL connection URL (or set DATABASE_URL env)")
}

func databaseURL() (string, error) {
	url := dbURL
	if url == "" {
		url = appConfig.Database.URL
	}
	if url == "" {
		return "", errors.New("--db-url or DATABASE_URL is required")
	}
	return url, nil
}

// withDB connects, ensures the schema and seeds categories before running fn.
// The configured database timeout bounds the whole operation.
func withDB(cmd *cobra.Command, fn func(ctx context.Context, db *postgres.DB) error) error {
	url, err := databaseURL()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(appConfig.Database.Timeout)*time.Second)
	defer cancel()

	logrus.Debug("connecting to database")
	db, err := postgres.Connect(ctx, url, logrus.StandardLogger())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}
	added, err := db.SeedCategories(ctx)
	if err != nil {
		return err
	}
	if added > 0 {
		logrus.WithField(logging.FieldCount, added).Debug("seeded categories")
	}

	return fn(ctx, db)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// periodFlags select a provisional period or an explicit date range.
type periodFlags struct {
	period string
	year   int
	from   string
	to     string
}

func (p *periodFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.period, "period", report.FirstPeriod, "provisional period: first (Mar-Aug) or second (Sep-Feb)")
	cmd.Flags().IntVar(&p.year, "year", time.Now().Year(), "tax year, named by the calendar year it starts in")
	cmd.Flags().StringVar(&p.from, "from", "", "start date (YYYY-MM-DD), overrides --period")
	cmd.Flags().StringVar(&p.to, "to", "", "end date (YYYY-MM-DD), overrides --period")
}

func (p *periodFlags) window() (report.Window, error) {
	if p.from == "" && p.to == "" {
		return report.Period(p.period, p.year)
	}
	if p.from == "" || p.to == "" {
		return report.Window{}, errors.New("--from and --to must be given together")
	}

	start, err := time.Parse(time.DateOnly, p.from)
	if err != nil {
		return report.Window{}, fmt.Errorf("--from: %w", err)
	}
	end, err := time.Parse(time.DateOnly, p.to)
	if err != nil {
		return report.Window{}, fmt.Errorf("--to: %w", err)
	}
	if end.Before(start) {
		return report.Window{}, fmt.Errorf("--to %s is before --from %s", p.to, p.from)
	}
	return report.Window{
		Start: start,
		End:   end,
		Name:  fmt.Sprintf("PnL%sto%s", start.Format("20060102"), end.Format("20060102")),
	}, nil
}
