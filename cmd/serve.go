package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/aqlanhadi/sbtax/api"
	"github.com/aqlanhadi/sbtax/categorizer"
	"github.com/aqlanhadi/sbtax/integrations/postgres"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	servePort   string
	serveWithDB bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP API server",
	Long: `Starts the HTTP API server. It extracts uploaded statement PDFs and
answers categorisation, duplicate and tax requests as JSON. With --db the
categorisation rules come from the database, otherwise from the rules file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg := api.DefaultConfig()
		cfg.Port = ":" + appConfig.Server.Port
		if servePort != "" {
			cfg.Port = ":" + servePort
		}
		cfg.OfficeSqm = appConfig.HomeOffice.OfficeSqm
		cfg.HouseSqm = appConfig.HomeOffice.HouseSqm
		cfg.HomeOfficeCategories = appConfig.HomeOffice.Categories

		if !serveWithDB {
			rules, err := categorizer.LoadRules(appConfig.Rules.File)
			if err != nil {
				return err
			}
			return api.New(cfg, logrus.StandardLogger(), api.StaticRules(rules)).Run(ctx)
		}

		url, err := databaseURL()
		if err != nil {
			return err
		}
		db, err := postgres.Connect(ctx, url, logrus.StandardLogger())
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.EnsureSchema(ctx); err != nil {
			return err
		}
		return api.New(cfg, logrus.StandardLogger(), db).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Port to run the API server on (default from server.port)")
	serveCmd.Flags().BoolVar(&serveWithDB, "db", false, "read categorisation rules from the database")
	addDBFlags(serveCmd)
}
