package cmd

import (
	"os"

	"github.com/aqlanhadi/sbtax/config"
	"github.com/aqlanhadi/sbtax/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	verbose   bool
	appConfig *config.Config

	rootCmd = &cobra.Command{
		Use:   "sbtax [file]",
		Short: "Turn Standard Bank statements into a categorised ledger and tax estimates",
		Long: `sbtax extracts transactions from Standard Bank cheque, credit card and
home loan statement PDFs, categorises them for a sole proprietor's tax
return, finds duplicates across overlapping statements and estimates
provisional tax and VAT.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runExtract(cmd, args[0])
			}
			return cmd.Help()
		},
		SilenceUsage: true,
	}
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default is ./.sbtax.yaml or ~/.sbtax.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	addExtractFlags(rootCmd)
}

func initConfig() {
	cfg, err := config.Load(cfgFile)
	cobra.CheckErr(err)
	appConfig = cfg

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	logging.Configure(level, cfg.Log.Format)
}
