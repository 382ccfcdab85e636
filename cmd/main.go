package main

import (
	"fmt"
	"os"

	"github.com/1F47E/geo-photo-search/pkg/config"
	"github.com/1F47E/geo-photo-search/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	configFile string
	logLevel   string
	verbose    bool

	cfg config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "panoramio",
	Short: "Search geotagged photos around a location",
	Long: `Query a coordinate based photo search API, keep the results in a local
R-Tree index or a PostGIS archive, and query them offline.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "panoramio.yaml", "Config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(searchCmd, nearbyCmd, archiveCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(configFile)
	if err != nil {
		return err
	}

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	logCfg := cfg.Log
	logCfg.Component = cmd.Name()
	log = logger.Build(logCfg, os.Stderr)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
