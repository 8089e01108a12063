package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"paydash/internal/cli"
	"paydash/internal/config"
	"paydash/internal/core"
	applog "paydash/internal/log"
)

var (
	dataFile    string
	variant     string
	themeFile   string
	logLevel    string
	journalPath string

	cfg    *config.Config
	logger *applog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "paydash",
	Short: "Dashboard of per-user daily payment amounts",
	Long: `paydash reads a JSON file of per-user, per-date payment records and
presents headline metrics, daily and cumulative line charts per user, the raw
records and a per-user ranking. The file is read again on every render.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&dataFile, "data", "", "records file (default $DATA_FILE or users.json)")
	flags.StringVar(&variant, "variant", "", "report variant: basic or full (default $VARIANT or full)")
	flags.StringVar(&themeFile, "theme", "", "YAML theme file (default $THEME_FILE)")
	flags.StringVar(&logLevel, "log-level", "", "debug, info, warn or error (default $LOG_LEVEL or info)")
	flags.StringVar(&journalPath, "journal", "", "SQLite render journal path (default $JOURNAL_DB_PATH, empty disables)")
}

// setup loads .env and the environment, then lets flags override it.
func setup(cmd *cobra.Command, args []string) error {
	cli.LoadEnvFile()

	var err error
	cfg, err = cli.LoadAndValidateConfig(applyFlags)
	if err != nil {
		return err
	}

	logger = cli.SetupLogger(cfg.LogLevel).WithComponent(applog.ComponentCLI)
	return nil
}

// applyFlags overrides env values with the flags that were set. Variant and
// log level are case-insensitive, as they are from the environment.
func applyFlags(c *config.Config) {
	if dataFile != "" {
		c.DataFile = dataFile
	}
	if variant != "" {
		c.Variant = strings.ToLower(variant)
	}
	if themeFile != "" {
		c.ThemeFile = themeFile
	}
	if logLevel != "" {
		c.LogLevel = strings.ToLower(logLevel)
	}
	if journalPath != "" {
		c.JournalDBPath = journalPath
	}
}

// newRuntime wires the render service for a subcommand.
func newRuntime() (*cli.Runtime, error) {
	rt, err := cli.NewRuntime(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing: %w", err)
	}
	return rt, nil
}

// userError replaces input errors with the message the dashboard shows.
// Anything else keeps its detail.
func userError(err error) error {
	if core.Kind(err) == core.KindInternal {
		return err
	}
	return errors.New(core.UserMessage(err, cfg.DataFile))
}
