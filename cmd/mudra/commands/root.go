// Package commands implements the mudra command-line interface.
package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/selector"
	"github.com/ayusman/mudra/internal/store"
)

// options holds the values of the root persistent flags.
type options struct {
	configPath string
	dbPath     string
	logLevel   string

	cfg *config.Config
}

// NewRootCmd builds the mudra command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "mudra",
		Short: "HMM state-count selection for sign language words",
		Long: `mudra stores example feature sequences for a vocabulary of signed words
and chooses how many hidden states each word's HMM should have.

Commands:
  mudra import words.json        # Load sequences from a JSON file
  mudra words                    # List stored words
  mudra select --strategy dic    # Run model selection over every word
  mudra serve --addr :8080       # Serve the HTTP API`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite database path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(
		newImportCmd(opts),
		newWordsCmd(opts),
		newSelectCmd(opts),
		newServeCmd(opts),
	)

	return rootCmd
}

// load reads the configuration, applies flag overrides and installs the
// configured logger.
func (o *options) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.dbPath != "" {
		cfg.Database = o.dbPath
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if _, err := logging.InitLogger(cfg.LogLevel); err != nil {
		return err
	}

	o.cfg = cfg
	return nil
}

// openStore opens the configured database, creating its directory.
func (o *options) openStore() (*store.Store, error) {
	path := o.cfg.DatabasePath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	st, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	logging.Debugf("opened database %s", path)
	return st, nil
}

// trainer builds the configured HMM trainer, logging through the global
// logger.
func (o *options) trainer() selector.Trainer {
	t := o.cfg.NewTrainer()
	t.Logger = logging.L()
	return app.HMMTrainer(t)
}
