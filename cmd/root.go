package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/onokazu777/edinet-viewer/internal/config"
	"github.com/onokazu777/edinet-viewer/internal/logging"
	"github.com/onokazu777/edinet-viewer/internal/store"
	"github.com/onokazu777/edinet-viewer/internal/tui"
)

var (
	cfgFile  string
	dbPath   string
	logLevel string
	version  = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "edinet-viewer",
	Short: "Browse and analyze EDINET financial disclosures",
	Long: `edinet-viewer browses, searches, screens and compares corporate
financial disclosures collected from EDINET into a local database.

Running without a subcommand launches the interactive browser.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()
		return tui.Browse(cmd.Context(), st)
	},
}

func Execute() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.edinet-viewer/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if dbPath != "" {
		cfg.Storage.Type = "sqlite"
		cfg.Storage.Path = dbPath
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, nil
}

// openStore opens the configured storage backend with a stderr logger,
// for commands whose stdout is data rather than logs.
func openStore(ctx context.Context) (*store.Store, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logging.ParseLevel(cfg.Logging.Level),
	}))
	st, err := store.Open(ctx, storeOptions(cfg), logger)
	if err != nil {
		return nil, nil, err
	}
	return st, cfg, nil
}

func storeOptions(cfg *config.Config) store.Options {
	return store.Options{
		Dialect: store.Dialect(config.StoreDialect(cfg.Storage.Type)),
		Path:    cfg.Storage.Path,
		DSN:     cfg.Storage.DSN,
	}
}
