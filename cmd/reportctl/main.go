// Command reportctl runs league reports from the command line.
package main

import (
	"context"
	"fmt"
	"os"

	"go-league/internal/config"
	"go-league/internal/connectors"
	"go-league/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose bool
	dsn     string
	dbType  string
)

var rootCmd = &cobra.Command{
	Use:   "reportctl",
	Short: "Run and export league reports",
	Long: `reportctl reads the league data store directly and renders reports
without going through the HTTP API.

Examples:
  reportctl types
  reportctl run payments --org org-1 --season s-1 --format xlsx
  reportctl schedule --once nightly-roster`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "Data store DSN (overrides DATASTORE_DSN)")
	rootCmd.PersistentFlags().StringVar(&dbType, "db-type", "", "Data store type: postgresql, mysql or sqlite")
}

// env is what every command needs: configuration, a logger and an open
// data store.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *connectors.SQLConnector
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if dsn != "" {
		cfg.DataStore.DSN = dsn
	}
	if dbType != "" {
		cfg.DataStore.Type = dbType
	}
	if verbose {
		cfg.Environment = "development"
	}

	log, err := logger.NewConsoleLogger(cfg)
	if err != nil {
		return nil, err
	}
	store, err := connectors.NewSQLConnectorFromConfig(ctx, cfg.DataStore)
	if err != nil {
		return nil, fmt.Errorf("failed to open data store: %w", err)
	}
	return &env{cfg: cfg, logger: log, store: store}, nil
}

func (e *env) Close() {
	_ = e.store.Disconnect(context.Background())
	_ = e.logger.Sync()
}
