// Package cli implements the warbler command line.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pliu/warbler/internal/config"
	"github.com/pliu/warbler/internal/database"
	"github.com/pliu/warbler/internal/logger"
	"github.com/pliu/warbler/internal/store"
)

var (
	// Global flags
	dbURL    string
	dbDriver string
)

// NewRootCmd builds the command tree. Subcommands read configuration from
// the environment, with --db and --driver taking precedence.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "warbler",
		Short: "Warbler - a small social network",
		Long: `Warbler lets users post short messages, follow each other and like
messages. Data lives in SQLite or PostgreSQL.

Examples:
  warbler serve --addr :8080
  warbler migrate --db postgres://localhost/warbler
  warbler stats --driver gorm-sqlite --db warbler.db`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "Database URL (overrides DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&dbDriver, "driver", "", "Database driver: sqlite3, postgres, pgx, gorm-postgres, gorm-sqlite")

	rootCmd.AddCommand(newServeCmd(), newMigrateCmd(), newResetCmd(), newStatsCmd())
	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig applies the global flags on top of the environment and sets up logging.
func loadConfig() (config.Config, error) {
	cfg := config.Load()
	if dbURL != "" {
		cfg.DatabaseURL = dbURL
	}
	if dbDriver != "" {
		cfg.DatabaseDriver = dbDriver
	}
	if err := config.Validate(cfg); err != nil {
		return cfg, err
	}
	logger.Init(cfg.Env)
	return cfg, nil
}

func openStore(ctx context.Context) (config.Config, store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return cfg, nil, err
	}
	s, err := database.Open(ctx, cfg)
	return cfg, s, err
}
