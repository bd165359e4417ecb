// Package database opens the store.Store selected by the configuration.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pliu/warbler/internal/config"
	"github.com/pliu/warbler/internal/store"
	"github.com/pliu/warbler/internal/store/gormstore"
	"github.com/pliu/warbler/internal/store/pgstore"
	"github.com/pliu/warbler/internal/store/sqlstore"
)

var (
	maxAttempts = 10
	backoff     = func(attempt int) time.Duration {
		return time.Duration(500+attempt*200) * time.Millisecond
	}
)

// Open connects to the configured database, retrying while it comes up,
// and creates the tables.
func Open(ctx context.Context, cfg config.Config) (store.Store, error) {
	driver := cfg.Driver()
	if err := checkDriver(driver); err != nil {
		return nil, err
	}

	var s store.Store
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		s, err = connect(ctx, driver, cfg.DatabaseURL)
		if err == nil {
			break
		}
		log.Warn().Err(err).
			Str("driver", driver).
			Int("attempt", attempt+1).
			Msg("database not ready")

		if attempt == maxAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff(attempt)):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	log.Info().Str("driver", driver).Msg("database ready")
	return s, nil
}

func checkDriver(driver string) error {
	switch driver {
	case config.DriverSQLite, config.DriverPostgres, config.DriverPGX,
		config.DriverGormPostgres, config.DriverGormSQLite:
		return nil
	}
	return fmt.Errorf("unsupported database driver %q", driver)
}

func connect(ctx context.Context, driver, url string) (store.Store, error) {
	switch driver {
	case config.DriverPGX:
		return pgstore.Connect(ctx, url)
	case config.DriverGormPostgres:
		return gormstore.Open(store.DialectPostgres, url)
	case config.DriverGormSQLite:
		return gormstore.Open(store.DialectSQLite, url)
	default:
		return sqlstore.New(driver, url)
	}
}
