// Package gormstore implements store.Store with gorm on top of either the
// postgres or the sqlite gorm driver.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pliu/warbler/internal/store"
)

type GormStore struct {
	db      *gorm.DB
	dialect string
}

var _ store.Store = (*GormStore)(nil)

// Open connects with the gorm driver for dialect, store.DialectPostgres or
// store.DialectSQLite.
func Open(dialect, dsn string) (*GormStore, error) {
	var dialector gorm.Dialector
	switch dialect {
	case store.DialectPostgres:
		dialector = postgres.Open(dsn)
	case store.DialectSQLite:
		dialector = sqlite.Open(store.SQLiteDSN(dsn))
	default:
		return nil, fmt.Errorf("gormstore: unsupported dialect %q", dialect)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(&log.Logger, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if dialect == store.DialectSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return &GormStore{db: db, dialect: dialect}, nil
}

func (s *GormStore) Migrate(ctx context.Context) error {
	for _, stmt := range store.Schema(s.dialect) {
		if err := s.db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *GormStore) Begin(ctx context.Context) (store.Tx, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	return &gormTx{queries{db: tx}}, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type gormTx struct {
	queries
}

func (t *gormTx) Commit() error {
	if err := t.db.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (t *gormTx) Rollback() error {
	return t.db.Rollback().Error
}

type queries struct {
	db *gorm.DB
}

// affectedOne turns a write result into ErrNotFound when no row matched.
func affectedOne(result *gorm.DB) error {
	if result.Error != nil {
		return classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// classify maps gorm and driver errors onto the store sentinels. The postgres
// driver reports *pgconn.PgError and the sqlite driver sqlite3.Error.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return store.Wrap(store.ErrDuplicate, err)
		case "23503":
			return store.Wrap(store.ErrForeignKey, err)
		case "23514", "23502", "22001":
			return store.Wrap(store.ErrConstraint, err)
		}
		return err
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return store.Wrap(store.ErrDuplicate, err)
		case sqlite3.ErrConstraintForeignKey:
			return store.Wrap(store.ErrForeignKey, err)
		case sqlite3.ErrConstraintCheck, sqlite3.ErrConstraintNotNull:
			return store.Wrap(store.ErrConstraint, err)
		}
	}
	return err
}
