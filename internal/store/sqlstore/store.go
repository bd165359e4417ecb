package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/pliu/warbler/internal/store"
)

// SQLStore implements store.Store on database/sql for the sqlite3 and
// postgres drivers.
type SQLStore struct {
	db         *sql.DB
	driverName string
}

var _ store.Store = (*SQLStore)(nil)

func New(driverName, dataSourceName string) (*SQLStore, error) {
	switch driverName {
	case "sqlite3":
		dataSourceName = store.SQLiteDSN(dataSourceName)
	case "postgres":
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", driverName)
	}

	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if driverName == "sqlite3" {
		// Every sqlite connection is its own :memory: database, and a single
		// writer avoids SQLITE_BUSY on files.
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLStore{db: db, driverName: driverName}, nil
}

func (s *SQLStore) dialect() string {
	if s.driverName == "postgres" {
		return store.DialectPostgres
	}
	return store.DialectSQLite
}

func (s *SQLStore) Migrate(ctx context.Context) error {
	for _, stmt := range store.Schema(s.dialect()) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *SQLStore) Begin(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &sqlTx{queries: queries{q: tx, driverName: s.driverName}, tx: tx}, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

type sqlTx struct {
	queries
	tx *sql.Tx
}

func (t *sqlTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (t *sqlTx) Rollback() error {
	return t.tx.Rollback()
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries implements store.Queries against a *sql.Tx.
type queries struct {
	q          querier
	driverName string
}

// Helper to handle placeholders
func (s *queries) rebind(query string) string {
	return rebind(s.driverName, query)
}

func rebind(driverName, query string) string {
	if driverName == "postgres" {
		// Replace ? with $1, $2, etc.
		n := strings.Count(query, "?")
		for i := 1; i <= n; i++ {
			query = strings.Replace(query, "?", fmt.Sprintf("$%d", i), 1)
		}
	}
	return query
}

func (s *queries) exec(ctx context.Context, query string, args ...any) (int64, error) {
	result, err := s.q.ExecContext(ctx, s.rebind(query), args...)
	if err != nil {
		return 0, classify(err)
	}
	return result.RowsAffected()
}

// execOne is exec for statements that must touch exactly one row.
func (s *queries) execOne(ctx context.Context, query string, args ...any) error {
	n, err := s.exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// classify maps driver errors onto the store sentinels.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
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
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return store.Wrap(store.ErrDuplicate, err)
		case "23503":
			return store.Wrap(store.ErrForeignKey, err)
		case "23514", "23502", "22001":
			return store.Wrap(store.ErrConstraint, err)
		}
	}
	return err
}
