// Package pgstore implements store.Store on a pgx connection pool.
package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pliu/warbler/internal/store"
)

// PGStore is a store.Store backed by pgxpool.
type PGStore struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*PGStore)(nil)

// Connect opens a pool for url and checks it with a ping.
func Connect(ctx context.Context, url string) (*PGStore, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PGStore{pool: pool}, nil
}

func (s *PGStore) Migrate(ctx context.Context) error {
	for _, stmt := range store.Schema(store.DialectPostgres) {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Begin starts a transaction. The returned Tx keeps ctx for Commit and Rollback.
func (s *PGStore) Begin(ctx context.Context) (store.Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &pgTx{queries: queries{tx: tx}, ctx: ctx}, nil
}

func (s *PGStore) Close() error {
	s.pool.Close()
	return nil
}

type pgTx struct {
	queries
	ctx context.Context
}

func (t *pgTx) Commit() error {
	if err := t.tx.Commit(t.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (t *pgTx) Rollback() error {
	if err := t.tx.Rollback(t.ctx); err != nil {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

type queries struct {
	tx pgx.Tx
}

func (q *queries) exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := q.tx.Exec(ctx, sql, args...)
	if err != nil {
		return 0, classify(err)
	}
	return tag.RowsAffected(), nil
}

func (q *queries) execOne(ctx context.Context, sql string, args ...any) error {
	n, err := q.exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
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
	}
	return err
}
