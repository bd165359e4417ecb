package gormstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/pliu/warbler/internal/store"
	"github.com/pliu/warbler/internal/store/storetest"
)

func openSQLite(t *testing.T) *GormStore {
	t.Helper()
	s, err := Open(store.DialectSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return openSQLite(t)
	})
}

func TestOpenUnsupportedDialect(t *testing.T) {
	_, err := Open("mysql", "root@/warbler")
	assert.Error(t, err)
}

func TestRowsMatchSchema(t *testing.T) {
	s := openSQLite(t)

	var cols []string
	for _, table := range store.PurgeOrder {
		types, err := s.db.Migrator().ColumnTypes(table)
		require.NoError(t, err)
		for _, ct := range types {
			cols = append(cols, table+"."+ct.Name())
		}
	}

	for _, model := range []any{&userRow{}, &messageRow{}, &followRow{}, &likeRow{}} {
		sch, err := schema.Parse(model, &sync.Map{}, schema.NamingStrategy{})
		require.NoError(t, err)
		for _, name := range sch.DBNames {
			assert.Contains(t, cols, sch.Table+"."+name)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"record not found", gorm.ErrRecordNotFound, store.ErrNotFound},
		{"wrapped not found", fmt.Errorf("take: %w", gorm.ErrRecordNotFound), store.ErrNotFound},
		{"postgres unique", &pgconn.PgError{Code: "23505"}, store.ErrDuplicate},
		{"postgres foreign key", &pgconn.PgError{Code: "23503"}, store.ErrForeignKey},
		{"postgres too long", &pgconn.PgError{Code: "22001"}, store.ErrConstraint},
		{"sqlite unique", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, store.ErrDuplicate},
		{"sqlite foreign key", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}, store.ErrForeignKey},
		{"sqlite check", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintCheck}, store.ErrConstraint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classify(tt.err), tt.want)
		})
	}

	other := errors.New("connection reset")
	assert.Equal(t, other, classify(other))
	assert.NoError(t, classify(nil))
}
