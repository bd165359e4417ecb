package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTx records how a unit of work ended. Only Commit and Rollback are used.
type fakeTx struct {
	Queries
	committed  bool
	rolledBack bool
	commitErr  error
}

func (f *fakeTx) Commit() error {
	f.committed = true
	return f.commitErr
}

func (f *fakeTx) Rollback() error {
	f.rolledBack = true
	return nil
}

type fakeStore struct {
	tx       *fakeTx
	beginErr error
}

func (s *fakeStore) Begin(ctx context.Context) (Tx, error) {
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	return s.tx, nil
}

func (s *fakeStore) Migrate(ctx context.Context) error { return nil }
func (s *fakeStore) Close() error                      { return nil }

func TestWithTx_Commit(t *testing.T) {
	s := &fakeStore{tx: &fakeTx{}}
	err := WithTx(context.Background(), s, func(tx Tx) error { return nil })
	require.NoError(t, err)
	assert.True(t, s.tx.committed)
	assert.False(t, s.tx.rolledBack)
}

func TestWithTx_RollbackOnError(t *testing.T) {
	s := &fakeStore{tx: &fakeTx{}}
	boom := errors.New("boom")
	err := WithTx(context.Background(), s, func(tx Tx) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, s.tx.committed)
	assert.True(t, s.tx.rolledBack)
}

func TestWithTx_BeginError(t *testing.T) {
	boom := errors.New("no connection")
	s := &fakeStore{beginErr: boom}
	called := false
	err := WithTx(context.Background(), s, func(tx Tx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, called)
}

func TestWithTx_CommitError(t *testing.T) {
	boom := errors.New("commit failed")
	s := &fakeStore{tx: &fakeTx{commitErr: boom}}
	err := WithTx(context.Background(), s, func(tx Tx) error { return nil })
	assert.ErrorIs(t, err, boom)
}

func TestConstraintError(t *testing.T) {
	driverErr := errors.New("UNIQUE constraint failed: users.email")
	err := Wrap(ErrDuplicate, driverErr)

	assert.ErrorIs(t, err, ErrDuplicate)
	assert.ErrorIs(t, err, driverErr)
	assert.NotErrorIs(t, err, ErrForeignKey)
	assert.Contains(t, err.Error(), "duplicate key value")
}

func TestSearchPattern(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "%%"},
		{"Al", "%al%"},
		{"_", `%\_%`},
		{"50%", `%50\%%`},
		{`a\b`, `%a\\b%`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SearchPattern(tt.in))
		})
	}
}

func TestLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, Limit(0))
	assert.Equal(t, DefaultLimit, Limit(-3))
	assert.Equal(t, DefaultLimit, Limit(DefaultLimit+1))
	assert.Equal(t, 20, Limit(20))
}

func TestSchema(t *testing.T) {
	sqlite := Schema(DialectSQLite)
	pg := Schema(DialectPostgres)

	require.Len(t, sqlite, 6)
	require.Len(t, pg, len(sqlite))

	assert.Contains(t, sqlite[0], "INTEGER PRIMARY KEY AUTOINCREMENT")
	assert.Contains(t, pg[0], "SERIAL PRIMARY KEY")
	assert.NotContains(t, pg[1], "DATETIME")
	assert.Contains(t, pg[1], "TIMESTAMP")

	for _, stmt := range append(sqlite, pg...) {
		assert.NotContains(t, stmt, ";")
	}
}

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{":memory:", ":memory:?_foreign_keys=on"},
		{"warbler.db", "warbler.db?_foreign_keys=on"},
		{"file:warbler.db?cache=shared", "file:warbler.db?cache=shared&_foreign_keys=on"},
		{"warbler.db?_foreign_keys=off", "warbler.db?_foreign_keys=off"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SQLiteDSN(tt.in))
		})
	}
}
