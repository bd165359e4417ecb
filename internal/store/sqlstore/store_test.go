package sqlstore

import (
	"context"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pliu/warbler/internal/store"
	"github.com/pliu/warbler/internal/store/storetest"
)

var testStore *SQLStore

func SetupTestDB(t *testing.T) {
	var err error
	testStore, err = New("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := testStore.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
}

func TeardownTestDB() {
	testStore.db.Close()
}

func TestSQLiteConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		SetupTestDB(t)
		t.Cleanup(TeardownTestDB)
		return testStore
	})
}

func TestMigrateIsIdempotent(t *testing.T) {
	SetupTestDB(t)
	defer TeardownTestDB()

	require.NoError(t, testStore.Migrate(context.Background()))
}

func TestNewUnsupportedDriver(t *testing.T) {
	_, err := New("mysql", "root@/warbler")
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	query := "SELECT 1 FROM follows WHERE user_following_id = ? AND user_being_followed_id = ?"

	assert.Equal(t, query, rebind("sqlite3", query))
	assert.Equal(t,
		"SELECT 1 FROM follows WHERE user_following_id = $1 AND user_being_followed_id = $2",
		rebind("postgres", query))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"sqlite unique", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, store.ErrDuplicate},
		{"sqlite primary key", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey}, store.ErrDuplicate},
		{"sqlite foreign key", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}, store.ErrForeignKey},
		{"sqlite check", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintCheck}, store.ErrConstraint},
		{"postgres unique", &pq.Error{Code: "23505"}, store.ErrDuplicate},
		{"postgres foreign key", &pq.Error{Code: "23503"}, store.ErrForeignKey},
		{"postgres too long", &pq.Error{Code: "22001"}, store.ErrConstraint},
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
