package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pliu/warbler/internal/models"
	"github.com/pliu/warbler/internal/store"
	"github.com/pliu/warbler/internal/store/sqlstore"
)

var ctx = context.Background()

// newTx opens a fresh in-memory database and returns a transaction on it
// that is rolled back when the test ends.
func newTx(t *testing.T) store.Tx {
	t.Helper()
	s, err := sqlstore.New("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(ctx))

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { tx.Rollback() })
	return tx
}

func newUserService() *UserService {
	return NewUserService(bcrypt.MinCost)
}

func signup(t *testing.T, q store.Queries, username, password string) *models.User {
	t.Helper()
	u, err := newUserService().Signup(ctx, q, SignupParams{
		Username: username,
		Email:    username + "@test.com",
		Password: password,
	})
	require.NoError(t, err)
	return u
}
