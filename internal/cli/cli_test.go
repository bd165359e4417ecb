package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pliu/warbler/internal/config"
	"github.com/pliu/warbler/internal/database"
	"github.com/pliu/warbler/internal/models"
	"github.com/pliu/warbler/internal/store"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("APP_ENV", "dev")
	t.Setenv("DATABASE_DRIVER", "")

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func seed(t *testing.T, path string) {
	t.Helper()
	ctx := context.Background()
	s, err := database.Open(ctx, config.Config{DatabaseURL: path})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, store.WithTx(ctx, s, func(tx store.Tx) error {
		u := models.NewUser("testuser", "test@test.com", "HASHED_PASSWORD")
		if err := tx.CreateUser(ctx, u); err != nil {
			return err
		}
		return tx.CreateMessage(ctx, &models.Message{Text: "hello", UserID: u.ID})
	}))
}

func TestMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warbler.db")

	out, err := run(t, "migrate", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Migrated sqlite3 database")
}

func TestStatsAndReset(t *testing.T) {
	for _, driver := range []string{config.DriverSQLite, config.DriverGormSQLite} {
		t.Run(driver, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "warbler.db")
			seed(t, path)

			out, err := run(t, "stats", "--db", path, "--driver", driver, "--json")
			require.NoError(t, err)
			var counts store.Counts
			require.NoError(t, json.Unmarshal([]byte(out), &counts))
			assert.Equal(t, store.Counts{Users: 1, Messages: 1}, counts)

			_, err = run(t, "reset", "--db", path, "--driver", driver)
			assert.Error(t, err)

			out, err = run(t, "reset", "--db", path, "--driver", driver, "--yes")
			require.NoError(t, err)
			assert.Contains(t, out, "All tables purged")

			out, err = run(t, "stats", "--db", path, "--driver", driver)
			require.NoError(t, err)
			assert.Contains(t, out, "users")
			assert.Regexp(t, `messages\s+0`, out)
		})
	}
}

func TestInvalidDriver(t *testing.T) {
	_, err := run(t, "stats", "--db", "warbler.db", "--driver", "mysql")
	assert.ErrorContains(t, err, "mysql")
}
