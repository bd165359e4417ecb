//go:build integration

package sqlstore

import (
	"context"
	"testing"

	"github.com/pliu/warbler/internal/store"
	"github.com/pliu/warbler/internal/store/storetest"
)

func TestPostgresConformance(t *testing.T) {
	connStr := storetest.StartPostgres(t)

	pgStore, err := New("postgres", connStr)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer pgStore.Close()

	if err := pgStore.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	storetest.Run(t, func(t *testing.T) store.Store { return pgStore })
}
