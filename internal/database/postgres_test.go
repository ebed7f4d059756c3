package database

import (
	"context"
	"os"
	"testing"

	"yatube/internal/logging"

	"github.com/stretchr/testify/require"
)

// TestPostgresStore runs the store contract against a live database named by
// TEST_DATABASE_URL. Every table is truncated before each case.
func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	logger := logging.Discard()

	require.NoError(t, MigrateUp(dsn, logger))
	db, err := NewPostgresDB(dsn, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(context.Background()) })

	runStoreContract(t, func(t *testing.T) DBAdapter {
		_, err := db.DB.Exec(`TRUNCATE users, groups CASCADE`)
		require.NoError(t, err)
		return db
	})
}

func TestContainsPattern(t *testing.T) {
	require.Equal(t, `%50\%\_off%`, containsPattern("50%_off"))
}
