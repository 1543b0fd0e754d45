package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/resale-ledger/internal/infrastructure/config"
)

// expectedSchemaVersion is the highest migration in migrations/.
// Update this when adding new migrations.
const expectedSchemaVersion = 2

func configStorage(driver, path string) config.StorageConfig {
	return config.StorageConfig{Driver: driver, DatabasePath: path}
}

func TestMigrations_FreshDatabase(t *testing.T) {
	store := newTestStorage(t)

	version, err := store.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(expectedSchemaVersion), version)

	for _, table := range []string{"sessions", "store_purchases", "items"} {
		var count int
		err := store.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "table %s should exist", table)
	}
}

func TestMigrations_Idempotency(t *testing.T) {
	path := createTempDB(t)

	store, err := Open(configStorage("sqlite3", path), nil)
	require.NoError(t, err)
	store.Close()

	store, err = Open(configStorage("sqlite3", path), nil)
	require.NoError(t, err)
	defer store.Close()

	version, err := store.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(expectedSchemaVersion), version)
}

func TestMigrations_ItemSalesColumns(t *testing.T) {
	store := newTestStorage(t)

	rows, err := store.db.Query(`PRAGMA table_info(items)`)
	require.NoError(t, err)
	defer rows.Close()

	columns := map[string]bool{}
	for rows.Next() {
		var (
			cid       int
			name, typ string
			notNull   int
			dflt      any
			pk        int
		)
		require.NoError(t, rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk))
		columns[name] = true
	}
	require.NoError(t, rows.Err())

	for _, col := range []string{"allocated_cost", "status", "list_price", "sale_price", "sold_at"} {
		assert.True(t, columns[col], "items.%s should exist", col)
	}
}
