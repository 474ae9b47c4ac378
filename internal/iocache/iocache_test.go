package iocache

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/huangsam/gapcheck/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetManager clears the global manager so each subtest starts fresh.
func resetManager(t *testing.T) {
	t.Helper()
	initOnce = sync.Once{}  // Reset for test
	closeOnce = sync.Once{} // Reset for test
	Manager = &RunStoreManager{}
}

func TestInitStores(t *testing.T) {
	t.Run("single setup", func(t *testing.T) {
		resetManager(t)
		dbPath := filepath.Join(t.TempDir(), "runs.db")

		require.NoError(t, InitStores(schema.SQLiteBackend, dbPath))
		assert.NotNil(t, Manager.GetRunStore())
		CloseStores()

		_, err := os.Stat(dbPath)
		assert.NoError(t, err, "database file should be created")
	})

	t.Run("idempotent setup", func(t *testing.T) {
		resetManager(t)
		dbPath := filepath.Join(t.TempDir(), "runs.db")

		// Multiple initializations should be safe (sync.Once)
		assert.NoError(t, InitStores(schema.SQLiteBackend, dbPath))
		assert.NoError(t, InitStores(schema.SQLiteBackend, dbPath))
		assert.NoError(t, InitStores(schema.MySQLBackend, "bogus"))

		// Multiple closes should be safe (sync.Once)
		CloseStores()
		CloseStores()
	})

	t.Run("none backend", func(t *testing.T) {
		resetManager(t)
		require.NoError(t, InitStores(schema.NoneBackend, ""))
		store := Manager.GetRunStore()
		require.NotNil(t, store)

		status, err := store.GetStatus()
		require.NoError(t, err)
		assert.False(t, status.Connected)
		CloseStores()
	})

	t.Run("empty backend", func(t *testing.T) {
		resetManager(t)
		require.NoError(t, InitStores("", ""))
		assert.Nil(t, Manager.GetRunStore())
		CloseStores()
	})

	t.Run("invalid mysql", func(t *testing.T) {
		resetManager(t)
		err := InitStores(schema.MySQLBackend, "not a dsn")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to initialize run store")
	})
}

func TestClearRuns(t *testing.T) {
	t.Run("sqlite removes file", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "runs.db")
		store, err := NewRunStore(schema.SQLiteBackend, dbPath)
		require.NoError(t, err)
		require.NoError(t, store.Close())

		require.NoError(t, ClearRuns(schema.SQLiteBackend, dbPath, ""))
		_, err = os.Stat(dbPath)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("sqlite missing file is fine", func(t *testing.T) {
		assert.NoError(t, ClearRuns(schema.SQLiteBackend, filepath.Join(t.TempDir(), "nope.db"), ""))
	})

	t.Run("sqlite requires path", func(t *testing.T) {
		assert.Error(t, ClearRuns(schema.SQLiteBackend, "", ""))
	})

	t.Run("none backend", func(t *testing.T) {
		assert.NoError(t, ClearRuns(schema.NoneBackend, "", ""))
	})

	t.Run("unsupported backend", func(t *testing.T) {
		err := ClearRuns(schema.DatabaseBackend("oracle"), "", "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported backend")
	})
}
