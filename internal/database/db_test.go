package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDB(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "planner.db")

	db, err := NewDB(dbPath)
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, uint(3), db.Version)

	for _, table := range []string{"recipes", "meal_plans", "shopping_lists", "execution_metrics", "planning_runs"} {
		t.Run(table, func(t *testing.T) {
			var name string
			err := db.SQL.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
			require.NoError(t, err)
			assert.Equal(t, table, name)
		})
	}
}

func TestRunMigrations_Idempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "planner.db")

	first, err := RunMigrations(dbPath)
	require.NoError(t, err)
	second, err := RunMigrations(dbPath)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
