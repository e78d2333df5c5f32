package database_test

import (
	"testing"

	"github.com/Popalay/tennis-tracker/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDB(t *testing.T) {
	db, teardown, err := database.InitDB(t.TempDir()+"/tracker.db", "", "", "../../migrations")
	require.NoError(t, err)
	defer teardown()

	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type = 'table'")
	require.NoError(t, err)
	defer rows.Close()

	tables := map[string]bool{}
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		tables[name] = true
	}
	require.NoError(t, rows.Err())

	assert.True(t, tables["players"], "players table should exist")
	assert.True(t, tables["matches"], "matches table should exist")
}

func TestInitDB_MigrationsIdempotent(t *testing.T) {
	path := t.TempDir() + "/tracker.db"

	db, teardown, err := database.InitDB(path, "", "", "../../migrations")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO players (id, name) VALUES ('p1', 'Ann')")
	require.NoError(t, err)
	teardown()

	db, teardown, err = database.InitDB(path, "", "", "../../migrations")
	require.NoError(t, err)
	defer teardown()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM players").Scan(&count))
	assert.Equal(t, 1, count)
}
