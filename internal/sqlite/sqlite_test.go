package sqlite

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/robalobadob/flagle/migrations"
)

func TestMigrateIsIdempotent(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "nested", "flagle.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db, migrations.FS))
	require.NoError(t, Migrate(db, migrations.FS))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM _migrations`).Scan(&n))
	files, err := migrations.FS.ReadDir(".")
	require.NoError(t, err)
	sqlFiles := 0
	for _, f := range files {
		if filepath.Ext(f.Name()) == ".sql" {
			sqlFiles++
		}
	}
	require.Equal(t, sqlFiles, n)

	_, err = db.Exec(`INSERT INTO daily_sessions (player_id, date, snapshot, updated_at) VALUES ('p','2025-01-01','{}','now')`)
	require.NoError(t, err)
}

func TestMigrateRollsBackBrokenFile(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	broken := fstest.MapFS{
		"001_ok.sql":  {Data: []byte(`CREATE TABLE ok (id INTEGER);`)},
		"002_bad.sql": {Data: []byte(`CREATE TABLE nope (`)},
	}
	require.Error(t, Migrate(db, broken))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM _migrations`).Scan(&n))
	require.Equal(t, 1, n)
}
