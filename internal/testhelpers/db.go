// Package testhelpers holds fixtures shared by package tests.
package testhelpers

import (
	"database/sql"
	"testing"

	"github.com/robalobadob/flagle/internal/sqlite"
	"github.com/robalobadob/flagle/migrations"
)

// NewDB creates a migrated in-memory database that is closed with the test.
func NewDB(t testing.TB) *sql.DB {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Error(err)
		}
	})
	if err := sqlite.Migrate(db, migrations.FS); err != nil {
		t.Fatal(err)
	}
	return db
}
