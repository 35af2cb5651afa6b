// Package testutil provides shared test helpers for setting up goal stores.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/jera/internal/store"
)

// TestDB creates a temporary SQLite goal store that is automatically
// cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "jera-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
