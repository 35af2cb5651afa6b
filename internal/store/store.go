// Package store provides the SQLite-backed goal store with optional FTS5
// title/content search.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/jera/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS goals (
	id          TEXT PRIMARY KEY,
	owner_id    TEXT NOT NULL,
	title       TEXT NOT NULL DEFAULT 'Untitled',
	content     TEXT NOT NULL DEFAULT '',
	color       TEXT NOT NULL DEFAULT '',
	start_date  INTEGER,
	end_date    INTEGER,
	is_archived INTEGER NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_goals_owner ON goals(owner_id);
CREATE INDEX IF NOT EXISTS idx_goals_owner_archived ON goals(owner_id, is_archived);
`

// DB wraps a sql.DB with goal-store operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// GoalStore defines the persistence operations the service layer depends
// on. Consumers should depend on this interface rather than the concrete
// *DB type to facilitate testing with mocks.
type GoalStore interface {
	Insert(g *models.Goal) error
	Get(id string) (*models.Goal, error)
	Update(g *models.Goal) error
	SetArchived(id string, archived bool, updatedAt time.Time) error
	Delete(id string) error
	ListByOwner(owner models.UserID, archived bool) ([]models.Goal, error)
	ListDated(owner models.UserID) ([]models.Goal, error)
	ListByYear(owner models.UserID, year int) ([]models.Goal, error)
	Search(owner models.UserID, query string, limit int) ([]models.Goal, error)
	DeleteArchivedBefore(cutoff time.Time) (int64, error)
	Close() error
}

// Verify *DB satisfies GoalStore at compile time.
var _ GoalStore = (*DB)(nil)
