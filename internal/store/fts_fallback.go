//go:build !sqlite_fts5

package store

import (
	"database/sql"

	"github.com/starford/jera/internal/models"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not compiled in; search falls back to LIKE on the goals table.
	return nil
}

func ftsUpsert(_ *sql.Tx, _, _, _, _ string) error {
	// Title and content already live in the goals table; nothing extra to do.
	return nil
}

func ftsDelete(_ *sql.Tx, _ string) {}

// Search performs a LIKE-based search (fallback when FTS5 is not compiled in).
func (db *DB) Search(owner models.UserID, query string, limit int) ([]models.Goal, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	return db.queryGoals(`
		SELECT `+goalColumns+` FROM goals
		WHERE owner_id = ? AND is_archived = 0
		  AND (title LIKE ? OR content LIKE ?)
		ORDER BY created_at DESC
		LIMIT ?
	`, string(owner), like, like, limit)
}
