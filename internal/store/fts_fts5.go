//go:build sqlite_fts5

package store

import (
	"database/sql"
	"fmt"

	"github.com/starford/jera/internal/models"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS goals_fts USING fts5(
			id UNINDEXED,
			owner_id UNINDEXED,
			title,
			content,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, id, owner, title, content string) error {
	_, _ = tx.Exec(`DELETE FROM goals_fts WHERE id = ?`, id)
	_, err := tx.Exec(`INSERT INTO goals_fts (id, owner_id, title, content) VALUES (?, ?, ?, ?)`,
		id, owner, title, content)
	if err != nil {
		return fmt.Errorf("store: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, id string) {
	_, _ = tx.Exec(`DELETE FROM goals_fts WHERE id = ?`, id)
}

// Search performs an FTS5 search over the owner's non-archived goals.
func (db *DB) Search(owner models.UserID, query string, limit int) ([]models.Goal, error) {
	if limit <= 0 {
		limit = 20
	}
	return db.queryGoals(`
		SELECT g.id, g.owner_id, g.title, g.content, g.color,
		       g.start_date, g.end_date, g.is_archived, g.created_at, g.updated_at
		FROM goals_fts f
		JOIN goals g ON g.id = f.id
		WHERE goals_fts MATCH ? AND g.owner_id = ? AND g.is_archived = 0
		ORDER BY rank
		LIMIT ?
	`, query, string(owner), limit)
}
