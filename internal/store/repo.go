package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/jera/internal/apperr"
	"github.com/starford/jera/internal/models"
)

const goalColumns = `id, owner_id, title, content, color, start_date, end_date, is_archived, created_at, updated_at`

// millis converts an optional bound to its stored Unix-milli form.
// Full timestamps go in as-is; day truncation happens at comparison time,
// never at storage time.
func millis(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}

func scanGoal(row interface{ Scan(...any) error }) (*models.Goal, error) {
	var (
		g          models.Goal
		owner      string
		start, end sql.NullInt64
	)
	err := row.Scan(&g.ID, &owner, &g.Title, &g.Content, &g.Color,
		&start, &end, &g.Archived, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	g.OwnerID = models.UserID(owner)
	if start.Valid {
		t := time.UnixMilli(start.Int64).UTC()
		g.Range.Start = &t
	}
	if end.Valid {
		t := time.UnixMilli(end.Int64).UTC()
		g.Range.End = &t
	}
	return &g, nil
}

// Insert stores a new goal and its FTS entry within a transaction.
func (db *DB) Insert(g *models.Goal) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO goals (`+goalColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, g.ID, string(g.OwnerID), g.Title, g.Content, g.Color,
		millis(g.Range.Start), millis(g.Range.End), g.Archived, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store: insert goal: %w", err)
	}
	if err := ftsUpsert(tx, g.ID, string(g.OwnerID), g.Title, g.Content); err != nil {
		return err
	}
	return tx.Commit()
}

// Get returns a single goal by id, regardless of owner or archive state.
func (db *DB) Get(id string) (*models.Goal, error) {
	g, err := scanGoal(db.conn.QueryRow(`SELECT `+goalColumns+` FROM goals WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get goal: %w", err)
	}
	return g, nil
}

// Update replaces all mutable columns of a goal and refreshes its FTS entry.
func (db *DB) Update(g *models.Goal) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.Exec(`
		UPDATE goals
		SET title = ?, content = ?, color = ?, start_date = ?, end_date = ?,
		    is_archived = ?, updated_at = ?
		WHERE id = ?
	`, g.Title, g.Content, g.Color, millis(g.Range.Start), millis(g.Range.End),
		g.Archived, g.UpdatedAt, g.ID)
	if err != nil {
		return fmt.Errorf("store: update goal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	if err := ftsUpsert(tx, g.ID, string(g.OwnerID), g.Title, g.Content); err != nil {
		return err
	}
	return tx.Commit()
}

// SetArchived flips the soft-delete flag. Title and content are untouched,
// so the FTS entry stays valid. The caller supplies updatedAt so the
// record it holds stays byte-equal to the stored row (the checksum the
// API hands out is derived from it).
func (db *DB) SetArchived(id string, archived bool, updatedAt time.Time) error {
	res, err := db.conn.Exec(`UPDATE goals SET is_archived = ?, updated_at = ? WHERE id = ?`,
		archived, updatedAt, id)
	if err != nil {
		return fmt.Errorf("store: set archived: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// Delete hard-removes a goal and its FTS entry.
func (db *DB) Delete(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, id)
	res, err := tx.Exec(`DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete goal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return tx.Commit()
}

// ListByOwner returns the owner's goals in one archive state, newest first.
func (db *DB) ListByOwner(owner models.UserID, archived bool) ([]models.Goal, error) {
	return db.queryGoals(`
		SELECT `+goalColumns+` FROM goals
		WHERE owner_id = ? AND is_archived = ?
		ORDER BY created_at DESC
	`, string(owner), archived)
}

// ListDated returns the owner's non-archived goals that carry at least one
// bound: the working set for every conflict check.
func (db *DB) ListDated(owner models.UserID) ([]models.Goal, error) {
	return db.queryGoals(`
		SELECT `+goalColumns+` FROM goals
		WHERE owner_id = ? AND is_archived = 0
		  AND (start_date IS NOT NULL OR end_date IS NOT NULL)
		ORDER BY created_at DESC
	`, string(owner))
}

// ListByYear returns the owner's non-archived goals touching the given
// year: a bound inside the year window, or a range spanning the whole year.
func (db *DB) ListByYear(owner models.UserID, year int) ([]models.Goal, error) {
	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	yearEnd := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC).UnixMilli() - 1

	return db.queryGoals(`
		SELECT `+goalColumns+` FROM goals
		WHERE owner_id = ? AND is_archived = 0
		  AND (
			(start_date IS NOT NULL AND start_date >= ? AND start_date < ?)
			OR (end_date IS NOT NULL AND end_date >= ? AND end_date < ?)
			OR (start_date IS NOT NULL AND end_date IS NOT NULL AND start_date < ? AND end_date > ?)
		  )
		ORDER BY created_at DESC
	`, string(owner), yearStart, yearEnd, yearStart, yearEnd, yearStart, yearEnd)
}

// DeleteArchivedBefore hard-removes archived goals not touched since cutoff
// and returns how many were purged.
func (db *DB) DeleteArchivedBefore(cutoff time.Time) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	rows, err := tx.Query(`SELECT id FROM goals WHERE is_archived = 1 AND updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("store: purge scan: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, id := range ids {
		ftsDelete(tx, id)
		if _, err := tx.Exec(`DELETE FROM goals WHERE id = ?`, id); err != nil {
			return 0, fmt.Errorf("store: purge delete: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int64(len(ids)), nil
}

func (db *DB) queryGoals(query string, args ...any) ([]models.Goal, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query goals: %w", err)
	}
	defer rows.Close()

	var out []models.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}
