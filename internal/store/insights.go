package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Insight is a cached AI-generated analysis of a repository, keyed by
// (repo URL, generation mode). At most one row exists per key; a successful
// regeneration replaces the previous content in a single statement.
type Insight struct {
	RepoURL   string
	Mode      string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetInsight returns the stored insight for the exact (url, mode) key, or
// sql.ErrNoRows via the wrapped error when absent. Pure read.
func (d *DB) GetInsight(url, mode string) (*Insight, error) {
	row := d.db.QueryRow(
		`SELECT repo_url, mode, content, created_at, updated_at FROM insights WHERE repo_url = ? AND mode = ?`,
		url, mode,
	)

	var ins Insight
	var created, updated string
	if err := row.Scan(&ins.RepoURL, &ins.Mode, &ins.Content, &created, &updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning insight: %w", err)
	}
	ins.CreatedAt, _ = time.Parse(time.RFC3339, created)
	ins.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return &ins, nil
}

// PutInsight stores the insight, replacing any previous row for the same
// (url, mode) key. The write is a single statement: readers either see the
// old complete row or the new complete row, never a partial one.
func (d *DB) PutInsight(ins *Insight) error {
	now := timestamp(time.Now())
	_, err := d.db.Exec(
		`INSERT INTO insights (repo_url, mode, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (repo_url, mode) DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`,
		ins.RepoURL, ins.Mode, ins.Content, now, now,
	)
	if err != nil {
		return fmt.Errorf("storing insight: %w", err)
	}
	return nil
}

// InsightURLs returns the subset of the given URLs that have a cached insight
// in any mode. The result is a set: order-independent, no duplicates.
func (d *DB) InsightURLs(urls []string) ([]string, error) {
	if len(urls) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(urls)-1) + "?"
	args := make([]any, len(urls))
	for i, u := range urls {
		args[i] = u
	}

	rows, err := d.db.Query(
		`SELECT DISTINCT repo_url FROM insights WHERE repo_url IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("checking insights: %w", err)
	}
	defer rows.Close()

	var found []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scanning insight url: %w", err)
		}
		found = append(found, u)
	}
	return found, rows.Err()
}
