package store

import (
	"database/sql"
	"fmt"

	"github.com/jacklau/reposcope/internal/repo"
)

// Sources for cached listing rows.
const (
	SourceTrending = "trending"
	SourceSearch   = "search"
)

// ReplaceRepoCache replaces the cached listing for a source with a fresh
// result set, preserving the listing order through the position column. The
// swap happens in one transaction so an offline reader never sees a mix of
// two fetches.
func (d *DB) ReplaceRepoCache(source string, repos []repo.Repository) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning cache transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM repo_cache WHERE source = ?`, source); err != nil {
		return fmt.Errorf("clearing repo cache: %w", err)
	}

	for i, r := range repos {
		_, err := tx.Exec(
			`INSERT INTO repo_cache (url, source, position, author, name, description, language, stars, forks, stars_period, topic)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.URL, source, i, r.Author, r.Name, r.Description, r.Language, r.Stars, r.Forks, r.StarsPeriod, r.Topic,
		)
		if err != nil {
			return fmt.Errorf("caching repo %s: %w", r.URL, err)
		}
	}

	return tx.Commit()
}

// ListRepoCache returns the cached listing for a source in listing order.
// Used for offline display and for resolving repo metadata by name.
func (d *DB) ListRepoCache(source string) ([]repo.Repository, error) {
	rows, err := d.db.Query(
		`SELECT url, author, name, description, language, stars, forks, stars_period, topic
		 FROM repo_cache WHERE source = ? ORDER BY position`,
		source,
	)
	if err != nil {
		return nil, fmt.Errorf("listing repo cache: %w", err)
	}
	defer rows.Close()

	var repos []repo.Repository
	for rows.Next() {
		r, err := scanCachedRepo(rows)
		if err != nil {
			return nil, err
		}
		repos = append(repos, *r)
	}
	return repos, rows.Err()
}

// FindCachedRepo looks a repository up by author and name across all cached
// sources, preferring the most recently fetched row.
func (d *DB) FindCachedRepo(author, name string) (*repo.Repository, error) {
	rows, err := d.db.Query(
		`SELECT url, author, name, description, language, stars, forks, stars_period, topic
		 FROM repo_cache WHERE author = ? AND name = ? ORDER BY fetched_at DESC LIMIT 1`,
		author, name,
	)
	if err != nil {
		return nil, fmt.Errorf("finding cached repo: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanCachedRepo(rows)
}

func scanCachedRepo(rows *sql.Rows) (*repo.Repository, error) {
	var r repo.Repository
	var desc, lang, topic sql.NullString
	err := rows.Scan(&r.URL, &r.Author, &r.Name, &desc, &lang, &r.Stars, &r.Forks, &r.StarsPeriod, &topic)
	if err != nil {
		return nil, fmt.Errorf("scanning cached repo: %w", err)
	}
	r.Description = desc.String
	r.Language = lang.String
	r.Topic = topic.String
	return &r, nil
}
