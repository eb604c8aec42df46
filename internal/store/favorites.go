package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jacklau/reposcope/internal/repo"
)

// ToggleFavorite flips the favorited state for the repository's URL and
// returns the new state. Favoriting stores a snapshot of the record as it was
// at toggle time, including its topic tag; unfavoriting deletes the row.
func (d *DB) ToggleFavorite(r repo.Repository) (bool, error) {
	var exists int
	err := d.db.QueryRow(`SELECT 1 FROM favorites WHERE url = ?`, r.URL).Scan(&exists)
	switch {
	case err == sql.ErrNoRows:
		_, err = d.db.Exec(
			`INSERT INTO favorites (url, author, name, description, language, stars, forks, topic) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.URL, r.Author, r.Name, r.Description, r.Language, r.Stars, r.Forks, r.Topic,
		)
		if err != nil {
			return false, fmt.Errorf("inserting favorite: %w", err)
		}
		return true, nil
	case err != nil:
		return false, fmt.Errorf("checking favorite: %w", err)
	default:
		if _, err := d.db.Exec(`DELETE FROM favorites WHERE url = ?`, r.URL); err != nil {
			return false, fmt.Errorf("deleting favorite: %w", err)
		}
		return false, nil
	}
}

// IsFavorite reports whether the URL is currently favorited.
func (d *DB) IsFavorite(url string) (bool, error) {
	var one int
	err := d.db.QueryRow(`SELECT 1 FROM favorites WHERE url = ?`, url).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking favorite: %w", err)
	}
	return true, nil
}

// ListFavorites returns favorited repositories, most recently added first.
// Topic tags are the ones captured at favorite time; no reclassification.
func (d *DB) ListFavorites() ([]repo.Repository, error) {
	rows, err := d.db.Query(
		`SELECT url, author, name, description, language, stars, forks, topic
		 FROM favorites ORDER BY created_at DESC, rowid DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing favorites: %w", err)
	}
	defer rows.Close()

	var repos []repo.Repository
	for rows.Next() {
		var r repo.Repository
		var desc, lang, topic sql.NullString
		if err := rows.Scan(&r.URL, &r.Author, &r.Name, &desc, &lang, &r.Stars, &r.Forks, &topic); err != nil {
			return nil, fmt.Errorf("scanning favorite: %w", err)
		}
		r.Description = desc.String
		r.Language = lang.String
		r.Topic = topic.String
		repos = append(repos, r)
	}
	return repos, rows.Err()
}

// timestamp formats a time the way all store tables persist it.
func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
