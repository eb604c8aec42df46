package store

import "github.com/jacklau/reposcope/internal/repo"

// Store defines the storage operations used by the insight engine, the
// registry and the command layer. It is satisfied by *DB and can be replaced
// with a mock for testing.
type Store interface {
	// ToggleFavorite flips the favorited state for a repository's URL.
	ToggleFavorite(r repo.Repository) (bool, error)

	// IsFavorite reports whether the URL is favorited.
	IsFavorite(url string) (bool, error)

	// ListFavorites returns favorites, most recent first.
	ListFavorites() ([]repo.Repository, error)

	// GetInsight returns the cached insight for an exact (url, mode) key.
	GetInsight(url, mode string) (*Insight, error)

	// PutInsight stores an insight, replacing any previous row for its key.
	PutInsight(ins *Insight) error

	// InsightURLs returns the subset of urls that have any cached insight.
	InsightURLs(urls []string) ([]string, error)

	// LogSearch appends to the write-only search history.
	LogSearch(query, rewritten string) error
}

// Compile-time check that *DB satisfies the Store interface.
var _ Store = (*DB)(nil)
