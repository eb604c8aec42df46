package store

import "fmt"

// LogSearch appends a row to the search history. The log is write-only from
// the pipeline's perspective; it exists for audit, not for lookups.
func (d *DB) LogSearch(query, rewritten string) error {
	_, err := d.db.Exec(
		`INSERT INTO search_history (query, rewritten) VALUES (?, NULLIF(?, ''))`,
		query, rewritten,
	)
	if err != nil {
		return fmt.Errorf("logging search: %w", err)
	}
	return nil
}
