package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/jacklau/reposcope/internal/repo"
)

// printRepos renders a repository listing as a table. cached marks URLs that
// already have a stored insight.
func printRepos(w io.Writer, repos []repo.Repository, cached map[string]bool) {
	if len(repos) == 0 {
		fmt.Fprintln(w, "No repositories found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "REPOSITORY\tLANGUAGE\tSTARS\tTOPIC\tINSIGHT\tDESCRIPTION")
	for _, r := range repos {
		insightMark := ""
		if cached[r.URL] {
			insightMark = "cached"
		}
		stars := repo.FormatCount(r.Stars)
		if r.StarsPeriod != "" {
			stars += " (" + r.StarsPeriod + ")"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.FullName(), r.Language, stars, r.Topic, insightMark, clip(r.Description, 60))
	}
	tw.Flush()
}

// clip shortens s for table display.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// resolveRepo finds metadata for an owner/name reference: first from the
// offline listing cache, then with a targeted live search.
func resolveRepo(ctx context.Context, c *components, full string) (repo.Repository, error) {
	author, name, err := repo.SplitFullName(full)
	if err != nil {
		return repo.Repository{}, err
	}

	if cached, err := c.Store.FindCachedRepo(author, name); err == nil && cached != nil {
		return *cached, nil
	}

	results, err := c.Searcher.Search(ctx, fmt.Sprintf("repo:%s/%s", author, name))
	if err != nil {
		return repo.Repository{}, fmt.Errorf("looking up %s: %w", full, err)
	}
	for _, r := range results {
		if r.Author == author && r.Name == name {
			return r, nil
		}
	}

	// Fall back to a bare record; generation still works with metadata only.
	return repo.Repository{
		Author: author,
		Name:   name,
		URL:    "https://github.com/" + author + "/" + name,
	}, nil
}
