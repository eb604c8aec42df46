package search

import (
	"context"
	"fmt"
	"log/slog"

	gogithub "github.com/google/go-github/v60/github"

	"github.com/jacklau/reposcope/internal/repo"
)

// DefaultPageSize is how many results a search returns unless configured
// otherwise.
const DefaultPageSize = 20

// Searcher queries the GitHub search API and normalizes results.
type Searcher struct {
	gh       *gogithub.Client
	pageSize int
	logger   *slog.Logger
}

// NewSearcher creates a Searcher. A non-positive pageSize uses the default,
// a nil logger uses slog.Default.
func NewSearcher(gh *gogithub.Client, pageSize int, logger *slog.Logger) *Searcher {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Searcher{gh: gh, pageSize: pageSize, logger: logger}
}

// Search runs a repository search ordered by stars and returns normalized
// records tagged with the "Search Result" topic. Results are always fetched
// fresh; nothing is cached at this layer.
func (s *Searcher) Search(ctx context.Context, query string) ([]repo.Repository, error) {
	if query == "" {
		return nil, fmt.Errorf("empty search query")
	}

	result, _, err := s.gh.Search.Repositories(ctx, query, &gogithub.SearchOptions{
		Sort:        "stars",
		Order:       "desc",
		ListOptions: gogithub.ListOptions{PerPage: s.pageSize},
	})
	if err != nil {
		return nil, fmt.Errorf("searching repositories: %w", err)
	}

	s.logger.Debug("search completed", "query", query, "total", result.GetTotal(), "returned", len(result.Repositories))

	repos := make([]repo.Repository, 0, len(result.Repositories))
	for _, item := range result.Repositories {
		repos = append(repos, fromSearchResult(item))
	}
	return repos, nil
}

// fromSearchResult maps a GitHub API repository onto the normalized record.
func fromSearchResult(item *gogithub.Repository) repo.Repository {
	r := repo.Repository{
		Author:      item.GetOwner().GetLogin(),
		Name:        item.GetName(),
		Description: item.GetDescription(),
		Language:    item.GetLanguage(),
		Stars:       item.GetStargazersCount(),
		Forks:       item.GetForksCount(),
		URL:         item.GetHTMLURL(),
		Topic:       repo.TopicSearchResult,
		Labels:      item.Topics,
		License:     item.GetLicense().GetSPDXID(),
	}
	if pushed := item.GetPushedAt(); !pushed.IsZero() {
		t := pushed.Time
		r.PushedAt = &t
	}
	if r.URL == "" {
		r.URL = "https://github.com/" + r.FullName()
	}
	return r
}
