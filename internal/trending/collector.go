package trending

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jacklau/reposcope/internal/github"
	"github.com/jacklau/reposcope/internal/repo"
)

// ErrParse indicates the trending page no longer has the shape we expect.
// Individual malformed records are skipped and logged, not surfaced here.
var ErrParse = errors.New("trending page parse failed")

// DefaultBaseURL is the page the collector scrapes.
const DefaultBaseURL = "https://github.com/trending"

// Since is the trending time window.
type Since string

const (
	Daily   Since = "daily"
	Weekly  Since = "weekly"
	Monthly Since = "monthly"
)

// Valid reports whether s is a window GitHub accepts.
func (s Since) Valid() bool {
	return s == Daily || s == Weekly || s == Monthly
}

// Collector scrapes github.com/trending and classifies each repository.
type Collector struct {
	fetcher *github.Fetcher
	baseURL string
	logger  *slog.Logger
}

// NewCollector creates a Collector. An empty baseURL uses github.com, a nil
// logger uses slog.Default.
func NewCollector(fetcher *github.Fetcher, baseURL string, logger *slog.Logger) *Collector {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{fetcher: fetcher, baseURL: baseURL, logger: logger}
}

// Collect fetches the trending page for the given language filter and time
// window and returns the repositories in page order. language may be empty
// (all languages). An empty page yields an empty, non-nil slice.
func (c *Collector) Collect(ctx context.Context, language string, since Since) ([]repo.Repository, error) {
	if since == "" {
		since = Daily
	}
	if !since.Valid() {
		return nil, fmt.Errorf("invalid trending window %q (want daily, weekly or monthly)", since)
	}

	pageURL := c.baseURL
	if language != "" {
		pageURL += "/" + url.PathEscape(language)
	}
	pageURL += "?since=" + string(since)

	body, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	return c.parse(body)
}

// parse extracts repository records from the trending page HTML. A record
// that cannot be parsed is skipped with a debug log; a page with no
// recognizable structure at all fails with ErrParse.
func (c *Collector) parse(body []byte) ([]repo.Repository, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrParse, err)
	}

	rows := doc.Find("article.Box-row")
	if rows.Length() == 0 {
		// An empty trending page still renders its main container; if even
		// that is gone, the page layout has changed under us.
		if doc.Find("main").Length() == 0 {
			return nil, fmt.Errorf("%w: no main content in page", ErrParse)
		}
		return []repo.Repository{}, nil
	}

	repos := make([]repo.Repository, 0, rows.Length())
	rows.Each(func(i int, row *goquery.Selection) {
		r, err := parseRow(row)
		if err != nil {
			c.logger.Debug("skipping malformed trending record", "index", i, "error", err)
			return
		}
		r.Topic = repo.Classify(r.Language, r.Description)
		repos = append(repos, r)
	})

	return repos, nil
}

// parseRow extracts one repository from an article.Box-row element.
func parseRow(row *goquery.Selection) (repo.Repository, error) {
	href, ok := row.Find("h2 a").First().Attr("href")
	if !ok {
		return repo.Repository{}, fmt.Errorf("missing repository link")
	}

	full := strings.Trim(strings.TrimSpace(href), "/")
	author, name, err := repo.SplitFullName(full)
	if err != nil {
		return repo.Repository{}, fmt.Errorf("unexpected repository link %q: %w", href, err)
	}

	r := repo.Repository{
		Author:      author,
		Name:        name,
		URL:         "https://github.com/" + full,
		Description: cleanText(row.Find("p.col-9").First().Text()),
		Language:    cleanText(row.Find("span[itemprop='programmingLanguage']").First().Text()),
	}

	// First muted link is the star count, second the fork count.
	muted := row.Find("a.Link--muted")
	if muted.Length() > 0 {
		r.Stars = repo.ParseCount(cleanText(muted.Eq(0).Text()))
	}
	if muted.Length() > 1 {
		r.Forks = repo.ParseCount(cleanText(muted.Eq(1).Text()))
	}

	// "123 stars today" / "456 stars this week"
	r.StarsPeriod = cleanText(row.Find("span.d-inline-block.float-sm-right").First().Text())

	return r, nil
}

// cleanText collapses the whitespace GitHub's templating leaves behind.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
