package github

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	gogithub "github.com/google/go-github/v60/github"
	"golang.org/x/sync/errgroup"
)

const (
	// maxReadmeChars caps how much README text goes into a prompt.
	maxReadmeChars = 4000

	// maxManifestChars caps how much manifest text goes into a prompt.
	maxManifestChars = 2000

	// maxTreeEntries caps how many top-level entries we list.
	maxTreeEntries = 50
)

// manifestFiles are probed in order; the first one present wins.
var manifestFiles = []string{
	"package.json",
	"Cargo.toml",
	"go.mod",
	"requirements.txt",
	"pom.xml",
}

// RepoContext is the extra material gathered for deep analysis. Every field
// is best-effort: a fetch failure leaves it empty rather than failing the
// whole gather.
type RepoContext struct {
	Readme       string
	Tree         []string
	ManifestName string
	Manifest     string
}

// ContextSource gathers repository context for prompt building.
type ContextSource struct {
	gh      *gogithub.Client
	fetcher *Fetcher
	logger  *slog.Logger
	rawBase string
}

// NewContextSource creates a ContextSource. A nil logger uses slog.Default.
func NewContextSource(gh *gogithub.Client, fetcher *Fetcher, logger *slog.Logger) *ContextSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContextSource{
		gh:      gh,
		fetcher: fetcher,
		logger:  logger,
		rawBase: "https://raw.githubusercontent.com",
	}
}

// Readme fetches the repository README from raw.githubusercontent.com,
// trying the main branch then master. Returns "" if neither exists.
func (c *ContextSource) Readme(ctx context.Context, owner, name string) string {
	for _, branch := range []string{"main", "master"} {
		url := fmt.Sprintf("%s/%s/%s/%s/README.md", c.rawBase, owner, name, branch)
		body, err := c.fetcher.Fetch(ctx, url)
		if err != nil {
			c.logger.Debug("readme fetch failed", "owner", owner, "repo", name, "branch", branch, "error", err)
			continue
		}
		return truncate(string(body), maxReadmeChars)
	}
	return ""
}

// Gather collects the full deep context for a repository: README, top-level
// file tree, and the first recognized manifest file. The three fetches run
// concurrently and each is best-effort.
func (c *ContextSource) Gather(ctx context.Context, owner, name string) *RepoContext {
	rc := &RepoContext{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rc.Readme = c.Readme(gctx, owner, name)
		return nil
	})

	g.Go(func() error {
		tree, err := c.fileTree(gctx, owner, name)
		if err != nil {
			c.logger.Debug("file tree fetch failed", "owner", owner, "repo", name, "error", err)
			return nil
		}
		rc.Tree = tree
		rc.ManifestName, rc.Manifest = c.manifest(gctx, owner, name, tree)
		return nil
	})

	g.Wait()
	return rc
}

// fileTree lists the repository's top-level entries, directories suffixed
// with a slash.
func (c *ContextSource) fileTree(ctx context.Context, owner, name string) ([]string, error) {
	_, entries, _, err := c.gh.Repositories.GetContents(ctx, owner, name, "", nil)
	if err != nil {
		return nil, err
	}

	tree := make([]string, 0, len(entries))
	for _, e := range entries {
		if len(tree) >= maxTreeEntries {
			break
		}
		entry := e.GetName()
		if e.GetType() == "dir" {
			entry += "/"
		}
		tree = append(tree, entry)
	}
	return tree, nil
}

// manifest finds the first recognized manifest file in the tree and fetches
// its raw content from the default branch.
func (c *ContextSource) manifest(ctx context.Context, owner, name string, tree []string) (string, string) {
	present := make(map[string]bool, len(tree))
	for _, entry := range tree {
		present[entry] = true
	}

	for _, candidate := range manifestFiles {
		if !present[candidate] {
			continue
		}
		for _, branch := range []string{"main", "master"} {
			url := fmt.Sprintf("%s/%s/%s/%s/%s", c.rawBase, owner, name, branch, candidate)
			body, err := c.fetcher.Fetch(ctx, url)
			if err != nil {
				continue
			}
			return candidate, truncate(string(body), maxManifestChars)
		}
		c.logger.Debug("manifest fetch failed", "owner", owner, "repo", name, "file", candidate)
	}
	return "", ""
}

// truncate cuts s to at most n characters, avoiding a mid-line cut when it
// can back up to a newline cheaply.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := s[:n]
	if i := strings.LastIndexByte(cut, '\n'); i > n/2 {
		cut = cut[:i]
	}
	return cut + "\n..."
}
