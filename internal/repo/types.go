package repo

import (
	"fmt"
	"strings"
	"time"
)

// Repository is a normalized record describing one discovered open-source
// project. Instances are ephemeral: rebuilt on every trend fetch or search,
// never mutated in place. The canonical URL is the identity used for insight
// caching and favorites, regardless of which listing the record came from.
type Repository struct {
	Author      string
	Name        string
	Description string
	Language    string
	Stars       int
	Forks       int
	StarsPeriod string // e.g. "512 stars today"; empty for search results
	URL         string
	Topic       string
	Labels      []string // secondary topic labels, free-form
	PushedAt    *time.Time
	License     string
}

// FullName returns the "author/name" form.
func (r Repository) FullName() string {
	return r.Author + "/" + r.Name
}

// SplitFullName splits an "owner/name" string into its parts.
func SplitFullName(full string) (owner, name string, err error) {
	parts := strings.SplitN(full, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository name: expected owner/name, got %q", full)
	}
	return parts[0], parts[1], nil
}

// DedupeByURL removes records sharing a canonical URL, keeping the first
// occurrence and preserving order. A result set never contains the same URL
// twice, even when the source listing does.
func DedupeByURL(repos []Repository) []Repository {
	seen := make(map[string]struct{}, len(repos))
	out := repos[:0]
	for _, r := range repos {
		if _, ok := seen[r.URL]; ok {
			continue
		}
		seen[r.URL] = struct{}{}
		out = append(out, r)
	}
	return out
}

// ParseCount parses GitHub-style counters like "12,345", "1.2k" or "3.4m"
// into an integer. Unparseable input yields zero.
func ParseCount(s string) int {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0
	}

	mult := 1
	switch {
	case strings.HasSuffix(s, "k"):
		mult = 1_000
		s = strings.TrimSuffix(s, "k")
	case strings.HasSuffix(s, "m"):
		mult = 1_000_000
		s = strings.TrimSuffix(s, "m")
	}

	var whole, frac, fracDigits int
	inFrac := false
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
			if inFrac {
				frac = frac*10 + int(c-'0')
				fracDigits++
			} else {
				whole = whole*10 + int(c-'0')
			}
		case c == '.':
			inFrac = true
		}
		// commas and any other separators are skipped
	}

	n := whole * mult
	if fracDigits > 0 && mult > 1 {
		scale := mult
		for i := 0; i < fracDigits; i++ {
			scale /= 10
		}
		n += frac * scale
	}
	return n
}

// FormatCount renders a counter the way GitHub listings do: "842", "1.2k".
func FormatCount(n int) string {
	if n >= 1000 {
		return fmt.Sprintf("%.1fk", float64(n)/1000.0)
	}
	return fmt.Sprintf("%d", n)
}
