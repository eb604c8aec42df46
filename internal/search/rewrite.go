package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/jacklau/reposcope/internal/provider"
)

// rewritePrompt turns natural-language intent into GitHub search syntax.
const rewritePrompt = `You are a GitHub search query optimizer. Convert the following natural language intent into a precise GitHub search query string using qualifiers like language:, topic:, stars:, pushed:, etc.
Rules:
- Only return the query string, nothing else
- Keep it concise but precise
- Use appropriate qualifiers based on the intent
- If language is mentioned, use language: qualifier
- If popularity is implied, use stars: qualifier
- If recency matters, use pushed: qualifier

Examples:
Input: 'beginner friendly rust ai projects' -> 'language:rust topic:ai good-first-issues:>0 stars:>100'
Input: 'trending react ui component libraries' -> 'language:typescript topic:react topic:ui stars:>1000 pushed:>2025-01-01'
Input: 'golang web framework' -> 'language:go topic:web-framework stars:>500'

Intent: '%s'`

// Rewrite asks the provider to translate a natural-language query into
// GitHub search qualifiers and returns the trimmed completion verbatim. The
// model's answer is trusted as-is; callers fall back to the raw query when
// the rewrite fails.
func Rewrite(ctx context.Context, completer provider.Completer, query string) (string, error) {
	if query == "" {
		return "", fmt.Errorf("empty search query")
	}

	out, err := completer.Complete(ctx, fmt.Sprintf(rewritePrompt, query))
	if err != nil {
		return "", fmt.Errorf("rewriting query: %w", err)
	}

	rewritten := strings.TrimSpace(out)
	if rewritten == "" {
		return "", fmt.Errorf("%w: empty rewrite", provider.ErrInvalidResponse)
	}
	return rewritten, nil
}
