package insight

import (
	"fmt"
	"strings"

	"github.com/jacklau/reposcope/internal/github"
	"github.com/jacklau/reposcope/internal/repo"
)

const promptRole = "You are a seasoned software architect and technology evangelist who excels at summarizing technical projects clearly and concisely."

// buildPrompt assembles the analysis prompt from repository metadata plus
// whatever context was gathered. Missing pieces are simply omitted; the
// prompt degrades gracefully rather than failing.
func buildPrompt(r repo.Repository, rc *github.RepoContext, deep bool) string {
	var b strings.Builder

	b.WriteString(promptRole)
	b.WriteString("\n\nProvide an accessible, in-depth summary of the following GitHub project:\n")
	fmt.Fprintf(&b, "Project: %s/%s\n", r.Author, r.Name)
	fmt.Fprintf(&b, "Description: %s\n", r.Description)
	fmt.Fprintf(&b, "Language: %s", r.Language)

	if rc != nil {
		if rc.Readme != "" {
			scope := "excerpt"
			if deep {
				scope = "full"
			}
			fmt.Fprintf(&b, "\n\nProject README (%s):\n---\n%s\n---", scope, rc.Readme)
		}
		if deep && len(rc.Tree) > 0 {
			b.WriteString("\n\nProject directory structure (top level):\n---\n")
			b.WriteString(strings.Join(rc.Tree, "\n"))
			b.WriteString("\n---")
		}
		if deep && rc.Manifest != "" {
			fmt.Fprintf(&b, "\n\nManifest file %s (excerpt):\n---\n%s\n---", rc.ManifestName, rc.Manifest)
		}
	}

	b.WriteString("\n\nCover the following dimensions:\n")
	b.WriteString("1. Core technical architecture\n")
	b.WriteString("2. The core pain point it solves\n")
	b.WriteString("3. Who it is for and how to get started (three sentences at most)\n")
	b.WriteString("Use Markdown formatting.")

	return b.String()
}
