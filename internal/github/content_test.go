package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	gogithub "github.com/google/go-github/v60/github"
)

// newTestContextSource wires a ContextSource against two httptest servers:
// one speaking the GitHub REST API, one serving raw file content.
func newTestContextSource(t *testing.T, api, raw http.Handler) *ContextSource {
	t.Helper()

	apiSrv := httptest.NewServer(api)
	t.Cleanup(apiSrv.Close)
	rawSrv := httptest.NewServer(raw)
	t.Cleanup(rawSrv.Close)

	gh := gogithub.NewClient(nil)
	base, err := url.Parse(apiSrv.URL + "/")
	if err != nil {
		t.Fatalf("parsing api url: %v", err)
	}
	gh.BaseURL = base

	cs := NewContextSource(gh, NewFetcher(0, nil), nil)
	cs.rawBase = rawSrv.URL
	return cs
}

func TestReadmeFallsBackToMaster(t *testing.T) {
	raw := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/octo/proj/master/README.md":
			fmt.Fprint(w, "# Project\nLives on master.")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	cs := newTestContextSource(t, http.NotFoundHandler(), raw)
	readme := cs.Readme(context.Background(), "octo", "proj")
	if !strings.Contains(readme, "Lives on master") {
		t.Errorf("unexpected readme %q", readme)
	}
}

func TestReadmeMissingEverywhere(t *testing.T) {
	cs := newTestContextSource(t, http.NotFoundHandler(), http.NotFoundHandler())
	if readme := cs.Readme(context.Background(), "octo", "proj"); readme != "" {
		t.Errorf("expected empty readme, got %q", readme)
	}
}

func TestGatherCollectsTreeAndManifest(t *testing.T) {
	api := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/repos/octo/proj/contents/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{"name": "cmd", "type": "dir"},
			{"name": "internal", "type": "dir"},
			{"name": "go.mod", "type": "file"},
			{"name": "main.go", "type": "file"}
		]`)
	})

	raw := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/octo/proj/main/README.md":
			fmt.Fprint(w, "# Proj")
		case "/octo/proj/main/go.mod":
			fmt.Fprint(w, "module example.com/proj\n\ngo 1.25\n")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	cs := newTestContextSource(t, api, raw)
	rc := cs.Gather(context.Background(), "octo", "proj")

	if rc.Readme != "# Proj" {
		t.Errorf("unexpected readme %q", rc.Readme)
	}
	wantTree := []string{"cmd/", "internal/", "go.mod", "main.go"}
	if len(rc.Tree) != len(wantTree) {
		t.Fatalf("expected %d tree entries, got %d: %v", len(wantTree), len(rc.Tree), rc.Tree)
	}
	for i, want := range wantTree {
		if rc.Tree[i] != want {
			t.Errorf("tree[%d]: expected %q, got %q", i, want, rc.Tree[i])
		}
	}
	if rc.ManifestName != "go.mod" {
		t.Errorf("expected manifest go.mod, got %q", rc.ManifestName)
	}
	if !strings.Contains(rc.Manifest, "module example.com/proj") {
		t.Errorf("unexpected manifest content %q", rc.Manifest)
	}
}

func TestGatherManifestPrecedence(t *testing.T) {
	api := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{"name": "go.mod", "type": "file"},
			{"name": "package.json", "type": "file"}
		]`)
	})

	raw := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/main/package.json") {
			fmt.Fprint(w, `{"name": "proj"}`)
			return
		}
		if strings.HasSuffix(r.URL.Path, "/main/go.mod") {
			fmt.Fprint(w, "module proj")
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	cs := newTestContextSource(t, api, raw)
	rc := cs.Gather(context.Background(), "octo", "proj")

	// package.json outranks go.mod in the probe order.
	if rc.ManifestName != "package.json" {
		t.Errorf("expected package.json to win, got %q", rc.ManifestName)
	}
}

func TestGatherBestEffortOnAPIFailure(t *testing.T) {
	raw := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/main/README.md") {
			fmt.Fprint(w, "readme only")
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	cs := newTestContextSource(t, http.NotFoundHandler(), raw)
	rc := cs.Gather(context.Background(), "octo", "proj")

	if rc.Readme != "readme only" {
		t.Errorf("unexpected readme %q", rc.Readme)
	}
	if len(rc.Tree) != 0 || rc.Manifest != "" {
		t.Errorf("expected empty tree and manifest, got %v / %q", rc.Tree, rc.Manifest)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 100); got != "short" {
		t.Errorf("short input should pass through, got %q", got)
	}

	long := strings.Repeat("line of text\n", 100)
	got := truncate(long, 500)
	if len(got) > 510 {
		t.Errorf("truncated output too long: %d", len(got))
	}
	if !strings.HasSuffix(got, "\n...") {
		t.Errorf("expected ellipsis suffix, got %q", got[len(got)-10:])
	}
}
