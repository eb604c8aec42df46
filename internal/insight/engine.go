package insight

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jacklau/reposcope/internal/github"
	"github.com/jacklau/reposcope/internal/provider"
	"github.com/jacklau/reposcope/internal/pubsub"
	"github.com/jacklau/reposcope/internal/repo"
	"github.com/jacklau/reposcope/internal/store"
)

// Mode selects how much context a generation gathers.
type Mode string

const (
	// ModeStandard uses repository metadata and the README.
	ModeStandard Mode = "standard"

	// ModeDeep additionally gathers the file tree and a manifest file.
	ModeDeep Mode = "deep"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeStandard || m == ModeDeep
}

// minCacheLen is the shortest trimmed output worth caching. Degenerate
// completions (empty, a lone punctuation mark) are delivered but not stored.
const minCacheLen = 10

// eventBufferSize is the channel buffer for generation events.
const eventBufferSize = 64

// Engine owns the insight cache and the streaming generation state machine.
// Generations for the same (url, mode) pair are serialized; different pairs
// run independently.
type Engine struct {
	db      *store.DB
	context *github.ContextSource
	broker  *pubsub.Broker[Notification]
	locks   *keyLocks
	logger  *slog.Logger
}

// NewEngine creates an Engine. A nil broker disables notifications, a nil
// logger uses slog.Default.
func NewEngine(db *store.DB, cs *github.ContextSource, broker *pubsub.Broker[Notification], logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		db:      db,
		context: cs,
		broker:  broker,
		locks:   newKeyLocks(),
		logger:  logger,
	}
}

// Cached returns the stored insight for the exact (url, mode) pair, with a
// boolean miss indicator. A miss is not an error.
func (e *Engine) Cached(url string, mode Mode) (string, bool, error) {
	ins, err := e.db.GetInsight(url, string(mode))
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return ins.Content, true, nil
}

// CheckBatch returns the subset of urls that have a cached insight in any
// mode. Used to annotate listings without one query per row.
func (e *Engine) CheckBatch(urls []string) (map[string]bool, error) {
	found, err := e.db.InsightURLs(urls)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(found))
	for _, u := range found {
		set[u] = true
	}
	return set, nil
}

// Generate produces an insight for the repository, streaming events on the
// returned channel: zero or more Token events, then on failure exactly one
// Error, then always a final Done, after which the channel is closed.
//
// The channel is buffered, but the producer blocks once the buffer fills and
// holds the per-key lock while it does: callers must drain the channel until
// it is closed.
//
// Unless force is set, a cache hit is replayed as a single Token and no
// provider call is made. A racing duplicate request blocks on the per-key
// lock and then serves the fresh cache the same way. Failed generations
// leave the cache untouched.
func (e *Engine) Generate(ctx context.Context, r repo.Repository, client provider.Client, mode Mode, force bool) <-chan Event {
	out := make(chan Event, eventBufferSize)

	go func() {
		defer close(out)

		if !mode.Valid() {
			e.fail(out, r, mode, time.Now(), fmt.Sprintf("unknown analysis mode %q", mode))
			return
		}

		unlock := e.locks.lock(r.URL + "|" + string(mode))
		defer unlock()

		start := time.Now()

		if !force {
			cached, ok, err := e.Cached(r.URL, mode)
			if err != nil {
				e.fail(out, r, mode, start, "reading insight cache: "+err.Error())
				return
			}
			if ok {
				out <- Event{Type: Token, Text: cached}
				out <- Event{Type: Done}
				return
			}
		}

		text, err := e.generate(ctx, out, r, mode, client)
		if err != nil {
			e.fail(out, r, mode, start, err.Error())
			return
		}

		// The length guard works on trimmed text so whitespace-only output
		// is not cached, but the stored content is the exact token stream.
		if len(strings.TrimSpace(text)) < minCacheLen {
			e.logger.Warn("insight too short to cache", "url", r.URL, "mode", mode, "len", len(text))
		} else if err := e.db.PutInsight(&store.Insight{RepoURL: r.URL, Mode: string(mode), Content: text}); err != nil {
			e.fail(out, r, mode, start, "saving insight: "+err.Error())
			return
		}

		e.notify(Notification{URL: r.URL, Mode: mode, Duration: time.Since(start)})
		out <- Event{Type: Done}
	}()

	return out
}

// generate gathers context, streams the completion, and returns the
// accumulated text exactly as emitted. Tokens are forwarded as they arrive, so a later
// failure can leave the caller with partial output; the Error event emitted
// by Generate is the visible marker for that.
func (e *Engine) generate(ctx context.Context, out chan<- Event, r repo.Repository, mode Mode, client provider.Client) (string, error) {
	var rc *github.RepoContext
	if e.context != nil {
		if mode == ModeDeep {
			// Best-effort: a failed gather downgrades to whatever was found.
			rc = e.context.Gather(ctx, r.Author, r.Name)
		} else {
			rc = &github.RepoContext{Readme: e.context.Readme(ctx, r.Author, r.Name)}
		}
	}

	stream, err := client.Stream(ctx, buildPrompt(r, rc, mode == ModeDeep))
	if err != nil {
		return "", fmt.Errorf("starting generation: %w", err)
	}

	var full strings.Builder
	for chunk := range stream {
		if chunk.Err != nil {
			return "", fmt.Errorf("generation failed: %w", chunk.Err)
		}
		full.WriteString(chunk.Text)
		out <- Event{Type: Token, Text: chunk.Text}
	}

	return full.String(), nil
}

// fail emits the terminal Error/Done pair and publishes a failure
// notification. The cache is never touched on this path.
func (e *Engine) fail(out chan<- Event, r repo.Repository, mode Mode, start time.Time, msg string) {
	e.logger.Error("insight generation failed", "url", r.URL, "mode", mode, "error", msg)
	e.notify(Notification{URL: r.URL, Mode: mode, Err: msg, Duration: time.Since(start)})
	out <- Event{Type: Error, Text: msg}
	out <- Event{Type: Done}
}

func (e *Engine) notify(n Notification) {
	if e.broker == nil {
		return
	}
	typ := pubsub.Completed
	if n.Err != "" {
		typ = pubsub.Failed
	}
	e.broker.Publish(typ, n)
}
