package provider

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiClient implements the Client interface using the Google Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a new GeminiClient.
// If model is empty, it defaults to gemini-2.5-flash.
func NewGeminiClient(apiKey, model string) (*GeminiClient, error) {
	if model == "" {
		model = defaultGeminiModel
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &GeminiClient{
		client: client,
		model:  model,
	}, nil
}

func geminiContents(prompt string) []*genai.Content {
	return []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
	}}
}

// Complete sends a prompt to Gemini and returns the text completion.
func (g *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model, geminiContents(prompt), nil)
	if err != nil {
		return "", classifyGeminiError(ctx, err, "completion")
	}
	if result == nil {
		return "", fmt.Errorf("%w: gemini returned nil result", ErrInvalidResponse)
	}
	return result.Text(), nil
}

// Stream sends a prompt and yields the completion incrementally.
func (g *GeminiClient) Stream(ctx context.Context, prompt string) (<-chan Chunk, error) {
	ch := make(chan Chunk, streamBufferSize)
	go func() {
		defer close(ch)

		for resp, err := range g.client.Models.GenerateContentStream(ctx, g.model, geminiContents(prompt), nil) {
			if err != nil {
				ch <- Chunk{Err: classifyGeminiError(ctx, err, "streaming")}
				return
			}
			if text := resp.Text(); text != "" {
				ch <- Chunk{Text: text}
			}
		}
	}()
	return ch, nil
}

// Ping issues a one-token generation as a minimal authenticated round trip.
func (g *GeminiClient) Ping(ctx context.Context) error {
	cfg := &genai.GenerateContentConfig{MaxOutputTokens: 1}
	if _, err := g.client.Models.GenerateContent(ctx, g.model, geminiContents("ping"), cfg); err != nil {
		return classifyGeminiError(ctx, err, "ping")
	}
	return nil
}

// classifyGeminiError maps API errors onto the package sentinels.
func classifyGeminiError(ctx context.Context, err error, op string) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 401, 403:
			return fmt.Errorf("%w: %s", ErrAuth, err)
		case 429:
			return fmt.Errorf("%w: %s", ErrRateLimit, err)
		case 408, 504:
			return fmt.Errorf("%w: %s", ErrTimeout, err)
		}
	}
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %s", ErrTimeout, ctx.Err())
	}
	return fmt.Errorf("gemini %s: %w", op, err)
}

var _ Client = (*GeminiClient)(nil)
