package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-sonnet-4-20250514"

// AnthropicClient implements the Client interface using the Anthropic API.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicClient creates a new AnthropicClient. An empty baseURL uses the
// SDK default; an empty model defaults to claude-sonnet-4-20250514.
func NewAnthropicClient(apiKey, baseURL, model string) *AnthropicClient {
	if model == "" {
		model = defaultAnthropicModel
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := anthropic.NewClient(opts...)
	return &AnthropicClient{
		client: &client,
		model:  model,
	}
}

func (a *AnthropicClient) params(prompt string, maxTokens int64) anthropic.MessageNewParams {
	return anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
}

// Complete sends a prompt to Anthropic and returns the text completion.
func (a *AnthropicClient) Complete(ctx context.Context, prompt string) (string, error) {
	msg, err := a.client.Messages.New(ctx, a.params(prompt, 1024))
	if err != nil {
		return "", classifyAnthropicError(ctx, err, "completion")
	}

	// Extract text from the response
	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}

	return "", fmt.Errorf("%w: no text content in response", ErrInvalidResponse)
}

// Stream sends a prompt and yields text deltas as the provider emits them.
func (a *AnthropicClient) Stream(ctx context.Context, prompt string) (<-chan Chunk, error) {
	stream := a.client.Messages.NewStreaming(ctx, a.params(prompt, 4096))

	ch := make(chan Chunk, streamBufferSize)
	go func() {
		defer close(ch)
		defer stream.Close()

		for stream.Next() {
			event := stream.Current()
			switch eventVariant := event.AsAny().(type) {
			case anthropic.ContentBlockDeltaEvent:
				switch deltaVariant := eventVariant.Delta.AsAny().(type) {
				case anthropic.TextDelta:
					if deltaVariant.Text != "" {
						ch <- Chunk{Text: deltaVariant.Text}
					}
				}
			}
		}
		if err := stream.Err(); err != nil {
			ch <- Chunk{Err: classifyAnthropicError(ctx, err, "streaming")}
		}
	}()
	return ch, nil
}

// Ping issues a one-token message as a minimal authenticated round trip.
func (a *AnthropicClient) Ping(ctx context.Context) error {
	if _, err := a.client.Messages.New(ctx, a.params("ping", 1)); err != nil {
		return classifyAnthropicError(ctx, err, "ping")
	}
	return nil
}

// classifyAnthropicError maps API errors onto the package sentinels.
func classifyAnthropicError(ctx context.Context, err error, op string) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
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
	return fmt.Errorf("anthropic %s: %w", op, err)
}

var _ Client = (*AnthropicClient)(nil)
