package provider

import (
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenAIModel = "gpt-4o-mini"

// streamBufferSize is the channel buffer for streamed chunks.
const streamBufferSize = 64

// OpenAIClient implements the Client interface against any endpoint speaking
// the OpenAI chat-completions protocol: OpenAI itself, DeepSeek, and custom
// OpenAI-compatible servers.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates a client for an OpenAI-compatible endpoint.
// If model is empty, it defaults to gpt-4o-mini.
func NewOpenAIClient(apiKey, baseURL, model string) *OpenAIClient {
	if model == "" {
		model = defaultOpenAIModel
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// NewAzureClient creates a client for an Azure OpenAI deployment.
func NewAzureClient(apiKey, baseURL, model string) *OpenAIClient {
	cfg := openai.DefaultAzureConfig(apiKey, baseURL)
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Complete sends a prompt and returns the full text completion.
func (o *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens: 1024,
	})
	if err != nil {
		return "", classifyOpenAIError(ctx, err, "completion")
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", ErrInvalidResponse)
	}

	return resp.Choices[0].Message.Content, nil
}

// Stream sends a prompt and yields the completion incrementally. Chunks are
// delivered in the order the provider sends them.
func (o *OpenAIClient) Stream(ctx context.Context, prompt string) (<-chan Chunk, error) {
	stream, err := o.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Stream: true,
	})
	if err != nil {
		return nil, classifyOpenAIError(ctx, err, "starting stream")
	}

	ch := make(chan Chunk, streamBufferSize)
	go func() {
		defer close(ch)
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				ch <- Chunk{Err: classifyOpenAIError(ctx, err, "receiving stream")}
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			if delta := resp.Choices[0].Delta.Content; delta != "" {
				ch <- Chunk{Text: delta}
			}
		}
	}()
	return ch, nil
}

// Ping lists models as a minimal authenticated round trip.
func (o *OpenAIClient) Ping(ctx context.Context) error {
	if _, err := o.client.ListModels(ctx); err != nil {
		return classifyOpenAIError(ctx, err, "ping")
	}
	return nil
}

// classifyOpenAIError maps API errors onto the package sentinels.
func classifyOpenAIError(ctx context.Context, err error, op string) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
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
	return fmt.Errorf("openai %s: %w", op, err)
}

var _ Client = (*OpenAIClient)(nil)
