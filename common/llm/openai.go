package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type openaiClient struct {
	client    openai.Client
	family    string
	maxTokens int
}

// newOpenAIClient creates a ChatClient for the OpenAI API or any
// OpenAI-compatible endpoint.
func newOpenAIClient(cfg Config) ChatClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	family := cfg.ModelFamily
	if family == "" {
		family = "gpt-4o"
	}

	return &openaiClient{
		client:    openai.NewClient(opts...),
		family:    family,
		maxTokens: cfg.MaxTokens,
	}
}

func (c *openaiClient) Vendor() string {
	return VendorOpenAI
}

func (c *openaiClient) ResolveModel(ctx context.Context) (string, error) {
	var ids []string
	iter := c.client.Models.ListAutoPaging(ctx)
	for iter.Next() {
		ids = append(ids, iter.Current().ID)
	}
	if err := iter.Err(); err != nil {
		return "", fmt.Errorf("openai list models: %w", err)
	}

	model, err := SelectModel(ids, c.family)
	if err != nil {
		return "", err
	}

	slog.DebugContext(ctx, "chat model resolved", "vendor", VendorOpenAI, "family", c.family, "model", model)
	return model, nil
}

func (c *openaiClient) StreamText(ctx context.Context, req TextRequest) (*TextResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}
	if maxTokens == 0 {
		maxTokens = 4096
	}

	params := openai.ChatCompletionNewParams{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
		MaxCompletionTokens: openai.Int(int64(maxTokens)),
	}

	var opts []option.RequestOption
	if req.Justification != "" {
		opts = append(opts, option.WithHeader(justificationHeader, req.Justification))
	}

	start := time.Now()
	stream := c.client.Chat.Completions.NewStreaming(ctx, params, opts...)
	defer stream.Close()

	var text strings.Builder
	fragments := 0
	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			text.WriteString(delta)
			fragments++
		}
	}
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("openai stream: %w", err)
	}

	slog.DebugContext(ctx, "chat stream drained",
		"vendor", VendorOpenAI,
		"model", req.Model,
		"duration_ms", time.Since(start).Milliseconds(),
		"fragments", fragments,
		"chars", text.Len())

	return &TextResponse{
		Text:      text.String(),
		Model:     req.Model,
		Fragments: fragments,
	}, nil
}
