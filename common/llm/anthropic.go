package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type anthropicClient struct {
	client    anthropic.Client
	family    string
	maxTokens int
}

// newAnthropicClient creates a ChatClient using the Anthropic API.
func newAnthropicClient(cfg Config) ChatClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	family := cfg.ModelFamily
	if family == "" {
		family = "claude-sonnet"
	}

	return &anthropicClient{
		client:    anthropic.NewClient(opts...),
		family:    family,
		maxTokens: cfg.MaxTokens,
	}
}

func (c *anthropicClient) Vendor() string {
	return VendorAnthropic
}

func (c *anthropicClient) ResolveModel(ctx context.Context) (string, error) {
	var ids []string
	iter := c.client.Models.ListAutoPaging(ctx, anthropic.ModelListParams{})
	for iter.Next() {
		ids = append(ids, iter.Current().ID)
	}
	if err := iter.Err(); err != nil {
		return "", fmt.Errorf("anthropic list models: %w", err)
	}

	model, err := SelectModel(ids, c.family)
	if err != nil {
		return "", err
	}

	slog.DebugContext(ctx, "chat model resolved", "vendor", VendorAnthropic, "family", c.family, "model", model)
	return model, nil
}

func (c *anthropicClient) StreamText(ctx context.Context, req TextRequest) (*TextResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}
	if maxTokens == 0 {
		maxTokens = 4096
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}

	var opts []option.RequestOption
	if req.Justification != "" {
		opts = append(opts, option.WithHeader(justificationHeader, req.Justification))
	}

	start := time.Now()
	stream := c.client.Messages.NewStreaming(ctx, params, opts...)
	defer stream.Close()

	var text strings.Builder
	fragments := 0
	for stream.Next() {
		event := stream.Current()
		switch ev := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			switch delta := ev.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				text.WriteString(delta.Text)
				fragments++
			}
		}
	}
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("anthropic stream: %w", err)
	}

	slog.DebugContext(ctx, "chat stream drained",
		"vendor", VendorAnthropic,
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
