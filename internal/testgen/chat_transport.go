package testgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/AlexanderRomeroBasetis/jira-test-generator/common/llm"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/core/config"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/model"
)

// chatTimeout bounds one streamed completion.
const chatTimeout = config.MaxCLITimeout

// ChatTransport sends the prompt to a chat model as a single user turn.
type ChatTransport struct {
	client        llm.ChatClient
	justification string
	maxTokens     int
	redact        redactor

	model string
}

func NewChatTransport(client llm.ChatClient, cfg config.ChatConfig) *ChatTransport {
	return &ChatTransport{
		client:        client,
		justification: cfg.Justification,
		maxTokens:     cfg.MaxTokens,
		redact:        newRedactor(cfg.APIKey),
	}
}

func (t *ChatTransport) Kind() model.ProviderKind {
	return model.ProviderChat
}

// CheckAvailability resolves a model from the configured vendor and family.
func (t *ChatTransport) CheckAvailability(ctx context.Context) error {
	modelID, err := t.client.ResolveModel(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: listing %s models: %w", ErrTimeout, t.client.Vendor(), err)
		}
		if rejected := t.rejected(err); rejected != nil {
			return rejected
		}
		return fmt.Errorf("%w: %w", ErrProviderUnavailable, t.redact.Error(err))
	}

	t.model = modelID
	slog.DebugContext(ctx, "chat model resolved", "vendor", t.client.Vendor(), "model", modelID)
	return nil
}

// Invoke streams the completion and returns every fragment concatenated.
func (t *ChatTransport) Invoke(ctx context.Context, prompt string) (string, error) {
	if t.model == "" {
		if err := t.CheckAvailability(ctx); err != nil {
			return "", err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, chatTimeout)
	defer cancel()

	start := time.Now()
	resp, err := t.client.StreamText(ctx, llm.TextRequest{
		Model:         t.model,
		Prompt:        prompt,
		Justification: t.justification,
		MaxTokens:     t.maxTokens,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %s did not answer within %s", ErrTimeout, t.model, chatTimeout)
		}
		if rejected := t.rejected(err); rejected != nil {
			return "", rejected
		}
		return "", fmt.Errorf("%w: %s: %w", ErrProviderUnavailable, t.model, t.redact.Error(err))
	}

	slog.DebugContext(ctx, "chat completion drained",
		"vendor", t.client.Vendor(),
		"model", resp.Model,
		"fragments", resp.Fragments,
		"chars", len(resp.Text),
		"justification", t.justification,
		"duration_ms", time.Since(start).Milliseconds())

	return resp.Text, nil
}

// rejected classifies vendor answers that no retry would fix. The vendor's
// error text is dropped since it may echo the request.
func (t *ChatTransport) rejected(err error) error {
	code, ok := llm.StatusCode(err)
	if !ok {
		return nil
	}
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s rejected the credentials (status %d), check CHAT_API_KEY",
			ErrProviderUnavailable, t.client.Vendor(), code)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s is rate limiting requests (status %d)",
			ErrProviderUnavailable, t.client.Vendor(), code)
	}
	return nil
}
