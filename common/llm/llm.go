package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
)

// Vendor constants for chat model selection.
const (
	VendorOpenAI    = "openai"
	VendorAnthropic = "anthropic"
)

// justificationHeader carries the human-readable reason for a request so it
// shows up in provider-side audit logs.
const justificationHeader = "X-Request-Justification"

// ErrNoMatchingModel is returned when the vendor lists no model in the configured family.
var ErrNoMatchingModel = errors.New("no chat model matches the configured family")

// Config holds chat client configuration.
type Config struct {
	Vendor      string // "openai" or "anthropic"
	APIKey      string // Required: API key for the vendor
	BaseURL     string // Optional: custom API endpoint
	ModelFamily string // Prefix filter for model ids (e.g., "gpt-4o", "claude-sonnet")
	MaxTokens   int
}

// ChatClient streams a single-turn completion from a chat model.
type ChatClient interface {
	// ResolveModel lists the vendor's models and returns the one matching the
	// configured family.
	ResolveModel(ctx context.Context) (string, error)
	// StreamText sends the prompt as a single user turn and drains the stream.
	StreamText(ctx context.Context, req TextRequest) (*TextResponse, error)
	Vendor() string
}

// TextRequest is a single user turn.
type TextRequest struct {
	Model         string
	Prompt        string
	Justification string
	MaxTokens     int
}

// TextResponse is the concatenation of every streamed text fragment, in arrival order.
type TextResponse struct {
	Text      string
	Model     string
	Fragments int
}

// NewChatClient creates a ChatClient for cfg.Vendor. Defaults to OpenAI if no
// vendor is specified.
func NewChatClient(cfg Config) (ChatClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	vendor := strings.ToLower(cfg.Vendor)
	if vendor == "" {
		vendor = VendorOpenAI
	}

	switch vendor {
	case VendorOpenAI:
		return newOpenAIClient(cfg), nil
	case VendorAnthropic:
		return newAnthropicClient(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported chat vendor: %s", cfg.Vendor)
	}
}

// SelectModel picks the model for family out of ids. An exact id match wins,
// otherwise the first id (in listing order) that starts with family. An empty
// family matches the first listed model.
func SelectModel(ids []string, family string) (string, error) {
	family = strings.ToLower(strings.TrimSpace(family))
	for _, id := range ids {
		if strings.ToLower(id) == family {
			return id, nil
		}
	}
	for _, id := range ids {
		if strings.HasPrefix(strings.ToLower(id), family) {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: family=%q available=%d", ErrNoMatchingModel, family, len(ids))
}

// StatusCode extracts the HTTP status from a vendor API error.
func StatusCode(err error) (int, bool) {
	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) {
		return openaiErr.StatusCode, true
	}
	var anthropicErr *anthropic.Error
	if errors.As(err, &anthropicErr) {
		return anthropicErr.StatusCode, true
	}
	return 0, false
}

// GenerateSchema generates a JSON schema for T without references, suitable
// for publishing the shape of structured output.
func GenerateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}
