package testgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/AlexanderRomeroBasetis/jira-test-generator/common/llm"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/core/config"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/model"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/process"
)

// Transport sends a prompt to one AI backend and returns its raw text.
type Transport interface {
	Kind() model.ProviderKind
	// CheckAvailability fails fast when the backend cannot be used.
	CheckAvailability(ctx context.Context) error
	Invoke(ctx context.Context, prompt string) (string, error)
}

// TransportFactory builds the transport for a provider kind from freshly read
// settings.
type TransportFactory interface {
	NewTransport(kind model.ProviderKind, cfg config.AIConfig) (Transport, error)
}

// ParseProviderKind maps the configured provider name onto the closed set of
// backends. Unknown names are a configuration error.
func ParseProviderKind(name string) (model.ProviderKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "chat", "copilot", "openai", "anthropic":
		return model.ProviderChat, nil
	case "cli", "gemini", "gemini-cli":
		return model.ProviderCLI, nil
	default:
		return "", fmt.Errorf("%w: %w %q (expected %q or %q)",
			ErrConfigurationMissing, ErrUnknownProvider, name, model.ProviderChat, model.ProviderCLI)
	}
}

// DefaultTransportFactory builds chat transports over common/llm and CLI
// transports over a process runner.
type DefaultTransportFactory struct {
	Runner        process.Runner
	NewChatClient func(llm.Config) (llm.ChatClient, error)
}

func NewTransportFactory(runner process.Runner) *DefaultTransportFactory {
	return &DefaultTransportFactory{
		Runner:        runner,
		NewChatClient: llm.NewChatClient,
	}
}

func (f *DefaultTransportFactory) NewTransport(kind model.ProviderKind, cfg config.AIConfig) (Transport, error) {
	switch kind {
	case model.ProviderChat:
		if strings.TrimSpace(cfg.Chat.APIKey) == "" {
			return nil, fmt.Errorf("%w: CHAT_API_KEY is not set", ErrConfigurationMissing)
		}
		client, err := f.NewChatClient(llm.Config{
			Vendor:      cfg.Chat.Vendor,
			APIKey:      cfg.Chat.APIKey,
			BaseURL:     cfg.Chat.BaseURL,
			ModelFamily: cfg.Chat.ModelFamily,
			MaxTokens:   cfg.Chat.MaxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfigurationMissing, newRedactor(cfg.Chat.APIKey).Error(err))
		}
		return NewChatTransport(client, cfg.Chat), nil
	case model.ProviderCLI:
		return NewCLITransport(cfg.CLI, f.Runner), nil
	default:
		return nil, fmt.Errorf("%w: %w %q", ErrConfigurationMissing, ErrUnknownProvider, kind)
	}
}
