package internal

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/time/rate"
)

// Role is the author of a chat message
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one message of a chat completion request
type ChatMessage struct {
	Role    Role
	Content string
}

// ChatClient sends chat completion requests to a language model
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, model string, messages []ChatMessage) (string, error)
}

// Transcriber turns recorded audio into text
type Transcriber interface {
	CreateTranscription(ctx context.Context, model string, file *os.File) (string, error)
}

// Providers supported by NewChatClient
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// NewChatClient builds the chat client for the configured provider
func NewChatClient(config *Config) (ChatClient, error) {
	var client ChatClient

	switch config.Provider {
	case ProviderOpenAI:
		if err := ValidateAPIKey(config.APIKey); err != nil {
			return nil, err
		}
		client = NewOpenAIClient(config.APIKey, config.BaseURL)
	case ProviderOllama:
		ollama, err := NewOllamaClient(config.OllamaURL)
		if err != nil {
			return nil, err
		}
		client = ollama
	default:
		return nil, fmt.Errorf("%w: unsupported provider %q (supported: %s, %s)", ErrConfiguration, config.Provider, ProviderOpenAI, ProviderOllama)
	}

	if config.RateLimit > 0 {
		client = NewRateLimitedClient(client, config.RateLimit)
	}
	return client, nil
}

// RateLimitedClient spaces out chat completions to stay under provider quotas
type RateLimitedClient struct {
	next    ChatClient
	limiter *rate.Limiter
}

// NewRateLimitedClient allows perSecond requests per second with a burst of one
func NewRateLimitedClient(next ChatClient, perSecond float64) *RateLimitedClient {
	return &RateLimitedClient{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

func (c *RateLimitedClient) CreateChatCompletion(ctx context.Context, model string, messages []ChatMessage) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for rate limiter: %w", err)
	}
	return c.next.CreateChatCompletion(ctx, model, messages)
}
