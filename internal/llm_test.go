package internal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChatClient(t *testing.T) {
	t.Run("openai", func(t *testing.T) {
		client, err := NewChatClient(&Config{Provider: ProviderOpenAI, APIKey: "sk-test"})
		require.NoError(t, err)
		assert.IsType(t, &OpenAIClient{}, client)
	})

	t.Run("openai without key", func(t *testing.T) {
		_, err := NewChatClient(&Config{Provider: ProviderOpenAI})
		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("ollama", func(t *testing.T) {
		client, err := NewChatClient(&Config{Provider: ProviderOllama, OllamaURL: "http://localhost:11434"})
		require.NoError(t, err)
		assert.IsType(t, &OllamaClient{}, client)
	})

	t.Run("ollama without url", func(t *testing.T) {
		_, err := NewChatClient(&Config{Provider: ProviderOllama})
		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("rate limited", func(t *testing.T) {
		client, err := NewChatClient(&Config{Provider: ProviderOpenAI, APIKey: "sk-test", RateLimit: 2})
		require.NoError(t, err)
		assert.IsType(t, &RateLimitedClient{}, client)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := NewChatClient(&Config{Provider: "anthropic"})
		assert.ErrorIs(t, err, ErrConfiguration)
		assert.ErrorContains(t, err, "anthropic")
	})
}

func TestRateLimitedClient(t *testing.T) {
	chat := &fakeChat{}
	client := NewRateLimitedClient(chat, 1000)

	got, err := client.CreateChatCompletion(t.Context(), "m", []ChatMessage{{Role: RoleUser, Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 1, chat.callCount())
}

func TestRateLimitedClientCancelled(t *testing.T) {
	chat := &fakeChat{}
	client := NewRateLimitedClient(chat, 0.001)

	// The first request consumes the only token.
	_, err := client.CreateChatCompletion(t.Context(), "m", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err = client.CreateChatCompletion(ctx, "m", nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, chat.callCount())
}

func TestMessageType(t *testing.T) {
	assert.Equal(t, "system", string(messageType(RoleSystem)))
	assert.Equal(t, "ai", string(messageType(RoleAssistant)))
	assert.Equal(t, "human", string(messageType(RoleUser)))
}
