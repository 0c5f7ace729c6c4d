package internal

import (
	"context"
	"fmt"
	"sync"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// OllamaClient talks to a local Ollama server through langchaingo
type OllamaClient struct {
	serverURL string

	mu     sync.Mutex
	models map[string]llms.Model
}

// NewOllamaClient creates a client for the Ollama server at serverURL
func NewOllamaClient(serverURL string) (*OllamaClient, error) {
	if serverURL == "" {
		return nil, fmt.Errorf("%w: ollama_url is required for the ollama provider", ErrConfiguration)
	}
	return &OllamaClient{
		serverURL: serverURL,
		models:    make(map[string]llms.Model),
	}, nil
}

// model returns the langchaingo model for name, creating it on first use
func (c *OllamaClient) model(name string) (llms.Model, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if m, ok := c.models[name]; ok {
		return m, nil
	}
	m, err := ollama.New(ollama.WithModel(name), ollama.WithServerURL(c.serverURL))
	if err != nil {
		return nil, fmt.Errorf("initializing ollama model %s: %w", name, err)
	}
	c.models[name] = m
	return m, nil
}

// CreateChatCompletion implements ChatClient
func (c *OllamaClient) CreateChatCompletion(ctx context.Context, model string, messages []ChatMessage) (string, error) {
	m, err := c.model(model)
	if err != nil {
		return "", err
	}

	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		content = append(content, llms.TextParts(messageType(msg.Role), msg.Content))
	}

	resp, err := m.GenerateContent(ctx, content)
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices from model %s", model)
	}
	return resp.Choices[0].Content, nil
}

func messageType(role Role) llms.ChatMessageType {
	switch role {
	case RoleSystem:
		return llms.ChatMessageTypeSystem
	case RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
