package internal

import (
	"context"
	"fmt"
	"time"
)

// Answerer answers follow-up questions against a stored summary
type Answerer struct {
	client  ChatClient
	prompts *PromptManager
	model   string
	timeout time.Duration
}

// NewAnswerer creates a new question-answering stage
func NewAnswerer(client ChatClient, prompts *PromptManager, model string, timeout time.Duration) *Answerer {
	return &Answerer{
		client:  client,
		prompts: prompts,
		model:   model,
		timeout: timeout,
	}
}

// Answer invokes the model once with the summary and question
func (a *Answerer) Answer(ctx context.Context, summary, question string) (string, error) {
	messages, err := a.prompts.AnswerMessages(summary, question)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAnswer, err)
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	raw, err := a.client.CreateChatCompletion(ctx, a.model, messages)
	if err != nil {
		return "", fmt.Errorf("%w: creating chat completion: %w", ErrAnswer, err)
	}

	answer, err := ParseOutput(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAnswer, err)
	}
	return answer, nil
}
