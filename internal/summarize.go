package internal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tmc/langchaingo/schema"
)

// Summarizer runs the two-stage map-reduce summary over transcript chunks
type Summarizer struct {
	client  ChatClient
	prompts *PromptManager
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewSummarizer creates a new map-reduce summarizer
func NewSummarizer(client ChatClient, prompts *PromptManager, model string, timeout time.Duration, logger *slog.Logger) *Summarizer {
	return &Summarizer{
		client:  client,
		prompts: prompts,
		model:   model,
		timeout: timeout,
		logger:  logger,
	}
}

// Summarize maps every chunk through the map prompt, then reduces the chunk
// summaries with exactly one combine call. bar may be nil.
func (s *Summarizer) Summarize(ctx context.Context, docs []schema.Document, bar ProgressBar) (string, error) {
	if len(docs) == 0 {
		return "", fmt.Errorf("%w: no transcript chunks", ErrSummarization)
	}

	partials := make([]string, 0, len(docs))
	for i, doc := range docs {
		if bar != nil {
			bar.Describe(fmt.Sprintf("Summarizing chunk %d/%d", i+1, len(docs)))
		}

		prompt, err := s.prompts.MapPrompt(doc.PageContent)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrSummarization, err)
		}

		partial, err := s.complete(ctx, prompt)
		if err != nil {
			return "", fmt.Errorf("%w: chunk %d/%d: %w", ErrSummarization, i+1, len(docs), err)
		}
		partials = append(partials, partial)

		s.logger.Debug("chunk summarized", "chunk", i+1, "chunks", len(docs), "chars", len(partial))
		if bar != nil {
			bar.Set(i + 1)
		}
	}

	if bar != nil {
		bar.Describe("Combining summaries")
	}

	prompt, err := s.prompts.CombinePrompt(strings.Join(partials, "\n\n"))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSummarization, err)
	}

	summary, err := s.complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: combining: %w", ErrSummarization, err)
	}
	if summary == "" {
		return "", fmt.Errorf("%w: model returned an empty summary", ErrSummarization)
	}

	return summary, nil
}

// complete sends one user prompt under the request timeout
func (s *Summarizer) complete(ctx context.Context, prompt string) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	raw, err := s.client.CreateChatCompletion(ctx, s.model, []ChatMessage{
		{Role: RoleUser, Content: prompt},
	})
	if err != nil {
		return "", fmt.Errorf("creating chat completion: %w", err)
	}
	return ParseOutput(raw)
}
