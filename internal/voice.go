package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// audioChecker is implemented by recorders that can tell an empty capture apart
type audioChecker interface {
	HasAudio(ctx context.Context, audioFile string) bool
}

// VoiceInput records a spoken question and transcribes it
type VoiceInput struct {
	recorder    Recorder
	transcriber Transcriber
	model       string
	timeout     time.Duration
	logger      *slog.Logger
}

// NewVoiceInput creates a new voice input adapter. transcriber may be nil when no
// speech service is configured; Listen then reports ErrSpeechService.
func NewVoiceInput(recorder Recorder, transcriber Transcriber, model string, timeout time.Duration, logger *slog.Logger) *VoiceInput {
	return &VoiceInput{
		recorder:    recorder,
		transcriber: transcriber,
		model:       model,
		timeout:     timeout,
		logger:      logger,
	}
}

// Listen records until silence or timeout and returns the recognized text
func (v *VoiceInput) Listen(ctx context.Context) (string, error) {
	if v.transcriber == nil {
		return "", fmt.Errorf("%w: no speech service configured", ErrSpeechService)
	}

	audioFile, err := v.recorder.Record(ctx)
	if errors.Is(err, ErrSpeechUnrecognized) {
		return "", err
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMicrophone, err)
	}
	defer cleanupFiles(audioFile)

	if checker, ok := v.recorder.(audioChecker); ok && !checker.HasAudio(ctx, audioFile) {
		return "", ErrSpeechUnrecognized
	}

	file, err := os.Open(audioFile)
	if err != nil {
		return "", fmt.Errorf("%w: opening recording: %w", ErrMicrophone, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			v.logger.Warn("failed to close recording", "file", audioFile, "error", closeErr)
		}
	}()

	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}

	text, err := v.transcriber.CreateTranscription(ctx, v.model, file)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSpeechService, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrSpeechUnrecognized
	}
	return text, nil
}

// Question never fails: recognition errors become the literal fallback strings.
// ok is false when text is a fallback rather than a recognized question.
func (v *VoiceInput) Question(ctx context.Context) (text string, ok bool) {
	text, err := v.Listen(ctx)
	if err == nil {
		return text, true
	}

	v.logger.Info("voice input not recognized", "error", err)
	switch {
	case errors.Is(err, ErrSpeechUnrecognized):
		return SpeechUnrecognizedMessage, false
	case errors.Is(err, ErrMicrophone):
		return MicrophoneMessage, false
	default:
		return SpeechServiceMessage, false
	}
}
