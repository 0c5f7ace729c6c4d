package internal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// App holds the application state and dependencies
type App struct {
	config      *Config
	source      VideoSource
	chat        ChatClient
	transcriber Transcriber
	recorder    Recorder
	prompts     *PromptManager
	ui          UIManager
	logger      *slog.Logger

	// chatErr is reported by the operations that need the language model
	chatErr error

	loader     *TranscriptLoader
	summarizer *Summarizer
	answerer   *Answerer
	voice      *VoiceInput
}

// AppOption customizes App creation
type AppOption func(*App)

// WithVideoSource sets a custom transcript and metadata source
func WithVideoSource(source VideoSource) AppOption {
	return func(a *App) {
		a.source = source
	}
}

// WithChatClient sets a custom language model client
func WithChatClient(chat ChatClient) AppOption {
	return func(a *App) {
		a.chat = chat
	}
}

// WithTranscriber sets a custom speech-to-text client
func WithTranscriber(transcriber Transcriber) AppOption {
	return func(a *App) {
		a.transcriber = transcriber
	}
}

// WithRecorder sets a custom microphone recorder
func WithRecorder(recorder Recorder) AppOption {
	return func(a *App) {
		a.recorder = recorder
	}
}

// WithUI sets a custom UI manager
func WithUI(ui UIManager) AppOption {
	return func(a *App) {
		a.ui = ui
	}
}

// WithLogger sets a custom logger
func WithLogger(logger *slog.Logger) AppOption {
	return func(a *App) {
		a.logger = logger
	}
}

// NewApp initializes the application. Collaborators not supplied through options
// are built from config. A chat client that cannot be built (missing API key,
// unknown provider) fails Summarize and Ask before any network call.
func NewApp(config *Config, options ...AppOption) *App {
	app := &App{config: config}

	for _, option := range options {
		option(app)
	}

	if app.logger == nil {
		app.logger = slog.New(slog.DiscardHandler)
	}
	if app.ui == nil {
		app.ui = NewUIManager(config.Quiet)
	}
	if app.source == nil {
		app.source = NewYouTube(config.CacheDir, app.logger)
	}
	if app.chat == nil {
		chat, err := NewChatClient(config)
		if err != nil {
			app.chatErr = err
		}
		app.chat = chat
	}
	if app.transcriber == nil {
		app.transcriber = newSpeechClient(config)
	}
	if app.recorder == nil {
		app.recorder = NewMicrophone(&DefaultCommandRunner{}, config.TempDir, config.VoiceDevice, config.VoiceMaxDuration, config.VoiceSilence)
	}

	app.prompts = NewPromptManager(config.ConfigDir, config.MapPrompt, config.CombinePrompt)
	app.loader = NewTranscriptLoader(app.source, config.Languages, config.ChunkSize, config.ChunkOverlap)
	app.summarizer = NewSummarizer(app.chat, app.prompts, config.Model, config.RequestTimeout, app.logger)
	app.answerer = NewAnswerer(app.chat, app.prompts, config.Model, config.RequestTimeout)
	app.voice = NewVoiceInput(app.recorder, app.transcriber, config.SpeechModel, config.RequestTimeout, app.logger)

	return app
}

// newSpeechClient returns the transcription client, or nil when no key is configured
func newSpeechClient(config *Config) Transcriber {
	if config.APIKey == "" {
		return nil
	}
	baseURL := config.SpeechBaseURL
	if baseURL == "" && config.Provider == ProviderOpenAI {
		baseURL = config.BaseURL
	}
	return NewOpenAIClient(config.APIKey, baseURL)
}

// Config returns the configuration the app was built with
func (app *App) Config() *Config {
	return app.config
}

// Summarize validates rawURL and, when it is a video link, replaces the session
// summary with a fresh map-reduce summary of its transcript. It reports false with
// no error for a valid URL that is not a video link, leaving the session untouched.
func (app *App) Summarize(ctx context.Context, sess *Session, rawURL string) (bool, error) {
	videoURL, err := ValidateURL(rawURL)
	if err != nil {
		return false, err
	}
	if !IsVideoURL(videoURL) {
		app.logger.Info("not a video link, skipping summarization", "url", videoURL)
		return false, nil
	}
	if app.chatErr != nil {
		return false, app.chatErr
	}

	spinner := app.ui.NewSpinner("Fetching transcript...")
	docs, transcript, err := app.loader.Load(ctx, videoURL)
	spinner.Finish()
	if err != nil {
		return false, err
	}
	app.logger.Debug("transcript loaded",
		"video", transcript.VideoID,
		"language", transcript.Language,
		"chars", len(transcript.Text),
		"chunks", len(docs))

	bar := app.ui.NewProgressBar(len(docs), "Summarizing")
	summary, err := app.summarizer.Summarize(ctx, docs, bar)
	bar.Finish()
	if err != nil {
		return false, err
	}

	sess.store(summary, videoURL, transcript, app.title(ctx, videoURL))
	return true, nil
}

// title looks up the video title, returning "" when metadata is unavailable
func (app *App) title(ctx context.Context, videoURL string) string {
	metadata, err := app.source.Metadata(ctx, videoURL)
	if err != nil {
		app.logger.Debug("metadata unavailable", "url", videoURL, "error", err)
		return ""
	}
	return metadata.Title
}

// Ask answers question against the session summary
func (app *App) Ask(ctx context.Context, sess *Session, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	summary := sess.Summary()
	if summary == "" {
		return "", ErrNoSummary
	}
	if app.chatErr != nil {
		return "", app.chatErr
	}

	spinner := app.ui.NewSpinner("Thinking...")
	defer spinner.Finish()

	return app.answerer.Answer(ctx, summary, question)
}

// Transcript fetches the transcript of a video link in the first accepted language
func (app *App) Transcript(ctx context.Context, rawURL string) (*Transcript, error) {
	videoURL, err := app.videoURL(rawURL)
	if err != nil {
		return nil, err
	}

	spinner := app.ui.NewSpinner("Fetching transcript...")
	defer spinner.Finish()

	_, transcript, err := app.loader.Load(ctx, videoURL)
	if err != nil {
		return nil, err
	}
	return transcript, nil
}

// Metadata gets the metadata of a video link
func (app *App) Metadata(ctx context.Context, rawURL string) (*VideoMetadata, error) {
	videoURL, err := app.videoURL(rawURL)
	if err != nil {
		return nil, err
	}

	spinner := app.ui.NewSpinner("Fetching video metadata...")
	defer spinner.Finish()

	metadata, err := app.source.Metadata(ctx, videoURL)
	if err != nil {
		return nil, fmt.Errorf("fetching metadata: %w", err)
	}
	return metadata, nil
}

// videoURL validates rawURL and requires it to be a video link
func (app *App) videoURL(rawURL string) (string, error) {
	videoURL, err := ValidateURL(NormalizeArg(strings.TrimSpace(rawURL)))
	if err != nil {
		return "", err
	}
	if !IsVideoURL(videoURL) {
		return "", fmt.Errorf("%w: %s is not a video link", ErrInvalidURL, videoURL)
	}
	return videoURL, nil
}

// VoiceQuestion records a spoken question. ok is false when text is one of the
// speech fallback messages, which must not be sent to the model.
func (app *App) VoiceQuestion(ctx context.Context) (text string, ok bool) {
	app.ui.Println("Listening... speak your question.")
	return app.voice.Question(ctx)
}
