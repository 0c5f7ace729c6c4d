package cmd

import (
	"context"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtzll/recap/internal"
)

type stubSource struct {
	mu         sync.Mutex
	fetchCalls int
}

func (s *stubSource) Metadata(ctx context.Context, videoURL string) (*internal.VideoMetadata, error) {
	return &internal.VideoMetadata{Title: "Stub Video"}, nil
}

func (s *stubSource) FetchTranscript(ctx context.Context, videoURL string, languages []string) (*internal.Transcript, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchCalls++
	return &internal.Transcript{VideoID: "dQw4w9WgXcQ", Language: languages[0], Text: "never gonna give you up"}, nil
}

type stubChat struct{}

func (stubChat) CreateChatCompletion(ctx context.Context, model string, messages []internal.ChatMessage) (string, error) {
	return "# Stub Summary\nIt is about a promise.", nil
}

// useConfig swaps the package config for the duration of the test
func useConfig(t *testing.T) *internal.Config {
	t.Helper()
	dir := t.TempDir()
	previous := config
	config = &internal.Config{
		Provider:         internal.ProviderOpenAI,
		Model:            "gpt-4o-mini",
		APIKey:           "test-key",
		Languages:        []string{"en"},
		ChunkSize:        1000,
		ChunkOverlap:     0,
		RequestTimeout:   time.Second,
		VoiceMaxDuration: 5 * time.Second,
		VoiceSilence:     time.Second,
		Quiet:            true,
		ConfigDir:        filepath.Join(dir, "config"),
		DataDir:          filepath.Join(dir, "data"),
		CacheDir:         filepath.Join(dir, "cache"),
		TempDir:          filepath.Join(dir, "cache", "temp"),
	}
	t.Cleanup(func() { config = previous })
	return config
}

func testCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	internal.AddLLMFlags(cmd)
	internal.AddLanguageFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	cmd.SetContext(t.Context())
	return cmd
}

func TestSubcommandsRegistered(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}

	for _, want := range []string{"summarize", "transcribe", "metadata", "cp", "serve", "mcp", "paths", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestUnknownCommandErrorSuggestsSubcommands(t *testing.T) {
	err := unknownCommandError(rootCmd, "summ")
	assert.ErrorContains(t, err, "Did you mean: summarize?")

	// Suggestions come from the root even when asked from a subcommand
	err = unknownCommandError(summarizeCmd, "meta")
	assert.ErrorContains(t, err, "metadata")

	err = unknownCommandError(rootCmd, "xyzzy")
	assert.ErrorContains(t, err, "Use --help to see available commands")
}

func TestRootRejectsCommandLikeArgument(t *testing.T) {
	err := rootCmd.RunE(rootCmd, []string{"sumarize"})
	assert.ErrorContains(t, err, "doesn't look like a YouTube URL or video ID")
}

func TestSummarizeArg(t *testing.T) {
	useConfig(t)
	source := &stubSource{}
	cmd := testCommand(t)
	app, err := newVideoApp(cmd,
		internal.WithVideoSource(source),
		internal.WithChatClient(stubChat{}),
		internal.WithUI(internal.NewUIManagerTo(io.Discard, true)))
	require.NoError(t, err)

	t.Run("not a video link", func(t *testing.T) {
		sess := internal.NewSession()
		err := summarizeArg(cmd, app, sess, "https://example.com/article")
		assert.ErrorIs(t, err, internal.ErrInvalidURL)
		assert.ErrorContains(t, err, "is not a YouTube video link")
		assert.False(t, sess.HasSummary())
	})

	t.Run("invalid URL", func(t *testing.T) {
		err := summarizeArg(cmd, app, internal.NewSession(), "not a url")
		assert.ErrorIs(t, err, internal.ErrInvalidURL)
	})

	t.Run("bare video ID", func(t *testing.T) {
		sess := internal.NewSession()
		require.NoError(t, summarizeArg(cmd, app, sess, "dQw4w9WgXcQ"))
		assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", sess.VideoURL())
		assert.Equal(t, "Stub Video", sess.Title())
		assert.Contains(t, sess.Summary(), "Stub Summary")
	})

	assert.Equal(t, 1, source.fetchCalls)
}

func TestNewAppChecksProviderFlag(t *testing.T) {
	cfg := useConfig(t)
	cfg.APIKey = ""
	cfg.Provider = internal.ProviderOllama

	_, err := newApp(testCommand(t, "--provider", " OpenAI "))
	assert.ErrorIs(t, err, internal.ErrConfiguration)
	assert.Equal(t, internal.ProviderOpenAI, cfg.Provider)
}

func TestNewVideoAppSkipsLLMChecks(t *testing.T) {
	cfg := useConfig(t)
	cfg.APIKey = ""

	_, err := newVideoApp(testCommand(t, "--languages", "de,en"))
	require.NoError(t, err)
	assert.Equal(t, []string{"de", "en"}, cfg.Languages)
}
