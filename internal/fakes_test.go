package internal

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeSource is a VideoSource returning canned results
type fakeSource struct {
	mu            sync.Mutex
	transcript    *Transcript
	err           error
	metadata      *VideoMetadata
	metadataErr   error
	fetchCalls    int
	metadataCalls int
	gotLanguages  []string
}

func (f *fakeSource) Metadata(ctx context.Context, videoURL string) (*VideoMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metadataCalls++
	if f.metadataErr != nil {
		return nil, f.metadataErr
	}
	if f.metadata == nil {
		return nil, errors.New("no metadata")
	}
	return f.metadata, nil
}

func (f *fakeSource) FetchTranscript(ctx context.Context, videoURL string, languages []string) (*Transcript, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	f.gotLanguages = languages
	if f.err != nil {
		return nil, f.err
	}
	return f.transcript, nil
}

// fakeChat records every request and answers through reply
type fakeChat struct {
	mu    sync.Mutex
	calls [][]ChatMessage
	reply func(messages []ChatMessage) (string, error)
}

func (f *fakeChat) CreateChatCompletion(ctx context.Context, model string, messages []ChatMessage) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, messages)
	f.mu.Unlock()
	if f.reply == nil {
		return "ok", nil
	}
	return f.reply(messages)
}

func (f *fakeChat) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// summaryChat answers map prompts with a partial summary, the combine prompt
// with a titled summary and questions with a fixed answer
func summaryChat() *fakeChat {
	return &fakeChat{reply: func(messages []ChatMessage) (string, error) {
		prompt := messages[len(messages)-1].Content
		switch {
		case strings.HasPrefix(prompt, "Summary: "):
			return "The answer.", nil
		case strings.Contains(prompt, "final summary"):
			return "# The Title\nThe final summary.", nil
		default:
			return "partial", nil
		}
	}}
}

// fakeTranscriber returns text or err for every recording
type fakeTranscriber struct {
	text  string
	err   error
	calls int
}

func (f *fakeTranscriber) CreateTranscription(ctx context.Context, model string, file *os.File) (string, error) {
	f.calls++
	return f.text, f.err
}

// fakeRecorder writes a small file per recording, or fails with err
type fakeRecorder struct {
	dir      string
	err      error
	hasAudio bool
}

func (f *fakeRecorder) Record(ctx context.Context) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	file, err := os.CreateTemp(f.dir, "rec-*.wav")
	if err != nil {
		return "", err
	}
	defer file.Close()
	_, err = file.WriteString(strings.Repeat("x", 128))
	return file.Name(), err
}

func (f *fakeRecorder) HasAudio(ctx context.Context, audioFile string) bool {
	return f.hasAudio
}

// fakeRunner is a CommandRunner returning canned output per command name.
// Started commands write their last argument as an output file and replay
// stderr[name]; hang keeps stderr open until the context ends.
type fakeRunner struct {
	mu      sync.Mutex
	calls   [][]string
	outputs map[string][]byte
	errs    map[string]error
	stderr  map[string]string
	hang    bool
	stops   int
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]string{name}, args...))
	return f.outputs[name], f.errs[name]
}

func (f *fakeRunner) Start(ctx context.Context, name string, args ...string) (Process, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]string{name}, args...))

	if len(args) > 0 {
		if err := os.WriteFile(args[len(args)-1], make([]byte, 4096), 0644); err != nil {
			return nil, err
		}
	}

	proc := &fakeProcess{runner: f, ctx: ctx, err: f.errs[name]}
	if f.hang {
		proc.stderr = hangingReader{ctx: ctx}
	} else {
		proc.stderr = strings.NewReader(f.stderr[name])
	}
	return proc, nil
}

func (f *fakeRunner) stopCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}

type fakeProcess struct {
	runner *fakeRunner
	ctx    context.Context
	stderr io.Reader
	err    error
}

func (p *fakeProcess) Stderr() io.Reader {
	return p.stderr
}

func (p *fakeProcess) Stop() error {
	p.runner.mu.Lock()
	defer p.runner.mu.Unlock()
	p.runner.stops++
	return nil
}

func (p *fakeProcess) Wait() error {
	if err := p.ctx.Err(); err != nil {
		return err
	}
	return p.err
}

// hangingReader blocks until ctx is done, like the stderr of a stuck process
type hangingReader struct {
	ctx context.Context
}

func (r hangingReader) Read(p []byte) (int, error) {
	<-r.ctx.Done()
	return 0, io.EOF
}

// testConfig returns a config with small chunks and temp directories
func testConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	return &Config{
		Provider:         ProviderOpenAI,
		Model:            "gpt-4o-mini",
		APIKey:           "test-key",
		SpeechModel:      "whisper-1",
		Languages:        []string{"en", "de"},
		ChunkSize:        40,
		ChunkOverlap:     0,
		RequestTimeout:   time.Second,
		VoiceMaxDuration: 5 * time.Second,
		VoiceSilence:     time.Second,
		Quiet:            true,
		ConfigDir:        dir + "/config",
		DataDir:          dir + "/data",
		CacheDir:         dir + "/cache",
		TempDir:          dir + "/cache/temp",
	}
}

// testApp builds an App over fakes with silent UI output
func testApp(t *testing.T, source VideoSource, chat ChatClient, opts ...AppOption) *App {
	t.Helper()
	base := []AppOption{
		WithVideoSource(source),
		WithChatClient(chat),
		WithTranscriber(&fakeTranscriber{text: "what is it about"}),
		WithRecorder(&fakeRecorder{dir: t.TempDir(), hasAudio: true}),
		WithUI(NewUIManagerTo(io.Discard, true)),
	}
	return NewApp(testConfig(t), append(base, opts...)...)
}

// longTranscript returns a transcript that splits into several 40-rune chunks
func longTranscript() *Transcript {
	words := make([]string, 0, 60)
	for range 60 {
		words = append(words, "lorem")
	}
	return &Transcript{VideoID: "dQw4w9WgXcQ", Language: "en", Text: strings.Join(words, " ")}
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
