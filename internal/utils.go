package internal

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// CleanupTempDir purges files from a temporary directory
func CleanupTempDir(tempDir string, logger *slog.Logger) error {
	if _, err := os.Stat(tempDir); os.IsNotExist(err) {
		return nil
	}

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		return fmt.Errorf("reading temp directory: %w", err)
	}

	for _, entry := range entries {
		filePath := filepath.Join(tempDir, entry.Name())
		if err := os.RemoveAll(filePath); err != nil {
			logger.Warn("failed to remove temporary file", "file", filePath, "error", err)
		}
	}

	if err := os.Remove(tempDir); err != nil {
		logger.Debug("could not remove temp directory", "dir", tempDir, "error", err)
	}

	return nil
}

// getTerminalWidth gets terminal width with fallback
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}

	if width > 10 {
		return width - 4
	}

	return width
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// RenderMarkdown renders markdown content with glamour
func RenderMarkdown(content string) (string, error) {
	width := getTerminalWidth()
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
		glamour.WithColorProfile(termenv.EnvColorProfile()),
	)
	if err != nil {
		return "", fmt.Errorf("creating terminal renderer: %w", err)
	}

	renderedContent, err := r.Render(content)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}

	return renderedContent, nil
}

// PrintMarkdown writes content to w, rendered when w is a terminal
func PrintMarkdown(w io.Writer, content string) {
	if IsTerminal(w) {
		if rendered, err := RenderMarkdown(content); err == nil {
			fmt.Fprint(w, rendered)
			return
		}
	}
	fmt.Fprintln(w, content)
}

// FileExists checks if a file exists
func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return !os.IsNotExist(err)
}

// openAIModels are the hosted models accepted when talking to api.openai.com
var openAIModels = []string{"gpt-4o", "gpt-4o-mini", "o4-mini", "gpt-4.1", "gpt-4.1-mini", "gpt-4.1-nano"}

// ValidateModel checks if the model is supported. Custom endpoints and Ollama
// serve arbitrary model names, so only the hosted OpenAI API is checked.
func ValidateModel(config *Config, model string) error {
	if strings.TrimSpace(model) == "" {
		return fmt.Errorf("%w: model must not be empty", ErrConfiguration)
	}
	if config.Provider != ProviderOpenAI || config.BaseURL != "" {
		return nil
	}
	if slices.Contains(openAIModels, model) {
		return nil
	}
	return fmt.Errorf("%w: unsupported model: %s (supported: %s)", ErrConfiguration, model, strings.Join(openAIModels, ", "))
}

// EnsureDirs creates directories if needed
func EnsureDirs(dir ...string) error {
	for _, dir := range dir {
		if !FileExists(dir) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
		}
	}
	return nil
}

// cleanupFiles removes temporary files
func cleanupFiles(files ...string) {
	for _, file := range files {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove file", "file", file, "error", err)
		}
	}
}
