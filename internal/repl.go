package internal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/fatih/color"
)

// REPL commands available at the question prompt
const (
	cmdVoice   = ":voice"
	cmdURL     = ":url"
	cmdCopy    = ":copy"
	cmdSummary = ":summary"
	cmdHelp    = ":help"
	cmdQuit    = ":quit"
)

// Terminal runs the interactive summarize-then-ask session on a terminal
type Terminal struct {
	app     *App
	session *Session
	in      *bufio.Scanner
	out     io.Writer

	prompt  *color.Color
	errText *color.Color
	dim     *color.Color

	// copyToClipboard is swapped in tests
	copyToClipboard func(string) error
}

// NewTerminal creates a terminal session reading from in and writing to out
func NewTerminal(app *App, in io.Reader, out io.Writer) *Terminal {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	return &Terminal{
		app:             app,
		session:         NewSession(),
		in:              scanner,
		out:             out,
		prompt:          color.New(color.FgCyan, color.Bold),
		errText:         color.New(color.FgRed),
		dim:             color.New(color.Faint),
		copyToClipboard: clipboard.WriteAll,
	}
}

// Session returns the conversation state of the terminal
func (t *Terminal) Session() *Session {
	return t.session
}

// Run asks for a URL, summarizes it, then answers questions until EOF or :quit.
// initialURL, when set, is summarized before the first prompt.
func (t *Terminal) Run(ctx context.Context, initialURL string) error {
	if initialURL != "" {
		t.summarize(ctx, initialURL)
	}

	for !t.session.HasSummary() {
		line, ok := t.readLine("URL: ")
		if !ok {
			return t.in.Err()
		}
		if line == cmdQuit {
			return nil
		}
		t.summarize(ctx, line)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	t.dim.Fprintf(t.out, "Ask a question, or %s for voice, %s for help.\n", cmdVoice, cmdHelp)
	for {
		line, ok := t.readLine("Question: ")
		if !ok {
			return t.in.Err()
		}
		if quit := t.handle(ctx, line); quit {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// handle processes one line at the question prompt and reports whether to quit
func (t *Terminal) handle(ctx context.Context, line string) bool {
	command, arg, _ := strings.Cut(line, " ")
	switch command {
	case cmdQuit:
		return true
	case cmdHelp:
		t.printHelp()
	case cmdSummary:
		PrintMarkdown(t.out, t.session.Summary())
	case cmdCopy:
		if err := t.copyToClipboard(t.session.Summary()); err != nil {
			t.printError(fmt.Sprintf("Could not copy to clipboard: %v", err))
			return false
		}
		t.dim.Fprintln(t.out, "Summary copied to clipboard.")
	case cmdURL:
		t.summarize(ctx, strings.TrimSpace(arg))
	case cmdVoice:
		question, ok := t.app.VoiceQuestion(ctx)
		t.prompt.Fprint(t.out, "Heard: ")
		fmt.Fprintln(t.out, question)
		if ok {
			t.ask(ctx, question)
		}
	default:
		t.ask(ctx, line)
	}
	return false
}

func (t *Terminal) summarize(ctx context.Context, rawURL string) {
	summarized, err := t.app.Summarize(ctx, t.session, rawURL)
	if err != nil {
		t.printError(UserMessage(err))
		return
	}
	if !summarized {
		t.dim.Fprintln(t.out, "Only YouTube video links are summarized.")
		return
	}
	PrintMarkdown(t.out, t.session.Summary())
}

func (t *Terminal) ask(ctx context.Context, question string) {
	answer, err := t.app.Ask(ctx, t.session, question)
	if err != nil {
		t.printError(UserMessage(err))
		return
	}
	PrintMarkdown(t.out, answer)
}

// readLine prompts and returns the trimmed next line; ok is false at EOF
func (t *Terminal) readLine(label string) (string, bool) {
	t.prompt.Fprint(t.out, label)
	if !t.in.Scan() {
		fmt.Fprintln(t.out)
		return "", false
	}
	return strings.TrimSpace(t.in.Text()), true
}

func (t *Terminal) printError(message string) {
	t.errText.Fprintln(t.out, message)
}

func (t *Terminal) printHelp() {
	fmt.Fprintf(t.out, `Commands:
  %-14s ask a spoken question
  %-14s summarize another video
  %-14s copy the summary to the clipboard
  %-14s show the summary again
  %-14s exit
Anything else is sent as a question about the summary.
`, cmdVoice, cmdURL+" <URL>", cmdCopy, cmdSummary, cmdQuit)
}
