package internal

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// UIManager draws progress and status lines for long-running operations
type UIManager interface {
	// NewProgressBar tracks total steps, one per transcript chunk
	NewProgressBar(total int, description string) ProgressBar
	// NewSpinner shows activity for a single call of unknown length
	NewSpinner(description string) ProgressBar
	Println(args ...any)
}

// ProgressBar is the part of a progress bar the pipeline drives
type ProgressBar interface {
	Set(current int)
	Describe(description string)
	Finish()
}

// StandardUIManager writes progress to a terminal, or nothing when quiet
type StandardUIManager struct {
	out   io.Writer
	quiet bool
}

// NewUIManager writes progress to stderr so stdout stays pipeable
func NewUIManager(quiet bool) UIManager {
	return NewUIManagerTo(os.Stderr, quiet)
}

// NewUIManagerTo writes progress to out
func NewUIManagerTo(out io.Writer, quiet bool) UIManager {
	return &StandardUIManager{out: out, quiet: quiet}
}

func (ui *StandardUIManager) NewProgressBar(total int, description string) ProgressBar {
	if ui.quiet {
		return &bar{bar: progressbar.DefaultSilent(int64(total)), silent: true}
	}

	return &bar{bar: progressbar.NewOptions(total,
		progressbar.OptionSetWriter(ui.out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))}
}

func (ui *StandardUIManager) NewSpinner(description string) ProgressBar {
	if ui.quiet {
		return &bar{bar: progressbar.DefaultSilent(-1), silent: true}
	}

	return &bar{bar: progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(ui.out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)}
}

func (ui *StandardUIManager) Println(args ...any) {
	if !ui.quiet {
		fmt.Fprintln(ui.out, args...)
	}
}

// bar adapts progressbar.ProgressBar; silent bars keep count but never redraw
type bar struct {
	bar    *progressbar.ProgressBar
	silent bool
}

func (b *bar) Set(current int) {
	_ = b.bar.Set(current)
}

func (b *bar) Describe(description string) {
	if !b.silent {
		b.bar.Describe(description)
	}
}

func (b *bar) Finish() {
	_ = b.bar.Finish()
}
