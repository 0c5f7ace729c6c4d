package internal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

// CommandRunner executes external commands
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
	// Start runs a command whose stderr is read while it is still running
	Start(ctx context.Context, name string, args ...string) (Process, error)
}

// Process is a started command
type Process interface {
	Stderr() io.Reader
	// Stop asks the command to finish and write its output
	Stop() error
	// Wait must be called after Stderr has been read to EOF
	Wait() error
}

// DefaultCommandRunner implements CommandRunner
type DefaultCommandRunner struct{}

func (r *DefaultCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

func (r *DefaultCommandRunner) Start(ctx context.Context, name string, args ...string) (Process, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = 2 * time.Second

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("opening stdin: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("opening stderr: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &execProcess{cmd: cmd, stdin: stdin, stderr: stderr}, nil
}

// execProcess is a running ffmpeg-style command that quits on "q" from stdin
type execProcess struct {
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	stderr   io.Reader
	stopOnce sync.Once
	stopErr  error
}

func (p *execProcess) Stderr() io.Reader {
	return p.stderr
}

func (p *execProcess) Stop() error {
	p.stopOnce.Do(func() {
		_, err := io.WriteString(p.stdin, "q")
		p.stopErr = errors.Join(err, p.stdin.Close())
	})
	return p.stopErr
}

func (p *execProcess) Wait() error {
	return p.cmd.Wait()
}

// Recorder captures one spoken utterance into an audio file
type Recorder interface {
	Record(ctx context.Context) (string, error)
}

// Microphone records from the default input device using FFmpeg
type Microphone struct {
	cmdRunner   CommandRunner
	tempDir     string
	device      string
	maxDuration time.Duration
	silence     time.Duration
	grace       time.Duration
	goos        string
}

// recordGrace is how long ffmpeg may run past the max duration before it is killed
const recordGrace = 5 * time.Second

// NewMicrophone creates a new FFmpeg recorder. An empty device selects the
// platform default input.
func NewMicrophone(cmdRunner CommandRunner, tempDir, device string, maxDuration, silence time.Duration) *Microphone {
	return &Microphone{
		cmdRunner:   cmdRunner,
		tempDir:     tempDir,
		device:      device,
		maxDuration: maxDuration,
		silence:     silence,
		grace:       recordGrace,
		goos:        runtime.GOOS,
	}
}

// input returns the FFmpeg capture format and device for the current platform
func (m *Microphone) input() (format, device string, err error) {
	switch m.goos {
	case "darwin":
		device = m.device
		if device == "" {
			device = ":default"
		}
		return "avfoundation", device, nil
	case "linux":
		device = m.device
		if device == "" {
			device = "default"
		}
		return "pulse", device, nil
	case "windows":
		if m.device == "" {
			return "", "", fmt.Errorf("voice_device must name a DirectShow audio device on windows")
		}
		return "dshow", "audio=" + m.device, nil
	default:
		return "", "", fmt.Errorf("unsupported platform: %s", m.goos)
	}
}

// args builds the capture command line. -t precedes -i so it limits the
// capture input rather than the output file.
func (m *Microphone) args(format, device, output string) []string {
	return []string{
		"-hide_banner", "-nostats", "-loglevel", "info", "-y",
		"-f", format,
		"-t", formatSeconds(m.maxDuration),
		"-i", device,
		"-af", m.silenceFilter(),
		"-ac", "1",
		"-ar", "16000",
		output,
	}
}

// Record captures audio until a pause after speech or the max duration and
// returns a WAV path. A recording in which nobody spoke is discarded with
// ErrSpeechUnrecognized.
func (m *Microphone) Record(ctx context.Context) (string, error) {
	format, device, err := m.input()
	if err != nil {
		return "", err
	}

	if err := EnsureDirs(m.tempDir); err != nil {
		return "", fmt.Errorf("creating temp directory: %w", err)
	}
	output := filepath.Join(m.tempDir, fmt.Sprintf("question_%d.wav", time.Now().UnixNano()))

	ctx, cancel := context.WithTimeout(ctx, m.maxDuration+m.grace)
	defer cancel()

	proc, err := m.cmdRunner.Start(ctx, "ffmpeg", m.args(format, device, output)...)
	if err != nil {
		return "", fmt.Errorf("starting ffmpeg: %w", err)
	}

	watcher := &silenceWatcher{limit: m.maxDuration.Seconds()}
	var tail []string
	stopped := false
	scanner := bufio.NewScanner(proc.Stderr())
	for scanner.Scan() {
		line := scanner.Text()
		tail = append(tail, line)
		if len(tail) > 10 {
			tail = tail[1:]
		}
		if !stopped && watcher.observe(line) {
			stopped = true
			_ = proc.Stop()
		}
	}

	if err := proc.Wait(); err != nil && !stopped {
		cleanupFiles(output)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("ffmpeg did not finish: %w", ctxErr)
		}
		return "", fmt.Errorf("ffmpeg failed: %w\nOutput: %s", err, strings.Join(tail, "\n"))
	}

	if !watcher.speech() {
		cleanupFiles(output)
		return "", fmt.Errorf("%w: nothing said within %s", ErrSpeechUnrecognized, m.maxDuration)
	}
	return output, nil
}

// silenceFilter reports pauses of at least the configured length on stderr
func (m *Microphone) silenceFilter() string {
	return fmt.Sprintf("silencedetect=noise=%s:d=%s", silenceThreshold, formatSeconds(m.silence))
}

// silenceThreshold is the level below which input counts as silence
const silenceThreshold = "-45dB"

// speechLead is the shortest sound before a pause that counts as speech
const speechLead = 0.25

// silenceWatcher follows silencedetect events on ffmpeg's stderr
type silenceWatcher struct {
	// limit is the capture length in seconds; a pause ending there is end of input
	limit      float64
	heard      bool
	sawSilence bool
}

// observe records one stderr line and reports whether capture should stop
func (w *silenceWatcher) observe(line string) bool {
	if _, after, ok := strings.Cut(line, "silence_end:"); ok {
		end, _, _ := strings.Cut(after, "|")
		if t, err := strconv.ParseFloat(strings.TrimSpace(end), 64); err == nil && t < w.limit-speechLead {
			w.heard = true
		}
		return false
	}

	_, after, ok := strings.Cut(line, "silence_start:")
	if !ok {
		return false
	}
	w.sawSilence = true
	if t, err := strconv.ParseFloat(strings.TrimSpace(after), 64); err == nil && t > speechLead {
		w.heard = true
	}
	return w.heard
}

// speech reports whether anything was said; input with no pause at all counts
func (w *silenceWatcher) speech() bool {
	return w.heard || !w.sawSilence
}

// formatSeconds renders d in seconds the way ffmpeg options expect
func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

// Duration returns the audio file duration in seconds
func (m *Microphone) Duration(ctx context.Context, audioFile string) (float64, error) {
	output, err := m.cmdRunner.Run(ctx, "ffprobe",
		"-i", audioFile,
		"-show_entries", "format=duration",
		"-v", "quiet",
		"-of", "csv=p=0")

	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w\nOutput: %s", err, string(output))
	}

	value := strings.TrimSpace(string(output))
	if value == "" || value == "N/A" {
		return 0, nil
	}

	duration, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing duration: %w", err)
	}

	return duration, nil
}

// HasAudio reports whether the recording contains anything after silence trimming
func (m *Microphone) HasAudio(ctx context.Context, audioFile string) bool {
	info, err := os.Stat(audioFile)
	if err != nil || info.Size() <= wavHeaderSize {
		return false
	}
	duration, err := m.Duration(ctx, audioFile)
	if err != nil {
		// ffprobe missing is not a reason to drop the recording
		return true
	}
	return duration > 0
}

// wavHeaderSize is the size of a canonical PCM WAV header
const wavHeaderSize = 44
