package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/lrstanley/go-ytdlp"
)

// VideoMetadata contains YouTube video information
type VideoMetadata struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Channel     string         `json:"channel"`
	Uploader    string         `json:"uploader"`
	Duration    float64        `json:"duration"`
	Categories  []string       `json:"categories"`
	Tags        []string       `json:"tags"`
	Chapters    []VideoChapter `json:"chapters"`
	HasCaptions bool           `json:"has_captions"`
}

// VideoChapter represents a video chapter marker
type VideoChapter struct {
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Title     string  `json:"title"`
}

// Transcript is the caption text of one video in one language
type Transcript struct {
	VideoID  string
	Language string
	Text     string
}

// VideoSource retrieves metadata and transcripts for video URLs
type VideoSource interface {
	Metadata(ctx context.Context, videoURL string) (*VideoMetadata, error)
	FetchTranscript(ctx context.Context, videoURL string, languages []string) (*Transcript, error)
}

// YouTube handles YouTube metadata and subtitle retrieval through yt-dlp
type YouTube struct {
	cacheDir    string
	logger      *slog.Logger
	installOnce sync.Once
	installErr  error

	// install and download are swapped in tests
	install  func(ctx context.Context) error
	download func(ctx context.Context, videoURL, language, dir string) error
}

// NewYouTube creates a new yt-dlp backed video source
func NewYouTube(cacheDir string, logger *slog.Logger) *YouTube {
	yt := &YouTube{
		cacheDir: cacheDir,
		logger:   logger,
		install: func(ctx context.Context) error {
			_, err := ytdlp.Install(ctx, nil)
			return err
		},
	}
	yt.download = yt.downloadSubtitles
	return yt
}

// ensureInstalled downloads the yt-dlp binary on first use if it is missing
func (yt *YouTube) ensureInstalled(ctx context.Context) error {
	yt.installOnce.Do(func() {
		if err := yt.install(ctx); err != nil {
			yt.installErr = fmt.Errorf("installing yt-dlp: %w", err)
		}
	})
	return yt.installErr
}

// Metadata fetches video details using go-ytdlp
func (yt *YouTube) Metadata(ctx context.Context, videoURL string) (*VideoMetadata, error) {
	if err := yt.ensureInstalled(ctx); err != nil {
		return nil, err
	}

	yt.logger.Debug("extracting video metadata", "url", videoURL)

	dl := ytdlp.New().
		DumpSingleJSON().
		NoPlaylist().
		SkipDownload()

	result, err := dl.Run(ctx, videoURL)
	if err != nil {
		yt.logger.Debug("metadata extraction failed", "error", err, "stderr", stderrOf(result))
		return nil, fmt.Errorf("extracting video metadata: %w", err)
	}

	// Raw map first for subtitle availability, then the typed struct
	var rawData map[string]any
	if err := json.Unmarshal([]byte(result.Stdout), &rawData); err != nil {
		return nil, fmt.Errorf("parsing video metadata: %w", err)
	}

	var metadata VideoMetadata
	if err := json.Unmarshal([]byte(result.Stdout), &metadata); err != nil {
		return nil, fmt.Errorf("parsing video metadata: %w", err)
	}
	metadata.HasCaptions = extractSubtitleInfo(rawData)

	yt.logger.Debug("metadata extracted",
		"title", metadata.Title,
		"channel", metadata.Channel,
		"duration", metadata.Duration,
		"has_captions", metadata.HasCaptions)

	return &metadata, nil
}

// FetchTranscript downloads manual or automatic subtitles in the first available
// language of languages and converts them to plain text.
func (yt *YouTube) FetchTranscript(ctx context.Context, videoURL string, languages []string) (*Transcript, error) {
	if len(languages) == 0 {
		return nil, fmt.Errorf("%w: no accepted languages configured", ErrTranscriptUnavailable)
	}

	videoID, err := VideoID(videoURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTranscriptUnavailable, err)
	}

	if err := yt.ensureInstalled(ctx); err != nil {
		return nil, err
	}

	if err := EnsureDirs(yt.cacheDir); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	workDir, err := os.MkdirTemp(yt.cacheDir, "subs-"+videoID+"-")
	if err != nil {
		return nil, fmt.Errorf("creating subtitle directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			yt.logger.Warn("failed to remove subtitle directory", "dir", workDir, "error", err)
		}
	}()

	// One run per language: a run asking for every language fails as a whole
	// when any single track is rate limited.
	var lastErr error
	for _, language := range languages {
		err := yt.download(ctx, videoURL, language, workDir)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err != nil {
			yt.logger.Debug("subtitle download failed", "video_id", videoID, "language", language, "error", err)
			lastErr = err
		}

		// A failed run may still have written the track
		transcript, found, readErr := readSubtitles(workDir, videoID, language)
		if readErr != nil {
			return nil, readErr
		}
		if found {
			yt.logger.Debug("subtitles found", "video_id", videoID, "language", language)
			return transcript, nil
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: no subtitles for %s in %s: %w", ErrTranscriptUnavailable, videoID, strings.Join(languages, ", "), lastErr)
	}
	return nil, fmt.Errorf("%w: no subtitles for %s in %s", ErrTranscriptUnavailable, videoID, strings.Join(languages, ", "))
}

// readSubtitles converts the SRT file for language in dir, if one was written
func readSubtitles(dir, videoID, language string) (*Transcript, bool, error) {
	files, err := filepath.Glob(filepath.Join(dir, videoID+"*.srt"))
	if err != nil {
		return nil, false, fmt.Errorf("listing subtitle files: %w", err)
	}

	path, _, ok := pickSubtitleFile(files, videoID, []string{language})
	if !ok {
		return nil, false, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("reading SRT file: %w", err)
	}

	text := srtToText(string(content))
	if text == "" {
		return nil, false, nil
	}

	return &Transcript{
		VideoID:  videoID,
		Language: language,
		Text:     text,
	}, true, nil
}

// downloadSubtitles writes the manual or automatic track for language as SRT into dir
func (yt *YouTube) downloadSubtitles(ctx context.Context, videoURL, language, dir string) error {
	dl := ytdlp.New().
		WriteSubs().
		WriteAutoSubs().
		SubLangs(language+","+language+"-.*").
		ConvertSubs("srt").
		SkipDownload().
		NoPlaylist().
		Output(filepath.Join(dir, "%(id)s"))

	result, err := dl.Run(ctx, videoURL)
	if err != nil {
		yt.logger.Debug("yt-dlp stderr", "stderr", stderrOf(result))
		if result == nil {
			return fmt.Errorf("%w: %w", ErrDownloadFailed, err)
		}
		return err
	}
	return nil
}

// pickSubtitleFile returns the file for the earliest accepted language. An exact
// language match wins over a regional variant (en over en-GB) of the same rank.
func pickSubtitleFile(files []string, videoID string, languages []string) (string, string, bool) {
	byLang := make(map[string]string, len(files))
	for _, f := range files {
		name := filepath.Base(f)
		lang := strings.TrimSuffix(strings.TrimPrefix(name, videoID+"."), ".srt")
		if lang == name || lang == "" {
			continue
		}
		byLang[lang] = f
	}

	fileLangs := slices.Sorted(maps.Keys(byLang))
	for _, lang := range languages {
		if f, ok := byLang[lang]; ok {
			return f, lang, true
		}
		for _, fileLang := range fileLangs {
			if strings.HasPrefix(fileLang, lang+"-") {
				return byLang[fileLang], lang, true
			}
		}
	}
	return "", "", false
}

// srtToText converts SRT content to plain text lines without consecutive repeats
func srtToText(content string) string {
	lines := removeDuplicates(parseSRT(strings.ReplaceAll(content, "\r\n", "\n")))
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// parseSRT extracts text content from SRT format
func parseSRT(content string) []string {
	var lines []string

	for block := range strings.SplitSeq(content, "\n\n") {
		blockLines := strings.Split(strings.TrimLeft(block, "\n"), "\n")
		if len(blockLines) >= 3 {
			// Skip sequence number and timestamp, get text lines
			for i := 2; i < len(blockLines); i++ {
				if strings.TrimSpace(blockLines[i]) != "" {
					lines = append(lines, strings.TrimSpace(blockLines[i]))
				}
			}
		}
	}

	return lines
}

// removeDuplicates drops lines that repeat the line before them, the rolling
// repetition of automatic captions
func removeDuplicates(lines []string) []string {
	result := make([]string, 0, len(lines))

	for i, line := range lines {
		if i > 0 && line == lines[i-1] {
			continue
		}
		result = append(result, line)
	}

	return result
}

// extractSubtitleInfo extracts subtitle availability from yt-dlp JSON output
func extractSubtitleInfo(rawData map[string]any) bool {
	if subtitles, ok := rawData["subtitles"].(map[string]any); ok && len(subtitles) > 0 {
		return true
	}
	if autoCaptions, ok := rawData["automatic_captions"].(map[string]any); ok && len(autoCaptions) > 0 {
		return true
	}
	return false
}

func stderrOf(result *ytdlp.Result) string {
	if result == nil {
		return ""
	}
	return result.Stderr
}
