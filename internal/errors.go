package internal

import (
	"errors"
	"fmt"
)

// Sentinel errors for the summarize-then-answer workflow. Callers wrap them with
// context and match with errors.Is.
var (
	ErrEmptyInput            = errors.New("empty input")
	ErrInvalidURL            = errors.New("invalid URL")
	ErrTranscriptUnavailable = errors.New("transcript unavailable")
	ErrSummarization         = errors.New("summarization failed")
	ErrAnswer                = errors.New("answering failed")
	ErrConfiguration         = errors.New("configuration error")
	ErrNoSummary             = errors.New("no summary yet")

	// ErrEmptyQuestion is the blank-question flavor of ErrEmptyInput.
	ErrEmptyQuestion = fmt.Errorf("%w: question is blank", ErrEmptyInput)

	// Speech recognition failures. Never surfaced as hard failures by the front-ends.
	ErrSpeechUnrecognized = errors.New("speech not recognized")
	ErrSpeechService      = errors.New("speech recognition service unavailable")
	ErrMicrophone         = errors.New("microphone unavailable")

	// ErrDownloadFailed marks a yt-dlp run that failed before producing any output
	ErrDownloadFailed = errors.New("download failed")
)

// Literal fallbacks shown in place of a spoken question.
const (
	SpeechUnrecognizedMessage = "Could not recognize speech."
	SpeechServiceMessage      = "Error connecting to speech recognition service."
	MicrophoneMessage         = "Could not access the microphone."
)

// UserMessage converts an error into the text shown to the user.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyQuestion):
		return "Please enter your question"
	case errors.Is(err, ErrEmptyInput):
		return "Please enter the URL"
	case errors.Is(err, ErrInvalidURL):
		return "Please enter a valid URL"
	case errors.Is(err, ErrTranscriptUnavailable):
		return "No transcript is available for this video in any accepted language"
	case errors.Is(err, ErrSummarization):
		return "Could not summarize the video: " + err.Error()
	case errors.Is(err, ErrNoSummary):
		return "Summarize a video first, then ask your question"
	case errors.Is(err, ErrAnswer):
		return "Could not answer the question: " + err.Error()
	case errors.Is(err, ErrConfiguration):
		return err.Error()
	case errors.Is(err, ErrSpeechUnrecognized):
		return SpeechUnrecognizedMessage
	case errors.Is(err, ErrSpeechService):
		return SpeechServiceMessage
	case errors.Is(err, ErrMicrophone):
		return MicrophoneMessage
	default:
		return err.Error()
	}
}
