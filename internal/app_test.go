package internal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVideoURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

func TestAppSummarizeRejectsBadInputWithoutCalls(t *testing.T) {
	for _, input := range []string{"", "   ", "not-a-url", "ftp://example.com"} {
		t.Run(input, func(t *testing.T) {
			source := &fakeSource{transcript: longTranscript()}
			chat := summaryChat()
			app := testApp(t, source, chat)
			sess := NewSession()

			ok, err := app.Summarize(t.Context(), sess, input)
			require.Error(t, err)
			assert.False(t, ok)
			assert.True(t, errors.Is(err, ErrEmptyInput) || errors.Is(err, ErrInvalidURL))
			assert.Zero(t, source.fetchCalls)
			assert.Zero(t, chat.callCount())
			assert.Empty(t, sess.Summary())
		})
	}
}

func TestAppSummarizeSkipsNonVideoURL(t *testing.T) {
	source := &fakeSource{transcript: longTranscript()}
	chat := summaryChat()
	app := testApp(t, source, chat)
	sess := NewSession()

	ok, err := app.Summarize(t.Context(), sess, "https://example.com")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, source.fetchCalls)
	assert.Zero(t, chat.callCount())
	assert.Empty(t, sess.Summary())
}

func TestAppSummarizeStoresTitledSummary(t *testing.T) {
	source := &fakeSource{
		transcript: longTranscript(),
		metadata:   &VideoMetadata{Title: "Never Gonna Give You Up"},
	}
	chat := summaryChat()
	app := testApp(t, source, chat)
	sess := NewSession()

	ok, err := app.Summarize(t.Context(), sess, testVideoURL)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, "# The Title\nThe final summary.", sess.Summary())
	assert.Equal(t, testVideoURL, sess.VideoURL())
	assert.Equal(t, "dQw4w9WgXcQ", sess.VideoID())
	assert.Equal(t, "en", sess.Language())
	assert.Equal(t, "Never Gonna Give You Up", sess.Title())
	assert.Equal(t, []string{"en", "de"}, source.gotLanguages)

	docs, _, err := app.loader.Load(t.Context(), testVideoURL)
	require.NoError(t, err)
	assert.Equal(t, len(docs)+1, chat.callCount(), "one call per chunk plus exactly one combine call")
}

func TestAppSummarizeMetadataIsBestEffort(t *testing.T) {
	source := &fakeSource{transcript: longTranscript(), metadataErr: errors.New("private video")}
	app := testApp(t, source, summaryChat())
	sess := NewSession()

	ok, err := app.Summarize(t.Context(), sess, testVideoURL)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, sess.Title())
	assert.NotEmpty(t, sess.Summary())
}

func TestAppSummarizeFailureKeepsPreviousSummary(t *testing.T) {
	source := &fakeSource{transcript: longTranscript()}
	app := testApp(t, source, summaryChat())
	sess := NewSession()

	_, err := app.Summarize(t.Context(), sess, testVideoURL)
	require.NoError(t, err)
	previous := sess.Summary()

	source.err = ErrTranscriptUnavailable
	ok, err := app.Summarize(t.Context(), sess, "https://youtu.be/aaaaaaaaaaa")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrTranscriptUnavailable)
	assert.Equal(t, previous, sess.Summary())
}

func TestAppSummarizeReplacesSummary(t *testing.T) {
	source := &fakeSource{transcript: longTranscript()}
	calls := 0
	chat := &fakeChat{reply: func(messages []ChatMessage) (string, error) {
		calls++
		return "summary " + string(rune('0'+calls%10)), nil
	}}
	app := testApp(t, source, chat)
	sess := NewSession()

	_, err := app.Summarize(t.Context(), sess, testVideoURL)
	require.NoError(t, err)
	first := sess.Summary()

	_, err = app.Summarize(t.Context(), sess, testVideoURL)
	require.NoError(t, err)
	assert.NotEqual(t, first, sess.Summary())
}

func TestAppAsk(t *testing.T) {
	source := &fakeSource{transcript: longTranscript()}
	chat := summaryChat()
	app := testApp(t, source, chat)
	sess := NewSession()

	_, err := app.Ask(t.Context(), sess, "What is it about?")
	assert.ErrorIs(t, err, ErrNoSummary)
	assert.Zero(t, chat.callCount())

	_, err = app.Summarize(t.Context(), sess, testVideoURL)
	require.NoError(t, err)
	before := chat.callCount()

	_, err = app.Ask(t.Context(), sess, "   ")
	assert.ErrorIs(t, err, ErrEmptyQuestion)
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Equal(t, before, chat.callCount())

	answer, err := app.Ask(t.Context(), sess, "What is it about?")
	require.NoError(t, err)
	assert.Equal(t, "The answer.", answer)
	require.Equal(t, before+1, chat.callCount())

	messages := chat.calls[before]
	assert.Equal(t, "Summary: # The Title\nThe final summary.\nQuestion: What is it about?", messages[1].Content)
}

func TestAppMissingAPIKeyFailsBeforeNetwork(t *testing.T) {
	config := testConfig(t)
	config.APIKey = ""
	source := &fakeSource{transcript: longTranscript()}
	app := NewApp(config, WithVideoSource(source), WithLogger(testLogger()))
	sess := NewSession()

	_, err := app.Summarize(t.Context(), sess, testVideoURL)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Zero(t, source.fetchCalls)

	sess.store("S", testVideoURL, nil, "")
	_, err = app.Ask(t.Context(), sess, "Q")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestAppTranscriptAndMetadataRequireVideoLinks(t *testing.T) {
	source := &fakeSource{transcript: longTranscript(), metadata: &VideoMetadata{Title: "T"}}
	app := testApp(t, source, &fakeChat{})

	_, err := app.Transcript(t.Context(), "https://example.com/video")
	assert.ErrorIs(t, err, ErrInvalidURL)
	_, err = app.Metadata(t.Context(), "")
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Zero(t, source.fetchCalls)

	transcript, err := app.Transcript(t.Context(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, longTranscript().Text, transcript.Text)

	metadata, err := app.Metadata(t.Context(), testVideoURL)
	require.NoError(t, err)
	assert.Equal(t, "T", metadata.Title)
}

func TestAppVoiceQuestion(t *testing.T) {
	app := testApp(t, &fakeSource{}, &fakeChat{})

	text, ok := app.VoiceQuestion(t.Context())
	assert.True(t, ok)
	assert.Equal(t, "what is it about", text)
}
