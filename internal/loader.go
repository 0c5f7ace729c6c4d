package internal

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"
)

// TranscriptLoader turns a video URL into transcript document chunks
type TranscriptLoader struct {
	source    VideoSource
	languages []string
	splitter  textsplitter.TextSplitter
}

// NewTranscriptLoader creates a loader accepting languages in fallback order
func NewTranscriptLoader(source VideoSource, languages []string, chunkSize, chunkOverlap int) *TranscriptLoader {
	return &TranscriptLoader{
		source:    source,
		languages: languages,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
		),
	}
}

// Load fetches the transcript and splits it into documents
func (l *TranscriptLoader) Load(ctx context.Context, videoURL string) ([]schema.Document, *Transcript, error) {
	transcript, err := l.source.FetchTranscript(ctx, videoURL, l.languages)
	if err != nil {
		if errors.Is(err, ErrTranscriptUnavailable) || ctx.Err() != nil {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%w: %w", ErrTranscriptUnavailable, err)
	}

	docs, err := textsplitter.CreateDocuments(l.splitter, []string{transcript.Text}, []map[string]any{{
		"source":   transcript.VideoID,
		"language": transcript.Language,
	}})
	if err != nil {
		return nil, nil, fmt.Errorf("splitting transcript: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil, fmt.Errorf("%w: transcript for %s is empty", ErrTranscriptUnavailable, transcript.VideoID)
	}

	for i := range docs {
		meta := make(map[string]any, len(docs[i].Metadata)+1)
		for k, v := range docs[i].Metadata {
			meta[k] = v
		}
		meta["chunk"] = i
		docs[i].Metadata = meta
	}

	return docs, transcript, nil
}
