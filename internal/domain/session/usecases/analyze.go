package usecases

import (
	"context"
	"strings"
	"sync"

	"github.com/Faust217/OJL-MTAT/internal/backend"
)

// Transcriber is the backend surface the aggregator needs.
type Transcriber interface {
	TranscribeChunk(ctx context.Context, audio []byte, filename string) (*backend.ChunkResult, error)
}

// Results is the aggregated analysis state exposed to the presentation layer.
type Results struct {
	Transcript []backend.TranscriptSegment
	Summary    string
	Sentiment  []backend.SentimentSegment
}

// Aggregator sends the finalized recording for transcription and owns the
// cleaned transcript, summary, and sentiment state for the session.
type Aggregator struct {
	Backend Transcriber

	mu         sync.Mutex
	transcript []backend.TranscriptSegment
	summary    string
	sentiment  []backend.SentimentSegment
}

// Finalize transcribes the recording and stores cleaned, aligned results.
// On backend failure it stores a single synthetic segment carrying the error
// text, so the presentation layer always has something to render, and returns
// the error for the caller to surface.
func (a *Aggregator) Finalize(ctx context.Context, audio []byte) (Results, error) {
	res, err := a.Backend.TranscribeChunk(ctx, audio, "full_recording.webm")

	a.mu.Lock()
	defer a.mu.Unlock()

	if err != nil {
		a.transcript = []backend.TranscriptSegment{{Start: 0, End: 0, Text: "⚠️ " + err.Error()}}
		a.summary = ""
		a.sentiment = nil
		return a.resultsLocked(), err
	}

	cleaned := CleanTranscript(res.Transcript)
	a.transcript = cleaned
	a.summary = res.Summary
	a.sentiment = AlignSentiment(res.Sentiment, len(cleaned))
	return a.resultsLocked(), nil
}

// Results returns a copy of the current aggregated state.
func (a *Aggregator) Results() Results {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.resultsLocked()
}

// Reset clears the aggregated state for a new session.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.transcript = nil
	a.summary = ""
	a.sentiment = nil
}

func (a *Aggregator) resultsLocked() Results {
	return Results{
		Transcript: append([]backend.TranscriptSegment(nil), a.transcript...),
		Summary:    a.summary,
		Sentiment:  append([]backend.SentimentSegment(nil), a.sentiment...),
	}
}

// CleanTranscript drops segments with no usable text: empty, whitespace-only,
// or a lone ".". Cleaning is idempotent.
func CleanTranscript(segs []backend.TranscriptSegment) []backend.TranscriptSegment {
	out := make([]backend.TranscriptSegment, 0, len(segs))
	for _, s := range segs {
		t := strings.TrimSpace(s.Text)
		if t == "" || t == "." {
			continue
		}
		out = append(out, s)
	}
	return out
}

// AlignSentiment keeps sentiment positionally aligned with the cleaned
// transcript: entry i corresponds to transcript entry i, and entries past the
// cleaned length are dropped.
func AlignSentiment(sent []backend.SentimentSegment, n int) []backend.SentimentSegment {
	if len(sent) <= n {
		return sent
	}
	return sent[:n:n]
}
