package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscribeChunkObjectShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/transcribe_chunk", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "full_recording.webm", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"transcript": [{"start": 0, "end": 2.5, "text": "hello"}],
			"summary": "a short meeting",
			"sentiment": [{"start": 0, "end": 2.5, "sentiment": "positive", "score": 0.93}]
		}`))
	}))
	defer server.Close()

	c := New(server.URL)
	res, err := c.TranscribeChunk(context.Background(), []byte("opus-bytes"), "full_recording.webm")
	require.NoError(t, err)
	require.Len(t, res.Transcript, 1)
	assert.Equal(t, "hello", res.Transcript[0].Text)
	assert.Equal(t, "a short meeting", res.Summary)
	require.Len(t, res.Sentiment, 1)
	assert.Equal(t, "positive", res.Sentiment[0].Sentiment)
	assert.InDelta(t, 0.93, res.Sentiment[0].Score, 1e-9)
}

func TestTranscribeChunkBareArrayShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"start": 1, "end": 2, "text": "only transcript"}]`))
	}))
	defer server.Close()

	res, err := New(server.URL).TranscribeChunk(context.Background(), []byte("x"), "a.webm")
	require.NoError(t, err)
	require.Len(t, res.Transcript, 1)
	assert.Equal(t, "only transcript", res.Transcript[0].Text)
	assert.Empty(t, res.Summary)
	assert.Empty(t, res.Sentiment)
}

func TestTranscribeChunkErrorDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail": "whisper model not loaded"}`))
	}))
	defer server.Close()

	_, err := New(server.URL).TranscribeChunk(context.Background(), []byte("x"), "a.webm")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBackend)
	assert.Contains(t, err.Error(), "whisper model not loaded")
	assert.Contains(t, err.Error(), "HTTP 500")
}

func TestTranscribeChunkUnreachable(t *testing.T) {
	c := New("http://127.0.0.1:1")
	_, err := c.TranscribeChunk(context.Background(), []byte("x"), "a.webm")
	assert.ErrorIs(t, err, ErrBackend)
}

func TestClassifyFrame(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/analyze_frame", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "frame.jpg", header.Filename)

		w.Write([]byte(`{"label": "Fake", "score": 0.87}`))
	}))
	defer server.Close()

	res, err := New(server.URL).ClassifyFrame(context.Background(), []byte{0xff, 0xd8})
	require.NoError(t, err)
	assert.Equal(t, "Fake", res.Label)
	assert.InDelta(t, 0.87, res.Score, 1e-9)
}

func TestAnalyzeVideo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/analyze", r.URL.Path)
		w.Write([]byte(`{
			"type": "video",
			"transcript": [{"start": 0, "end": 1, "text": "hi"}],
			"summary": "s",
			"sentiment": [],
			"frames_checked": 12,
			"fake_frames": 3,
			"frame_details": [{"label": "Real", "score": 91.2, "image_url": "/frames/0.jpg"}]
		}`))
	}))
	defer server.Close()

	res, err := New(server.URL).Analyze(context.Background(), strings.NewReader("media"), "meeting.mp4")
	require.NoError(t, err)
	assert.Equal(t, "video", res.Type)
	assert.Equal(t, 12, res.FramesChecked)
	assert.Equal(t, 3, res.FakeFrames)
	require.Len(t, res.FrameDetails, 1)
	assert.Equal(t, "/frames/0.jpg", res.FrameDetails[0].ImageURL)
}

func TestGeneratePDF(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/generate_pdf", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer server.Close()

	doc, err := New(server.URL).GeneratePDF(context.Background(), &ReportPayload{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(doc), "%PDF"))
}

func TestFramesArchive(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/export_frames_zip", r.URL.Path)
		w.Write([]byte("PK\x03\x04"))
	}))
	defer server.Close()

	zip, err := New(server.URL).FramesArchive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("PK\x03\x04"), zip)
}
