// Package backend is the HTTP client for the meeting analysis service, which
// performs transcription, summarization, sentiment scoring, deepfake frame
// classification, and report generation.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

// ErrBackend marks any failure to reach the analysis service or a non-success
// response from it.
var ErrBackend = errors.New("analysis service request failed")

// Client calls the analysis service. The zero HTTPClient falls back to
// http.DefaultClient; no request timeout is imposed here, callers bound waits
// through the context.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// New returns a client for the service at baseURL.
func New(baseURL string) *Client {
	return &Client{BaseURL: strings.TrimRight(baseURL, "/")}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// Analyze uploads a complete media file for transcription, summarization,
// sentiment scoring, and (for video) deepfake frame checks.
func (c *Client) Analyze(ctx context.Context, file io.Reader, filename string) (*AnalysisResult, error) {
	body, err := c.postMultipart(ctx, "/analyze", filename, file)
	if err != nil {
		return nil, err
	}
	var res AnalysisResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("parsing analysis response: %w", err)
	}
	return &res, nil
}

// TranscribeChunk sends a finalized recording for transcription. The service
// may answer with a bare transcript array or a full result object; both are
// normalized into a ChunkResult.
func (c *Client) TranscribeChunk(ctx context.Context, audio []byte, filename string) (*ChunkResult, error) {
	body, err := c.postMultipart(ctx, "/transcribe_chunk", filename, bytes.NewReader(audio))
	if err != nil {
		return nil, err
	}
	res, err := decodeChunkResult(body)
	if err != nil {
		return nil, fmt.Errorf("parsing transcription response: %w", err)
	}
	return res, nil
}

// ClassifyFrame submits one JPEG still frame for deepfake classification.
func (c *Client) ClassifyFrame(ctx context.Context, frame []byte) (*FrameClassification, error) {
	body, err := c.postMultipart(ctx, "/analyze_frame", "frame.jpg", bytes.NewReader(frame))
	if err != nil {
		return nil, err
	}
	var res FrameClassification
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("parsing frame classification: %w", err)
	}
	return &res, nil
}

// GeneratePDF asks the service to render the report payload into a PDF
// document and returns the document bytes.
func (c *Client) GeneratePDF(ctx context.Context, payload *ReportPayload) ([]byte, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/generate_pdf", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

// FramesArchive fetches the ZIP archive of frames extracted during the most
// recent full-media analysis.
func (c *Client) FramesArchive(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/export_frames_zip", nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

// Ping reports whether the service answers HTTP at all. Any status code
// counts: there is no dedicated health route.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackend, err)
	}
	resp.Body.Close()
	return nil
}

// postMultipart uploads content as the "file" field of a multipart form and
// returns the response body.
func (c *Client) postMultipart(ctx context.Context, path, filename string, content io.Reader) ([]byte, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrBackend, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w (HTTP %d): %s", ErrBackend, resp.StatusCode, errDetail(respBody))
	}
	return respBody, nil
}

// errDetail extracts the service's {"detail": "..."} error body, falling back
// to the raw text.
func errDetail(body []byte) string {
	var e struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &e) == nil && e.Detail != "" {
		return e.Detail
	}
	return strings.TrimSpace(string(body))
}
