package backend

import "encoding/json"

// TranscriptSegment is one time-bounded unit of transcript text. Start and
// End are offsets in seconds.
type TranscriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// SentimentSegment carries the sentiment label and confidence for the
// transcript segment at the same position. Score is 0..1.
type SentimentSegment struct {
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	Sentiment string  `json:"sentiment"`
	Score     float64 `json:"score"`
}

// ChunkResult is the normalized response of the recorded-audio transcription
// endpoint.
type ChunkResult struct {
	Transcript []TranscriptSegment `json:"transcript"`
	Summary    string              `json:"summary"`
	Sentiment  []SentimentSegment  `json:"sentiment"`
}

// decodeChunkResult accepts both response shapes the service produces: a bare
// transcript array and the full {transcript, summary, sentiment} object.
func decodeChunkResult(body []byte) (*ChunkResult, error) {
	var segs []TranscriptSegment
	if err := json.Unmarshal(body, &segs); err == nil {
		return &ChunkResult{Transcript: segs}, nil
	}
	var res ChunkResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// FrameClassification is the per-frame deepfake verdict. Score is 0..1.
type FrameClassification struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// FrameDetail describes one frame the service extracted from an uploaded
// video. Score here is already a percentage.
type FrameDetail struct {
	Label    string  `json:"label"`
	Score    float64 `json:"score"`
	ImageURL string  `json:"image_url"`
}

// AnalysisResult is the response for a full uploaded media file.
type AnalysisResult struct {
	Type          string              `json:"type"` // "audio" or "video"
	Transcript    []TranscriptSegment `json:"transcript"`
	Summary       string              `json:"summary"`
	Sentiment     []SentimentSegment  `json:"sentiment"`
	FramesChecked int                 `json:"frames_checked"`
	FakeFrames    int                 `json:"fake_frames"`
	FrameDetails  []FrameDetail       `json:"frame_details"`
}

// ReportLine is one summary line of the document request.
type ReportLine struct {
	Time string `json:"time"`
	Text string `json:"text"`
}

// ReportRow is one transcript row of the document request, with its sentiment
// rendered as display text (e.g. "positive (93.1%)" or "unknown").
type ReportRow struct {
	Time      string `json:"time"`
	Text      string `json:"text"`
	Sentiment string `json:"sentiment"`
}

// DeepfakeSummary aggregates the frame verdicts for the document request.
// FakePercentage is pre-formatted with two decimals, "0.00" when no frames
// were checked.
type DeepfakeSummary struct {
	TotalFrames    int    `json:"total_frames"`
	FakeFrames     int    `json:"fake_frames"`
	FakePercentage string `json:"fake_percentage"`
}

// ReportPayload is the document-generation request. Chart fields hold PNG
// data URLs and are nullable: a chart that could not be rendered is omitted
// from the document.
type ReportPayload struct {
	Summary        []ReportLine     `json:"summary"`
	Transcript     []ReportRow      `json:"transcript"`
	Deepfake       *DeepfakeSummary `json:"deepfake"`
	SentimentChart *string          `json:"sentiment_chart"`
	DeepfakeChart  *string          `json:"deepfake_chart"`
}
