package usecases

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Faust217/OJL-MTAT/internal/backend"
	"github.com/Faust217/OJL-MTAT/internal/charts"
	"github.com/Faust217/OJL-MTAT/internal/domain/session"
	"github.com/Faust217/OJL-MTAT/internal/timefmt"
)

// ErrNothingToExport is returned when a session has neither transcript nor
// frame results to report.
var ErrNothingToExport = errors.New("nothing to export yet")

// ErrExportFailed wraps document generation and report-writing failures.
// Export failures never change the underlying session state, so a failed
// export can simply be retried.
var ErrExportFailed = errors.New("export failed")

// ReportGenerator is the backend surface the exporter needs.
type ReportGenerator interface {
	GeneratePDF(ctx context.Context, payload *backend.ReportPayload) ([]byte, error)
}

// Exporter composes the report payload from current session results and asks
// the backend to generate the PDF document. Each call snapshots the state
// fresh; nothing in the session is mutated.
type Exporter struct {
	Backend ReportGenerator
	Log     *slog.Logger
}

func (e *Exporter) log() *slog.Logger {
	if e.Log != nil {
		return e.Log
	}
	return slog.Default()
}

// Export builds the payload from a recorded session, requests the document,
// and writes it to path.
func (e *Exporter) Export(ctx context.Context, res Results, frames []session.FrameResult, path string) error {
	payload, err := e.BuildPayload(res, frames)
	if err != nil {
		return err
	}
	return e.generate(ctx, payload, path)
}

// ExportAnalysis is the full-media variant: it exports an uploaded file's
// analysis, using the backend's own frame counts instead of live sampler
// results. The deepfake section is omitted for plain audio.
func (e *Exporter) ExportAnalysis(ctx context.Context, res *backend.AnalysisResult, path string) error {
	if len(res.Transcript) == 0 && res.Summary == "" && res.Type != "video" {
		return ErrNothingToExport
	}
	var deepfake *backend.DeepfakeSummary
	if res.Type == "video" {
		deepfake = deepfakeCounts(res.FakeFrames, res.FramesChecked)
	}
	payload := e.compose(Results{
		Transcript: res.Transcript,
		Summary:    res.Summary,
		Sentiment:  res.Sentiment,
	}, deepfake)
	return e.generate(ctx, payload, path)
}

// BuildPayload snapshots the given session results into the document request.
// Chart images are rendered fresh on every call and are nullable: a chart
// that cannot be drawn is simply left out of the document.
func (e *Exporter) BuildPayload(res Results, frames []session.FrameResult) (*backend.ReportPayload, error) {
	if len(res.Transcript) == 0 && len(frames) == 0 {
		return nil, ErrNothingToExport
	}
	return e.compose(res, BuildDeepfakeSummary(frames)), nil
}

func (e *Exporter) compose(res Results, deepfake *backend.DeepfakeSummary) *backend.ReportPayload {
	p := &backend.ReportPayload{
		Summary:    summaryLines(res.Summary),
		Transcript: transcriptRows(res.Transcript, res.Sentiment),
		Deepfake:   deepfake,
	}

	pos, neu, neg := sentimentCounts(res.Sentiment)
	if img, err := charts.SentimentDonut(pos, neu, neg); err == nil {
		p.SentimentChart = dataURL(img)
	} else {
		e.log().Debug("sentiment chart unavailable", "error", err)
	}
	if deepfake != nil {
		if img, err := charts.DeepfakeDonut(deepfake.FakeFrames, deepfake.TotalFrames-deepfake.FakeFrames); err == nil {
			p.DeepfakeChart = dataURL(img)
		} else {
			e.log().Debug("deepfake chart unavailable", "error", err)
		}
	}
	return p
}

func (e *Exporter) generate(ctx context.Context, payload *backend.ReportPayload, path string) error {
	doc, err := e.Backend.GeneratePDF(ctx, payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return fmt.Errorf("%w: writing report: %v", ErrExportFailed, err)
	}
	return nil
}

// ExportJSON writes the raw session report (no charts) as indented JSON.
func (e *Exporter) ExportJSON(res Results, frames []session.FrameResult, path string) error {
	type frameLine struct {
		Time  string  `json:"time"`
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}
	report := struct {
		Transcript []backend.TranscriptSegment `json:"transcript"`
		Summary    string                      `json:"summary"`
		Sentiment  []backend.SentimentSegment  `json:"sentiment"`
		Deepfake   []frameLine                 `json:"deepfake"`
	}{
		Transcript: res.Transcript,
		Summary:    res.Summary,
		Sentiment:  res.Sentiment,
		Deepfake:   make([]frameLine, 0, len(frames)),
	}
	for _, f := range frames {
		report.Deepfake = append(report.Deepfake, frameLine{Time: f.Time, Label: f.Label, Score: f.Score})
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: writing report: %v", ErrExportFailed, err)
	}
	return nil
}

// BuildDeepfakeSummary aggregates frame results into the report counts. A
// label counts as fake when it contains "fake", case-insensitively.
func BuildDeepfakeSummary(frames []session.FrameResult) *backend.DeepfakeSummary {
	fake := 0
	for _, f := range frames {
		if strings.Contains(strings.ToLower(f.Label), "fake") {
			fake++
		}
	}
	return deepfakeCounts(fake, len(frames))
}

func deepfakeCounts(fake, total int) *backend.DeepfakeSummary {
	pct := "0.00"
	if total > 0 {
		pct = fmt.Sprintf("%.2f", float64(fake)/float64(total)*100)
	}
	return &backend.DeepfakeSummary{
		TotalFrames:    total,
		FakeFrames:     fake,
		FakePercentage: pct,
	}
}

func summaryLines(summary string) []backend.ReportLine {
	if summary == "" {
		return []backend.ReportLine{}
	}
	lines := strings.Split(summary, "\n")
	out := make([]backend.ReportLine, len(lines))
	for i, line := range lines {
		out[i] = backend.ReportLine{Time: fmt.Sprintf("S%d", i+1), Text: line}
	}
	return out
}

func transcriptRows(tr []backend.TranscriptSegment, sent []backend.SentimentSegment) []backend.ReportRow {
	rows := make([]backend.ReportRow, len(tr))
	for i, t := range tr {
		label := "unknown"
		if i < len(sent) && sent[i].Sentiment != "" {
			label = fmt.Sprintf("%s (%.1f%%)", sent[i].Sentiment, sent[i].Score*100)
		}
		rows[i] = backend.ReportRow{
			Time:      timefmt.FormatRange(t.Start, t.End),
			Text:      t.Text,
			Sentiment: label,
		}
	}
	return rows
}

func sentimentCounts(sent []backend.SentimentSegment) (pos, neu, neg int) {
	for _, s := range sent {
		switch strings.ToLower(s.Sentiment) {
		case "positive":
			pos++
		case "negative":
			neg++
		default:
			neu++
		}
	}
	return pos, neu, neg
}

func dataURL(png []byte) *string {
	s := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	return &s
}
