package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Faust217/OJL-MTAT/internal/backend"
	"github.com/Faust217/OJL-MTAT/internal/domain/session"
	"github.com/Faust217/OJL-MTAT/internal/timefmt"
)

var (
	colorCyan     = lipgloss.Color("#00FFFF")
	colorGray     = lipgloss.Color("#666666")
	colorPositive = lipgloss.Color("#00C49F")
	colorNegative = lipgloss.Color("#FF6B6B")
	colorNeutral  = lipgloss.Color("#8884D8")

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	timestampStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	positiveStyle = lipgloss.NewStyle().
			Foreground(colorPositive)

	negativeStyle = lipgloss.NewStyle().
			Foreground(colorNegative)

	neutralStyle = lipgloss.NewStyle().
			Foreground(colorNeutral)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorGray)
)

// Renderer prints analysis results as styled terminal sections.
type Renderer struct {
	w io.Writer
}

func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

func (r *Renderer) header(title string) {
	fmt.Fprintf(r.w, "\n%s\n", headerStyle.Render(title))
}

// Transcript prints timestamped transcript segments, coloring each line by
// positionally aligned sentiment when one exists.
func (r *Renderer) Transcript(tr []backend.TranscriptSegment, sent []backend.SentimentSegment) {
	if len(tr) == 0 {
		return
	}
	r.header("📝 Transcript")
	for i, seg := range tr {
		line := seg.Text
		label := ""
		if i < len(sent) && sent[i].Sentiment != "" {
			label = fmt.Sprintf(" [%s %.1f%%]", sent[i].Sentiment, sent[i].Score*100)
			line = sentimentStyle(sent[i].Sentiment).Render(line)
		}
		fmt.Fprintf(r.w, "%s  %s%s\n",
			timestampStyle.Render(timefmt.FormatRange(seg.Start, seg.End)),
			line,
			dimStyle.Render(label))
	}
}

func (r *Renderer) Summary(summary string) {
	if summary == "" {
		return
	}
	r.header("🤖 Summary")
	fmt.Fprintf(r.w, "%s\n", strings.TrimSpace(summary))
}

// SentimentBreakdown prints the positive/neutral/negative segment counts.
func (r *Renderer) SentimentBreakdown(sent []backend.SentimentSegment) {
	if len(sent) == 0 {
		return
	}
	var pos, neu, neg int
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
	r.header("💬 Sentiment")
	fmt.Fprintf(r.w, "%s  %s  %s\n",
		positiveStyle.Render(fmt.Sprintf("positive %d", pos)),
		neutralStyle.Render(fmt.Sprintf("neutral %d", neu)),
		negativeStyle.Render(fmt.Sprintf("negative %d", neg)))
}

// FrameResults prints the live-sampled deepfake checks in capture order.
func (r *Renderer) FrameResults(frames []session.FrameResult) {
	if len(frames) == 0 {
		return
	}
	fake := 0
	for _, f := range frames {
		if strings.Contains(strings.ToLower(f.Label), "fake") {
			fake++
		}
	}
	r.header("🎭 Deepfake check")
	for _, f := range frames {
		fmt.Fprintf(r.w, "%s  %s\n",
			timestampStyle.Render(f.Time),
			labelStyle(f.Label).Render(fmt.Sprintf("%s (%.1f%%)", f.Label, f.Score)))
	}
	r.deepfakeTotals(fake, len(frames))
}

// DeepfakeOverview prints a whole-file verdict from backend frame counts.
// FrameDetail scores arrive as percentages already, unlike the 0..1 scores of
// the live classification endpoint.
func (r *Renderer) DeepfakeOverview(fakeFrames, totalFrames int, details []backend.FrameDetail) {
	r.header("🎭 Deepfake check")
	for _, d := range details {
		fmt.Fprintf(r.w, "  %s\n",
			labelStyle(d.Label).Render(fmt.Sprintf("%s (%.1f%%)", d.Label, d.Score)))
	}
	r.deepfakeTotals(fakeFrames, totalFrames)
}

func (r *Renderer) deepfakeTotals(fake, total int) {
	pct := 0.0
	if total > 0 {
		pct = float64(fake) / float64(total) * 100
	}
	line := fmt.Sprintf("%d of %d frames flagged (%.2f%%)", fake, total, pct)
	if fake > 0 {
		fmt.Fprintf(r.w, "%s\n", negativeStyle.Render(line))
	} else {
		fmt.Fprintf(r.w, "%s\n", positiveStyle.Render(line))
	}
}

func sentimentStyle(sentiment string) lipgloss.Style {
	switch strings.ToLower(sentiment) {
	case "positive":
		return positiveStyle
	case "negative":
		return negativeStyle
	default:
		return neutralStyle
	}
}

func labelStyle(label string) lipgloss.Style {
	if strings.Contains(strings.ToLower(label), "fake") {
		return negativeStyle
	}
	return positiveStyle
}
