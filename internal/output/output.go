package output

import (
	"fmt"
	"io"
	"time"
)

type Formatter struct {
	w io.Writer
}

func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

func (f *Formatter) RecordingStarted() {
	fmt.Fprintf(f.w, "🔴 Recording... press Ctrl+C to stop\n")
}

func (f *Formatter) RecordingStopped(duration time.Duration) {
	fmt.Fprintf(f.w, "⏹️  Recording stopped (%s)\n", formatDuration(duration))
}

func (f *Formatter) Analyzing() {
	fmt.Fprintf(f.w, "🔬 Analyzing recording...\n")
}

func (f *Formatter) Uploading(path string) {
	fmt.Fprintf(f.w, "📤 Uploading %s...\n", path)
}

func (f *Formatter) ExportDone(path string) {
	fmt.Fprintf(f.w, "✅ Report saved: %s\n", path)
}

func (f *Formatter) FramesSaved(path string) {
	fmt.Fprintf(f.w, "✅ Frames archive saved: %s\n", path)
}

func (f *Formatter) MeetingComplete(dir string) {
	fmt.Fprintf(f.w, "\n📁 Meeting saved: %s\n", dir)
}

func (f *Formatter) Error(msg string) {
	fmt.Fprintf(f.w, "❌ %s\n", msg)
}

func (f *Formatter) Info(msg string) {
	fmt.Fprintf(f.w, "ℹ️  %s\n", msg)
}

func (f *Formatter) Success(msg string) {
	fmt.Fprintf(f.w, "✅ %s\n", msg)
}

func (f *Formatter) Warning(msg string) {
	fmt.Fprintf(f.w, "⚠️  %s\n", msg)
}

func (f *Formatter) MeetingListHeader() {
	fmt.Fprintf(f.w, "📁 Meetings:\n\n")
}

func (f *Formatter) MeetingListItem(name string, hasRecording, hasReport bool) {
	status := ""
	if hasRecording && hasReport {
		status = " ✅"
	} else if hasRecording {
		status = " 🎙️"
	}
	fmt.Fprintf(f.w, "  %s%s\n", name, status)
}

func (f *Formatter) SetupCheck(name string, ok bool, detail string) {
	if ok {
		fmt.Fprintf(f.w, "  ✅ %s: %s\n", name, detail)
	} else {
		fmt.Fprintf(f.w, "  ❌ %s: %s\n", name, detail)
	}
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
