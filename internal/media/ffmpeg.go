package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"
)

// FFmpegDevices opens capture sources through ffmpeg subprocesses. Input
// names follow ffmpeg device syntax for the configured formats, e.g. a pulse
// microphone ("default"), a pulse monitor source carrying system audio, and
// an x11grab display (":0.0").
type FFmpegDevices struct {
	Mic          string
	MonitorAudio string // "" when no system-audio source is configured
	Display      string
	AudioFormat  string // ffmpeg input format for audio devices, e.g. "pulse"
	VideoFormat  string // ffmpeg input format for the display, e.g. "x11grab"
	Log          *slog.Logger
}

func (d *FFmpegDevices) log() *slog.Logger {
	if d.Log != nil {
		return d.Log
	}
	return slog.Default()
}

// CheckFFmpeg verifies the ffmpeg binary is on PATH.
func (d *FFmpegDevices) CheckFFmpeg() error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg not found. Install with: apt install ffmpeg (or brew install ffmpeg)")
	}
	return nil
}

// OpenMicrophone probes the microphone input and returns its track. A refusal
// by the OS surfaces as ErrPermissionDenied.
func (d *FFmpegDevices) OpenMicrophone(ctx context.Context, opts MicOptions) (Track, error) {
	if err := d.CheckFFmpeg(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCapture, err)
	}
	if err := d.probe(ctx, d.AudioFormat, d.Mic); err != nil {
		return nil, err
	}
	var filters []string
	if opts.NoiseSuppression {
		// ffmpeg has no acoustic echo canceller, so EchoCancellation has no
		// backing filter here; denoising is the closest available request.
		filters = append(filters, "afftdn")
	}
	return &ffmpegTrack{kind: "audio", input: inputSpec{format: d.AudioFormat, name: d.Mic}, filters: filters}, nil
}

// OpenDisplay opens the display video input, the monitor audio source if one
// is configured and usable, and a still-frame grabber for the feed.
func (d *FFmpegDevices) OpenDisplay(ctx context.Context) (*DisplayStream, error) {
	if err := d.CheckFFmpeg(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCapture, err)
	}
	if err := d.probe(ctx, d.VideoFormat, d.Display); err != nil {
		return nil, err
	}

	stream := &DisplayStream{
		Video:  &ffmpegTrack{kind: "video", input: inputSpec{format: d.VideoFormat, name: d.Display}},
		Frames: &ffmpegGrabber{format: d.VideoFormat, display: d.Display},
	}

	if d.MonitorAudio != "" {
		if err := d.probe(ctx, d.AudioFormat, d.MonitorAudio); err != nil {
			d.log().Warn("system audio source unusable, recording microphone only",
				"source", d.MonitorAudio, "error", err)
		} else {
			stream.Audio = &ffmpegTrack{kind: "audio", input: inputSpec{format: d.AudioFormat, name: d.MonitorAudio}}
		}
	}
	return stream, nil
}

// probe opens the input for a fraction of a second to detect missing devices
// and permission refusals before the real recording starts.
func (d *FFmpegDevices) probe(ctx context.Context, format, name string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-hide_banner", "-loglevel", "error",
		"-f", format,
		"-i", name,
		"-t", "0.1",
		"-f", "null", "-",
	)
	out, err := cmd.CombinedOutput()
	if err == nil {
		return nil
	}
	detail := strings.TrimSpace(string(out))
	if strings.Contains(strings.ToLower(detail), "permission denied") ||
		strings.Contains(strings.ToLower(detail), "access denied") {
		return fmt.Errorf("%w: %s (%s)", ErrPermissionDenied, name, detail)
	}
	return fmt.Errorf("%w: opening %s input %q: %s", ErrCapture, format, name, detail)
}

type inputSpec struct {
	format string
	name   string
}

// ffmpegTrack is a descriptor for one capture input. The OS device handle is
// held by the recorder process, so Stop only marks the track released.
type ffmpegTrack struct {
	kind    string
	input   inputSpec
	filters []string

	mu      sync.Mutex
	stopped bool
}

func (t *ffmpegTrack) Label() string {
	return t.input.format + ":" + t.input.name
}

func (t *ffmpegTrack) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	return nil
}

// FFmpegMixer collects audio tracks into a single amix graph. The graph runs
// inside the recorder's ffmpeg process; Close marks it torn down so a later
// session cannot reuse it.
type FFmpegMixer struct {
	mu      sync.Mutex
	sources []*ffmpegTrack
	closed  bool
}

func NewFFmpegMixer() *FFmpegMixer {
	return &FFmpegMixer{}
}

func (m *FFmpegMixer) AddSource(t Track) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("mixer is closed")
	}
	ft, ok := t.(*ffmpegTrack)
	if !ok {
		return fmt.Errorf("ffmpeg mixer requires ffmpeg tracks, got %T", t)
	}
	if ft.kind != "audio" {
		return fmt.Errorf("cannot mix %s track %q", ft.kind, ft.Label())
	}
	m.sources = append(m.sources, ft)
	return nil
}

func (m *FFmpegMixer) Output() Track {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &mixedTrack{sources: append([]*ffmpegTrack(nil), m.sources...)}
}

func (m *FFmpegMixer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.sources = nil
	return nil
}

// mixedTrack is the combined output of a mixer.
type mixedTrack struct {
	sources []*ffmpegTrack
}

func (t *mixedTrack) Label() string { return "mixed" }
func (t *mixedTrack) Stop() error   { return nil }

// FFmpegRecorder records a mixed track to an opus/webm file via a single
// ffmpeg process, reading the finished file back on Stop.
type FFmpegRecorder struct {
	Dir string // scratch directory for the in-progress file ("" = os.TempDir)
	Log *slog.Logger

	mu     sync.Mutex
	cmd    *exec.Cmd
	path   string
	stderr *os.File
}

func NewFFmpegRecorder(log *slog.Logger) *FFmpegRecorder {
	return &FFmpegRecorder{Log: log}
}

func (r *FFmpegRecorder) log() *slog.Logger {
	if r.Log != nil {
		return r.Log
	}
	return slog.Default()
}

// Start launches the recording process over the mixed track's inputs. The
// audio arrives as one finished file at Stop, so no incremental chunks are
// emitted through onChunk.
func (r *FFmpegRecorder) Start(ctx context.Context, src Track, onChunk func([]byte)) error {
	mixed, ok := src.(*mixedTrack)
	if !ok {
		return fmt.Errorf("ffmpeg recorder requires a mixed track, got %T", src)
	}
	if len(mixed.sources) == 0 {
		return fmt.Errorf("no audio sources to record")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cmd != nil {
		return fmt.Errorf("recorder already active")
	}

	dir := r.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, fmt.Sprintf("mtat-%d.webm", time.Now().UnixNano()))

	args := []string{"-hide_banner", "-loglevel", "error"}
	for _, s := range mixed.sources {
		args = append(args, "-f", s.input.format, "-i", s.input.name)
	}
	var filters []string
	if len(mixed.sources) > 1 {
		filters = append(filters, fmt.Sprintf("amix=inputs=%d:duration=longest:dropout_transition=0", len(mixed.sources)))
	}
	for _, s := range mixed.sources {
		filters = append(filters, s.filters...)
	}
	if len(filters) > 0 {
		args = append(args, "-af", strings.Join(filters, ","))
	}
	args = append(args, "-ac", "1", "-c:a", "libopus", "-y", path)

	cmd := exec.Command("ffmpeg", args...)
	logPath := path + ".ffmpeg.log"
	logFile, err := os.Create(logPath)
	if err == nil {
		cmd.Stderr = logFile
	}
	if err := cmd.Start(); err != nil {
		if logFile != nil {
			logFile.Close()
		}
		return fmt.Errorf("starting ffmpeg: %w", err)
	}

	r.cmd = cmd
	r.path = path
	r.stderr = logFile
	return nil
}

// Stop signals ffmpeg to finalize the file, waits for the process to exit,
// and returns the complete recording.
func (r *FFmpegRecorder) Stop(ctx context.Context) ([]byte, error) {
	r.mu.Lock()
	cmd, path, stderr := r.cmd, r.path, r.stderr
	r.cmd, r.path, r.stderr = nil, "", nil
	r.mu.Unlock()

	if cmd == nil {
		return nil, fmt.Errorf("recorder not active")
	}

	// SIGINT asks ffmpeg to flush and close the container cleanly.
	if err := cmd.Process.Signal(syscall.SIGINT); err != nil {
		r.log().Warn("signaling recorder process", "error", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	select {
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
	case err := <-done:
		// ffmpeg exits non-zero on SIGINT; the file on disk is what counts.
		if err != nil {
			r.log().Debug("recorder process exit", "error", err)
		}
	}
	if stderr != nil {
		stderr.Close()
	}

	blob, err := os.ReadFile(path)
	defer os.Remove(path)
	if err != nil {
		return nil, fmt.Errorf("reading recording: %w", err)
	}
	return blob, nil
}

// ffmpegGrabber captures one still frame of the display per Grab call.
type ffmpegGrabber struct {
	format  string
	display string
}

func (g *ffmpegGrabber) Grab(ctx context.Context) (image.Image, error) {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-hide_banner", "-loglevel", "error",
		"-f", g.format,
		"-i", g.display,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "mjpeg", "-",
	)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("grabbing frame: %w", err)
	}
	img, err := jpeg.Decode(&out)
	if err != nil {
		return nil, fmt.Errorf("decoding frame: %w", err)
	}
	return img, nil
}
