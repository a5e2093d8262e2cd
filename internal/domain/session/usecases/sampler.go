package usecases

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/image/draw"

	"github.com/Faust217/OJL-MTAT/internal/backend"
	"github.com/Faust217/OJL-MTAT/internal/domain/session"
	"github.com/Faust217/OJL-MTAT/internal/media"
	"github.com/Faust217/OJL-MTAT/internal/timefmt"
)

// Sampler defaults.
const (
	DefaultFramePeriod = 10 * time.Second
	DefaultMaxWidth    = 1024
	DefaultJPEGQuality = 85
)

// FrameClassifier is the backend surface the sampler needs.
type FrameClassifier interface {
	ClassifyFrame(ctx context.Context, frame []byte) (*backend.FrameClassification, error)
}

// Sampler grabs a still frame from the live display feed on a fixed period
// and sends each one for deepfake classification without blocking capture.
// Classification calls are fire-and-forget relative to each other; results
// are kept ordered by capture offset regardless of response arrival order.
type Sampler struct {
	Classifier FrameClassifier
	Period     time.Duration
	MaxWidth   int
	Quality    int
	Now        func() time.Time
	Log        *slog.Logger

	mu      sync.Mutex
	results []session.FrameResult
	cancel  context.CancelFunc
}

func (s *Sampler) period() time.Duration {
	if s.Period > 0 {
		return s.Period
	}
	return DefaultFramePeriod
}

func (s *Sampler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Sampler) log() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}

// Start begins periodic sampling against the given grabber. The ticker runs
// until Stop or ctx cancellation; starting an already-running sampler is a
// no-op.
func (s *Sampler) Start(ctx context.Context, frames media.FrameGrabber, startedAt time.Time) {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(s.period())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sample(ctx, frames, startedAt)
			}
		}
	}()
}

// sample grabs and encodes one frame, then classifies it in its own goroutine
// so a slow backend cannot stall the ticker. A failed sample is dropped; it
// never aborts the session.
func (s *Sampler) sample(ctx context.Context, frames media.FrameGrabber, startedAt time.Time) {
	img, err := frames.Grab(ctx)
	if err != nil {
		s.log().Warn("frame grab failed", "error", err)
		return
	}
	frame, err := encodeJPEG(img, s.MaxWidth, s.Quality)
	if err != nil {
		s.log().Warn("frame encode failed", "error", err)
		return
	}
	offset := s.now().Sub(startedAt)

	go func() {
		cls, err := s.Classifier.ClassifyFrame(ctx, frame)
		if err != nil {
			s.log().Warn("frame classification failed", "offset", offset.String(), "error", err)
			return
		}
		s.append(session.FrameResult{
			Offset: offset,
			Time:   timefmt.FormatHMS(offset.Seconds()),
			Label:  cls.Label,
			Score:  cls.Score * 100,
			Image:  frame,
		})
	}()
}

// append inserts a result at its capture-offset position, so the list stays
// time-ordered even when classification responses arrive out of order.
func (s *Sampler) append(r session.FrameResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := len(s.results)
	for i > 0 && s.results[i-1].Offset > r.Offset {
		i--
	}
	s.results = append(s.results, session.FrameResult{})
	copy(s.results[i+1:], s.results[i:])
	s.results[i] = r
}

// Stop cancels the sampling ticker and any in-flight classification. Safe to
// call more than once.
func (s *Sampler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Results returns a copy of the accumulated frame results.
func (s *Sampler) Results() []session.FrameResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]session.FrameResult(nil), s.results...)
}

// Release stops sampling and drops the accumulated frames together with
// their image buffers, so repeated record cycles do not grow without bound.
func (s *Sampler) Release() {
	s.Stop()
	s.mu.Lock()
	s.results = nil
	s.mu.Unlock()
}

// encodeJPEG downscales img to at most maxWidth pixels wide, preserving the
// aspect ratio, and encodes it for upload.
func encodeJPEG(img image.Image, maxWidth, quality int) ([]byte, error) {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	if quality <= 0 {
		quality = DefaultJPEGQuality
	}
	b := img.Bounds()
	if b.Dx() > maxWidth {
		h := b.Dy() * maxWidth / b.Dx()
		dst := image.NewRGBA(image.Rect(0, 0, maxWidth, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
		img = dst
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
