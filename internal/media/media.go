// Package media abstracts live capture devices so the recording controller
// and frame sampler can run against real ffmpeg-backed sources or test fakes.
package media

import (
	"context"
	"errors"
	"image"
)

var (
	// ErrPermissionDenied means the user or OS refused access to a capture
	// device.
	ErrPermissionDenied = errors.New("capture permission denied")

	// ErrCapture covers stream and recorder setup failures.
	ErrCapture = errors.New("capture failure")
)

// Track is a single live capture track. Stop releases the underlying device
// handle and is safe to call more than once.
type Track interface {
	Label() string
	Stop() error
}

// FrameGrabber captures the current still frame of a live video feed.
type FrameGrabber interface {
	Grab(ctx context.Context) (image.Image, error)
}

// MicOptions are the voice-friendly constraints requested when acquiring the
// microphone.
type MicOptions struct {
	EchoCancellation bool
	NoiseSuppression bool
}

// DisplayStream bundles the tracks acquired from a display capture: the video
// feed, an optional system-audio track, and a grabber for still frames.
type DisplayStream struct {
	Video  Track
	Audio  Track // nil when the display source exposes no audio
	Frames FrameGrabber
}

// Devices opens capture sources.
type Devices interface {
	OpenMicrophone(ctx context.Context, opts MicOptions) (Track, error)
	OpenDisplay(ctx context.Context) (*DisplayStream, error)
}

// Mixer combines audio tracks into one stream for the recorder. Close tears
// down the mixing graph and is safe to call more than once.
type Mixer interface {
	AddSource(t Track) error
	Output() Track
	Close() error
}

// Recorder buffers audio from a mixed track until stopped. Stop finalizes the
// recording and returns the complete buffered audio; the output must not be
// read before Stop returns.
type Recorder interface {
	Start(ctx context.Context, src Track, onChunk func([]byte)) error
	Stop(ctx context.Context) ([]byte, error)
}
