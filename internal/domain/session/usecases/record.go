package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Faust217/OJL-MTAT/internal/domain/session"
	"github.com/Faust217/OJL-MTAT/internal/media"
)

// DefaultMinAudioBytes is the size below which a finalized recording is
// suspicious: in practice it means system audio was not shared.
const DefaultMinAudioBytes = 200 << 10

// Notifier surfaces user-visible notices from the capture pipeline.
type Notifier interface {
	Warning(msg string)
}

// Controller owns the live streams, mixer, and recorder for at most one
// recording session at a time, sequencing the session state machine through
// start and stop.
type Controller struct {
	Devices       media.Devices
	NewMixer      func() media.Mixer
	NewRecorder   func() media.Recorder
	Sampler       *Sampler
	Notify        Notifier
	MinAudioBytes int
	Now           func() time.Time
	Log           *slog.Logger

	mu       sync.Mutex
	sess     *session.Session
	mic      media.Track
	display  *media.DisplayStream
	mixer    media.Mixer
	recorder media.Recorder
}

func (c *Controller) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Controller) log() *slog.Logger {
	if c.Log != nil {
		return c.Log
	}
	return slog.Default()
}

func (c *Controller) minAudioBytes() int {
	if c.MinAudioBytes > 0 {
		return c.MinAudioBytes
	}
	return DefaultMinAudioBytes
}

func (c *Controller) warn(msg string) {
	if c.Notify != nil {
		c.Notify.Warning(msg)
	}
}

// Session returns the current session, or nil before the first start.
func (c *Controller) Session() *session.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess
}

// Start acquires the microphone and display streams, wires their audio
// through one mixer, and starts the recorder and frame sampler. Any
// resources a previous session still holds are fully torn down first, so two
// recorders can never run at once. On failure nothing stays acquired and the
// new session remains idle.
func (c *Controller) Start(ctx context.Context) (*session.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.releaseLocked()
	if c.Sampler != nil {
		c.Sampler.Release()
	}

	sess := session.New()
	c.sess = sess

	mic, err := c.Devices.OpenMicrophone(ctx, media.MicOptions{EchoCancellation: true, NoiseSuppression: true})
	if err != nil {
		return nil, err
	}

	display, err := c.Devices.OpenDisplay(ctx)
	if err != nil {
		_ = mic.Stop()
		return nil, err
	}

	mixer := c.NewMixer()
	if err := mixer.AddSource(mic); err != nil {
		c.abortStart(mic, display, mixer)
		return nil, fmt.Errorf("%w: %v", media.ErrCapture, err)
	}
	if display.Audio != nil {
		if err := mixer.AddSource(display.Audio); err != nil {
			c.abortStart(mic, display, mixer)
			return nil, fmt.Errorf("%w: %v", media.ErrCapture, err)
		}
	} else {
		c.warn("No system audio detected from the shared display; only the microphone will be recorded.")
	}

	recorder := c.NewRecorder()
	if err := recorder.Start(ctx, mixer.Output(), sess.AppendChunk); err != nil {
		c.abortStart(mic, display, mixer)
		return nil, fmt.Errorf("%w: %v", media.ErrCapture, err)
	}

	if err := sess.Begin(c.now()); err != nil {
		// Unreachable for a fresh session, but never leave streams open.
		if _, stopErr := recorder.Stop(ctx); stopErr != nil {
			c.log().Warn("stopping recorder after failed begin", "error", stopErr)
		}
		c.abortStart(mic, display, mixer)
		return nil, err
	}

	c.mic = mic
	c.display = display
	c.mixer = mixer
	c.recorder = recorder

	if c.Sampler != nil && display.Frames != nil {
		c.Sampler.Start(ctx, display.Frames, sess.StartedAt())
	}

	c.log().Info("recording started", "session", sess.ID)
	return sess, nil
}

// Stop finalizes the recorder and releases every capture resource: the
// sampling ticker first, then the acquired tracks, then the mixing graph.
// It returns the complete buffered audio and leaves the session in the
// finalizing phase for the aggregator.
func (c *Controller) Stop(ctx context.Context) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess := c.sess
	if sess == nil || sess.State() != session.StateRecording {
		return nil, fmt.Errorf("no active recording")
	}

	if c.Sampler != nil {
		c.Sampler.Stop()
	}
	if err := sess.BeginFinalize(); err != nil {
		return nil, err
	}

	recorder := c.recorder
	c.recorder = nil
	c.releaseTracksLocked()

	// Await finalization before reading the output; partial reads yield
	// incomplete audio.
	blob, err := recorder.Stop(ctx)
	if err != nil {
		sess.Fail()
		return nil, fmt.Errorf("%w: %v", media.ErrCapture, err)
	}

	if len(blob) < c.minAudioBytes() {
		c.warn("The recording is suspiciously small; system audio was likely not captured.")
	}

	c.log().Info("recording stopped", "session", sess.ID, "bytes", len(blob))
	return blob, nil
}

// abortStart releases everything a partially successful start acquired.
func (c *Controller) abortStart(mic media.Track, display *media.DisplayStream, mixer media.Mixer) {
	if display != nil {
		_ = display.Video.Stop()
		if display.Audio != nil {
			_ = display.Audio.Stop()
		}
	}
	if mic != nil {
		_ = mic.Stop()
	}
	if mixer != nil {
		_ = mixer.Close()
	}
}

// releaseLocked tears down whatever a previous session still holds: the
// sampler ticker, the recorder, then tracks and mixer. The superseded
// session, if it was still recording, is marked failed.
func (c *Controller) releaseLocked() {
	if c.Sampler != nil {
		c.Sampler.Stop()
	}
	if c.recorder != nil {
		if _, err := c.recorder.Stop(context.Background()); err != nil {
			c.log().Warn("discarding stale recorder", "error", err)
		}
		c.recorder = nil
	}
	c.releaseTracksLocked()
	if c.sess != nil && c.sess.State() == session.StateRecording {
		c.sess.Fail()
	}
}

func (c *Controller) releaseTracksLocked() {
	if c.display != nil {
		_ = c.display.Video.Stop()
		if c.display.Audio != nil {
			_ = c.display.Audio.Stop()
		}
		c.display = nil
	}
	if c.mic != nil {
		_ = c.mic.Stop()
		c.mic = nil
	}
	if c.mixer != nil {
		_ = c.mixer.Close()
		c.mixer = nil
	}
}
