package usecases

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faust217/OJL-MTAT/internal/domain/session"
	"github.com/Faust217/OJL-MTAT/internal/media"
)

type fakeTrack struct {
	label string
	mu    sync.Mutex
	stops int
}

func (t *fakeTrack) Label() string { return t.label }

func (t *fakeTrack) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stops++
	return nil
}

func (t *fakeTrack) stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stops > 0
}

type fakeDevices struct {
	micErr     error
	displayErr error
	noSysAudio bool

	mics     []*fakeTrack
	videos   []*fakeTrack
	sysAudio []*fakeTrack
}

func (d *fakeDevices) OpenMicrophone(_ context.Context, _ media.MicOptions) (media.Track, error) {
	if d.micErr != nil {
		return nil, d.micErr
	}
	t := &fakeTrack{label: "mic"}
	d.mics = append(d.mics, t)
	return t, nil
}

func (d *fakeDevices) OpenDisplay(_ context.Context) (*media.DisplayStream, error) {
	if d.displayErr != nil {
		return nil, d.displayErr
	}
	video := &fakeTrack{label: "display-video"}
	d.videos = append(d.videos, video)
	stream := &media.DisplayStream{Video: video}
	if !d.noSysAudio {
		audio := &fakeTrack{label: "display-audio"}
		d.sysAudio = append(d.sysAudio, audio)
		stream.Audio = audio
	}
	return stream, nil
}

type fakeMixer struct {
	mu      sync.Mutex
	sources int
	closes  int
}

func (m *fakeMixer) AddSource(_ media.Track) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources++
	return nil
}

func (m *fakeMixer) Output() media.Track { return &fakeTrack{label: "mixed"} }

func (m *fakeMixer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closes++
	return nil
}

type fakeRecorder struct {
	startErr error
	stopErr  error
	blob     []byte

	mu      sync.Mutex
	running bool
	stops   int
}

func (r *fakeRecorder) Start(_ context.Context, _ media.Track, _ func([]byte)) error {
	if r.startErr != nil {
		return r.startErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = true
	return nil
}

func (r *fakeRecorder) Stop(_ context.Context) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = false
	r.stops++
	if r.stopErr != nil {
		return nil, r.stopErr
	}
	return r.blob, nil
}

func (r *fakeRecorder) active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

type fakeNotifier struct {
	mu       sync.Mutex
	warnings []string
}

func (n *fakeNotifier) Warning(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.warnings = append(n.warnings, msg)
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.warnings)
}

func newTestController(devices *fakeDevices, recorders *[]*fakeRecorder, mixers *[]*fakeMixer, notify *fakeNotifier, blob []byte) *Controller {
	return &Controller{
		Devices: devices,
		NewMixer: func() media.Mixer {
			m := &fakeMixer{}
			*mixers = append(*mixers, m)
			return m
		},
		NewRecorder: func() media.Recorder {
			r := &fakeRecorder{blob: blob}
			*recorders = append(*recorders, r)
			return r
		},
		Notify:        notify,
		MinAudioBytes: 4,
	}
}

func TestStartStopLifecycle(t *testing.T) {
	devices := &fakeDevices{}
	var recorders []*fakeRecorder
	var mixers []*fakeMixer
	notify := &fakeNotifier{}
	c := newTestController(devices, &recorders, &mixers, notify, []byte("opus-data"))

	sess, err := c.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, session.StateRecording, sess.State())
	require.Len(t, mixers, 1)
	assert.Equal(t, 2, mixers[0].sources, "mic and system audio feed the mixer")

	blob, err := c.Stop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("opus-data"), blob)
	assert.Equal(t, session.StateFinalizing, sess.State())

	// Every resource is released: tracks, mixer, recorder.
	assert.True(t, devices.mics[0].stopped())
	assert.True(t, devices.videos[0].stopped())
	assert.True(t, devices.sysAudio[0].stopped())
	assert.Equal(t, 1, mixers[0].closes)
	assert.False(t, recorders[0].active())
	assert.Zero(t, notify.count())
}

func TestStartSupersedesActiveSession(t *testing.T) {
	devices := &fakeDevices{}
	var recorders []*fakeRecorder
	var mixers []*fakeMixer
	c := newTestController(devices, &recorders, &mixers, &fakeNotifier{}, []byte("long-enough"))

	first, err := c.Start(context.Background())
	require.NoError(t, err)

	second, err := c.Start(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	// The first session's resources are fully released before the second
	// acquires anything: no two recorders are ever active at once.
	require.Len(t, recorders, 2)
	assert.False(t, recorders[0].active())
	assert.True(t, recorders[1].active())
	assert.True(t, devices.mics[0].stopped())
	assert.True(t, devices.videos[0].stopped())
	assert.Equal(t, 1, mixers[0].closes)
	assert.Equal(t, session.StateFailed, first.State())
	assert.Equal(t, session.StateRecording, second.State())
}

func TestStartPermissionDeniedLeavesNothingAcquired(t *testing.T) {
	devices := &fakeDevices{displayErr: fmt.Errorf("%w: screen share refused", media.ErrPermissionDenied)}
	var recorders []*fakeRecorder
	var mixers []*fakeMixer
	c := newTestController(devices, &recorders, &mixers, &fakeNotifier{}, nil)

	_, err := c.Start(context.Background())
	require.ErrorIs(t, err, media.ErrPermissionDenied)

	// The microphone was acquired before the display refusal and must be
	// stopped again.
	require.Len(t, devices.mics, 1)
	assert.True(t, devices.mics[0].stopped())
	assert.Empty(t, recorders)
	assert.Equal(t, session.StateIdle, c.Session().State())
}

func TestStartRecorderFailureReleasesStreams(t *testing.T) {
	devices := &fakeDevices{}
	var mixers []*fakeMixer
	notify := &fakeNotifier{}
	c := &Controller{
		Devices: devices,
		NewMixer: func() media.Mixer {
			m := &fakeMixer{}
			mixers = append(mixers, m)
			return m
		},
		NewRecorder: func() media.Recorder {
			return &fakeRecorder{startErr: fmt.Errorf("encoder unavailable")}
		},
		Notify: notify,
	}

	_, err := c.Start(context.Background())
	require.ErrorIs(t, err, media.ErrCapture)
	assert.True(t, devices.mics[0].stopped())
	assert.True(t, devices.videos[0].stopped())
	assert.True(t, devices.sysAudio[0].stopped())
	assert.Equal(t, 1, mixers[0].closes)
	assert.Equal(t, session.StateIdle, c.Session().State())
}

func TestStopWarnsOnSuspiciouslySmallAudio(t *testing.T) {
	devices := &fakeDevices{}
	var recorders []*fakeRecorder
	var mixers []*fakeMixer
	notify := &fakeNotifier{}
	c := newTestController(devices, &recorders, &mixers, notify, []byte("x"))
	c.MinAudioBytes = 1024

	_, err := c.Start(context.Background())
	require.NoError(t, err)
	_, err = c.Stop(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, notify.count())
	assert.Contains(t, notify.warnings[0], "suspiciously small")
}

func TestStartWithoutSystemAudioWarns(t *testing.T) {
	devices := &fakeDevices{noSysAudio: true}
	var recorders []*fakeRecorder
	var mixers []*fakeMixer
	notify := &fakeNotifier{}
	c := newTestController(devices, &recorders, &mixers, notify, []byte("long-enough"))

	_, err := c.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, mixers[0].sources, "only the microphone feeds the mixer")
	require.Equal(t, 1, notify.count())
	assert.Contains(t, notify.warnings[0], "system audio")
}

func TestStopRecorderFailureFailsSession(t *testing.T) {
	devices := &fakeDevices{}
	var mixers []*fakeMixer
	rec := &fakeRecorder{stopErr: fmt.Errorf("container truncated")}
	c := &Controller{
		Devices: devices,
		NewMixer: func() media.Mixer {
			m := &fakeMixer{}
			mixers = append(mixers, m)
			return m
		},
		NewRecorder: func() media.Recorder { return rec },
	}

	sess, err := c.Start(context.Background())
	require.NoError(t, err)
	_, err = c.Stop(context.Background())
	require.ErrorIs(t, err, media.ErrCapture)
	assert.Equal(t, session.StateFailed, sess.State())

	// Tracks were still released despite the finalization failure.
	assert.True(t, devices.mics[0].stopped())
	assert.True(t, devices.videos[0].stopped())
	assert.Equal(t, 1, mixers[0].closes)
}

func TestStopWithoutActiveRecording(t *testing.T) {
	c := &Controller{Devices: &fakeDevices{}}
	_, err := c.Stop(context.Background())
	assert.Error(t, err)
}
