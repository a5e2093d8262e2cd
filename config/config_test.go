package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultBackendURL, cfg.BackendURL)
	assert.Equal(t, DefaultFolderTemplate, cfg.FolderTemplate)
	assert.Equal(t, 10*time.Second, cfg.FramePeriod)
	assert.Equal(t, 200<<10, cfg.MinAudioBytes)
	assert.Equal(t, "default", cfg.MicDevice)
	assert.DirExists(t, cfg.MeetingsDir)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	meetings := filepath.Join(t.TempDir(), "mtgs")
	t.Setenv("MTAT_BACKEND_URL", "http://analysis.internal:9000")
	t.Setenv("MTAT_MEETINGS_DIR", meetings)
	t.Setenv("MTAT_FRAME_INTERVAL_SECONDS", "3")
	t.Setenv("MTAT_MIN_AUDIO_BYTES", "4096")
	t.Setenv("MTAT_AUDIO_FORMAT", "alsa")
	t.Setenv("MTAT_VIDEO_FORMAT", "kmsgrab")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://analysis.internal:9000", cfg.BackendURL)
	assert.Equal(t, meetings, cfg.MeetingsDir)
	assert.Equal(t, 3*time.Second, cfg.FramePeriod)
	assert.Equal(t, 4096, cfg.MinAudioBytes)
	assert.Equal(t, "alsa", cfg.AudioFormat)
	assert.Equal(t, "kmsgrab", cfg.VideoFormat)
	assert.DirExists(t, meetings)
}

func TestExpandTilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	assert.Equal(t, filepath.Join(home, "m"), expandTilde("~/m"))
	assert.Equal(t, "/abs/m", expandTilde("/abs/m"))
}
