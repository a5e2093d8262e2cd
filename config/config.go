package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// DefaultBackendURL points at a locally running analysis backend.
const DefaultBackendURL = "http://localhost:8000"

// DefaultFolderTemplate is the default meeting folder name template.
// Available placeholders: {{.Year}}, {{.Month}}, {{.Day}}, {{.Hour}}, {{.Minute}}, {{.Second}}, {{.Name}}
const DefaultFolderTemplate = "{{.Year}}-{{.Month}}-{{.Day}}_{{.Hour}}-{{.Minute}}-{{.Second}}{{if .Name}}_{{.Name}}{{end}}"

// DefaultFramePeriod is how often a display frame is sampled for deepfake
// analysis during a live recording.
const DefaultFramePeriod = 10 * time.Second

// DefaultMinAudioBytes is the recording size below which the user is warned
// that system audio was probably not captured.
const DefaultMinAudioBytes = 200 << 10

type Config struct {
	BackendURL     string
	MeetingsDir    string
	FolderTemplate string // Go template for meeting folder names
	FramePeriod    time.Duration
	MinAudioBytes  int

	MicDevice     string
	MonitorDevice string
	DisplayDevice string
	AudioFormat   string
	VideoFormat   string

	LogLevel  string
	LogFormat string
}

type fileConfig struct {
	BackendURL     string `toml:"backend_url"`
	MeetingsDir    string `toml:"meetings_dir"`
	FolderTemplate string `toml:"folder_template"`
	FrameInterval  int    `toml:"frame_interval_seconds"`
	MinAudioBytes  int    `toml:"min_audio_bytes"`
	MicDevice      string `toml:"mic_device"`
	MonitorDevice  string `toml:"monitor_device"`
	DisplayDevice  string `toml:"display_device"`
	AudioFormat    string `toml:"audio_format"`
	VideoFormat    string `toml:"video_format"`
	LogLevel       string `toml:"log_level"`
	LogFormat      string `toml:"log_format"`
}

func Load() (*Config, error) {
	// A local .env is optional; system env still applies without one.
	_ = godotenv.Load()

	cfg := &Config{
		BackendURL:     DefaultBackendURL,
		MeetingsDir:    defaultMeetingsDir(),
		FolderTemplate: DefaultFolderTemplate,
		FramePeriod:    DefaultFramePeriod,
		MinAudioBytes:  DefaultMinAudioBytes,
		MicDevice:      "default",
		DisplayDevice:  ":0.0",
		AudioFormat:    "pulse",
		VideoFormat:    "x11grab",
		LogLevel:       "info",
		LogFormat:      "text",
	}

	if configPath := configFilePath(); configPath != "" {
		var fc fileConfig
		if _, err := toml.DecodeFile(configPath, &fc); err == nil {
			applyFile(cfg, &fc)
		}
	}

	applyEnvOverrides(cfg)

	// Ensure directories exist
	if err := os.MkdirAll(cfg.MeetingsDir, 0o755); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyFile(cfg *Config, fc *fileConfig) {
	if fc.BackendURL != "" {
		cfg.BackendURL = fc.BackendURL
	}
	if fc.MeetingsDir != "" {
		cfg.MeetingsDir = expandTilde(fc.MeetingsDir)
	}
	if fc.FolderTemplate != "" {
		cfg.FolderTemplate = fc.FolderTemplate
	}
	if fc.FrameInterval > 0 {
		cfg.FramePeriod = time.Duration(fc.FrameInterval) * time.Second
	}
	if fc.MinAudioBytes > 0 {
		cfg.MinAudioBytes = fc.MinAudioBytes
	}
	if fc.MicDevice != "" {
		cfg.MicDevice = fc.MicDevice
	}
	if fc.MonitorDevice != "" {
		cfg.MonitorDevice = fc.MonitorDevice
	}
	if fc.DisplayDevice != "" {
		cfg.DisplayDevice = fc.DisplayDevice
	}
	if fc.AudioFormat != "" {
		cfg.AudioFormat = fc.AudioFormat
	}
	if fc.VideoFormat != "" {
		cfg.VideoFormat = fc.VideoFormat
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.LogFormat != "" {
		cfg.LogFormat = fc.LogFormat
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MTAT_BACKEND_URL"); v != "" {
		cfg.BackendURL = v
	}
	if v := os.Getenv("MTAT_MEETINGS_DIR"); v != "" {
		cfg.MeetingsDir = expandTilde(v)
	}
	if v := os.Getenv("MTAT_FRAME_INTERVAL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.FramePeriod = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("MTAT_MIN_AUDIO_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MinAudioBytes = n
		}
	}
	if v := os.Getenv("MTAT_MIC_DEVICE"); v != "" {
		cfg.MicDevice = v
	}
	if v := os.Getenv("MTAT_MONITOR_DEVICE"); v != "" {
		cfg.MonitorDevice = v
	}
	if v := os.Getenv("MTAT_DISPLAY_DEVICE"); v != "" {
		cfg.DisplayDevice = v
	}
	if v := os.Getenv("MTAT_AUDIO_FORMAT"); v != "" {
		cfg.AudioFormat = v
	}
	if v := os.Getenv("MTAT_VIDEO_FORMAT"); v != "" {
		cfg.VideoFormat = v
	}
	if v := os.Getenv("MTAT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("MTAT_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
}

func configFilePath() string {
	var configDir string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		configDir = filepath.Join(xdg, "mtat")
	} else if home, err := os.UserHomeDir(); err == nil {
		configDir = filepath.Join(home, ".config", "mtat")
	} else {
		return ""
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

func defaultMeetingsDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, "meetings")
	}
	return filepath.Join(".", "meetings")
}

func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
