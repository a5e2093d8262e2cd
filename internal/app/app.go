package app

import (
	"log/slog"

	"github.com/Faust217/OJL-MTAT/config"
	"github.com/Faust217/OJL-MTAT/internal/backend"
	"github.com/Faust217/OJL-MTAT/internal/domain/session/usecases"
	"github.com/Faust217/OJL-MTAT/internal/logging"
	"github.com/Faust217/OJL-MTAT/internal/media"
)

type App struct {
	Config   *config.Config
	Log      *slog.Logger
	Backend  *backend.Client
	Devices  *media.FFmpegDevices
	Record   *usecases.Controller
	Sampler  *usecases.Sampler
	Analysis *usecases.Aggregator
	Export   *usecases.Exporter
	Upload   *usecases.Upload
}

func New(cfg *config.Config) (*App, error) {
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	client := backend.New(cfg.BackendURL)

	devices := &media.FFmpegDevices{
		Mic:          cfg.MicDevice,
		MonitorAudio: cfg.MonitorDevice,
		Display:      cfg.DisplayDevice,
		AudioFormat:  cfg.AudioFormat,
		VideoFormat:  cfg.VideoFormat,
		Log:          log,
	}

	sampler := &usecases.Sampler{
		Classifier: client,
		Period:     cfg.FramePeriod,
		Log:        log,
	}

	record := &usecases.Controller{
		Devices:       devices,
		NewMixer:      func() media.Mixer { return media.NewFFmpegMixer() },
		NewRecorder:   func() media.Recorder { return media.NewFFmpegRecorder(log) },
		Sampler:       sampler,
		MinAudioBytes: cfg.MinAudioBytes,
		Log:           log,
	}

	return &App{
		Config:   cfg,
		Log:      log,
		Backend:  client,
		Devices:  devices,
		Record:   record,
		Sampler:  sampler,
		Analysis: &usecases.Aggregator{Backend: client},
		Export:   &usecases.Exporter{Backend: client, Log: log},
		Upload:   &usecases.Upload{Backend: client},
	}, nil
}
