package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/edgevision/inferpipe/pkg/accel"
	"github.com/edgevision/inferpipe/pkg/config"
	"github.com/edgevision/inferpipe/pkg/frame"
	"github.com/edgevision/inferpipe/pkg/history"
	"github.com/edgevision/inferpipe/pkg/logger"
	"github.com/edgevision/inferpipe/pkg/monitoring"
	osx "github.com/edgevision/inferpipe/pkg/os"
	"github.com/edgevision/inferpipe/pkg/pipeline"
	"github.com/edgevision/inferpipe/pkg/service"
	"github.com/edgevision/inferpipe/pkg/storage"
	"github.com/edgevision/inferpipe/pkg/stream"
	"github.com/edgevision/inferpipe/pkg/weights"
)

var Version = "?"

const shutdownTimeout = 10 * time.Second

func main() {
	conf, err := config.NewConfig()
	if err != nil {
		logger.Default().Fatal().Err(err).Msg("config load failed")
	}
	if err := conf.ParseFlags(); err != nil {
		logger.Default().Fatal().Err(err).Msg("config load failed")
	}

	log := logger.NewConsole(conf.Environment.Debug, "pipe", conf.Environment.NoColor)
	log.Info().Msgf("version %s", Version)
	if log.GetLevel() < logger.InfoLevel {
		log.Debug().Msgf("config: %+v", conf)
	}

	lock, err := osx.NewFileLock(filepath.Join(conf.Environment.DataDir, "inferpipe.lock"))
	if err != nil {
		log.Fatal().Err(err).Msg("capture lock init failed")
	}
	if err := lock.Lock(); err != nil {
		log.Fatal().Err(err).Msg("another daemon holds the capture device")
	}
	defer func() { _ = lock.Unlock() }()

	if conf.Weights.URL != "" {
		wm, err := weights.NewManager(conf.Weights.Dir, log)
		if err != nil {
			log.Fatal().Err(err).Msg("weights dir init failed")
		}
		wm.Fetch(conf.Weights.URL)
		if conf.Weights.Watch {
			if err := wm.Watch(func(path string) {
				log.Info().Str("file", path).Msg("Weights updated, will apply on next session")
			}); err != nil {
				log.Error().Err(err).Msg("weights watch failed")
			}
			defer wm.Close()
		}
	}

	src, closeSrc, err := newSource(conf.Camera)
	if err != nil {
		log.Fatal().Err(err).Msg("camera init failed")
	}
	defer closeSrc()

	done := accel.NewCompletion()
	engine, err := newEngine(conf.Accelerator, done)
	if err != nil {
		log.Fatal().Err(err).Msg("accelerator init failed")
	}
	sess := accel.NewSession(engine, done, len(conf.Accelerator.Classes))

	pipe, err := pipeline.New(conf, src, sess, os.Stdout, log)
	if err != nil {
		log.Fatal().Err(err).Msg("pipeline init failed")
	}
	log.Info().Str("run", pipe.RunID()).Msg("Pipeline ready")

	ctx := context.Background()

	if conf.History.Path != "" {
		hist, err := history.Open(conf.History.Path)
		if err != nil {
			log.Fatal().Err(err).Msg("history open failed")
		}
		defer hist.Close()
		pipe.WithHistory(hist)
	}

	if conf.Archive.Enabled {
		client, err := storage.NewClient(ctx, conf.Archive.Bucket, log)
		if err != nil {
			log.Error().Err(err).Msg("cloud archive unavailable, keeping local copies only")
		} else {
			defer client.Close()
			pipe.WithArchive(client)
		}
	}

	services := service.Group{}
	if conf.Monitoring.Port != 0 {
		m, err := monitoring.New(conf.Monitoring, log)
		if err != nil {
			log.Fatal().Err(err).Msg("monitoring init failed")
		}
		services.Add(m)
	}
	if conf.Stream.Port != 0 {
		s, err := stream.NewServer(conf.Stream, log)
		if err != nil {
			log.Fatal().Err(err).Msg("stream server init failed")
		}
		pipe.WithPublisher(s)
		services.Add(s)
	}
	if conf.LiveFeed.Enabled {
		services.Add(pipe)
	}
	services.Start()

	if conf.LiveFeed.Enabled {
		<-osx.ExpectTermination()
	} else if _, err := pipe.CaptureOnce(ctx); err != nil {
		log.Error().Err(err).Msg("capture failed")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := services.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("service shutdown errors")
	}
}

// newEngine builds the inference engine for the configured driver.
func newEngine(conf config.Accelerator, done *accel.Completion) (accel.Engine, error) {
	switch conf.Driver {
	case "sim":
		return accel.NewSimEngine(len(conf.Classes), done), nil
	default:
		return nil, fmt.Errorf("unknown accelerator driver %q", conf.Driver)
	}
}

// newSource builds the line source for the configured camera driver.
func newSource(conf config.Camera) (frame.LineSource, func(), error) {
	switch conf.Driver {
	case "serial":
		src, err := frame.OpenSerial(conf.Device, conf.Baud)
		if err != nil {
			return nil, nil, err
		}
		return src, func() { _ = src.Close() }, nil
	default:
		return &frame.SynthSource{W: conf.Width, H: conf.Height}, func() {}, nil
	}
}
