package main

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/anggasct/trafficsim"
	"github.com/anggasct/trafficsim/internal/api"
	"github.com/anggasct/trafficsim/internal/config"
	"github.com/anggasct/trafficsim/internal/mq"
	"github.com/anggasct/trafficsim/pkg/observers"
)

func main() {
	cfg := config.Load()
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	opts := []trafficsim.Option{
		trafficsim.WithRandom(rand.New(rand.NewSource(seed))),
		trafficsim.WithInterval(cfg.TickInterval),
		trafficsim.WithObserver(observers.NewLoggingObserver(logger, observers.ParseLogLevel(cfg.LogLevel), "engine")),
	}
	if cfg.RuntimeMode == config.RuntimeElapsed {
		opts = append(opts, trafficsim.WithTrueElapsedRuntime())
	}
	if cfg.SeedSeries {
		opts = append(opts, trafficsim.WithSeededSeries())
	}

	engine := trafficsim.New(opts...)
	defer engine.Close()

	hub := api.NewHub(logger)
	engine.AddObserver(hub)
	go hub.Run(ctx)

	if cfg.KafkaEnabled() {
		producer := mq.NewProducer(mq.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopicAlerts))
		defer producer.Close()

		publisher := observers.NewAlertPublisher(producer, logger, cfg.AlertPublishQueue)
		engine.AddObserver(publisher)
		go publisher.Run(ctx)
		logger.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopicAlerts).Msg("publishing alerts")
	}

	if cfg.AutoStart {
		if result := engine.Start(); !result.Success() {
			logger.Warn().Str("reason", result.RejectionReason).Msg("auto start rejected")
		}
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewServer(engine, hub, logger, cfg.RequestTimeout).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info().
		Str("addr", cfg.HTTPAddr).
		Str("engine", engine.ID()).
		Int64("seed", seed).
		Dur("tick_interval", cfg.TickInterval).
		Str("runtime_mode", cfg.RuntimeMode).
		Msg("trafficd listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("trafficd server error")
	}
	logger.Info().Msg("trafficd stopped")
}

func newLogger(cfg config.Config) zerolog.Logger {
	var out io.Writer = os.Stderr
	if cfg.LogFormat != "json" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	return zerolog.New(out).Level(level).With().Timestamp().Str("service", "trafficd").Logger()
}
