package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/anggasct/trafficsim/internal/config"
	"github.com/anggasct/trafficsim/internal/mq"
	"github.com/anggasct/trafficsim/pkg/observers"
)

func main() {
	cfg := config.Load()
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Str("service", "alert-tail").Logger()

	if !cfg.KafkaEnabled() {
		logger.Fatal().Msg("KAFKA_BROKERS is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reader := mq.NewReader(cfg.KafkaBrokers, cfg.KafkaTopicAlerts, cfg.KafkaGroupID)
	defer reader.Close()

	logger.Info().Str("topic", cfg.KafkaTopicAlerts).Str("group", cfg.KafkaGroupID).Msg("consuming alerts")
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				logger.Info().Msg("alert-tail shutting down")
				return
			}
			var kafkaErr kafka.Error
			if errors.As(err, &kafkaErr) && kafkaErr.Temporary() {
				logger.Warn().Err(err).Msg("temporary read error")
			} else {
				logger.Error().Err(err).Msg("read error")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		alert, err := mq.ParseMessageJSON[observers.AlertMessage](msg)
		if err != nil {
			logger.Error().Err(err).Msg("decode alert")
			continue
		}

		logger.Info().
			Str("alert", alert.ID).
			Str("kind", string(alert.Kind)).
			Str("severity", string(alert.Severity)).
			Str("intersection", alert.IntersectionID).
			Str("scenario", string(alert.Scenario)).
			Time("raised_at", alert.Timestamp).
			Msg(alert.Message)
	}
}
