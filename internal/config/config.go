package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Runtime modes
const (
	RuntimeTicks   = "ticks"
	RuntimeElapsed = "elapsed"
)

type Config struct {
	HTTPAddr          string
	TickInterval      time.Duration
	RuntimeMode       string
	Seed              int64
	SeedSeries        bool
	AutoStart         bool
	KafkaBrokers      []string
	KafkaTopicAlerts  string
	KafkaGroupID      string
	LogLevel          string
	LogFormat         string
	ShutdownTimeout   time.Duration
	RequestTimeout    time.Duration
	AlertPublishQueue int
}

func Load() Config {
	mode := strings.ToLower(getEnv("RUNTIME_MODE", RuntimeTicks))
	if mode != RuntimeElapsed {
		mode = RuntimeTicks
	}

	return Config{
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		TickInterval:      getEnvDuration("TICK_INTERVAL", 3*time.Second),
		RuntimeMode:       mode,
		Seed:              int64(getEnvInt("SEED", 0)),
		SeedSeries:        getEnvBool("SEED_SERIES", true),
		AutoStart:         getEnvBool("AUTO_START", false),
		KafkaBrokers:      splitCSV(getEnv("KAFKA_BROKERS", "")),
		KafkaTopicAlerts:  getEnv("KAFKA_TOPIC_ALERTS", "traffic.alerts"),
		KafkaGroupID:      getEnv("KAFKA_GROUP_ID", "trafficsim-alert-tail"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         strings.ToLower(getEnv("LOG_FORMAT", "console")),
		ShutdownTimeout:   getEnvDuration("SHUTDOWN_TIMEOUT", 8*time.Second),
		RequestTimeout:    getEnvDuration("REQUEST_TIMEOUT", 15*time.Second),
		AlertPublishQueue: getEnvInt("ALERT_PUBLISH_QUEUE", 64),
	}
}

// KafkaEnabled reports whether any broker is configured
func (c Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func splitCSV(csv string) []string {
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		v := strings.TrimSpace(p)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// getEnvDuration accepts Go durations ("500ms") or plain seconds ("3")
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
		return parsed
	}
	if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}
