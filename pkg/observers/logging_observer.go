// Package observers provides observers for monitoring the traffic simulation
package observers

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/anggasct/trafficsim/pkg/core"
)

// LogLevel represents the logging level
type LogLevel int

const (
	// LogError logs only errors
	LogError LogLevel = iota
	// LogWarning logs errors and warnings
	LogWarning
	// LogInfo logs errors, warnings, and info
	LogInfo
	// LogDebug logs errors, warnings, info, and debug
	LogDebug
)

// ParseLogLevel maps a level name to a LogLevel; unknown names mean LogInfo
func ParseLogLevel(name string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "error":
		return LogError
	case "warn", "warning":
		return LogWarning
	case "debug":
		return LogDebug
	default:
		return LogInfo
	}
}

// LoggingObserver logs simulation events through zerolog
type LoggingObserver struct {
	level  LogLevel
	prefix string
	mutex  sync.RWMutex
	logger zerolog.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger zerolog.Logger, level LogLevel, prefix string) *LoggingObserver {
	return &LoggingObserver{
		level:  level,
		prefix: prefix,
		logger: logger,
	}
}

// SetLogger replaces the underlying logger
func (o *LoggingObserver) SetLogger(logger zerolog.Logger) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.logger = logger
}

// event starts a log event at the specified level. It returns nil, which
// zerolog treats as a disabled event, when the level is filtered out.
func (o *LoggingObserver) event(level LogLevel) *zerolog.Event {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	if level > o.level {
		return nil
	}

	var e *zerolog.Event
	switch level {
	case LogError:
		e = o.logger.Error()
	case LogWarning:
		e = o.logger.Warn()
	case LogInfo:
		e = o.logger.Info()
	default:
		e = o.logger.Debug()
	}

	if o.prefix != "" {
		e = e.Str("component", o.prefix)
	}
	return e
}

// OnTransition logs clock transitions
func (o *LoggingObserver) OnTransition(from core.ClockState, to core.ClockState, command string) {
	o.event(LogInfo).
		Str("from", string(from)).
		Str("to", string(to)).
		Str("command", command).
		Msg("clock transition")
}

// OnTick logs a completed tick
func (o *LoggingObserver) OnTick(snapshot core.Snapshot, elapsed time.Duration) {
	o.event(LogDebug).
		Uint64("tick", snapshot.Tick).
		Int("runtime", snapshot.Config.Runtime).
		Int("alerts", len(snapshot.Alerts)).
		Dur("elapsed", elapsed).
		Msg("tick")
}

// OnAlert logs an emitted alert
func (o *LoggingObserver) OnAlert(alert core.Alert) {
	o.event(LogWarning).
		Str("alert", alert.ID).
		Str("kind", string(alert.Kind)).
		Str("severity", string(alert.Severity)).
		Str("intersection", alert.IntersectionID).
		Msg(alert.Message)
}

// OnConfigChanged logs a configuration change
func (o *LoggingObserver) OnConfigChanged(previous core.Config, current core.Config) {
	o.event(LogInfo).
		Str("scenario", string(current.Scenario)).
		Int("vehicle_density", current.VehicleDensity).
		Int("speed_factor", current.SpeedFactor).
		Bool("auto_mode", current.AutoMode).
		Bool("emergency_priority", current.EmergencyPriority).
		Msg("configuration changed")
}

// OnSignalOverride logs a manual signal change
func (o *LoggingObserver) OnSignalOverride(intersectionID string, phase core.Phase) {
	o.event(LogInfo).
		Str("intersection", intersectionID).
		Str("phase", string(phase)).
		Msg("manual signal override")
}

// OnCommandRejected logs a command that was not applied
func (o *LoggingObserver) OnCommandRejected(command string, reason string) {
	o.event(LogWarning).
		Str("command", command).
		Str("reason", reason).
		Msg("command rejected")
}

// OnError logs errors
func (o *LoggingObserver) OnError(err error) {
	o.event(LogError).Err(err).Msg("simulation error")
}
