// Package trafficsim provides a tick-driven urban traffic simulation engine.
// Intersections are perturbed each tick under a demand scenario, classified
// into congestion tiers, given a signal phase by policy, and rolled up into a
// bounded alert buffer and a rolling chart series.
package trafficsim

import (
	"github.com/anggasct/trafficsim/pkg/core"
	"github.com/anggasct/trafficsim/pkg/network"
	"github.com/anggasct/trafficsim/pkg/observers"
	"github.com/anggasct/trafficsim/pkg/scheduler"
)

// Core types
type (
	// Intersection is a single signalised junction
	Intersection = core.Intersection

	// Config is the simulation configuration
	Config = core.Config

	// ConfigChange is a partial configuration update
	ConfigChange = core.ConfigChange

	// Alert is a threshold crossing reported to operators
	Alert = core.Alert

	// Sample is one point of the rolling chart
	Sample = core.Sample

	// Snapshot is a consistent copy of the engine state
	Snapshot = core.Snapshot

	// Phase is a signal colour
	Phase = core.Phase

	// Tier is a congestion classification
	Tier = core.Tier

	// Scenario is a traffic-demand profile
	Scenario = core.Scenario

	// ClockState is the state of the simulation clock
	ClockState = core.ClockState

	// Random is the randomness source of the engine
	Random = core.Random

	// Summary rolls intersections up for a dashboard
	Summary = network.Summary

	// Scheduler decides when ticks fire
	Scheduler = scheduler.Scheduler
)

// Re-export observer types
type (
	// LoggingObserver logs simulation events
	LoggingObserver = observers.LoggingObserver

	// LogLevel represents the logging level
	LogLevel = observers.LogLevel

	// ValidationObserver checks ticks against the simulation invariants
	ValidationObserver = observers.ValidationObserver

	// MetricsObserver collects metrics about simulation execution
	MetricsObserver = observers.MetricsObserver

	// AlertPublisher forwards alerts to a message broker
	AlertPublisher = observers.AlertPublisher
)

// Re-export constants
const (
	PhaseRed    = core.PhaseRed
	PhaseYellow = core.PhaseYellow
	PhaseGreen  = core.PhaseGreen

	TierNormal   = core.TierNormal
	TierModerate = core.TierModerate
	TierHeavy    = core.TierHeavy

	ScenarioMorning   = core.ScenarioMorning
	ScenarioAfternoon = core.ScenarioAfternoon
	ScenarioEvening   = core.ScenarioEvening
	ScenarioAccident  = core.ScenarioAccident

	ClockStopped = core.ClockStopped
	ClockRunning = core.ClockRunning

	// LogError logs only errors
	LogError = observers.LogError

	// LogWarning logs errors and warnings
	LogWarning = observers.LogWarning

	// LogInfo logs errors, warnings, and info
	LogInfo = observers.LogInfo

	// LogDebug logs errors, warnings, info, and debug
	LogDebug = observers.LogDebug
)

// Re-export constructors
var (
	// DefaultConfig returns the configuration of a fresh session
	DefaultConfig = core.DefaultConfig

	// SeedIntersections returns the four intersections a session starts with
	SeedIntersections = core.SeedIntersections

	// NewTicker creates a wall-clock scheduler
	NewTicker = scheduler.NewTicker

	// NewManualScheduler creates a scheduler that only fires when told to
	NewManualScheduler = scheduler.NewManual
)

// Re-export observer constructors
var (
	// NewLoggingObserver creates a new logging observer with default settings
	NewLoggingObserver = observers.NewDefaultLoggingObserver

	// NewCustomLoggingObserver creates a new logging observer with a given logger
	NewCustomLoggingObserver = observers.NewLoggingObserver

	// NewValidationObserver creates a new validation observer
	NewValidationObserver = observers.NewValidationObserver

	// NewMetricsObserver creates a new metrics observer
	NewMetricsObserver = observers.NewMetricsObserver

	// NewAlertPublisher creates a new alert publisher
	NewAlertPublisher = observers.NewAlertPublisher
)
