package observers

import (
	"fmt"
	"sync"
	"time"

	"github.com/anggasct/trafficsim/pkg/alerts"
	"github.com/anggasct/trafficsim/pkg/core"
	"github.com/anggasct/trafficsim/pkg/network"
	"github.com/anggasct/trafficsim/pkg/policy"
	"github.com/anggasct/trafficsim/pkg/series"
)

// ValidationObserver checks every tick snapshot and clock transition against
// the simulation's invariants and records violations
type ValidationObserver struct {
	alertCapacity      int
	seriesCapacity     int
	visitedStates      map[core.ClockState]bool
	allowedTransitions map[core.ClockState]map[core.ClockState]bool
	lastTick           uint64
	violations         []string
	mutex              sync.RWMutex
}

// NewValidationObserver creates a new validation observer using the default
// buffer capacities
func NewValidationObserver() *ValidationObserver {
	return &ValidationObserver{
		alertCapacity:      alerts.DefaultCapacity,
		seriesCapacity:     series.DefaultCapacity,
		visitedStates:      make(map[core.ClockState]bool),
		allowedTransitions: make(map[core.ClockState]map[core.ClockState]bool),
		violations:         make([]string, 0),
	}
}

// SetCapacities overrides the expected alert buffer and series window sizes
func (o *ValidationObserver) SetCapacities(alertCapacity, seriesCapacity int) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.alertCapacity = alertCapacity
	o.seriesCapacity = seriesCapacity
}

// AddAllowedTransition adds an allowed transition
func (o *ValidationObserver) AddAllowedTransition(from, to core.ClockState) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if _, exists := o.allowedTransitions[from]; !exists {
		o.allowedTransitions[from] = make(map[core.ClockState]bool)
	}

	o.allowedTransitions[from][to] = true
}

// addViolation adds a violation; callers hold the lock
func (o *ValidationObserver) addViolation(format string, args ...interface{}) {
	o.violations = append(o.violations, fmt.Sprintf(format, args...))
}

// OnTransition validates transitions
func (o *ValidationObserver) OnTransition(from core.ClockState, to core.ClockState, command string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.visitedStates[to] = true

	if allowed, exists := o.allowedTransitions[from]; exists {
		if !allowed[to] {
			o.addViolation("Invalid transition from '%s' to '%s' on command '%s'", from, to, command)
		}
	}
}

// OnTick validates the post-tick snapshot
func (o *ValidationObserver) OnTick(snapshot core.Snapshot, elapsed time.Duration) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if snapshot.Tick <= o.lastTick && o.lastTick != 0 {
		o.addViolation("Tick counter went from %d to %d", o.lastTick, snapshot.Tick)
	}
	o.lastTick = snapshot.Tick

	for _, in := range snapshot.Intersections {
		if in.VehicleCount < 0 {
			o.addViolation("Intersection '%s' has negative vehicle count %d", in.ID, in.VehicleCount)
		}
		if in.AverageSpeed < network.MinSpeed {
			o.addViolation("Intersection '%s' has speed %d below %d", in.ID, in.AverageSpeed, network.MinSpeed)
		}
		if tier := policy.Classify(in.VehicleCount); tier != in.Congestion {
			o.addViolation("Intersection '%s' is '%s' with %d vehicles, expected '%s'", in.ID, in.Congestion, in.VehicleCount, tier)
		}
		if !in.Signal.Valid() {
			o.addViolation("Intersection '%s' has invalid phase '%s'", in.ID, in.Signal)
		}
	}

	if len(snapshot.Alerts) > o.alertCapacity {
		o.addViolation("Alert buffer holds %d entries, capacity %d", len(snapshot.Alerts), o.alertCapacity)
	}
	if len(snapshot.Series) > o.seriesCapacity {
		o.addViolation("Series window holds %d entries, capacity %d", len(snapshot.Series), o.seriesCapacity)
	}

	o.validateConfig(snapshot.Config)
}

func (o *ValidationObserver) validateConfig(cfg core.Config) {
	if cfg.VehicleDensity < 0 || cfg.VehicleDensity > 100 {
		o.addViolation("Vehicle density %d out of range", cfg.VehicleDensity)
	}
	if cfg.SpeedFactor < 0 || cfg.SpeedFactor > 100 {
		o.addViolation("Speed factor %d out of range", cfg.SpeedFactor)
	}
	if cfg.Runtime < 0 {
		o.addViolation("Runtime %d is negative", cfg.Runtime)
	}
}

// OnAlert has nothing to validate beyond the snapshot checks
func (o *ValidationObserver) OnAlert(alert core.Alert) {}

// OnConfigChanged validates the applied configuration
func (o *ValidationObserver) OnConfigChanged(previous core.Config, current core.Config) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.validateConfig(current)
}

// OnSignalOverride validates the requested phase
func (o *ValidationObserver) OnSignalOverride(intersectionID string, phase core.Phase) {
	if phase.Valid() {
		return
	}
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.addViolation("Override of '%s' applied invalid phase '%s'", intersectionID, phase)
}

// OnCommandRejected is not a violation; rejected commands are no-ops
func (o *ValidationObserver) OnCommandRejected(command string, reason string) {}

// OnError validates error handling
func (o *ValidationObserver) OnError(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.addViolation("Error occurred: %v", err)
}

// GetViolations returns all validation violations
func (o *ValidationObserver) GetViolations() []string {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make([]string, len(o.violations))
	copy(result, o.violations)
	return result
}

// Visited reports whether the clock has entered state
func (o *ValidationObserver) Visited(state core.ClockState) bool {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.visitedStates[state]
}

// HasViolations returns whether any violations occurred
func (o *ValidationObserver) HasViolations() bool {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.violations) > 0
}

// Reset resets the validation state
func (o *ValidationObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.visitedStates = make(map[core.ClockState]bool)
	o.violations = make([]string, 0)
	o.lastTick = 0
}
