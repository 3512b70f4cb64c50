package trafficsim

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/anggasct/trafficsim/pkg/core"
	"github.com/anggasct/trafficsim/pkg/scheduler"
)

// TestObserver is a mock observer for testing that captures all observer events
type TestObserver struct {
	mutex          sync.RWMutex
	Transitions    []TransitionEvent
	Ticks          []TickEvent
	Alerts         []core.Alert
	ConfigChanges  []ConfigChangeEvent
	Overrides      []SignalOverride
	CommandRejects []RejectEvent
	Errors         []error
}

type TransitionEvent struct {
	From    core.ClockState
	To      core.ClockState
	Command string
}

type TickEvent struct {
	Snapshot core.Snapshot
	Elapsed  time.Duration
}

type ConfigChangeEvent struct {
	Previous core.Config
	Current  core.Config
}

type RejectEvent struct {
	Command string
	Reason  string
}

// NewTestObserver creates a new test observer
func NewTestObserver() *TestObserver {
	return &TestObserver{}
}

func (o *TestObserver) OnTransition(from core.ClockState, to core.ClockState, command string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Transitions = append(o.Transitions, TransitionEvent{From: from, To: to, Command: command})
}

func (o *TestObserver) OnTick(snapshot core.Snapshot, elapsed time.Duration) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Ticks = append(o.Ticks, TickEvent{Snapshot: snapshot, Elapsed: elapsed})
}

func (o *TestObserver) OnAlert(alert core.Alert) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Alerts = append(o.Alerts, alert)
}

func (o *TestObserver) OnConfigChanged(previous core.Config, current core.Config) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.ConfigChanges = append(o.ConfigChanges, ConfigChangeEvent{Previous: previous, Current: current})
}

func (o *TestObserver) OnSignalOverride(intersectionID string, phase core.Phase) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Overrides = append(o.Overrides, SignalOverride{IntersectionID: intersectionID, Phase: phase})
}

func (o *TestObserver) OnCommandRejected(command string, reason string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.CommandRejects = append(o.CommandRejects, RejectEvent{Command: command, Reason: reason})
}

func (o *TestObserver) OnError(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Errors = append(o.Errors, err)
}

// Reset clears all captured events
func (o *TestObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Transitions = nil
	o.Ticks = nil
	o.Alerts = nil
	o.ConfigChanges = nil
	o.Overrides = nil
	o.CommandRejects = nil
	o.Errors = nil
}

func (o *TestObserver) TransitionCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.Transitions)
}

func (o *TestObserver) TickCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.Ticks)
}

func (o *TestObserver) LastTransition() *TransitionEvent {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	if len(o.Transitions) == 0 {
		return nil
	}
	return &o.Transitions[len(o.Transitions)-1]
}

// panickingObserver blows up on every tick
type panickingObserver struct {
	BaseObserver
}

func (p *panickingObserver) OnTick(snapshot core.Snapshot, elapsed time.Duration) {
	panic("boom")
}

var testEpoch = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

// steppingClock advances one second on every call
func steppingClock() func() time.Time {
	var mu sync.Mutex
	now := testEpoch
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

// CreateTestEngine builds a seeded engine driven by a manual scheduler
func CreateTestEngine(seed int64, opts ...Option) (*Engine, *scheduler.Manual) {
	manual := scheduler.NewManual(3 * time.Second)
	base := []Option{
		WithRandom(rand.New(rand.NewSource(seed))),
		WithClock(steppingClock()),
		WithScheduler(manual),
	}
	return New(append(base, opts...)...), manual
}

func AssertClockState(t *testing.T, engine *Engine, expected core.ClockState) {
	t.Helper()
	if got := engine.State(); got != expected {
		t.Errorf("Expected clock state '%s', got '%s'", expected, got)
	}
}

func AssertApplied(t *testing.T, result *CommandResult, shouldApply bool) {
	t.Helper()
	if result.Applied != shouldApply {
		t.Errorf("Expected applied=%v, got %v (reason: %s)", shouldApply, result.Applied, result.RejectionReason)
	}
	if shouldApply && result.Error != nil {
		t.Errorf("Expected no error, got: %v", result.Error)
	}
	if !shouldApply && result.RejectionReason == "" {
		t.Error("Expected a rejection reason")
	}
}

func AssertErrorCode(t *testing.T, err error, expected ErrorCode) {
	t.Helper()
	if got := GetErrorCode(err); got != expected {
		t.Errorf("Expected error code %s, got %s", expected, got)
	}
}

func AssertInvariants(t *testing.T, snapshot core.Snapshot) {
	t.Helper()
	for _, in := range snapshot.Intersections {
		if in.VehicleCount < 0 {
			t.Fatalf("intersection %s has negative vehicle count %d", in.ID, in.VehicleCount)
		}
		if in.AverageSpeed < 5 {
			t.Fatalf("intersection %s has speed %d below floor", in.ID, in.AverageSpeed)
		}
	}
	if len(snapshot.Alerts) > 5 {
		t.Fatalf("alert buffer holds %d entries", len(snapshot.Alerts))
	}
	if len(snapshot.Series) > 12 {
		t.Fatalf("series window holds %d entries", len(snapshot.Series))
	}
}

func phasesOf(intersections []core.Intersection) map[string]core.Phase {
	out := make(map[string]core.Phase, len(intersections))
	for _, in := range intersections {
		out[in.ID] = in.Signal
	}
	return out
}

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }

func scenarioPtr(s core.Scenario) *core.Scenario { return &s }
