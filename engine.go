package trafficsim

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anggasct/trafficsim/pkg/alerts"
	"github.com/anggasct/trafficsim/pkg/core"
	"github.com/anggasct/trafficsim/pkg/network"
	"github.com/anggasct/trafficsim/pkg/scheduler"
	"github.com/anggasct/trafficsim/pkg/series"
)

// Engine owns the simulation configuration, the intersection set, the alert
// buffer and the chart window. All mutation goes through its methods; readers
// get copies.
type Engine struct {
	id string

	tickMutex     sync.Mutex
	mutex         sync.RWMutex
	clock         *Clock
	session       uint64
	config        core.Config
	intersections []core.Intersection
	alerts        *alerts.Buffer
	series        *series.Window
	ticks         uint64

	rng         core.Random
	generator   *alerts.Generator
	now         func() time.Time
	scheduler   scheduler.Scheduler
	runtimeStep int
	observers   *ObserverManager
}

// New creates an engine with the seed intersections and default configuration
func New(opts ...Option) *Engine {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if o.scheduler == nil {
		o.scheduler = scheduler.NewTicker(o.interval)
	}

	e := &Engine{
		id:          uuid.NewString(),
		clock:       newClock(),
		config:      core.DefaultConfig(),
		alerts:      alerts.NewBuffer(o.alertCapacity),
		series:      series.NewWindow(o.seriesCapacity),
		rng:         o.rng,
		generator:   alerts.NewGenerator(o.rng),
		now:         o.now,
		scheduler:   o.scheduler,
		runtimeStep: 1,
		observers:   NewObserverManager(),
	}

	if o.trueElapsed {
		e.runtimeStep = max(1, int(e.scheduler.Interval()/time.Second))
	}

	if o.intersections != nil {
		e.intersections = network.Clone(o.intersections)
	} else {
		e.intersections = core.SeedIntersections(e.now())
	}

	if o.seedSeries {
		e.series.Append(series.Seed(e.rng, e.series.Capacity())...)
	}

	for _, obs := range o.observers {
		e.observers.AddObserver(obs)
	}

	return e
}

// ID identifies the engine instance
func (e *Engine) ID() string {
	return e.id
}

// AddObserver registers an observer
func (e *Engine) AddObserver(observer Observer) {
	e.observers.AddObserver(observer)
}

// RemoveObserver unregisters an observer
func (e *Engine) RemoveObserver(observer Observer) {
	e.observers.RemoveObserver(observer)
}

// Configure applies a partial configuration change, clamping percentages, and
// returns the resulting configuration
func (e *Engine) Configure(change core.ConfigChange) core.Config {
	e.mutex.Lock()
	previous := e.config
	e.config = e.config.Apply(change)
	current := e.config
	e.mutex.Unlock()

	if previous != current {
		e.observers.NotifyConfigChanged(previous, current)
	}
	return current
}

// Start moves the clock from stopped to running and schedules ticks.
// Runtime is preserved.
func (e *Engine) Start() *CommandResult {
	return e.transition(CommandStart)
}

// Stop cancels the pending tick and zeroes the runtime
func (e *Engine) Stop() *CommandResult {
	return e.transition(CommandStop)
}

// Reset restores the default configuration and forces the clock to stopped.
// It is valid from either state.
func (e *Engine) Reset() *CommandResult {
	return e.transition(CommandReset)
}

func (e *Engine) transition(command string) *CommandResult {
	e.mutex.Lock()
	from := e.clock.state
	t, err := e.clock.find(command)
	if err != nil {
		result := NewCommandResult(false, false, from, from).
			WithRejection(err.Error()).
			WithError(err)
		result.Config = e.config
		e.mutex.Unlock()

		e.observers.NotifyCommandRejected(command, result.RejectionReason)
		return result
	}

	previous := e.config
	if t.Action != nil {
		t.Action(e)
	}
	e.clock.state = t.To
	result := NewCommandResult(true, from != t.To, from, t.To)
	result.Config = e.config
	e.mutex.Unlock()

	e.observers.NotifyTransition(from, t.To, command)
	if previous != result.Config {
		e.observers.NotifyConfigChanged(previous, result.Config)
	}
	return result
}

// Tick performs one full update cycle: intersections, alerts, chart sample.
// While the clock is stopped it changes nothing and returns the current
// snapshot.
func (e *Engine) Tick() core.Snapshot {
	snap, _ := e.tick(0)
	return snap
}

// tick runs one cycle on behalf of a ticking session; session 0 is a direct
// call and matches any. tickMutex stays held through the notifications so
// observers receive ticks in order.
func (e *Engine) tick(session uint64) (core.Snapshot, error) {
	e.tickMutex.Lock()
	defer e.tickMutex.Unlock()

	started := time.Now()

	e.mutex.Lock()
	t, err := e.clock.find(CommandTick)
	if err == nil && session != 0 && session != e.session {
		err = NewCommandError(ErrCodeInvalidTransition, CommandTick, "tick scheduled by an earlier run")
	}
	if err != nil {
		snap := e.snapshotLocked()
		e.mutex.Unlock()
		return snap, err
	}

	// configuration is read once; the whole tick works from this copy
	cfg := e.config
	now := e.now()

	next := network.Advance(e.rng, e.intersections, cfg, now)
	emitted := e.generator.Scan(next, now)
	sample := series.Aggregate(next, now)

	t.Action(e)
	e.intersections = next
	e.alerts.Push(emitted...)
	e.series.Append(sample)
	e.ticks++
	snap := e.snapshotLocked()
	e.mutex.Unlock()

	for _, a := range emitted {
		e.observers.NotifyAlert(a)
	}
	e.observers.NotifyTick(snap, time.Since(started))
	return snap, nil
}

// scheduledTick is what the scheduler fires. Firings left over from an
// earlier start are dropped.
func (e *Engine) scheduledTick(session uint64) {
	e.tick(session)
}

// DismissAlert removes one alert from the buffer. Unknown ids are a no-op.
func (e *Engine) DismissAlert(id string) bool {
	e.mutex.Lock()
	removed := e.alerts.Dismiss(id)
	e.mutex.Unlock()

	if !removed {
		e.observers.NotifyCommandRejected(CommandDismissAlert, fmt.Sprintf("alert '%s' not found", id))
	}
	return removed
}

// SetManualSignal sets one intersection's signal phase. It is rejected while
// automatic mode is on, for unknown intersections and for invalid phases.
func (e *Engine) SetManualSignal(intersectionID string, phase core.Phase) *CommandResult {
	e.mutex.Lock()
	state := e.clock.state
	result := NewCommandResult(false, false, state, state)

	var rejection *CommandError
	switch {
	case e.config.AutoMode:
		rejection = NewCommandError(ErrCodeAutoModeActive, CommandSetSignal, "manual signal control is disabled while auto mode is on")
	case !phase.Valid():
		rejection = NewCommandError(ErrCodeInvalidPhase, CommandSetSignal, fmt.Sprintf("invalid phase '%s'", phase))
	default:
		next, found := network.SetSignal(e.intersections, intersectionID, phase)
		if !found {
			rejection = NewCommandError(ErrCodeUnknownIntersection, CommandSetSignal, fmt.Sprintf("intersection '%s' not found", intersectionID))
		} else {
			e.intersections = next
		}
	}
	result.Config = e.config
	e.mutex.Unlock()

	if rejection != nil {
		e.observers.NotifyCommandRejected(CommandSetSignal, rejection.Message)
		return result.WithRejection(rejection.Message).WithError(rejection)
	}

	result.Applied = true
	e.observers.NotifySignalOverride(intersectionID, phase)
	return result
}

// Dispatch applies a command. It is the single entry point for boundary
// layers that queue mutations as messages.
func (e *Engine) Dispatch(cmd Command) *CommandResult {
	result := e.dispatch(cmd)
	result.CommandID = cmd.ID
	return result
}

func (e *Engine) dispatch(cmd Command) *CommandResult {
	switch cmd.Name {
	case CommandStart:
		return e.Start()
	case CommandStop:
		return e.Stop()
	case CommandReset:
		return e.Reset()
	case CommandTick:
		snap, err := e.tick(0)
		if err != nil {
			e.observers.NotifyCommandRejected(cmd.Name, err.Error())
			return e.resultFor(false).WithRejection(err.Error()).WithError(err)
		}
		result := e.resultFor(true)
		result.Snapshot = &snap
		return result
	case CommandConfigure:
		change, ok := cmd.Data.(core.ConfigChange)
		if !ok {
			return e.invalidData(cmd, "expected core.ConfigChange")
		}
		e.Configure(change)
		return e.resultFor(true)
	case CommandDismissAlert:
		id, ok := cmd.Data.(string)
		if !ok {
			return e.invalidData(cmd, "expected alert id string")
		}
		if !e.DismissAlert(id) {
			err := NewCommandError(ErrCodeUnknownAlert, cmd.Name, fmt.Sprintf("alert '%s' not found", id))
			return e.resultFor(false).WithRejection(err.Message).WithError(err)
		}
		return e.resultFor(true)
	case CommandSetSignal:
		override, ok := cmd.Data.(SignalOverride)
		if !ok {
			return e.invalidData(cmd, "expected SignalOverride")
		}
		return e.SetManualSignal(override.IntersectionID, override.Phase)
	default:
		err := NewCommandError(ErrCodeUnknownCommand, cmd.Name, "unknown command")
		e.observers.NotifyCommandRejected(cmd.Name, err.Message)
		return e.resultFor(false).WithRejection(err.Message).WithError(err)
	}
}

func (e *Engine) invalidData(cmd Command, message string) *CommandResult {
	err := NewCommandError(ErrCodeInvalidCommandData, cmd.Name, message)
	e.observers.NotifyCommandRejected(cmd.Name, message)
	return e.resultFor(false).WithRejection(message).WithError(err)
}

func (e *Engine) resultFor(applied bool) *CommandResult {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	result := NewCommandResult(applied, false, e.clock.state, e.clock.state)
	result.Config = e.config
	return result
}

// Close stops the clock if it is running and cancels any scheduled tick.
// The engine can be started again afterwards.
func (e *Engine) Close() {
	e.mutex.RLock()
	running := e.clock.state == core.ClockRunning
	e.mutex.RUnlock()

	if running {
		e.Stop()
	}
	e.scheduler.Stop()
}

// State returns the clock state
func (e *Engine) State() core.ClockState {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	return e.clock.state
}

// ClockTransitions returns the clock's transition table
func (e *Engine) ClockTransitions() []ClockTransition {
	return e.clock.Transitions()
}

// Config returns the current configuration
func (e *Engine) Config() core.Config {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	return e.config
}

// Intersections returns a copy of the current intersections
func (e *Engine) Intersections() []core.Intersection {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	return network.Clone(e.intersections)
}

// Alerts returns a copy of the alert buffer, newest first
func (e *Engine) Alerts() []core.Alert {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	return e.alerts.List()
}

// Series returns a copy of the chart window, oldest first
func (e *Engine) Series() []core.Sample {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	return e.series.List()
}

// Summary rolls the current intersections up for the dashboard
func (e *Engine) Summary() network.Summary {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	return network.Summarize(e.intersections)
}

// Snapshot returns a consistent copy of the whole engine state
func (e *Engine) Snapshot() core.Snapshot {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() core.Snapshot {
	return core.Snapshot{
		Tick:          e.ticks,
		Config:        e.config,
		Intersections: network.Clone(e.intersections),
		Alerts:        e.alerts.List(),
		Series:        e.series.List(),
		TakenAt:       e.now(),
	}
}
