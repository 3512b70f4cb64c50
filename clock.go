package trafficsim

import (
	"github.com/anggasct/trafficsim/pkg/core"
)

// ClockAction runs while a clock transition is taken. It is called with the
// engine's write lock held.
type ClockAction func(e *Engine)

// ClockTransition represents a transition of the simulation clock
type ClockTransition struct {
	From    core.ClockState
	To      core.ClockState
	Command string
	Action  ClockAction
}

// NewClockTransition creates a new clock transition
func NewClockTransition(from, to core.ClockState, command string) *ClockTransition {
	return &ClockTransition{
		From:    from,
		To:      to,
		Command: command,
	}
}

// WithAction adds an action to the transition
func (t *ClockTransition) WithAction(action ClockAction) *ClockTransition {
	t.Action = action
	return t
}

// Clock is the Stopped/Running state machine that gates ticking
type Clock struct {
	state       core.ClockState
	transitions map[core.ClockState][]*ClockTransition
}

// newClock builds the clock's transition table:
//
//	stopped --start--> running   (runtime kept, timer scheduled)
//	running --stop---> stopped   (runtime zeroed, timer cancelled)
//	running --tick---> running   (runtime advanced)
//	*       --reset--> stopped   (defaults restored, timer cancelled)
func newClock() *Clock {
	c := &Clock{
		state:       core.ClockStopped,
		transitions: make(map[core.ClockState][]*ClockTransition),
	}

	c.add(NewClockTransition(core.ClockStopped, core.ClockRunning, CommandStart).WithAction(beginTicking))
	c.add(NewClockTransition(core.ClockRunning, core.ClockStopped, CommandStop).WithAction(endTicking))
	c.add(NewClockTransition(core.ClockRunning, core.ClockRunning, CommandTick).WithAction(advanceRuntime))
	c.add(NewClockTransition(core.ClockRunning, core.ClockStopped, CommandReset).WithAction(restoreDefaults))
	c.add(NewClockTransition(core.ClockStopped, core.ClockStopped, CommandReset).WithAction(restoreDefaults))
	return c
}

func (c *Clock) add(t *ClockTransition) {
	c.transitions[t.From] = append(c.transitions[t.From], t)
}

// State returns the current clock state
func (c *Clock) State() core.ClockState {
	return c.state
}

// find returns the transition for command from the current state
func (c *Clock) find(command string) (*ClockTransition, error) {
	for _, t := range c.transitions[c.state] {
		if t.Command == command {
			return t, nil
		}
	}
	return nil, NewNoTransitionError(c.state, command)
}

// Transitions returns a copy of the transition table, stopped state first
func (c *Clock) Transitions() []ClockTransition {
	var out []ClockTransition
	for _, from := range []core.ClockState{core.ClockStopped, core.ClockRunning} {
		for _, t := range c.transitions[from] {
			out = append(out, *t)
		}
	}
	return out
}

func beginTicking(e *Engine) {
	e.config.Running = true
	e.session++
	session := e.session
	e.scheduler.Start(func() { e.scheduledTick(session) })
}

func endTicking(e *Engine) {
	e.scheduler.Stop()
	e.config.Running = false
	e.config.Runtime = 0
}

func advanceRuntime(e *Engine) {
	e.config.Runtime += e.runtimeStep
}

// restoreDefaults keeps the scenario; everything else returns to the
// defaults of a fresh session
func restoreDefaults(e *Engine) {
	e.scheduler.Stop()
	scenario := e.config.Scenario
	e.config = core.DefaultConfig()
	e.config.Scenario = scenario
}
