package trafficsim

import (
	"time"

	"github.com/google/uuid"

	"github.com/anggasct/trafficsim/pkg/core"
)

// Command names understood by Dispatch
const (
	CommandConfigure    = "configure"
	CommandStart        = "start"
	CommandStop         = "stop"
	CommandReset        = "reset"
	CommandTick         = "tick"
	CommandDismissAlert = "dismiss_alert"
	CommandSetSignal    = "set_signal"
)

// Command is a request to mutate the engine. Every mutation the engine
// supports can be expressed as one, so a boundary layer can queue them.
type Command struct {
	ID        string
	Name      string
	Data      any
	Timestamp time.Time
}

// NewCommand creates a command with a fresh id
func NewCommand(name string, data any) Command {
	return Command{
		ID:        uuid.NewString(),
		Name:      name,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// SignalOverride is the payload of a set_signal command
type SignalOverride struct {
	IntersectionID string     `json:"intersection_id"`
	Phase          core.Phase `json:"phase"`
}

// CommandResult represents the result of applying a command
type CommandResult struct {
	CommandID       string
	Applied         bool
	StateChanged    bool
	PreviousState   core.ClockState
	CurrentState    core.ClockState
	Config          core.Config
	Snapshot        *core.Snapshot
	Error           error
	RejectionReason string
}

// NewCommandResult creates a new command result
func NewCommandResult(applied, stateChanged bool, prevState, currentState core.ClockState) *CommandResult {
	return &CommandResult{
		Applied:       applied,
		StateChanged:  stateChanged,
		PreviousState: prevState,
		CurrentState:  currentState,
	}
}

// WithError adds an error to the result
func (r *CommandResult) WithError(err error) *CommandResult {
	r.Error = err
	return r
}

// WithRejection marks the command as not applied
func (r *CommandResult) WithRejection(reason string) *CommandResult {
	r.RejectionReason = reason
	r.Applied = false
	return r
}

// Success returns true if the command was applied without error
func (r *CommandResult) Success() bool {
	return r.Applied && r.Error == nil
}
