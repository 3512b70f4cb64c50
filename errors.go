package trafficsim

import (
	"errors"
	"fmt"

	"github.com/anggasct/trafficsim/pkg/core"
)

// ErrorCode represents specific rejection conditions in the engine
type ErrorCode int

const (
	// No error occurred
	ErrCodeNone ErrorCode = iota
	// Clock has no transition for the command in its current state
	ErrCodeInvalidTransition
	// Manual signal control attempted while automatic mode is on
	ErrCodeAutoModeActive
	// Referenced intersection does not exist
	ErrCodeUnknownIntersection
	// Signal phase is not red, yellow or green
	ErrCodeInvalidPhase
	// Command name is not recognised
	ErrCodeUnknownCommand
	// Command carries data of the wrong shape
	ErrCodeInvalidCommandData
	// Referenced alert is not in the buffer
	ErrCodeUnknownAlert
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeNone:
		return "none"
	case ErrCodeInvalidTransition:
		return "invalid_transition"
	case ErrCodeAutoModeActive:
		return "auto_mode_active"
	case ErrCodeUnknownIntersection:
		return "unknown_intersection"
	case ErrCodeInvalidPhase:
		return "invalid_phase"
	case ErrCodeUnknownCommand:
		return "unknown_command"
	case ErrCodeInvalidCommandData:
		return "invalid_command_data"
	case ErrCodeUnknownAlert:
		return "unknown_alert"
	default:
		return fmt.Sprintf("code(%d)", int(c))
	}
}

// CommandError describes why a command was not applied
type CommandError struct {
	Code    ErrorCode
	Command string
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s rejected [%s]: %s", e.Command, e.Code, e.Message)
}

// NewCommandError creates a new command error
func NewCommandError(code ErrorCode, command string, message string) *CommandError {
	return &CommandError{
		Code:    code,
		Command: command,
		Message: message,
	}
}

// TransitionError reports a clock command that is not valid in the current state
type TransitionError struct {
	From    core.ClockState
	Command string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("no clock transition from '%s' for command '%s'", e.From, e.Command)
}

// NewNoTransitionError creates a new no transition found error
func NewNoTransitionError(from core.ClockState, command string) *TransitionError {
	return &TransitionError{From: from, Command: command}
}

// IsCommandError checks if an error is a CommandError
func IsCommandError(err error) bool {
	var target *CommandError
	return errors.As(err, &target)
}

// IsTransitionError checks if an error is a TransitionError
func IsTransitionError(err error) bool {
	var target *TransitionError
	return errors.As(err, &target)
}

// GetErrorCode returns the error code for known error types
func GetErrorCode(err error) ErrorCode {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code
	}
	var trErr *TransitionError
	if errors.As(err, &trErr) {
		return ErrCodeInvalidTransition
	}
	return ErrCodeNone
}
