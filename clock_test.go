package trafficsim

import (
	"testing"

	"github.com/anggasct/trafficsim/pkg/core"
)

func TestClock_TransitionTable(t *testing.T) {
	clock := newClock()

	transitions := clock.Transitions()
	if len(transitions) != 5 {
		t.Fatalf("Expected 5 clock transitions, got %d", len(transitions))
	}

	for _, tr := range transitions {
		if tr.Action == nil {
			t.Errorf("Expected an action on %s --%s--> %s", tr.From, tr.Command, tr.To)
		}
	}

	if clock.State() != core.ClockStopped {
		t.Errorf("Expected clock to start stopped, got %s", clock.State())
	}
}

func TestClock_FindRejectsUnknownCommands(t *testing.T) {
	clock := newClock()

	tests := []struct {
		command string
		found   bool
	}{
		{CommandStart, true},
		{CommandReset, true},
		{CommandStop, false},
		{CommandTick, false},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			_, err := clock.find(tt.command)
			if tt.found && err != nil {
				t.Errorf("Expected transition for %s, got %v", tt.command, err)
			}
			if !tt.found {
				if !IsTransitionError(err) {
					t.Errorf("Expected transition error for %s, got %v", tt.command, err)
				}
			}
		})
	}
}

func TestEngine_RedundantCommandsAreRejected(t *testing.T) {
	engine, manual := CreateTestEngine(20)
	observer := NewTestObserver()
	engine.AddObserver(observer)

	result := engine.Stop()
	AssertApplied(t, result, false)
	AssertErrorCode(t, result.Error, ErrCodeInvalidTransition)

	AssertApplied(t, engine.Start(), true)
	manual.Fire(2)

	result = engine.Start()
	AssertApplied(t, result, false)
	AssertErrorCode(t, result.Error, ErrCodeInvalidTransition)

	if rt := engine.Config().Runtime; rt != 2 {
		t.Errorf("Expected redundant start to keep runtime 2, got %d", rt)
	}
	if len(observer.CommandRejects) != 2 {
		t.Errorf("Expected 2 rejections, got %d", len(observer.CommandRejects))
	}
}

func TestEngine_TransitionNotifications(t *testing.T) {
	engine, _ := CreateTestEngine(21)
	observer := NewTestObserver()
	engine.AddObserver(observer)

	engine.Start()
	engine.Stop()
	engine.Reset()

	if observer.TransitionCount() != 3 {
		t.Fatalf("Expected 3 transitions, got %d", observer.TransitionCount())
	}

	expected := []TransitionEvent{
		{From: core.ClockStopped, To: core.ClockRunning, Command: CommandStart},
		{From: core.ClockRunning, To: core.ClockStopped, Command: CommandStop},
		{From: core.ClockStopped, To: core.ClockStopped, Command: CommandReset},
	}
	for i, want := range expected {
		if observer.Transitions[i] != want {
			t.Errorf("Transition %d: expected %+v, got %+v", i, want, observer.Transitions[i])
		}
	}
}

func TestEngine_ResetWhileRunningReportsStateChange(t *testing.T) {
	engine, _ := CreateTestEngine(22)
	engine.Start()

	result := engine.Reset()
	if !result.StateChanged {
		t.Error("Expected reset from running to change state")
	}
	if result.PreviousState != core.ClockRunning || result.CurrentState != core.ClockStopped {
		t.Errorf("Expected running -> stopped, got %s -> %s", result.PreviousState, result.CurrentState)
	}

	result = engine.Reset()
	if result.StateChanged {
		t.Error("Expected reset from stopped not to change state")
	}
}
