// Package core provides the central types shared by every part of the traffic
// simulation: intersections, simulation configuration, alerts, chart samples and
// the snapshots handed to readers.
package core

// Phase is the active colour of an intersection's traffic signal
type Phase string

const (
	PhaseRed    Phase = "red"
	PhaseYellow Phase = "yellow"
	PhaseGreen  Phase = "green"
)

// Valid reports whether p is one of the three signal colours
func (p Phase) Valid() bool {
	switch p {
	case PhaseRed, PhaseYellow, PhaseGreen:
		return true
	default:
		return false
	}
}

// Tier classifies the load of an intersection
type Tier string

const (
	TierNormal   Tier = "normal"
	TierModerate Tier = "moderate"
	TierHeavy    Tier = "heavy"
)

// Scenario is a named traffic-demand profile
type Scenario string

const (
	ScenarioMorning   Scenario = "morning"
	ScenarioAfternoon Scenario = "afternoon"
	ScenarioEvening   Scenario = "evening"
	ScenarioAccident  Scenario = "accident"
)

// Label returns the human readable name shown on control surfaces
func (s Scenario) Label() string {
	switch s {
	case ScenarioMorning:
		return "Morning Peak"
	case ScenarioAfternoon:
		return "Afternoon Normal"
	case ScenarioEvening:
		return "Evening Rush"
	case ScenarioAccident:
		return "Accident Simulation"
	default:
		return "Unknown"
	}
}

// Random is the randomness source every probabilistic rule draws from.
// *math/rand.Rand satisfies it.
type Random interface {
	Float64() float64
	Intn(n int) int
}

// ClockState is the state of the simulation clock
type ClockState string

const (
	ClockStopped ClockState = "stopped"
	ClockRunning ClockState = "running"
)
