// Package policy holds the pure decision rules of the simulation: scenario
// load multipliers, congestion classification and automatic signal control.
package policy

import "github.com/anggasct/trafficsim/pkg/core"

// DefaultMultiplier applies to the afternoon scenario and to unknown tags
const DefaultMultiplier = 1.0

// ScenarioMultiplier maps a scenario to the factor applied to each tick's
// vehicle-count perturbation
func ScenarioMultiplier(s core.Scenario) float64 {
	switch s {
	case core.ScenarioMorning:
		return 1.5
	case core.ScenarioEvening:
		return 1.8
	case core.ScenarioAccident:
		return 2.5
	default:
		return DefaultMultiplier
	}
}
