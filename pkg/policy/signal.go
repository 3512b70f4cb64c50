package policy

import "github.com/anggasct/trafficsim/pkg/core"

// LightTrafficLimit is the count below which a normal intersection gets green
const LightTrafficLimit = 10

// NextPhase picks the signal phase automatic control applies after a tick.
// The moderate tier is a coin flip between yellow and green.
func NextPhase(rng core.Random, vehicleCount int, tier core.Tier) core.Phase {
	switch tier {
	case core.TierHeavy:
		return core.PhaseGreen
	case core.TierModerate:
		if rng.Float64() > 0.5 {
			return core.PhaseYellow
		}
		return core.PhaseGreen
	default:
		if vehicleCount < LightTrafficLimit {
			return core.PhaseGreen
		}
		return core.PhaseYellow
	}
}
