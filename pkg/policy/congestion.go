package policy

import "github.com/anggasct/trafficsim/pkg/core"

const (
	// ModerateThreshold is the smallest vehicle count classified as moderate
	ModerateThreshold = 15
	// HeavyThreshold is the smallest vehicle count classified as heavy
	HeavyThreshold = 35
)

// Classify returns the congestion tier for a vehicle count. Every component that
// derives a tier goes through here.
func Classify(vehicleCount int) core.Tier {
	switch {
	case vehicleCount < ModerateThreshold:
		return core.TierNormal
	case vehicleCount < HeavyThreshold:
		return core.TierModerate
	default:
		return core.TierHeavy
	}
}
