package network

import (
	"github.com/samber/lo"

	"github.com/anggasct/trafficsim/pkg/core"
	"github.com/anggasct/trafficsim/pkg/policy"
)

// Summary is the per-network roll-up shown next to the charts
type Summary struct {
	Total         int               `json:"total"`
	ByTier        map[core.Tier]int `json:"by_tier"`
	ActiveSignals int               `json:"active_signals"`
	Busiest       string            `json:"busiest,omitempty"`
	TotalVehicles int               `json:"total_vehicles"`
}

// Summarize counts intersections per congestion tier, green signals and the
// busiest intersection. Tiers are re-derived from the vehicle counts.
func Summarize(intersections []core.Intersection) Summary {
	s := Summary{
		Total: len(intersections),
		ByTier: map[core.Tier]int{
			core.TierNormal:   0,
			core.TierModerate: 0,
			core.TierHeavy:    0,
		},
	}
	if len(intersections) == 0 {
		return s
	}

	for _, in := range intersections {
		s.ByTier[policy.Classify(in.VehicleCount)]++
	}
	s.ActiveSignals = lo.CountBy(intersections, func(in core.Intersection) bool {
		return in.Signal == core.PhaseGreen
	})
	s.TotalVehicles = lo.SumBy(intersections, func(in core.Intersection) int {
		return in.VehicleCount
	})
	s.Busiest = lo.MaxBy(intersections, func(a, b core.Intersection) bool {
		return a.VehicleCount > b.VehicleCount
	}).ID
	return s
}
