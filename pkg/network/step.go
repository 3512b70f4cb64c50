// Package network advances the simulated intersections one tick at a time.
package network

import (
	"math"
	"time"

	"github.com/samber/lo"

	"github.com/anggasct/trafficsim/pkg/core"
	"github.com/anggasct/trafficsim/pkg/policy"
)

const (
	// MinSpeed is the floor applied to every average speed, in km/h
	MinSpeed = 5
	// FreeFlowSpeed is the speed of an empty intersection before the speed factor
	FreeFlowSpeed = 50.0
	// SpeedPerVehicle is how much each queued vehicle slows the flow
	SpeedPerVehicle = 0.8
	// PerturbationRange is the width of the uniform base perturbation
	PerturbationRange = 10.0
)

// Perturbation draws the base change in vehicle count, uniform in [-5, +5)
func Perturbation(rng core.Random) float64 {
	return (rng.Float64() - 0.5) * PerturbationRange
}

// VehicleCount applies a scaled perturbation to the prior count
func VehicleCount(prior int, perturbation float64, cfg core.Config) int {
	scaled := perturbation * policy.ScenarioMultiplier(cfg.Scenario) * (float64(cfg.VehicleDensity) / 100)
	return max(0, int(math.Floor(float64(prior)+scaled)))
}

// AverageSpeed is the linear capacity model: more vehicles, lower speed
func AverageSpeed(vehicleCount int, speedFactor int) int {
	free := (FreeFlowSpeed - float64(vehicleCount)*SpeedPerVehicle) * (float64(speedFactor) / 100)
	return max(MinSpeed, int(math.Floor(free)))
}

// Step advances one intersection by exactly one tick. It reads only the prior
// record and the configuration snapshot.
func Step(rng core.Random, prior core.Intersection, cfg core.Config, now time.Time) core.Intersection {
	next := prior
	next.VehicleCount = VehicleCount(prior.VehicleCount, Perturbation(rng), cfg)
	next.AverageSpeed = AverageSpeed(next.VehicleCount, cfg.SpeedFactor)
	next.Congestion = policy.Classify(next.VehicleCount)
	if cfg.AutoMode {
		next.Signal = policy.NextPhase(rng, next.VehicleCount, next.Congestion)
	}
	next.LastUpdated = now
	return next
}

// Advance steps every intersection and returns a freshly allocated slice.
// The input is left untouched.
func Advance(rng core.Random, prior []core.Intersection, cfg core.Config, now time.Time) []core.Intersection {
	return lo.Map(prior, func(in core.Intersection, _ int) core.Intersection {
		return Step(rng, in, cfg, now)
	})
}

// SetSignal returns a copy of intersections with one signal replaced, and
// whether the id was found
func SetSignal(intersections []core.Intersection, id string, phase core.Phase) ([]core.Intersection, bool) {
	_, idx, found := lo.FindIndexOf(intersections, func(in core.Intersection) bool {
		return in.ID == id
	})
	if !found {
		return intersections, false
	}

	next := Clone(intersections)
	next[idx].Signal = phase
	return next, true
}

// Find looks an intersection up by id
func Find(intersections []core.Intersection, id string) (core.Intersection, bool) {
	return lo.Find(intersections, func(in core.Intersection) bool {
		return in.ID == id
	})
}

// Clone returns an independent copy
func Clone(intersections []core.Intersection) []core.Intersection {
	if intersections == nil {
		return nil
	}
	out := make([]core.Intersection, len(intersections))
	copy(out, intersections)
	return out
}
