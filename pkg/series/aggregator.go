// Package series derives the rolling traffic chart from intersection snapshots.
package series

import (
	"fmt"
	"time"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"

	"github.com/anggasct/trafficsim/pkg/core"
)

// LabelLayout formats a sample's time label
const LabelLayout = "15:04"

// Aggregate computes the mean vehicle count and mean speed across the given
// intersections. An empty set yields zero for both.
func Aggregate(intersections []core.Intersection, at time.Time) core.Sample {
	sample := core.Sample{Label: at.Format(LabelLayout), At: at}
	if len(intersections) == 0 {
		return sample
	}

	volumes := lo.Map(intersections, func(in core.Intersection, _ int) float64 {
		return float64(in.VehicleCount)
	})
	speeds := lo.Map(intersections, func(in core.Intersection, _ int) float64 {
		return float64(in.AverageSpeed)
	})

	sample.Volume = stat.Mean(volumes, nil)
	sample.Speed = stat.Mean(speeds, nil)
	return sample
}

// Seed returns n hourly samples labelled 1:00, 2:00, ... with volume drawn
// from [10,59] and speed from [20,49]. It mirrors the chart a fresh dashboard
// opens with.
func Seed(rng core.Random, n int) []core.Sample {
	out := make([]core.Sample, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, core.Sample{
			Label:  fmt.Sprintf("%d:00", i+1),
			Volume: float64(rng.Intn(50) + 10),
			Speed:  float64(rng.Intn(30) + 20),
		})
	}
	return out
}
