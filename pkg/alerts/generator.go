// Package alerts turns threshold crossings into bounded, dismissible alerts.
package alerts

import (
	"fmt"
	"time"

	"github.com/anggasct/trafficsim/pkg/core"
)

const (
	// CongestionChance is the draw a heavy intersection must exceed to alert
	CongestionChance = 0.7
	// SpeedChance is the draw a slow intersection must exceed to alert
	SpeedChance = 0.8
	// SlowSpeed is the average speed below which an intersection is slow, km/h
	SlowSpeed = 20
)

// Generator evaluates the probabilistic congestion and speed triggers
type Generator struct {
	rng core.Random
	seq uint64
}

// NewGenerator creates a generator drawing from rng
func NewGenerator(rng core.Random) *Generator {
	return &Generator{rng: rng}
}

// Scan inspects an updated intersection set and returns the alerts it
// triggers, in intersection order. For each intersection the congestion draw
// happens before the speed draw; both can fire.
func (g *Generator) Scan(intersections []core.Intersection, now time.Time) []core.Alert {
	var out []core.Alert
	for _, in := range intersections {
		if in.Congestion == core.TierHeavy && g.rng.Float64() > CongestionChance {
			out = append(out, g.newAlert(in, core.AlertCongestion, core.SeverityHigh,
				fmt.Sprintf("Heavy congestion detected at %s", in.Name), now))
		}
		if in.AverageSpeed < SlowSpeed && g.rng.Float64() > SpeedChance {
			out = append(out, g.newAlert(in, core.AlertSpeed, core.SeverityMedium,
				fmt.Sprintf("Low average speed (%d km/h) at %s", in.AverageSpeed, in.Name), now))
		}
	}
	return out
}

func (g *Generator) newAlert(in core.Intersection, kind core.AlertKind, severity core.Severity, message string, now time.Time) core.Alert {
	g.seq++
	return core.Alert{
		ID:             fmt.Sprintf("alert-%d-%s-%s-%d", now.UnixMilli(), in.ID, kind, g.seq),
		Kind:           kind,
		Message:        message,
		IntersectionID: in.ID,
		Timestamp:      now,
		Severity:       severity,
	}
}
