package core

import "time"

// Sample is one point of the rolling traffic chart
type Sample struct {
	Label  string    `json:"label"`
	Volume float64   `json:"volume"`
	Speed  float64   `json:"speed"`
	At     time.Time `json:"at,omitempty"`
}

// Snapshot is an immutable copy of the engine state taken after a tick.
// None of its slices alias engine internals.
type Snapshot struct {
	Tick          uint64         `json:"tick"`
	Config        Config         `json:"config"`
	Intersections []Intersection `json:"intersections"`
	Alerts        []Alert        `json:"alerts"`
	Series        []Sample       `json:"series"`
	TakenAt       time.Time      `json:"taken_at"`
}
