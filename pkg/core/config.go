package core

import "fmt"

const (
	DefaultVehicleDensity = 50
	DefaultSpeedFactor    = 70
)

// Config is the simulation configuration owned by the clock
type Config struct {
	Running           bool     `json:"running"`
	Scenario          Scenario `json:"scenario"`
	VehicleDensity    int      `json:"vehicle_density"`
	SpeedFactor       int      `json:"speed_factor"`
	EmergencyPriority bool     `json:"emergency_priority"`
	AutoMode          bool     `json:"auto_mode"`
	Runtime           int      `json:"runtime"`
}

// DefaultConfig returns the configuration of a fresh session
func DefaultConfig() Config {
	return Config{
		Scenario:       ScenarioAfternoon,
		VehicleDensity: DefaultVehicleDensity,
		SpeedFactor:    DefaultSpeedFactor,
		AutoMode:       true,
	}
}

// Clamp forces both percentage fields into [0,100]
func (c Config) Clamp() Config {
	c.VehicleDensity = clampPercent(c.VehicleDensity)
	c.SpeedFactor = clampPercent(c.SpeedFactor)
	return c
}

// ConfigChange is a partial update. Nil fields are left untouched.
// Running and Runtime are driven by the clock only and cannot be changed here.
type ConfigChange struct {
	Scenario          *Scenario `json:"scenario,omitempty"`
	VehicleDensity    *int      `json:"vehicle_density,omitempty"`
	SpeedFactor       *int      `json:"speed_factor,omitempty"`
	EmergencyPriority *bool     `json:"emergency_priority,omitempty"`
	AutoMode          *bool     `json:"auto_mode,omitempty"`
}

// Apply returns c with the non-nil fields of change applied and clamped
func (c Config) Apply(change ConfigChange) Config {
	if change.Scenario != nil {
		c.Scenario = *change.Scenario
	}
	if change.VehicleDensity != nil {
		c.VehicleDensity = *change.VehicleDensity
	}
	if change.SpeedFactor != nil {
		c.SpeedFactor = *change.SpeedFactor
	}
	if change.EmergencyPriority != nil {
		c.EmergencyPriority = *change.EmergencyPriority
	}
	if change.AutoMode != nil {
		c.AutoMode = *change.AutoMode
	}
	return c.Clamp()
}

// Empty reports whether the change carries no field at all
func (change ConfigChange) Empty() bool {
	return change.Scenario == nil &&
		change.VehicleDensity == nil &&
		change.SpeedFactor == nil &&
		change.EmergencyPriority == nil &&
		change.AutoMode == nil
}

// FormatRuntime renders a runtime in seconds as MM:SS
func FormatRuntime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
