package core

import "time"

// Intersection is a simulated road junction with its own signal and counters
type Intersection struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	X            float64   `json:"x"`
	Y            float64   `json:"y"`
	VehicleCount int       `json:"vehicle_count"`
	AverageSpeed int       `json:"average_speed"`
	Signal       Phase     `json:"signal"`
	Congestion   Tier      `json:"congestion"`
	LastUpdated  time.Time `json:"last_updated"`
}

// SeedIntersections returns the fixed set of intersections a session starts with
func SeedIntersections(now time.Time) []Intersection {
	return []Intersection{
		{
			ID:           "int-a",
			Name:         "Main St & Oak Ave",
			X:            25,
			Y:            30,
			VehicleCount: 12,
			AverageSpeed: 35,
			Signal:       PhaseGreen,
			Congestion:   TierNormal,
			LastUpdated:  now,
		},
		{
			ID:           "int-b",
			Name:         "Central Blvd & Pine St",
			X:            60,
			Y:            45,
			VehicleCount: 28,
			AverageSpeed: 22,
			Signal:       PhaseYellow,
			Congestion:   TierModerate,
			LastUpdated:  now,
		},
		{
			ID:           "int-c",
			Name:         "Commerce Dr & Elm St",
			X:            40,
			Y:            70,
			VehicleCount: 45,
			AverageSpeed: 15,
			Signal:       PhaseRed,
			Congestion:   TierHeavy,
			LastUpdated:  now,
		},
		{
			ID:           "int-d",
			Name:         "Park Ave & Maple St",
			X:            75,
			Y:            25,
			VehicleCount: 8,
			AverageSpeed: 42,
			Signal:       PhaseGreen,
			Congestion:   TierNormal,
			LastUpdated:  now,
		},
	}
}
