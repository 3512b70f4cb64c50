package core

import "time"

// AlertKind names the threshold that produced an alert
type AlertKind string

const (
	AlertCongestion AlertKind = "congestion"
	AlertSpeed      AlertKind = "speed"
)

// Severity of an alert
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Alert is a single threshold crossing reported to operators
type Alert struct {
	ID             string    `json:"id"`
	Kind           AlertKind `json:"kind"`
	Message        string    `json:"message"`
	IntersectionID string    `json:"intersection_id"`
	Timestamp      time.Time `json:"timestamp"`
	Severity       Severity  `json:"severity"`
}
