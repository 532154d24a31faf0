package models

import (
	"time"
)

// ThreatAssessment is the outcome of scoring one request event. It is
// ephemeral unless its score crosses the escalation threshold, in which
// case it is persisted through the audit trail.
type ThreatAssessment struct {
	CorrelationID string             `json:"correlation_id"`
	Identity      string             `json:"identity"`
	Score         float64            `json:"score"`
	Signals       map[string]float64 `json:"signals"`
	CreatedAt     time.Time          `json:"created_at"`
}

// FlaggedEvent is the correlator's input: a request event that tripped a
// detection signal, reduced to the fields grouping needs.
type FlaggedEvent struct {
	CorrelationID string    `json:"correlation_id"`
	Identity      string    `json:"identity"`
	RuleID        string    `json:"rule_id,omitempty"`
	Score         float64   `json:"score"`
	Timestamp     time.Time `json:"timestamp"`
}
