package models

import (
	"time"
)

// RiskLevel is the ordinal severity attached to an alert group.
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
	RiskCritical
)

func (r RiskLevel) String() string {
	switch r {
	case RiskCritical:
		return "critical"
	case RiskHigh:
		return "high"
	case RiskMedium:
		return "medium"
	default:
		return "low"
	}
}

// AlertGroup collects flagged events close in time that share an identity.
// Events are ordered timestamp ascending, correlation id as tiebreak.
type AlertGroup struct {
	ID          string         `json:"id"`
	Identity    string         `json:"identity"`
	WindowStart time.Time      `json:"window_start"`
	WindowEnd   time.Time      `json:"window_end"`
	Events      []FlaggedEvent `json:"events"`
	Risk        RiskLevel      `json:"risk"`
}

// CorrelationReport is the full correlator output. All fields are present
// even for empty input.
type CorrelationReport struct {
	Groups []AlertGroup `json:"groups"`
	// AttackChains lists, per group, the correlation ids in inferred attack
	// order. The ordering is a best-effort heuristic, not authoritative.
	AttackChains    [][]string `json:"attack_chains"`
	Risk            RiskLevel  `json:"risk"`
	Recommendations []string   `json:"recommendations"`
	MitigationPlan  []string   `json:"mitigation_plan"`
	CreatedAt       time.Time  `json:"created_at"`
}
