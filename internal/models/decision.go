package models

import (
	"time"
)

// Decision stores an action taken by the pipeline (rate limiter, block list,
// pattern matcher, or manual override) so it can be audited and surfaced in
// the admin API.
type Decision struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UUID      string    `json:"uuid" gorm:"uniqueIndex"`
	Source    string    `json:"source"` // e.g., ratelimit, blocklist, waf, manual
	Action    string    `json:"action"` // allow, reject
	Identity  string    `json:"identity" gorm:"index"`
	RuleID    string    `json:"rule_id"`
	Details   string    `json:"details" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
}
