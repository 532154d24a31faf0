package models

import (
	"time"
)

// BlockEntry records a blocked client identity and why it was blocked.
// Entries do not expire on their own; removal happens through an explicit
// unblock or the optional TTL sweep.
type BlockEntry struct {
	Identity  string    `json:"identity"`
	Reason    string    `json:"reason"`
	BlockedAt time.Time `json:"blocked_at"`
}
