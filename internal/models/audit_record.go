package models

import (
	"time"
)

// AuditRecord is one entry of the tamper-evident audit trail. The hash is
// computed over the pre-encryption canonical form of the enriched event so
// verification can detect tampering without decrypting. Records are
// append-only; rotation/retention is an external concern.
type AuditRecord struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UUID       string    `json:"uuid" gorm:"uniqueIndex"`
	EventKind  string    `json:"event_kind"`
	Identity   string    `json:"identity" gorm:"index"`
	Hash       string    `json:"hash"`
	Ciphertext []byte    `json:"-" gorm:"type:blob"`
	CreatedAt  time.Time `json:"created_at"`
}

// EnrichedEvent is the plaintext form hashed and encrypted into an
// AuditRecord. Field order defines the canonical serialization.
type EnrichedEvent struct {
	CorrelationID  string    `json:"correlation_id"`
	Identity       string    `json:"identity"`
	Method         string    `json:"method"`
	URL            string    `json:"url"`
	Body           string    `json:"body,omitempty"`
	EventKind      string    `json:"event_kind"`
	ComplianceTags []string  `json:"compliance_tags"`
	System         string    `json:"system"`
	RecordedAt     time.Time `json:"recorded_at"`
}
