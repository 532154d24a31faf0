// Package audit implements the tamper-evident audit trail. Each entry is
// enriched, canonically serialized, hashed, compressed, encrypted, and
// persisted; the hash covers the pre-encryption form so verification can
// detect tampering without trusting the ciphertext.
package audit

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/argus-sec/argus/internal/models"
	"github.com/argus-sec/argus/internal/version"
)

// complianceTags maps event kinds to the tags regulators care about.
var complianceTags = map[string][]string{
	"suspicious_content": {"security", "intrusion"},
	"threat_assessment":  {"security", "scoring"},
	"rate_limited":       {"availability"},
	"manual_block":       {"security", "operator"},
}

// Trail appends events to the tamper-evident log and verifies stored
// entries. Safe for concurrent use; the store and encryptor carry their
// own synchronization.
type Trail struct {
	store Store
	enc   Encryptor
	now   func() time.Time

	zenc *zstd.Encoder
	zdec *zstd.Decoder
}

// NewTrail wires the trail to its storage and encryption backends.
func NewTrail(store Store, enc Encryptor) (*Trail, error) {
	zenc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("init zstd encoder: %w", err)
	}
	zdec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("init zstd decoder: %w", err)
	}
	return &Trail{store: store, enc: enc, now: time.Now, zenc: zenc, zdec: zdec}, nil
}

// WithClock overrides the wall clock, for deterministic tests.
func (t *Trail) WithClock(now func() time.Time) *Trail {
	t.now = now
	return t
}

// Log appends one event to the trail and returns its log id. Every step
// must complete or the call fails as a whole; a record that cannot be
// verified right after writing is treated as a storage failure.
func (t *Trail) Log(ctx context.Context, ev *models.RequestEvent, kind string) (string, error) {
	enriched := t.enrich(ev, kind)

	plain, err := canonicalJSON(enriched)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSerialize, err)
	}
	hash := sha256.Sum256(plain)

	ciphertext, err := t.enc.Encrypt(t.zenc.EncodeAll(plain, nil))
	if err != nil {
		return "", err
	}

	rec := &models.AuditRecord{
		UUID:       uuid.NewString(),
		EventKind:  kind,
		Identity:   ev.Identity,
		Hash:       hex.EncodeToString(hash[:]),
		Ciphertext: ciphertext,
		CreatedAt:  enriched.RecordedAt,
	}
	if err := t.store.Append(ctx, rec); err != nil {
		return "", err
	}

	// Read-back verification: the write is only complete once the stored
	// record is retrievable and intact.
	ok, err := t.Verify(ctx, rec.UUID)
	if err != nil {
		return "", fmt.Errorf("%w: post-write verification: %v", ErrStorage, err)
	}
	if !ok {
		return "", fmt.Errorf("%w: post-write verification failed", ErrStorage)
	}
	return rec.UUID, nil
}

// LogAssessment persists an escalated threat assessment as an audit entry.
func (t *Trail) LogAssessment(ctx context.Context, a *models.ThreatAssessment) (string, error) {
	body, err := json.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("%w: assessment: %v", ErrSerialize, err)
	}
	ev := &models.RequestEvent{
		CorrelationID: a.CorrelationID,
		Identity:      a.Identity,
		Method:        "INTERNAL",
		URL:           "argus://threat-assessment",
		Body:          body,
		ReceivedAt:    a.CreatedAt,
	}
	return t.Log(ctx, ev, "threat_assessment")
}

// GetRecord returns the stored record for the admin API. The ciphertext is
// not exposed through JSON; callers get metadata and the hash.
func (t *Trail) GetRecord(ctx context.Context, logID string) (*models.AuditRecord, error) {
	return t.store.Read(ctx, logID)
}

// Verify independently re-reads a record, decrypts it, recomputes the hash
// over the plaintext, and compares. A mismatch or undecryptable ciphertext
// is reported as ErrIntegrity; a missing record stays ErrRecordNotFound.
func (t *Trail) Verify(ctx context.Context, logID string) (bool, error) {
	rec, err := t.store.Read(ctx, logID)
	if err != nil {
		return false, err
	}

	compressed, err := t.enc.Decrypt(rec.Ciphertext)
	if err != nil {
		return false, fmt.Errorf("%w: undecryptable ciphertext: %v", ErrIntegrity, err)
	}
	plain, err := t.zdec.DecodeAll(compressed, nil)
	if err != nil {
		return false, fmt.Errorf("%w: corrupt payload: %v", ErrIntegrity, err)
	}

	hash := sha256.Sum256(plain)
	if hex.EncodeToString(hash[:]) != rec.Hash {
		return false, fmt.Errorf("%w: hash mismatch for %s", ErrIntegrity, logID)
	}
	return true, nil
}

func (t *Trail) enrich(ev *models.RequestEvent, kind string) models.EnrichedEvent {
	tags := complianceTags[kind]
	if tags == nil {
		tags = []string{"general"}
	}
	return models.EnrichedEvent{
		CorrelationID:  ev.CorrelationID,
		Identity:       ev.Identity,
		Method:         ev.Method,
		URL:            ev.URL,
		Body:           string(ev.Body),
		EventKind:      kind,
		ComplianceTags: tags,
		System:         version.Name + "/" + version.Version,
		RecordedAt:     t.now().UTC(),
	}
}

// canonicalJSON produces the byte form the hash covers. Struct field order
// is fixed, so marshaling is deterministic for identical input.
func canonicalJSON(e models.EnrichedEvent) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
