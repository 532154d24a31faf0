package audit

import (
	"context"
	"crypto/sha256"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/argus-sec/argus/internal/models"
)

func setupTrail(t *testing.T) (*Trail, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.AuditRecord{}))

	key := sha256.Sum256([]byte("test-key"))
	enc, err := NewAEADEncryptor(key[:])
	require.NoError(t, err)

	trail, err := NewTrail(NewGormStore(db), enc)
	require.NoError(t, err)
	return trail, db
}

func testEvent() *models.RequestEvent {
	return &models.RequestEvent{
		CorrelationID: "corr-1",
		Identity:      "5.6.7.8",
		Method:        "POST",
		URL:           "/api/users",
		Body:          []byte("'; DROP TABLE users;--"),
		ReceivedAt:    time.Now(),
	}
}

func TestTrail_LogAndVerify(t *testing.T) {
	trail, _ := setupTrail(t)
	ctx := context.Background()

	logID, err := trail.Log(ctx, testEvent(), "suspicious_content")
	require.NoError(t, err)
	assert.NotEmpty(t, logID)

	ok, err := trail.Verify(ctx, logID)
	assert.NoError(t, err)
	assert.True(t, ok)

	rec, err := trail.GetRecord(ctx, logID)
	require.NoError(t, err)
	assert.Equal(t, "suspicious_content", rec.EventKind)
	assert.Equal(t, "5.6.7.8", rec.Identity)
	assert.NotEmpty(t, rec.Hash)
	assert.NotEmpty(t, rec.Ciphertext)
}

func TestTrail_VerifyDetectsCiphertextTampering(t *testing.T) {
	trail, db := setupTrail(t)
	ctx := context.Background()

	logID, err := trail.Log(ctx, testEvent(), "suspicious_content")
	require.NoError(t, err)

	// Flip a byte of the stored ciphertext out-of-band.
	var rec models.AuditRecord
	require.NoError(t, db.Where("uuid = ?", logID).First(&rec).Error)
	rec.Ciphertext[len(rec.Ciphertext)/2] ^= 0xff
	require.NoError(t, db.Save(&rec).Error)

	ok, err := trail.Verify(ctx, logID)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrIntegrity)
}

func TestTrail_VerifyDetectsHashTampering(t *testing.T) {
	trail, db := setupTrail(t)
	ctx := context.Background()

	logID, err := trail.Log(ctx, testEvent(), "suspicious_content")
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.AuditRecord{}).
		Where("uuid = ?", logID).
		Update("hash", "0000000000000000000000000000000000000000000000000000000000000000").Error)

	ok, err := trail.Verify(ctx, logID)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrIntegrity)
}

func TestTrail_VerifyMissingRecordIsNotIntegrity(t *testing.T) {
	trail, _ := setupTrail(t)

	ok, err := trail.Verify(context.Background(), "no-such-id")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrRecordNotFound)
	assert.NotErrorIs(t, err, ErrIntegrity)
}

func TestTrail_LogAssessment(t *testing.T) {
	trail, _ := setupTrail(t)
	ctx := context.Background()

	a := &models.ThreatAssessment{
		CorrelationID: "corr-2",
		Identity:      "5.6.7.8",
		Score:         0.85,
		Signals:       map[string]float64{"pattern": 1.0},
		CreatedAt:     time.Now(),
	}
	logID, err := trail.LogAssessment(ctx, a)
	require.NoError(t, err)

	ok, err := trail.Verify(ctx, logID)
	assert.NoError(t, err)
	assert.True(t, ok)

	rec, err := trail.GetRecord(ctx, logID)
	require.NoError(t, err)
	assert.Equal(t, "threat_assessment", rec.EventKind)
}

func TestTrail_LogAssessmentSerializeError(t *testing.T) {
	trail, _ := setupTrail(t)

	// NaN has no JSON representation, so serialization fails before any
	// storage or encryption is attempted.
	a := &models.ThreatAssessment{
		CorrelationID: "corr-3",
		Identity:      "5.6.7.8",
		Score:         math.NaN(),
		CreatedAt:     time.Now(),
	}
	_, err := trail.LogAssessment(context.Background(), a)
	assert.ErrorIs(t, err, ErrSerialize)
	assert.NotErrorIs(t, err, ErrStorage)
}

func TestAEADEncryptor_RejectsBadKey(t *testing.T) {
	_, err := NewAEADEncryptor([]byte("short"))
	assert.ErrorIs(t, err, ErrKeyUnavailable)
}

func TestAEADEncryptor_RoundTrip(t *testing.T) {
	key := sha256.Sum256([]byte("k"))
	enc, err := NewAEADEncryptor(key[:])
	require.NoError(t, err)

	ct, err := enc.Encrypt([]byte("payload"))
	require.NoError(t, err)
	assert.NotEqual(t, []byte("payload"), ct)

	pt, err := enc.Decrypt(ct)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), pt)
}

func TestGormStore_ReadMissing(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.AuditRecord{}))

	store := NewGormStore(db)
	_, err = store.Read(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}
