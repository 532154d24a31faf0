package audit

import "errors"

var (
	// ErrRecordNotFound means the log id does not exist in the store. It is
	// never conflated with a tampered record.
	ErrRecordNotFound = errors.New("audit record not found")
	// ErrStorage wraps backing-store failures during append or read.
	ErrStorage = errors.New("audit storage unavailable")
	// ErrSerialize wraps canonical serialization failures before hashing.
	ErrSerialize = errors.New("audit event serialization failed")
	// ErrEncryption wraps encryption backend failures.
	ErrEncryption = errors.New("audit encryption failed")
	// ErrIntegrity signals that a stored record's content no longer matches
	// its hash. This is a security incident, not an operational error.
	ErrIntegrity = errors.New("audit record integrity violation")
	// ErrKeyUnavailable signals the encryptor has no usable key.
	ErrKeyUnavailable = errors.New("encryption key unavailable")
)
