package audit

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// Encryptor is the narrow interface the trail needs from the encryption
// backend. Implementations must fail with ErrKeyUnavailable when no usable
// key exists.
type Encryptor interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

// AEADEncryptor encrypts with ChaCha20-Poly1305 using a random nonce
// prepended to each ciphertext.
type AEADEncryptor struct {
	key []byte
}

// NewAEADEncryptor validates the key up front so a misconfigured key fails
// at construction, not on the first audit write.
func NewAEADEncryptor(key []byte) (*AEADEncryptor, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("%w: need %d-byte key, got %d", ErrKeyUnavailable, chacha20poly1305.KeySize, len(key))
	}
	return &AEADEncryptor{key: key}, nil
}

// Encrypt seals the plaintext. The nonce is prepended to the returned slice.
func (e *AEADEncryptor) Encrypt(plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(e.key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyUnavailable, err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("%w: nonce: %v", ErrEncryption, err)
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens a ciphertext produced by Encrypt.
func (e *AEADEncryptor) Decrypt(ciphertext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(e.key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyUnavailable, err)
	}
	if len(ciphertext) < aead.NonceSize() {
		return nil, fmt.Errorf("%w: ciphertext shorter than nonce", ErrEncryption)
	}
	nonce, sealed := ciphertext[:aead.NonceSize()], ciphertext[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryption, err)
	}
	return plain, nil
}
