// Package snapshot defines the registry backup blob and its pointer.
//
// This file holds optional sealing of the blob before it leaves the
// process. The backup travels through a chat channel that anyone with
// the anchor message can read, and the records carry clear-text
// passwords, so deployments can opt in to authenticated encryption.
package snapshot

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Sealing errors.
var (
	ErrPassphraseTooShort = errors.New("snapshot: passphrase too short (minimum 8 characters)")
	ErrNotSealed          = errors.New("snapshot: blob is not sealed")
	ErrOpenFailed         = errors.New("snapshot: open failed - wrong passphrase or corrupted blob")
)

// sealMagic marks a sealed blob. Plain JSON can never start with it.
var sealMagic = []byte("LBSEAL1\x00")

const (
	minPassphraseLength = 8
	saltLength          = 16

	// Argon2id parameters for key derivation from the passphrase.
	argon2Time    = 3
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2KeyLen  = chacha20poly1305.KeySize
)

// Sealer seals and opens snapshot blobs with a passphrase-derived key.
type Sealer struct {
	passphrase []byte
}

// NewSealer creates a sealer from a passphrase.
func NewSealer(passphrase string) (*Sealer, error) {
	if len(passphrase) < minPassphraseLength {
		return nil, ErrPassphraseTooShort
	}
	return &Sealer{passphrase: []byte(passphrase)}, nil
}

// IsSealed reports whether a blob was produced by Seal.
func IsSealed(blob []byte) bool {
	if len(blob) < len(sealMagic) {
		return false
	}
	for i, b := range sealMagic {
		if blob[i] != b {
			return false
		}
	}
	return true
}

// Seal encrypts a plain blob. Layout: magic | salt | nonce | ciphertext.
// A fresh salt per seal means the derived key never repeats.
func (s *Sealer) Seal(plain []byte) ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("snapshot: generate salt: %w", err)
	}

	aead, err := s.aead(salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("snapshot: generate nonce: %w", err)
	}

	out := make([]byte, 0, len(sealMagic)+len(salt)+len(nonce)+len(plain)+aead.Overhead())
	out = append(out, sealMagic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plain, sealMagic), nil
}

// Open decrypts a sealed blob back to plain JSON.
func (s *Sealer) Open(blob []byte) ([]byte, error) {
	if !IsSealed(blob) {
		return nil, ErrNotSealed
	}

	rest := blob[len(sealMagic):]
	if len(rest) < saltLength+chacha20poly1305.NonceSize {
		return nil, ErrOpenFailed
	}

	salt := rest[:saltLength]
	nonce := rest[saltLength : saltLength+chacha20poly1305.NonceSize]
	ciphertext := rest[saltLength+chacha20poly1305.NonceSize:]

	aead, err := s.aead(salt)
	if err != nil {
		return nil, err
	}

	plain, err := aead.Open(nil, nonce, ciphertext, sealMagic)
	if err != nil {
		return nil, ErrOpenFailed
	}
	return plain, nil
}

func (s *Sealer) aead(salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey(s.passphrase, salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("snapshot: init cipher: %w", err)
	}
	return aead, nil
}
