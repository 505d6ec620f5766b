package store

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	sealedPrefix = "sb1:"
	plainPrefix  = "plain:"
)

// ErrSealed is returned when a sealed value is read without the secret that sealed it.
var ErrSealed = errors.New("value is sealed and no secret is configured")

// Vault seals secrets such as the API key before they reach the KV. A Vault
// without a secret stores values as plain text.
type Vault struct {
	key *[32]byte
}

// NewVault derives a sealing key from secret. An empty secret disables sealing.
func NewVault(secret string) (*Vault, error) {
	if secret == "" {
		return &Vault{}, nil
	}

	var key [32]byte
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte("resume-builder api key"))
	if _, err := io.ReadFull(r, key[:]); err != nil {
		return nil, fmt.Errorf("failed to derive vault key: %w", err)
	}
	return &Vault{key: &key}, nil
}

// Sealing reports whether the vault encrypts values.
func (v *Vault) Sealing() bool {
	return v != nil && v.key != nil
}

// Seal encodes value for storage.
func (v *Vault) Seal(value string) (string, error) {
	if !v.Sealing() {
		return plainPrefix + value, nil
	}

	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(value), &nonce, v.key)
	return sealedPrefix + base64.RawStdEncoding.EncodeToString(box), nil
}

// Open decodes a stored value. Values written without any prefix are returned as-is.
func (v *Vault) Open(stored string) (string, error) {
	switch {
	case strings.HasPrefix(stored, plainPrefix):
		return strings.TrimPrefix(stored, plainPrefix), nil
	case strings.HasPrefix(stored, sealedPrefix):
		if !v.Sealing() {
			return "", ErrSealed
		}
		box, err := base64.RawStdEncoding.DecodeString(strings.TrimPrefix(stored, sealedPrefix))
		if err != nil || len(box) < 24 {
			return "", fmt.Errorf("failed to decode sealed value: malformed payload")
		}
		var nonce [24]byte
		copy(nonce[:], box[:24])
		plain, ok := secretbox.Open(nil, box[24:], &nonce, v.key)
		if !ok {
			return "", fmt.Errorf("failed to open sealed value: wrong secret or corrupted data")
		}
		return string(plain), nil
	default:
		return stored, nil
	}
}
