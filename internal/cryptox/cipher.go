// Package cryptox implements field-level encryption of PII attributes, the
// keyed blind index used to look those attributes up, and password hashing.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

var (
	// ErrEncryptionKeyMissing means the cipher was built without key material.
	ErrEncryptionKeyMissing = errors.New("encryption key missing")
	// ErrInvalidToken means a ciphertext token is malformed, was sealed with a
	// different key or fails integrity verification.
	ErrInvalidToken = errors.New("invalid ciphertext token")
)

// KeySize is the required length of the master key in bytes.
const KeySize = 32

const (
	tokenVersion byte = 1
	nonceSize         = 12

	encryptionInfo = "singularity/field-encryption/v1"
	indexInfo      = "singularity/blind-index/v1"
)

// FieldCipher is what repositories need to seal and open PII columns.
type FieldCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(token string) (string, error)
	BlindIndex(plaintext string) (string, error)
}

// Cipher seals strings with AES-256-GCM under a key derived from the master
// key. Tokens carry a version byte and a fresh random nonce, so sealing the
// same plaintext twice yields different tokens.
//
// Token layout before base64url encoding:
//
//	version(1) || nonce(12) || ciphertext || tag(16)
type Cipher struct {
	aead     cipher.AEAD
	indexKey []byte
}

// NewCipher derives the encryption and blind-index keys from masterKey.
// An empty masterKey yields a cipher on which every non-empty operation fails
// with ErrEncryptionKeyMissing.
func NewCipher(masterKey []byte) (*Cipher, error) {
	if len(masterKey) == 0 {
		return &Cipher{}, nil
	}
	if len(masterKey) != KeySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", KeySize, len(masterKey))
	}

	encKey, err := deriveKey(masterKey, encryptionInfo)
	if err != nil {
		return nil, err
	}
	indexKey, err := deriveKey(masterKey, indexInfo)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &Cipher{aead: aead, indexKey: indexKey}, nil
}

func deriveKey(masterKey []byte, info string) ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, masterKey, nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}

// Encrypt turns plaintext into a ciphertext token. The empty string passes
// through unchanged.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	if c == nil || c.aead == nil {
		return "", ErrEncryptionKeyMissing
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	header := []byte{tokenVersion}
	out := make([]byte, 0, 1+nonceSize+len(plaintext)+c.aead.Overhead())
	out = append(out, header...)
	out = append(out, nonce...)
	out = c.aead.Seal(out, nonce, []byte(plaintext), header)

	return base64.RawURLEncoding.EncodeToString(out), nil
}

// Decrypt opens a token produced by Encrypt. The empty string passes through
// unchanged; anything that does not authenticate yields ErrInvalidToken.
func (c *Cipher) Decrypt(token string) (string, error) {
	if token == "" {
		return "", nil
	}
	if c == nil || c.aead == nil {
		return "", ErrEncryptionKeyMissing
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", ErrInvalidToken
	}
	if len(raw) < 1+nonceSize+c.aead.Overhead() || raw[0] != tokenVersion {
		return "", ErrInvalidToken
	}

	header, nonce, sealed := raw[:1], raw[1:1+nonceSize], raw[1+nonceSize:]
	plaintext, err := c.aead.Open(nil, nonce, sealed, header)
	if err != nil {
		return "", ErrInvalidToken
	}

	return string(plaintext), nil
}

// BlindIndex returns a deterministic keyed hash (hex HMAC-SHA256) of
// plaintext, suitable for unique constraints and equality lookups on a
// column whose value is stored encrypted. The empty string maps to "".
func (c *Cipher) BlindIndex(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	if c == nil || c.indexKey == nil {
		return "", ErrEncryptionKeyMissing
	}

	mac := hmac.New(sha256.New, c.indexKey)
	mac.Write([]byte(plaintext))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// ParseKey decodes a base64 (standard or URL alphabet, padded or not) master
// key and checks its length.
func ParseKey(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, ErrEncryptionKeyMissing
	}

	for _, enc := range []*base64.Encoding{
		base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding,
	} {
		key, err := enc.DecodeString(encoded)
		if err != nil {
			continue
		}
		if len(key) != KeySize {
			return nil, fmt.Errorf("encryption key must decode to %d bytes, got %d", KeySize, len(key))
		}
		return key, nil
	}

	return nil, errors.New("encryption key is not valid base64")
}

// GenerateKey returns a new random master key, base64 encoded.
func GenerateKey() (string, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}
