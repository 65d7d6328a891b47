package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
)

// Cipher handles at-rest encryption of profile payloads and blind indexing
// of lookup fields.
type Cipher struct {
	encryptionKey []byte // 32 bytes for AES-256
	blindIndexKey []byte // separate key for HMAC blind indexing
}

// NewCipher builds a Cipher. Both keys must be 32 bytes
// (AES-256 and HMAC-SHA256 respectively).
func NewCipher(encryptionKey, blindIndexKey []byte) (*Cipher, error) {
	if len(encryptionKey) != 32 {
		return nil, errors.New("encryption key must be 32 bytes")
	}
	if len(blindIndexKey) != 32 {
		return nil, errors.New("blind index key must be 32 bytes")
	}
	return &Cipher{
		encryptionKey: encryptionKey,
		blindIndexKey: blindIndexKey,
	}, nil
}

// Seal encrypts a payload with AES-256-GCM and returns base64 ciphertext
// with the nonce prepended. Empty payloads pass through as "".
func (c *Cipher) Seal(plaintext []byte) (string, error) {
	if len(plaintext) == 0 {
		return "", nil
	}

	block, err := aes.NewCipher(c.encryptionKey)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal.
func (c *Cipher) Open(ciphertext string) ([]byte, error) {
	if ciphertext == "" {
		return nil, nil
	}

	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(c.encryptionKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return nil, errors.New("ciphertext too short")
	}

	nonce, sealed := data[:nonceSize], data[nonceSize:]
	return gcm.Open(nil, nonce, sealed, nil)
}

// SealString is Seal for string fields.
func (c *Cipher) SealString(plaintext string) (string, error) {
	return c.Seal([]byte(plaintext))
}

// OpenString is Open for string fields.
func (c *Cipher) OpenString(ciphertext string) (string, error) {
	out, err := c.Open(ciphertext)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// BlindIndex produces a deterministic HMAC-SHA256 hash so encrypted fields
// stay searchable without revealing the plaintext.
func (c *Cipher) BlindIndex(plaintext string) string {
	if plaintext == "" {
		return ""
	}
	h := hmac.New(sha256.New, c.blindIndexKey)
	h.Write([]byte(plaintext))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// SealWithBlindIndex encrypts a field and returns both the ciphertext and
// its blind index.
func (c *Cipher) SealWithBlindIndex(plaintext string) (sealed, blindIndex string, err error) {
	sealed, err = c.SealString(plaintext)
	if err != nil {
		return "", "", err
	}
	return sealed, c.BlindIndex(plaintext), nil
}
