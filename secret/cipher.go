package secret

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/marcelsud/webhook-client/webhook"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// Prefix marks values produced by Cipher.Encrypt
const Prefix = "necta.secret.v1:"

const hkdfInfo = "necta webhook auth"

// ErrInvalidCiphertext is returned for any value Decrypt cannot open
var ErrInvalidCiphertext = errors.New("invalid ciphertext")

/* Cipher seals small secrets (route auth configs) with XChaCha20-Poly1305
 * The AEAD key is derived from the configured key material with HKDF-SHA256.
 */
type Cipher struct {
	aead cipher.AEAD
}

// New creates a Cipher from key material of any length
func New(key string) (*Cipher, error) {
	material := strings.TrimSpace(key)
	if material == "" {
		return nil, fmt.Errorf("encryption key is required")
	}

	derived := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(material), nil, []byte(hkdfInfo)), derived); err != nil {
		return nil, fmt.Errorf("deriving key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(derived)
	if err != nil {
		return nil, fmt.Errorf("creating aead: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// Encrypt returns Prefix followed by base64url(nonce || sealed)
func (c *Cipher) Encrypt(plaintext []byte) (string, error) {
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plaintext)+c.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, plaintext, nil)
	return Prefix + base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt
func (c *Cipher) Decrypt(value string) ([]byte, error) {
	encoded, ok := strings.CutPrefix(strings.TrimSpace(value), Prefix)
	if !ok {
		return nil, fmt.Errorf("%w: missing %s prefix", ErrInvalidCiphertext, Prefix)
	}

	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding: %v", ErrInvalidCiphertext, err)
	}
	if len(data) < c.aead.NonceSize()+c.aead.Overhead() {
		return nil, fmt.Errorf("%w: too short", ErrInvalidCiphertext)
	}

	nonce, sealed := data[:c.aead.NonceSize()], data[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCiphertext, err)
	}
	return plaintext, nil
}

// EncryptAuth seals an auth config as JSON
func (c *Cipher) EncryptAuth(cfg webhook.AuthConfig) (string, error) {
	if _, err := cfg.Auth(); err != nil {
		return "", fmt.Errorf("validating auth: %w", err)
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshaling auth: %w", err)
	}
	return c.Encrypt(data)
}

// DecryptAuth opens a value produced by EncryptAuth
func (c *Cipher) DecryptAuth(value string) (webhook.AuthConfig, error) {
	data, err := c.Decrypt(value)
	if err != nil {
		return webhook.AuthConfig{}, err
	}

	var cfg webhook.AuthConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return webhook.AuthConfig{}, fmt.Errorf("%w: decoding auth: %v", ErrInvalidCiphertext, err)
	}
	return cfg, nil
}
