package signature

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	// SecretPrefix is the prefix for Standard Webhooks symmetric secrets
	SecretPrefix = "whsec_"

	// SignatureVersion is the version identifier for symmetric signatures
	SignatureVersion = "v1"

	MinSecretBytes = 24
	MaxSecretBytes = 64

	HeaderID        = "webhook-id"
	HeaderTimestamp = "webhook-timestamp"
	HeaderSignature = "webhook-signature"
)

// Secret is a Standard Webhooks signing secret
type Secret struct {
	raw     []byte
	encoded string
}

// GenerateSecret creates a random secret of size bytes
func GenerateSecret(size int) (Secret, error) {
	if size < MinSecretBytes || size > MaxSecretBytes {
		return Secret{}, fmt.Errorf("secret size must be between %d and %d bytes", MinSecretBytes, MaxSecretBytes)
	}

	raw := make([]byte, size)
	if _, err := rand.Read(raw); err != nil {
		return Secret{}, fmt.Errorf("generating random bytes: %w", err)
	}

	return Secret{
		raw:     raw,
		encoded: SecretPrefix + base64.StdEncoding.EncodeToString(raw),
	}, nil
}

// ParseSecret parses a whsec_-prefixed base64 secret
func ParseSecret(encoded string) (Secret, error) {
	b64, ok := strings.CutPrefix(encoded, SecretPrefix)
	if !ok {
		return Secret{}, fmt.Errorf("secret must start with %s prefix", SecretPrefix)
	}

	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return Secret{}, fmt.Errorf("decoding base64 secret: %w", err)
	}
	if len(raw) < MinSecretBytes || len(raw) > MaxSecretBytes {
		return Secret{}, fmt.Errorf("secret size must be between %d and %d bytes", MinSecretBytes, MaxSecretBytes)
	}

	return Secret{raw: raw, encoded: encoded}, nil
}

func (s Secret) String() string {
	return s.encoded
}

// Sign returns "v1,<base64 hmac>" over "{msgID}.{unix timestamp}.{payload}"
func Sign(secret Secret, msgID string, timestamp time.Time, payload []byte) (string, error) {
	if msgID == "" {
		return "", fmt.Errorf("message ID is required")
	}
	if strings.Contains(msgID, ".") {
		return "", fmt.Errorf("message ID must not contain '.'")
	}

	mac := hmac.New(sha256.New, secret.raw)
	mac.Write([]byte(msgID + "." + strconv.FormatInt(timestamp.Unix(), 10) + "."))
	mac.Write(payload)

	return SignatureVersion + "," + base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// Headers returns the three Standard Webhooks headers for one outbound request
func Headers(secret Secret, msgID string, timestamp time.Time, payload []byte) (http.Header, error) {
	sig, err := Sign(secret, msgID, timestamp, payload)
	if err != nil {
		return nil, fmt.Errorf("signing payload: %w", err)
	}

	h := make(http.Header)
	h.Set(HeaderID, msgID)
	h.Set(HeaderTimestamp, strconv.FormatInt(timestamp.Unix(), 10))
	h.Set(HeaderSignature, sig)
	return h, nil
}

// Verify checks the webhook-signature header value (space-delimited list)
// against the payload. Receivers use it; the client only signs.
func Verify(secret Secret, msgID string, timestamp time.Time, payload []byte, header string) (bool, error) {
	expected, err := Sign(secret, msgID, timestamp, payload)
	if err != nil {
		return false, err
	}

	found := false
	for _, candidate := range strings.Fields(header) {
		version, _, ok := strings.Cut(candidate, ",")
		if !ok {
			return false, fmt.Errorf("invalid signature format %q, expected 'version,signature'", candidate)
		}
		if version != SignatureVersion {
			continue
		}
		found = true
		if hmac.Equal([]byte(candidate), []byte(expected)) {
			return true, nil
		}
	}
	if !found {
		return false, fmt.Errorf("no %s signature in header", SignatureVersion)
	}
	return false, nil
}
