package secret_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/marcelsud/webhook-client/secret"
	"github.com/marcelsud/webhook-client/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("success - any key length", func(t *testing.T) {
		for _, key := range []string{"k", "a-32-byte-key-for-testing-12345", strings.Repeat("x", 200)} {
			c, err := secret.New(key)
			require.NoError(t, err)
			assert.NotNil(t, c)
		}
	})

	t.Run("error - empty key", func(t *testing.T) {
		_, err := secret.New("   ")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "encryption key is required")
	})
}

func TestEncryptDecrypt(t *testing.T) {
	c, err := secret.New("test-encryption-key")
	require.NoError(t, err)

	t.Run("success - round trip", func(t *testing.T) {
		sealed, err := c.Encrypt([]byte("hello"))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(sealed, secret.Prefix))

		plain, err := c.Decrypt(sealed)
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), plain)
	})

	t.Run("success - nonces differ", func(t *testing.T) {
		a, err := c.Encrypt([]byte("same"))
		require.NoError(t, err)
		b, err := c.Encrypt([]byte("same"))
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("error - wrong key", func(t *testing.T) {
		sealed, err := c.Encrypt([]byte("hello"))
		require.NoError(t, err)

		other, err := secret.New("another-key")
		require.NoError(t, err)

		_, err = other.Decrypt(sealed)
		assert.ErrorIs(t, err, secret.ErrInvalidCiphertext)
	})

	t.Run("error - tampered", func(t *testing.T) {
		sealed, err := c.Encrypt([]byte("hello"))
		require.NoError(t, err)

		data, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(sealed, secret.Prefix))
		require.NoError(t, err)
		data[len(data)-1] ^= 0xff
		tampered := secret.Prefix + base64.RawURLEncoding.EncodeToString(data)

		_, err = c.Decrypt(tampered)
		assert.ErrorIs(t, err, secret.ErrInvalidCiphertext)
	})

	t.Run("error - malformed values", func(t *testing.T) {
		for _, value := range []string{
			"",
			"plain-text",
			secret.Prefix + "!!!",
			secret.Prefix + base64.RawURLEncoding.EncodeToString([]byte("short")),
		} {
			_, err := c.Decrypt(value)
			assert.ErrorIs(t, err, secret.ErrInvalidCiphertext, value)
		}
	})
}

func TestEncryptAuth(t *testing.T) {
	c, err := secret.New("test-encryption-key")
	require.NoError(t, err)

	t.Run("success - round trip", func(t *testing.T) {
		cfg := webhook.AuthConfig{Type: "header", Key: "X-Webhook-Token", Value: "your-secret-token"}

		sealed, err := c.EncryptAuth(cfg)
		require.NoError(t, err)
		assert.NotContains(t, sealed, "your-secret-token")

		got, err := c.DecryptAuth(sealed)
		require.NoError(t, err)
		assert.Equal(t, cfg, got)

		auth, err := got.Auth()
		require.NoError(t, err)
		assert.Equal(t, webhook.HeaderAuth{Name: "X-Webhook-Token", Value: "your-secret-token"}, auth)
	})

	t.Run("error - invalid auth", func(t *testing.T) {
		_, err := c.EncryptAuth(webhook.AuthConfig{Type: "basic", Username: "u"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validating auth")
	})

	t.Run("error - not json", func(t *testing.T) {
		sealed, err := c.Encrypt([]byte("not json"))
		require.NoError(t, err)

		_, err = c.DecryptAuth(sealed)
		assert.ErrorIs(t, err, secret.ErrInvalidCiphertext)
	})
}
