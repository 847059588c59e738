package signature

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecret(t *testing.T) {
	t.Run("success - bounds", func(t *testing.T) {
		for _, size := range []int{MinSecretBytes, 32, MaxSecretBytes} {
			secret, err := GenerateSecret(size)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(secret.String(), SecretPrefix))
			assert.Len(t, secret.raw, size)
		}
	})

	t.Run("error - out of range", func(t *testing.T) {
		_, err := GenerateSecret(MinSecretBytes - 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "secret size must be between")

		_, err = GenerateSecret(MaxSecretBytes + 1)
		require.Error(t, err)
	})

	t.Run("randomness - generates different secrets", func(t *testing.T) {
		a, err := GenerateSecret(32)
		require.NoError(t, err)
		b, err := GenerateSecret(32)
		require.NoError(t, err)
		assert.NotEqual(t, a.String(), b.String())
	})
}

func TestParseSecret(t *testing.T) {
	t.Run("success - round trip", func(t *testing.T) {
		original, err := GenerateSecret(32)
		require.NoError(t, err)

		parsed, err := ParseSecret(original.String())
		require.NoError(t, err)
		assert.Equal(t, original.raw, parsed.raw)
	})

	t.Run("error - missing prefix", func(t *testing.T) {
		_, err := ParseSecret("c2VjcmV0")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "prefix")
	})

	t.Run("error - invalid base64", func(t *testing.T) {
		_, err := ParseSecret(SecretPrefix + "!!!")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decoding base64 secret")
	})

	t.Run("error - too short", func(t *testing.T) {
		_, err := ParseSecret(SecretPrefix + "c2hvcnQ=")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "secret size must be between")
	})
}

func TestSignAndVerify(t *testing.T) {
	secret, err := GenerateSecret(32)
	require.NoError(t, err)
	ts := time.Unix(1700000000, 0)
	payload := []byte(`{"message_id":"msg-1"}`)

	t.Run("success - verifies own signature", func(t *testing.T) {
		sig, err := Sign(secret, "msg-1", ts, payload)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(sig, "v1,"))

		ok, err := Verify(secret, "msg-1", ts, payload, sig)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("success - any of several signatures", func(t *testing.T) {
		other, err := GenerateSecret(32)
		require.NoError(t, err)
		stale, err := Sign(other, "msg-1", ts, payload)
		require.NoError(t, err)
		current, err := Sign(secret, "msg-1", ts, payload)
		require.NoError(t, err)

		ok, err := Verify(secret, "msg-1", ts, payload, stale+" "+current)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("tampered payload fails", func(t *testing.T) {
		sig, err := Sign(secret, "msg-1", ts, payload)
		require.NoError(t, err)

		ok, err := Verify(secret, "msg-1", ts, []byte(`{"message_id":"msg-2"}`), sig)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("error - message id with dot", func(t *testing.T) {
		_, err := Sign(secret, "msg.1", ts, payload)
		require.Error(t, err)
	})

	t.Run("error - malformed header", func(t *testing.T) {
		_, err := Verify(secret, "msg-1", ts, payload, "garbage")
		require.Error(t, err)
	})
}

func TestHeaders(t *testing.T) {
	secret, err := GenerateSecret(32)
	require.NoError(t, err)
	ts := time.Unix(1700000000, 0)

	h, err := Headers(secret, "msg-1", ts, []byte("body"))
	require.NoError(t, err)

	assert.Equal(t, "msg-1", h.Get(HeaderID))
	assert.Equal(t, "1700000000", h.Get(HeaderTimestamp))

	ok, err := Verify(secret, "msg-1", ts, []byte("body"), h.Get(HeaderSignature))
	require.NoError(t, err)
	assert.True(t, ok)
}
