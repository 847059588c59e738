package webhook_test

import (
	"testing"

	"github.com/marcelsud/webhook-client/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareHeaders(t *testing.T) {
	t.Run("basic auth", func(t *testing.T) {
		h := webhook.PrepareHeaders(webhook.BasicAuth{Username: "u", Password: "p"})

		assert.Equal(t, "Basic dTpw", h.Get("Authorization"))
		assert.Equal(t, "application/json", h.Get("Content-Type"))
		assert.Equal(t, "NECTA-WebhookClient/1.0", h.Get("User-Agent"))
	})

	t.Run("bearer token", func(t *testing.T) {
		h := webhook.PrepareHeaders(webhook.BearerAuth{Token: "t"})

		assert.Equal(t, "Bearer t", h.Get("Authorization"))
	})

	t.Run("custom header", func(t *testing.T) {
		h := webhook.PrepareHeaders(webhook.HeaderAuth{Name: "X-Webhook-Token", Value: "secret"})

		assert.Equal(t, "secret", h.Get("X-Webhook-Token"))
		assert.Empty(t, h.Get("Authorization"))
	})

	t.Run("none", func(t *testing.T) {
		h := webhook.PrepareHeaders(webhook.NoAuth{})

		_, present := h["Authorization"]
		assert.False(t, present)
		assert.Len(t, h, 2)
	})

	t.Run("nil auth behaves like none", func(t *testing.T) {
		h := webhook.PrepareHeaders(nil)

		assert.Empty(t, h.Get("Authorization"))
	})
}

func TestAuthKind(t *testing.T) {
	assert.Equal(t, webhook.AuthBearer, webhook.NewAuthKind("jwt"))
	assert.Equal(t, webhook.AuthBearer, webhook.NewAuthKind("bearer-token"))
	assert.Equal(t, webhook.AuthNone, webhook.NewAuthKind(""))
	assert.Equal(t, "basic", webhook.AuthBasic.String())
	assert.Error(t, webhook.NewAuthKind("oauth").Validate())
}

func TestAuthConfig_Auth(t *testing.T) {
	t.Run("success - each kind", func(t *testing.T) {
		cases := []struct {
			cfg  webhook.AuthConfig
			want webhook.Auth
		}{
			{webhook.AuthConfig{Type: "none"}, webhook.NoAuth{}},
			{webhook.AuthConfig{Type: "basic", Username: "u", Password: "p"}, webhook.BasicAuth{Username: "u", Password: "p"}},
			{webhook.AuthConfig{Type: "header", Key: "X-Token", Value: "v"}, webhook.HeaderAuth{Name: "X-Token", Value: "v"}},
			{webhook.AuthConfig{Type: "jwt", Token: "t"}, webhook.BearerAuth{Token: "t"}},
		}
		for _, tc := range cases {
			got, err := tc.cfg.Auth()
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		}
	})

	t.Run("fields of other kinds are ignored", func(t *testing.T) {
		got, err := webhook.AuthConfig{Type: "bearer", Token: "t", Username: "ignored"}.Auth()

		require.NoError(t, err)
		assert.Equal(t, webhook.BearerAuth{Token: "t"}, got)
	})

	t.Run("error - missing required field", func(t *testing.T) {
		_, err := webhook.AuthConfig{Type: "basic", Username: "u"}.Auth()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "password")

		_, err = webhook.AuthConfig{Type: "header", Value: "v"}.Auth()
		require.Error(t, err)

		_, err = webhook.AuthConfig{Type: "bearer"}.Auth()
		require.Error(t, err)
	})

	t.Run("error - unknown type", func(t *testing.T) {
		_, err := webhook.AuthConfig{Type: "oauth"}.Auth()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported auth type")
	})

	t.Run("round trip through NewAuthConfig", func(t *testing.T) {
		original := webhook.HeaderAuth{Name: "X-Token", Value: "v"}

		got, err := webhook.NewAuthConfig(original).Auth()

		require.NoError(t, err)
		assert.Equal(t, original, got)
	})
}
