package webhook

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

const (
	// UserAgent identifies the delivery client to remote webhooks
	UserAgent = "NECTA-WebhookClient/1.0"

	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
)

/* AuthKind enumerates the authentication strategies a remote webhook may require
 * Exactly one kind is selected per configuration
 */
type AuthKind int

const (
	AuthNone AuthKind = iota + 1
	AuthBasic
	AuthHeader
	AuthBearer
)

// String returns the string representation of the auth kind
func (k AuthKind) String() string {
	switch k {
	case AuthNone:
		return "none"
	case AuthBasic:
		return "basic"
	case AuthHeader:
		return "header"
	case AuthBearer:
		return "bearer"
	default:
		return "unknown"
	}
}

// NewAuthKind creates an AuthKind from a string
func NewAuthKind(s string) AuthKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return AuthNone
	case "basic":
		return AuthBasic
	case "header":
		return AuthHeader
	case "bearer", "bearer-token", "jwt":
		return AuthBearer
	default:
		return 0
	}
}

// Validate checks if the auth kind is valid
func (k AuthKind) Validate() error {
	if k < AuthNone || k > AuthBearer {
		return fmt.Errorf("invalid auth kind: %d", k)
	}
	return nil
}

/* Auth is a sealed sum type: each variant carries only the fields its kind needs
 * The set of variants is closed, so PrepareHeaders can switch over it exhaustively
 */
type Auth interface {
	Kind() AuthKind
	sealed()
}

// NoAuth sends no credentials
type NoAuth struct{}

// BasicAuth sends HTTP basic credentials
type BasicAuth struct {
	Username string
	Password string
}

// HeaderAuth sends one custom header verbatim, e.g. X-Webhook-Token
type HeaderAuth struct {
	Name  string
	Value string
}

// BearerAuth sends a bearer token (JWT or opaque)
type BearerAuth struct {
	Token string
}

func (NoAuth) Kind() AuthKind     { return AuthNone }
func (BasicAuth) Kind() AuthKind  { return AuthBasic }
func (HeaderAuth) Kind() AuthKind { return AuthHeader }
func (BearerAuth) Kind() AuthKind { return AuthBearer }

func (NoAuth) sealed()     {}
func (BasicAuth) sealed()  {}
func (HeaderAuth) sealed() {}
func (BearerAuth) sealed() {}

// PrepareHeaders builds the base request headers for the given auth.
// It has no side effects and is safe to call once per request.
func PrepareHeaders(auth Auth) http.Header {
	h := make(http.Header)
	h.Set("Content-Type", contentTypeJSON)
	h.Set("User-Agent", UserAgent)

	switch a := auth.(type) {
	case BasicAuth:
		credentials := base64.StdEncoding.EncodeToString([]byte(a.Username + ":" + a.Password))
		h.Set("Authorization", "Basic "+credentials)
	case HeaderAuth:
		// set directly so the configured name is sent as written
		h[a.Name] = []string{a.Value}
	case BearerAuth:
		h.Set("Authorization", "Bearer "+a.Token)
	}

	return h
}

/* AuthConfig is the declarative, serialisable form of Auth
 * It is what route files and encrypted envelopes carry
 */
type AuthConfig struct {
	Type     string `json:"type" yaml:"type"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	Key      string `json:"key,omitempty" yaml:"key,omitempty"`
	Value    string `json:"value,omitempty" yaml:"value,omitempty"`
	Token    string `json:"token,omitempty" yaml:"token,omitempty"`
}

// Auth converts the config into its variant, checking only the fields the kind uses
func (c AuthConfig) Auth() (Auth, error) {
	kind := NewAuthKind(c.Type)
	if err := kind.Validate(); err != nil {
		return nil, fmt.Errorf("unsupported auth type %q", c.Type)
	}

	switch kind {
	case AuthBasic:
		if c.Username == "" {
			return nil, fmt.Errorf("basic auth requires a username")
		}
		if c.Password == "" {
			return nil, fmt.Errorf("basic auth requires a password")
		}
		return BasicAuth{Username: c.Username, Password: c.Password}, nil
	case AuthHeader:
		if c.Key == "" {
			return nil, fmt.Errorf("header auth requires a header key")
		}
		if c.Value == "" {
			return nil, fmt.Errorf("header auth requires a header value")
		}
		return HeaderAuth{Name: c.Key, Value: c.Value}, nil
	case AuthBearer:
		if c.Token == "" {
			return nil, fmt.Errorf("bearer auth requires a token")
		}
		return BearerAuth{Token: c.Token}, nil
	default:
		return NoAuth{}, nil
	}
}

// NewAuthConfig returns the serialisable form of an Auth variant
func NewAuthConfig(auth Auth) AuthConfig {
	switch a := auth.(type) {
	case BasicAuth:
		return AuthConfig{Type: AuthBasic.String(), Username: a.Username, Password: a.Password}
	case HeaderAuth:
		return AuthConfig{Type: AuthHeader.String(), Key: a.Name, Value: a.Value}
	case BearerAuth:
		return AuthConfig{Type: AuthBearer.String(), Token: a.Token}
	default:
		return AuthConfig{Type: AuthNone.String()}
	}
}
