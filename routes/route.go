package routes

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/marcelsud/webhook-client/config"
	"github.com/marcelsud/webhook-client/webhook"
	"github.com/marcelsud/webhook-client/webhook/signature"
)

const (
	maxNameLength        = 100
	maxDescriptionLength = 500

	// MaxDeliveryBudget bounds the worst-case duration of one send, retries included
	MaxDeliveryBudget = 3 * time.Minute
)

var (
	routeIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	namePattern    = regexp.MustCompile(`^[a-zA-Z0-9\s_-]+$`)
)

// Environment selects which base URL a route delivers to
type Environment int

const (
	Dev Environment = iota + 1
	Prod
)

func (e Environment) String() string {
	switch e {
	case Dev:
		return "dev"
	case Prod:
		return "prod"
	default:
		return "unknown"
	}
}

// NewEnvironment parses an environment name; empty means dev
func NewEnvironment(s string) Environment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "dev", "development":
		return Dev
	case "prod", "production":
		return Prod
	default:
		return 0
	}
}

func (e Environment) Validate() error {
	if e != Dev && e != Prod {
		return fmt.Errorf("invalid environment: %d", e)
	}
	return nil
}

/* Route represents an agent webhook destination
 * Holds both environment URLs; Environment picks the one deliveries use.
 */
type Route struct {
	RouteID           string
	Name              string
	Description       string
	Environment       Environment
	DevBaseURL        string
	ProdBaseURL       string
	WebhookPath       string
	TestPath          string
	Format            webhook.PayloadFormat
	Auth              webhook.Auth
	Timeout           time.Duration
	MaxRetries        int
	RetryDelay        time.Duration
	SigningSecret     string // Standard Webhooks signing secret (whsec_ prefix)
	Active            bool
	DeliveredTTLHours *int // Optional: TTL for delivered records in hours
	FailedTTLHours    *int // Optional: TTL for failed records in hours
}

// BaseURL returns the URL of the selected environment
func (r *Route) BaseURL() string {
	if r.Environment == Prod {
		return r.ProdBaseURL
	}
	return r.DevBaseURL
}

// AuthKind returns the auth scheme without exposing credentials
func (r *Route) AuthKind() webhook.AuthKind {
	if r.Auth == nil {
		return webhook.AuthNone
	}
	return r.Auth.Kind()
}

// DeliveryBudget returns the longest a send can take: every attempt timing out
// plus the delays between them
func (r *Route) DeliveryBudget() time.Duration {
	attempts := time.Duration(r.MaxRetries + 1)
	return attempts*r.Timeout + time.Duration(r.MaxRetries)*r.RetryDelay
}

// Validate checks if the route configuration is valid
func (r *Route) Validate() error {
	if r.RouteID == "" {
		return fmt.Errorf("route_id cannot be empty")
	}
	if !routeIDPattern.MatchString(r.RouteID) {
		return fmt.Errorf("route_id %q may only contain letters, digits, '-' and '_'", r.RouteID)
	}
	if r.Name == "" || len(r.Name) > maxNameLength {
		return fmt.Errorf("name must be 1-%d characters for route %s", maxNameLength, r.RouteID)
	}
	if !namePattern.MatchString(r.Name) {
		return fmt.Errorf("name contains invalid characters for route %s", r.RouteID)
	}
	if len(r.Description) > maxDescriptionLength {
		return fmt.Errorf("description must be at most %d characters for route %s", maxDescriptionLength, r.RouteID)
	}
	if err := r.Environment.Validate(); err != nil {
		return fmt.Errorf("invalid environment for route %s: %w", r.RouteID, err)
	}
	if err := r.validateURLs(); err != nil {
		return err
	}
	if r.WebhookPath == "" {
		return fmt.Errorf("webhook_path cannot be empty for route %s", r.RouteID)
	}
	if err := r.Format.Validate(); err != nil {
		return fmt.Errorf("invalid payload_format for route %s: %w", r.RouteID, err)
	}
	if r.Auth == nil {
		return fmt.Errorf("auth cannot be nil for route %s", r.RouteID)
	}
	if r.Timeout <= 0 {
		return fmt.Errorf("timeout_seconds must be positive for route %s", r.RouteID)
	}
	if r.MaxRetries < 0 {
		return fmt.Errorf("max_retries cannot be negative for route %s", r.RouteID)
	}
	if r.RetryDelay < 0 {
		return fmt.Errorf("retry_delay_seconds cannot be negative for route %s", r.RouteID)
	}
	if budget := r.DeliveryBudget(); budget > MaxDeliveryBudget {
		return fmt.Errorf("timeout_seconds, max_retries and retry_delay_seconds allow a send of %s for route %s, the limit is %s",
			budget, r.RouteID, MaxDeliveryBudget)
	}
	if r.DeliveredTTLHours != nil && *r.DeliveredTTLHours < 0 {
		return fmt.Errorf("delivered_ttl_hours cannot be negative for route %s", r.RouteID)
	}
	if r.FailedTTLHours != nil && *r.FailedTTLHours < 0 {
		return fmt.Errorf("failed_ttl_hours cannot be negative for route %s", r.RouteID)
	}
	if r.SigningSecret != "" {
		if _, err := signature.ParseSecret(r.SigningSecret); err != nil {
			return fmt.Errorf("invalid signing_secret for route %s: %w", r.RouteID, err)
		}
	}
	return nil
}

func (r *Route) validateURLs() error {
	if r.DevBaseURL != "" {
		u, err := parseBaseURL(r.DevBaseURL)
		if err != nil {
			return fmt.Errorf("invalid dev_base_url for route %s: %w", r.RouteID, err)
		}
		if u.Scheme != "https" && !isLocalhost(u.Hostname()) {
			return fmt.Errorf("dev_base_url must use HTTPS or be localhost for route %s", r.RouteID)
		}
	}
	if r.ProdBaseURL != "" {
		u, err := parseBaseURL(r.ProdBaseURL)
		if err != nil {
			return fmt.Errorf("invalid prod_base_url for route %s: %w", r.RouteID, err)
		}
		if u.Scheme != "https" {
			return fmt.Errorf("prod_base_url must use HTTPS for route %s", r.RouteID)
		}
		if isPrivateHost(u.Hostname()) {
			return fmt.Errorf("prod_base_url cannot use a private address for route %s", r.RouteID)
		}
	}
	if r.DevBaseURL != "" && r.DevBaseURL == r.ProdBaseURL {
		return fmt.Errorf("dev_base_url and prod_base_url must be different for route %s", r.RouteID)
	}
	if r.BaseURL() == "" {
		return fmt.Errorf("%s_base_url is required for route %s", r.Environment, r.RouteID)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("%q is not an absolute URL", raw)
	}
	return u, nil
}

func isLocalhost(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func isPrivateHost(host string) bool {
	if isLocalhost(host) {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && (ip.IsPrivate() || ip.IsLinkLocalUnicast())
}

// GetDeliveredTTL returns the TTL for delivered records
// Priority: route-specific > config > default (1 hour)
func (r *Route) GetDeliveredTTL(cfg *config.Config) time.Duration {
	hours := 1 // default
	if cfg != nil {
		hours = cfg.GetWebhookDeliveredTTLHours()
	}
	if r.DeliveredTTLHours != nil {
		hours = *r.DeliveredTTLHours
	}
	return time.Duration(hours) * time.Hour
}

// GetFailedTTL returns the TTL for failed records
// Priority: route-specific > config > default (24 hours)
func (r *Route) GetFailedTTL(cfg *config.Config) time.Duration {
	hours := 24 // default
	if cfg != nil {
		hours = cfg.GetWebhookFailedTTLHours()
	}
	if r.FailedTTLHours != nil {
		hours = *r.FailedTTLHours
	}
	return time.Duration(hours) * time.Hour
}

// Target builds the delivery target of the route
func (r *Route) Target(cfg *config.Config) webhook.Target {
	testPath := r.TestPath
	if testPath == "" {
		testPath = r.WebhookPath
	}
	return webhook.Target{
		RouteID:       r.RouteID,
		BaseURL:       r.BaseURL(),
		Path:          r.WebhookPath,
		TestPath:      testPath,
		Format:        r.Format,
		Auth:          r.Auth,
		Timeout:       r.Timeout,
		MaxRetries:    r.MaxRetries,
		RetryDelay:    r.RetryDelay,
		SigningSecret: r.SigningSecret,
		DeliveredTTL:  r.GetDeliveredTTL(cfg),
		FailedTTL:     r.GetFailedTTL(cfg),
	}
}
