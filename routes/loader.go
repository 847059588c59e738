package routes

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/marcelsud/webhook-client/config"
	"github.com/marcelsud/webhook-client/secret"
	"github.com/marcelsud/webhook-client/webhook"
	"gopkg.in/yaml.v3"
)

/* Loader manages route configuration from routes.yaml
 * Provides in-memory lookup for fast access
 */

// Config represents the structure of routes.yaml
type Config struct {
	Routes []RouteConfig `yaml:"routes"`
}

// RouteConfig represents a single route in the YAML file
type RouteConfig struct {
	RouteID           string              `yaml:"route_id"`
	Name              string              `yaml:"name"`
	Description       string              `yaml:"description"`
	Environment       string              `yaml:"environment"`
	DevBaseURL        string              `yaml:"dev_base_url"`
	ProdBaseURL       string              `yaml:"prod_base_url"`
	WebhookPath       string              `yaml:"webhook_path"`
	TestPath          string              `yaml:"test_path"`
	PayloadFormat     string              `yaml:"payload_format"`
	Auth              *webhook.AuthConfig `yaml:"auth"`
	AuthEncrypted     string              `yaml:"auth_encrypted"` // secret.Cipher envelope of an auth block
	TimeoutSeconds    *int                `yaml:"timeout_seconds"`
	MaxRetries        *int                `yaml:"max_retries"`
	RetryDelaySeconds *int                `yaml:"retry_delay_seconds"`
	SigningSecret     string              `yaml:"signing_secret"`
	Active            *bool               `yaml:"active"`              // Default: true
	DeliveredTTLHours *int                `yaml:"delivered_ttl_hours"` // Optional: override global default
	FailedTTLHours    *int                `yaml:"failed_ttl_hours"`    // Optional: override global default
}

// Loader holds the loaded routes
type Loader struct {
	cfg    *config.Config
	cipher *secret.Cipher

	mu     sync.RWMutex
	routes map[string]*Route
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithConfig supplies global defaults for timeouts, retries and TTLs
func WithConfig(cfg *config.Config) LoaderOption {
	return func(l *Loader) { l.cfg = cfg }
}

// WithCipher enables auth_encrypted entries
func WithCipher(c *secret.Cipher) LoaderOption {
	return func(l *Loader) { l.cipher = c }
}

// NewLoader creates a new route loader
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		routes: make(map[string]*Route),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads and parses the routes.yaml file. Nothing is replaced when any route is invalid.
func (l *Loader) Load(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading routes file: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing routes YAML: %w", err)
	}

	loaded := make(map[string]*Route, len(file.Routes))
	for _, rc := range file.Routes {
		route, err := l.build(rc)
		if err != nil {
			return fmt.Errorf("building route %s: %w", rc.RouteID, err)
		}
		if err := route.Validate(); err != nil {
			return fmt.Errorf("validating route: %w", err)
		}
		if _, dup := loaded[route.RouteID]; dup {
			return fmt.Errorf("duplicate route_id %s", route.RouteID)
		}
		loaded[route.RouteID] = route
	}

	l.mu.Lock()
	l.routes = loaded
	l.mu.Unlock()
	return nil
}

func (l *Loader) build(rc RouteConfig) (*Route, error) {
	auth, err := l.auth(rc)
	if err != nil {
		return nil, err
	}

	timeout := int(webhook.DefaultTimeout / time.Second)
	maxRetries := webhook.DefaultMaxRetries
	retryDelay := int(webhook.DefaultRetryDelay / time.Second)
	if l.cfg != nil {
		timeout = l.cfg.WebhookTimeoutSeconds
		maxRetries = l.cfg.WebhookMaxRetries
		retryDelay = l.cfg.WebhookRetryDelaySeconds
	}
	if rc.TimeoutSeconds != nil {
		timeout = *rc.TimeoutSeconds
	}
	if rc.MaxRetries != nil {
		maxRetries = *rc.MaxRetries
	}
	if rc.RetryDelaySeconds != nil {
		retryDelay = *rc.RetryDelaySeconds
	}

	name := rc.Name
	if name == "" {
		name = rc.RouteID
	}
	active := true
	if rc.Active != nil {
		active = *rc.Active
	}

	return &Route{
		RouteID:           rc.RouteID,
		Name:              name,
		Description:       rc.Description,
		Environment:       NewEnvironment(rc.Environment),
		DevBaseURL:        rc.DevBaseURL,
		ProdBaseURL:       rc.ProdBaseURL,
		WebhookPath:       rc.WebhookPath,
		TestPath:          rc.TestPath,
		Format:            webhook.NewPayloadFormat(rc.PayloadFormat),
		Auth:              auth,
		Timeout:           time.Duration(timeout) * time.Second,
		MaxRetries:        maxRetries,
		RetryDelay:        time.Duration(retryDelay) * time.Second,
		SigningSecret:     rc.SigningSecret,
		Active:            active,
		DeliveredTTLHours: rc.DeliveredTTLHours,
		FailedTTLHours:    rc.FailedTTLHours,
	}, nil
}

func (l *Loader) auth(rc RouteConfig) (webhook.Auth, error) {
	switch {
	case rc.Auth != nil && rc.AuthEncrypted != "":
		return nil, fmt.Errorf("auth and auth_encrypted are mutually exclusive")
	case rc.AuthEncrypted != "":
		if l.cipher == nil {
			return nil, fmt.Errorf("auth_encrypted requires an encryption key")
		}
		cfg, err := l.cipher.DecryptAuth(rc.AuthEncrypted)
		if err != nil {
			return nil, fmt.Errorf("decrypting auth: %w", err)
		}
		return cfg.Auth()
	case rc.Auth != nil:
		return rc.Auth.Auth()
	default:
		return webhook.NoAuth{}, nil
	}
}

// Get retrieves a route by its ID
func (l *Loader) Get(routeID string) (*Route, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	route, exists := l.routes[routeID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", webhook.ErrRouteNotFound, routeID)
	}
	return route, nil
}

// List returns all loaded routes ordered by ID
func (l *Loader) List() []*Route {
	l.mu.RLock()
	defer l.mu.RUnlock()

	routes := make([]*Route, 0, len(l.routes))
	for _, route := range l.routes {
		routes = append(routes, route)
	}
	sort.Slice(routes, func(i, j int) bool { return routes[i].RouteID < routes[j].RouteID })
	return routes
}

// Exists checks if a route ID exists
func (l *Loader) Exists(routeID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, exists := l.routes[routeID]
	return exists
}

// Target resolves an active route into its delivery target
func (l *Loader) Target(_ context.Context, routeID string) (webhook.Target, error) {
	route, err := l.Get(routeID)
	if err != nil {
		return webhook.Target{}, err
	}
	if !route.Active {
		return webhook.Target{}, fmt.Errorf("%w: %s", webhook.ErrRouteInactive, routeID)
	}
	return route.Target(l.cfg), nil
}

var _ webhook.TargetResolver = (*Loader)(nil)
