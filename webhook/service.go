package webhook

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/marcelsud/webhook-client/webhook/signature"
	"github.com/rs/zerolog"
)

/* Service represents the business logic layer
 * Uses pointer semantics as it's an API, not data
 */

// UseCase defines the business operations for webhook delivery
type UseCase interface {
	Deliver(ctx context.Context, routeID string, msg Message) (Delivery, error)
	TestRoute(ctx context.Context, routeID string) (ConnectionReport, error)
	Get(ctx context.Context, id string) (Delivery, error)
	List(ctx context.Context, routeID string, limit int) ([]Delivery, error)
}

type Service struct {
	Resolver TargetResolver
	Repo     Repository  // optional; deliveries are not recorded when nil
	Health   HealthStore // optional; connectivity checks are not recorded when nil

	logger     zerolog.Logger
	clientOpts []Option

	mu      sync.Mutex
	clients map[string]*Client
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithServiceLogger sets the logger handed to every route client
func WithServiceLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// WithClientOptions appends options applied to every route client
func WithClientOptions(opts ...Option) ServiceOption {
	return func(s *Service) { s.clientOpts = append(s.clientOpts, opts...) }
}

// WithHealthStore records every TestRoute result
func WithHealthStore(h HealthStore) ServiceOption {
	return func(s *Service) { s.Health = h }
}

// NewService creates a new delivery service with dependency injection
func NewService(resolver TargetResolver, repo Repository, opts ...ServiceOption) *Service {
	s := &Service{
		Resolver: resolver,
		Repo:     repo,
		logger:   zerolog.Nop(),
		clients:  make(map[string]*Client),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Deliver sends msg through the route and records the outcome.
// A failed delivery is not an error: it is reported in Delivery.Outcome.
func (s *Service) Deliver(ctx context.Context, routeID string, msg Message) (Delivery, error) {
	target, err := s.Resolver.Target(ctx, routeID)
	if err != nil {
		return Delivery{}, fmt.Errorf("resolving route: %w", err)
	}

	client, err := s.client(target)
	if err != nil {
		return Delivery{}, fmt.Errorf("creating client: %w", err)
	}

	createdAt := time.Now()
	outcome := client.Send(ctx, target.Path, msg, target.Format)

	status, ttl := Delivered, target.DeliveredTTL
	if !outcome.Success {
		status, ttl = Failed, target.FailedTTL
	}

	d := Delivery{
		ID:        uuid.New().String(),
		RouteID:   routeID,
		MessageID: msg.ID,
		UserID:    msg.UserID,
		Status:    status,
		Outcome:   outcome,
		CreatedAt: createdAt,
		UpdatedAt: time.Now(),
	}

	if s.Repo == nil {
		return d, nil
	}
	if err := s.Repo.Store(ctx, d); err != nil {
		return d, fmt.Errorf("storing delivery: %w", err)
	}
	if ttl > 0 {
		if err := s.Repo.SetTTL(ctx, d.ID, ttl); err != nil {
			return d, fmt.Errorf("setting delivery ttl: %w", err)
		}
	}
	return d, nil
}

// TestRoute checks connectivity of the route's webhook
func (s *Service) TestRoute(ctx context.Context, routeID string) (ConnectionReport, error) {
	target, err := s.Resolver.Target(ctx, routeID)
	if err != nil {
		return ConnectionReport{}, fmt.Errorf("resolving route: %w", err)
	}

	client, err := s.client(target)
	if err != nil {
		return ConnectionReport{}, fmt.Errorf("creating client: %w", err)
	}

	path := target.TestPath
	if path == "" {
		path = target.Path
	}
	report := client.TestConnection(ctx, path)

	if s.Health != nil {
		health := RouteHealth{RouteID: routeID, Report: report, CheckedAt: time.Now()}
		if err := s.Health.SetRouteHealth(ctx, health); err != nil {
			s.logger.Warn().Err(err).Str("route_id", routeID).Msg("recording route health")
		}
	}
	return report, nil
}

// Get returns a stored delivery record
func (s *Service) Get(ctx context.Context, id string) (Delivery, error) {
	if s.Repo == nil {
		return Delivery{}, fmt.Errorf("getting delivery: %w", ErrDeliveryNotFound)
	}
	d, err := s.Repo.Get(ctx, id)
	if err != nil {
		return Delivery{}, fmt.Errorf("getting delivery: %w", err)
	}
	return d, nil
}

// List returns the most recent delivery records of a route
func (s *Service) List(ctx context.Context, routeID string, limit int) ([]Delivery, error) {
	if s.Repo == nil {
		return []Delivery{}, nil
	}
	all, err := s.Repo.ListByRoute(ctx, routeID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing deliveries: %w", err)
	}
	return all, nil
}

// Close releases every route client
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for routeID, c := range s.clients {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing client for route %s: %w", routeID, err))
		}
		delete(s.clients, routeID)
	}
	return errors.Join(errs...)
}

// client returns the cached client of a route, creating it on first use
func (s *Service) client(target Target) (*Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.clients[target.RouteID]; ok {
		return c, nil
	}

	opts := []Option{
		WithLogger(s.logger.With().Str("route_id", target.RouteID).Logger()),
		WithMaxRetries(target.MaxRetries),
		WithRetryDelay(target.RetryDelay),
	}
	if target.Timeout > 0 {
		opts = append(opts, WithTimeout(target.Timeout))
	}
	if target.SigningSecret != "" {
		secret, err := signature.ParseSecret(target.SigningSecret)
		if err != nil {
			return nil, fmt.Errorf("parsing signing secret: %w", err)
		}
		opts = append(opts, WithSigningSecret(secret))
	}
	opts = append(opts, s.clientOpts...)

	c, err := New(target.BaseURL, target.Auth, opts...)
	if err != nil {
		return nil, err
	}
	s.clients[target.RouteID] = c
	return c, nil
}
