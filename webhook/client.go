package webhook

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/marcelsud/webhook-client/webhook/signature"
	"github.com/rs/zerolog"
)

const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryDelay = 5 * time.Second

	// MaxResponseBytes caps how much of a response body is read
	MaxResponseBytes = 1 << 20

	maxIdleConns = 10
	maxConns     = 100
)

// HTTPClient executes requests; *http.Client satisfies it
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

/* Client delivers messages to one webhook base address
 * Uses pointer semantics: it owns a connection pool shared by concurrent Sends.
 * Release it with Close once done.
 */
type Client struct {
	baseURL    *url.URL
	auth       Auth
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration

	httpClient HTTPClient
	transport  *http.Transport
	clock      clockwork.Clock
	logger     zerolog.Logger
	recorder   Recorder
	secret     *signature.Secret

	closeOnce sync.Once
}

// Option configures a Client
type Option func(*Client)

// WithTimeout bounds each individual attempt
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithMaxRetries sets how many times a failed attempt is retried
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithRetryDelay sets the fixed delay between attempts
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) { c.retryDelay = d }
}

// WithHTTPClient replaces the pooled HTTP client
func WithHTTPClient(hc HTTPClient) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithClock replaces the clock used for delays and timing
func WithClock(clock clockwork.Clock) Option {
	return func(c *Client) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger sets the logger used for attempt warnings
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithRecorder sets the attempt/outcome observer
func WithRecorder(r Recorder) Option {
	return func(c *Client) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithSigningSecret signs every attempt with Standard Webhooks headers
func WithSigningSecret(secret signature.Secret) Option {
	return func(c *Client) { c.secret = &secret }
}

// New creates a Client for baseURL, which must be an absolute URL
func New(baseURL string, auth Auth, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("base url must be absolute: %q", baseURL)
	}
	if auth == nil {
		auth = NoAuth{}
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = maxIdleConns
	transport.MaxIdleConnsPerHost = maxIdleConns
	transport.MaxConnsPerHost = maxConns

	c := &Client{
		baseURL:    u,
		auth:       auth,
		timeout:    DefaultTimeout,
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		httpClient: &http.Client{Transport: transport},
		transport:  transport,
		clock:      clockwork.NewRealClock(),
		logger:     zerolog.Nop(),
		recorder:   noopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %s", c.timeout)
	}
	if c.maxRetries < 0 {
		return nil, fmt.Errorf("max retries cannot be negative, got %d", c.maxRetries)
	}
	if c.retryDelay < 0 {
		return nil, fmt.Errorf("retry delay cannot be negative, got %s", c.retryDelay)
	}

	return c, nil
}

// Close releases the connection pool
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.transport.CloseIdleConnections()
	})
	return nil
}

// Send delivers msg to path (resolved against the base URL), retrying failed attempts.
// Every failure is reported through the returned Outcome.
func (c *Client) Send(ctx context.Context, path string, msg Message, format PayloadFormat) Outcome {
	outcome, err := c.send(ctx, path, msg, format)
	if err != nil {
		outcome = failed(msg.ID, err.Error(), nil, 0)
	}
	c.recorder.ObserveOutcome(ctx, outcome)
	return outcome
}

// send returns an error only when no attempt could be made
func (c *Client) send(ctx context.Context, path string, msg Message, format PayloadFormat) (Outcome, error) {
	target, err := c.resolve(path)
	if err != nil {
		return Outcome{}, err
	}

	body, contentType, err := encodePayload(msg, format)
	if err != nil {
		return Outcome{}, fmt.Errorf("encoding payload: %w", err)
	}
	headers := PrepareHeaders(c.auth)
	headers.Set("Content-Type", contentType)

	log := c.logger.With().Str("message_id", msg.ID).Str("target", target).Logger()
	webhookID := signingID(msg.ID)

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		last := attempt == c.maxRetries

		res, err := c.attempt(ctx, target, webhookID, headers, body)
		if err != nil {
			return Outcome{}, err
		}
		c.recorder.ObserveAttempt(ctx, Attempt{
			MessageID:  msg.ID,
			Target:     target,
			Number:     attempt + 1,
			StatusCode: res.statusCode,
			Elapsed:    res.elapsed,
			Err:        res.err,
		})

		if res.err == nil && res.statusCode == http.StatusOK {
			reply, replyFormat, metadata := parseReply(res.body)
			return succeeded(msg.ID, reply, replyFormat, res.elapsed.Milliseconds(), metadata, attempt+1), nil
		}

		var errMsg string
		var elapsedMs *int64
		if res.err != nil {
			errMsg = fmt.Sprintf("Request error: %v", res.err)
		} else {
			errMsg = fmt.Sprintf("HTTP %d: %s", res.statusCode, res.body)
			ms := res.elapsed.Milliseconds()
			elapsedMs = &ms
		}
		log.Warn().Int("attempt", attempt+1).Str("error", errMsg).Msg("webhook request failed")

		if last {
			return failed(msg.ID, errMsg, elapsedMs, attempt+1), nil
		}

		if err := c.wait(ctx); err != nil {
			return failed(msg.ID, fmt.Sprintf("Request error: %v", err), nil, attempt+1), nil
		}
	}

	return failed(msg.ID, "Maximum retries exceeded", nil, c.maxRetries+1), nil
}

type attemptResult struct {
	statusCode int
	body       []byte
	elapsed    time.Duration
	err        error // transport-level failure
}

// attempt performs one POST. The returned error means the request could not be built;
// transport failures are reported inside attemptResult.
func (c *Client) attempt(ctx context.Context, target, webhookID string, headers http.Header, body []byte) (attemptResult, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return attemptResult{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header = headers.Clone()

	if c.secret != nil {
		signed, err := signature.Headers(*c.secret, webhookID, c.clock.Now(), body)
		if err != nil {
			return attemptResult{}, fmt.Errorf("signing request: %w", err)
		}
		for key, values := range signed {
			req.Header[key] = values
		}
	}

	start := c.clock.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return attemptResult{err: err}, nil
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes))
	if err != nil {
		return attemptResult{err: fmt.Errorf("reading response body: %w", err)}, nil
	}

	return attemptResult{
		statusCode: resp.StatusCode,
		body:       data,
		elapsed:    c.clock.Since(start),
	}, nil
}

// wait sleeps for the retry delay unless ctx ends first
func (c *Client) wait(ctx context.Context) error {
	if c.retryDelay <= 0 {
		return ctx.Err()
	}
	select {
	case <-c.clock.After(c.retryDelay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// signingID returns the webhook-id sent with signed requests. It is stable for a
// message across retries; ids that are empty or contain '.' are base64url encoded.
func signingID(msgID string) string {
	if msgID != "" && !strings.Contains(msgID, ".") {
		return msgID
	}
	return "msg_" + base64.RawURLEncoding.EncodeToString([]byte(msgID))
}

func (c *Client) resolve(path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parsing webhook path: %w", err)
	}
	return c.baseURL.ResolveReference(ref).String(), nil
}
