package webhook

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	testMessageID = "test-connection"
	testUserID    = "system"
	testContent   = "Connection test"
)

/* ConnectionStatus is the three-state result of a connectivity test
 * Errored means the call itself broke before any outcome existed
 */
type ConnectionStatus int

const (
	Connected ConnectionStatus = iota + 1
	Disconnected
	Errored
)

// String returns the string representation of the connection status
func (s ConnectionStatus) String() string {
	switch s {
	case Connected:
		return "connected"
	case Disconnected:
		return "failed"
	case Errored:
		return "error"
	default:
		return "unknown"
	}
}

// NewConnectionStatus parses a status name
func NewConnectionStatus(s string) ConnectionStatus {
	switch strings.ToLower(s) {
	case "connected":
		return Connected
	case "failed":
		return Disconnected
	case "error":
		return Errored
	default:
		return 0
	}
}

// MarshalText encodes the status by name
func (s ConnectionStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name
func (s *ConnectionStatus) UnmarshalText(text []byte) error {
	status := NewConnectionStatus(string(text))
	if status == 0 {
		return fmt.Errorf("invalid connection status: %q", text)
	}
	*s = status
	return nil
}

// ConnectionReport summarises a TestConnection call
type ConnectionReport struct {
	Success        bool             `json:"success"`
	Status         ConnectionStatus `json:"status"`
	Error          string           `json:"error,omitempty"`
	ResponseTimeMs *int64           `json:"response_time_ms,omitempty"`
}

// RouteHealth is the latest connectivity check of a route
type RouteHealth struct {
	RouteID   string           `json:"route_id"`
	Report    ConnectionReport `json:"report"`
	CheckedAt time.Time        `json:"checked_at"`
}

// TestConnection sends a synthetic message to path and reports whether the
// webhook answered. It never panics and never returns an error.
func (c *Client) TestConnection(ctx context.Context, path string) (report ConnectionReport) {
	defer func() {
		if r := recover(); r != nil {
			report = ConnectionReport{Status: Errored, Error: fmt.Sprint(r)}
		}
	}()

	msg := NewMessage(testMessageID, testUserID, testContent,
		WithMetadata(map[string]any{"test": true}),
	)

	outcome, err := c.send(ctx, path, msg, FormatJSON)
	if err != nil {
		return ConnectionReport{Status: Errored, Error: err.Error()}
	}
	c.recorder.ObserveOutcome(ctx, outcome)

	status := Disconnected
	if outcome.Success {
		status = Connected
	}
	return ConnectionReport{
		Success:        outcome.Success,
		Status:         status,
		Error:          outcome.Error,
		ResponseTimeMs: outcome.ProcessingTimeMs,
	}
}
