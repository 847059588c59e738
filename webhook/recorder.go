package webhook

import (
	"context"
	"time"
)

// Attempt describes one delivery attempt inside a Send call
type Attempt struct {
	MessageID  string
	Target     string
	Number     int // 1-based
	StatusCode int // 0 when no response was received
	Elapsed    time.Duration
	Err        error
}

// Result classifies the attempt as "ok", "http_error" or "transport_error"
func (a Attempt) Result() string {
	switch {
	case a.Err != nil:
		return "transport_error"
	case a.StatusCode == 200:
		return "ok"
	default:
		return "http_error"
	}
}

/* Recorder observes deliveries as they happen
 * Implementations must be safe for concurrent use
 */
type Recorder interface {
	ObserveAttempt(ctx context.Context, attempt Attempt)
	ObserveOutcome(ctx context.Context, outcome Outcome)
}

type noopRecorder struct{}

func (noopRecorder) ObserveAttempt(context.Context, Attempt) {}
func (noopRecorder) ObserveOutcome(context.Context, Outcome) {}
