package webhook

import "fmt"

/* Status represents the final state of a delivery record
 * Records are written once, after the outcome is known
 */
type Status int

const (
	Delivered Status = iota + 1
	Failed
)

// String returns the string representation of the status
func (s Status) String() string {
	switch s {
	case Delivered:
		return "delivered"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// NewStatus creates a Status from a string. Unknown names yield the zero Status.
func NewStatus(str string) Status {
	switch str {
	case "delivered":
		return Delivered
	case "failed":
		return Failed
	default:
		return 0
	}
}

// Validate checks if the status is valid
func (s Status) Validate() error {
	if s < Delivered || s > Failed {
		return fmt.Errorf("invalid status: %d", s)
	}
	return nil
}

// MarshalText encodes the status by name
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
