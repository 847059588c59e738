package webhook

import (
	"fmt"
	"strings"
)

/* PayloadFormat represents how a message is encoded into the request body
 * RawBody and Binary are accepted as tags but are encoded as JSON
 */
type PayloadFormat int

const (
	FormatJSON PayloadFormat = iota + 1
	FormatForm
	FormatRawBody
	FormatBinary
)

// String returns the string representation of the payload format
func (f PayloadFormat) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatForm:
		return "form_data"
	case FormatRawBody:
		return "raw_body"
	case FormatBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// NewPayloadFormat creates a PayloadFormat from a string
func NewPayloadFormat(s string) PayloadFormat {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "form_data", "form", "form-encoded":
		return FormatForm
	case "raw_body", "raw":
		return FormatRawBody
	case "binary":
		return FormatBinary
	default:
		return FormatJSON // default to JSON
	}
}

// Validate checks if the payload format is valid
func (f PayloadFormat) Validate() error {
	if f < FormatJSON || f > FormatBinary {
		return fmt.Errorf("invalid payload format: %d", f)
	}
	return nil
}
