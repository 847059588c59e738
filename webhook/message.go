package webhook

import (
	"encoding/json"
	"time"
)

const defaultContentFormat = "markdown"

/* Message is one outbound message delivered to an agent webhook
 * Uses value semantics: the client only ever reads its copy
 */
type Message struct {
	ID          string         `json:"message_id"`
	UserID      string         `json:"user_id"`
	Content     string         `json:"content"`
	Format      string         `json:"format"`
	Timestamp   time.Time      `json:"timestamp"`
	Attachments []string       `json:"attachments"`
	Metadata    map[string]any `json:"metadata"`
}

// MessageOption customises a Message built by NewMessage
type MessageOption func(*Message)

// WithContentFormat sets the content format tag (default "markdown")
func WithContentFormat(format string) MessageOption {
	return func(m *Message) {
		if format != "" {
			m.Format = format
		}
	}
}

// WithTimestamp overrides the creation timestamp
func WithTimestamp(ts time.Time) MessageOption {
	return func(m *Message) {
		if !ts.IsZero() {
			m.Timestamp = ts.UTC()
		}
	}
}

// WithAttachments sets the ordered attachment references
func WithAttachments(attachments ...string) MessageOption {
	return func(m *Message) {
		m.Attachments = append([]string{}, attachments...)
	}
}

// WithMetadata sets the open-ended metadata mapping
func WithMetadata(metadata map[string]any) MessageOption {
	return func(m *Message) {
		m.Metadata = make(map[string]any, len(metadata))
		for k, v := range metadata {
			m.Metadata[k] = v
		}
	}
}

// NewMessage creates a Message stamped with the current time
func NewMessage(id, userID, content string, opts ...MessageOption) Message {
	m := Message{
		ID:          id,
		UserID:      userID,
		Content:     content,
		Format:      defaultContentFormat,
		Timestamp:   time.Now().UTC(),
		Attachments: []string{},
		Metadata:    map[string]any{},
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// MarshalJSON always emits attachments as a list and metadata as an object
func (m Message) MarshalJSON() ([]byte, error) {
	type Alias Message
	aux := struct {
		Timestamp string `json:"timestamp"`
		Alias
	}{
		Timestamp: m.Timestamp.UTC().Format(time.RFC3339Nano),
		Alias:     Alias(m),
	}
	if aux.Attachments == nil {
		aux.Attachments = []string{}
	}
	if aux.Metadata == nil {
		aux.Metadata = map[string]any{}
	}
	return json.Marshal(aux)
}
