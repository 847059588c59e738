package webhook

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
)

// encodePayload serialises msg for the given format and returns the body with its content type.
// RawBody and Binary are not differentiated yet and fall back to JSON.
func encodePayload(msg Message, format PayloadFormat) ([]byte, string, error) {
	if err := format.Validate(); err != nil {
		return nil, "", fmt.Errorf("validating payload format: %w", err)
	}

	if format == FormatForm {
		values, err := formValues(msg)
		if err != nil {
			return nil, "", err
		}
		return []byte(values.Encode()), contentTypeForm, nil
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return nil, "", fmt.Errorf("marshaling message: %w", err)
	}
	return body, contentTypeJSON, nil
}

// formValues flattens a message into form fields; attachments repeat, metadata is a JSON string
func formValues(msg Message) (url.Values, error) {
	metadata := msg.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("marshaling metadata: %w", err)
	}

	values := url.Values{}
	values.Set("message_id", msg.ID)
	values.Set("user_id", msg.UserID)
	values.Set("content", msg.Content)
	values.Set("format", msg.Format)
	values.Set("timestamp", msg.Timestamp.UTC().Format(time.RFC3339Nano))
	for _, attachment := range msg.Attachments {
		values.Add("attachments", attachment)
	}
	values.Set("metadata", string(metadataJSON))
	return values, nil
}

// parseReply reads an agent reply leniently: anything missing or malformed takes its default
func parseReply(body []byte) (reply, format string, metadata map[string]any) {
	reply, format, metadata = "", defaultContentFormat, map[string]any{}
	if !gjson.ValidBytes(body) {
		return
	}

	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return
	}

	if r := root.Get("response"); r.Exists() {
		reply = r.String()
	}
	if f := root.Get("format"); f.Exists() && f.Type != gjson.Null {
		format = f.String()
	}
	if m := root.Get("metadata"); m.IsObject() {
		if v, ok := m.Value().(map[string]interface{}); ok {
			metadata = v
		}
	}
	return
}
