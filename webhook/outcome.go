package webhook

/* Outcome is the uniform result of one Send call
 * Success implies Error is empty; failure implies AgentResponse is nil.
 * MessageID always echoes the delivered message.
 */
type Outcome struct {
	Success          bool           `json:"success"`
	MessageID        string         `json:"message_id"`
	AgentResponse    *string        `json:"agent_response,omitempty"`
	ResponseFormat   string         `json:"response_format"`
	ProcessingTimeMs *int64         `json:"processing_time_ms,omitempty"`
	Error            string         `json:"error,omitempty"`
	Metadata         map[string]any `json:"metadata"`
	Attempts         int            `json:"attempts"`
}

// Reply returns the agent response, or "" when there is none
func (o Outcome) Reply() string {
	if o.AgentResponse == nil {
		return ""
	}
	return *o.AgentResponse
}

func succeeded(messageID, reply, format string, elapsedMs int64, metadata map[string]any, attempts int) Outcome {
	return Outcome{
		Success:          true,
		MessageID:        messageID,
		AgentResponse:    &reply,
		ResponseFormat:   format,
		ProcessingTimeMs: &elapsedMs,
		Metadata:         metadata,
		Attempts:         attempts,
	}
}

func failed(messageID, errMsg string, elapsedMs *int64, attempts int) Outcome {
	return Outcome{
		Success:          false,
		MessageID:        messageID,
		ResponseFormat:   defaultContentFormat,
		ProcessingTimeMs: elapsedMs,
		Error:            errMsg,
		Metadata:         map[string]any{},
		Attempts:         attempts,
	}
}
