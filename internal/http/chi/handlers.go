package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/httplog"
	"github.com/marcelsud/webhook-client/webhook"
)

// errorResponse is the body of every non-2xx answer
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger := httplog.LogEntry(r.Context())
		logger.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, webhook.ErrRouteNotFound), errors.Is(err, webhook.ErrDeliveryNotFound):
		return http.StatusNotFound
	case errors.Is(err, webhook.ErrRouteInactive):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
