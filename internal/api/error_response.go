package api

import (
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/talkbase/answerd/pkg/errors"
)

// errorResponse is the error envelope: {"error": "<message>"}.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a success response body.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps an error to the envelope and status code. Upstream
// errors carry the provider's payload excerpt in the envelope so callers
// can diagnose provider-side failures; other kinds expose the message only.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	if re, ok := errors.AsRequestError(err); ok {
		status = re.HTTPStatusCode()
		message = re.Message
		if re.Kind == errors.KindUpstream && re.Detail != "" {
			message = re.Message + ": " + re.Detail
		}
		if status >= 500 {
			logger.Error("request failed", "kind", re.Kind, "reason", re.Reason,
				"error", re.Message, "detail", re.Detail)
		}
	} else {
		logger.Error("request failed", "error", err)
	}

	writeJSON(w, status, errorResponse{Error: message})
}
