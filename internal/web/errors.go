package web

// errors.go renders failures as JSON.
//
// Every error is mapped through core.MapError: the client gets the short
// message, action and code while the log gets the technical error with the
// request id for correlation.

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/dataio/internal/core"
	"github.com/JonMunkholm/dataio/internal/logging"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
	Row     int    `json:"row,omitempty"`     // Failing data row of an import
	Created int    `json:"created,omitempty"` // Records created before the failure
}

// respondError logs err and writes its user message with the status
// statusFor picks.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := core.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"code", msg.Code,
		"error", err,
	)

	body := ErrorResponse{Error: msg.Message, Action: msg.Action, Code: msg.Code}
	var rowErr *core.RowError
	if errors.As(err, &rowErr) {
		body.Row = rowErr.Row
		body.Created = rowErr.Created
	}
	writeJSON(w, status, body)
}

// writeError replies with a plain message for request-shape problems that
// never reach core.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: "REQ001"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("json encode error", "error", err)
	}
}

// statusFor maps core errors to HTTP statuses.
func statusFor(err error) int {
	var rowErr *core.RowError
	switch {
	case errors.As(err, &rowErr), errors.Is(err, core.ErrParse):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrTooManyJobs):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrMissingDependency):
		return http.StatusNotImplemented
	case errors.Is(err, core.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, core.ErrConfiguration), errors.Is(err, core.ErrNotImplemented):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
