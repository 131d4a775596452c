package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err), which picks a status from the error
//  3. Error is mapped via core.MapError to get a user-friendly message
//  4. Technical error + context is logged with request ID for correlation
//  5. User message is written as JSON for API clients, plain text otherwise

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/drygas/internal/core"
	"github.com/JonMunkholm/drygas/internal/logging"
	"github.com/JonMunkholm/drygas/internal/table"
	"github.com/JonMunkholm/drygas/internal/tableio"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Action  string   `json:"action,omitempty"`
	Code    string   `json:"code"`
	Details []string `json:"details,omitempty"`
}

var (
	errNoFile      = errors.New("no file provided")
	rateLimitedMsg = core.MapError(errors.New("rate limit exceeded"))
)

// statusFor maps an error to an HTTP status.
func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrTooManyComparisons):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrNoDatabase):
		return http.StatusNotImplemented
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, core.ErrInvalidRuleSet),
		errors.Is(err, core.ErrNoMaster),
		errors.Is(err, core.ErrNoTable),
		errors.Is(err, errNoFile),
		errors.Is(err, http.ErrNotMultipart),
		errors.Is(err, table.ErrDuplicateColumn),
		errors.Is(err, tableio.ErrEmptyFile):
		return http.StatusBadRequest
	}

	uerr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(uerr, "file too large"):
		return http.StatusRequestEntityTooLarge
	case strings.Contains(uerr, "invalid csv"),
		strings.Contains(uerr, "failed to open excel file"),
		strings.Contains(uerr, "unsupported file type"):
		return http.StatusBadRequest
	case strings.Contains(uerr, "table not found"), strings.Contains(uerr, "does not exist"):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// respondError logs the technical error and writes the mapped user message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	if !wantsJSON(r) {
		http.Error(w, userMsg.Message+" ("+userMsg.Code+")", status)
		return
	}

	resp := errorResponse(userMsg)
	var cfgErr *core.ConfigurationError
	if errors.As(err, &cfgErr) {
		resp.Details = cfgErr.Problems
	}
	writeJSONStatus(w, status, resp)
}

func errorResponse(msg core.UserMessage) ErrorResponse {
	return ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	}
}

// respondErrorJSON writes a JSON error response without logging.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, status int) {
	writeJSONStatus(w, status, errorResponse(msg))
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// writeJSON encodes v as JSON with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

// writeJSONStatus encodes v as JSON. Encoding errors are logged since
// headers are already sent.
func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
