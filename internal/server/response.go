// Package server provides the HTTP server, router, middleware, and JSON
// response helpers for the Content API.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Response statuses reported in the exception envelope.
const (
	statusSuccessful  = "successful"
	statusClientError = "clienterror"
	statusServerError = "servererror"
)

// exceptionBody describes a failed request in the exception envelope.
type exceptionBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// exceptionResponse is the envelope for requests rejected by a domain
// error (not found, forbidden) rather than an inline handler response.
type exceptionResponse struct {
	Data   map[string]any `json:"data"`
	Error  exceptionBody  `json:"error"`
	Code   int            `json:"code"`
	Status string         `json:"status"`
}

// JSON writes v as a JSON response with the given status code. Every API
// response carries a wildcard CORS origin so browser clients on any site
// can consume it.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already sent at this point, so we can only log.
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// Status writes a bare status envelope: {"status": <code>}.
func Status(w http.ResponseWriter, code int) {
	JSON(w, code, map[string]int{"status": code})
}

// ErrorMessage writes an inline error envelope:
// {"status": <code>, "error": <message>}.
func ErrorMessage(w http.ResponseWriter, code int, message string) {
	JSON(w, code, map[string]any{
		"status": code,
		"error":  message,
	})
}

// Exception writes the exception envelope used for typed domain errors,
// carrying the error type name, message, and code together with a
// client/server error classification.
func Exception(w http.ResponseWriter, errType, message string, code int) {
	status := statusServerError
	switch {
	case code == http.StatusOK:
		status = statusSuccessful
	case code >= 400 && code < 500:
		status = statusClientError
	}

	JSON(w, code, exceptionResponse{
		Data: map[string]any{},
		Error: exceptionBody{
			Type:    errType,
			Message: message,
			Code:    code,
		},
		Code:   code,
		Status: status,
	})
}
