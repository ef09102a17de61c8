package controller

import (
	"context"
	"encoding/json"
	"net/http"

	"domaincheck/pkg/logger"
	"domaincheck/pkg/serrors"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	RequestID string `json:"requestId,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn(ctx, "could not encode response", zap.Error(err))
	}
}

// WriteError maps the semantic kind of err to a status code and writes an
// ErrorBody. Internal errors are logged and their message is not exposed.
func WriteError(ctx context.Context, w http.ResponseWriter, err error) {
	status := StatusCode(err)
	body := ErrorBody{
		Error:     err.Error(),
		Kind:      serrors.KindName(err),
		RequestID: RequestID(ctx),
	}
	if status == http.StatusInternalServerError {
		logger.Error(ctx, "request failed", zap.Error(err))
		body.Error = http.StatusText(status)
	}

	WriteJSON(ctx, w, status, body)
}

// StatusCode returns the HTTP status matching the semantic kind of err.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, serrors.ErrBadInput), errors.Is(err, serrors.ErrParse):
		return http.StatusBadRequest
	case errors.Is(err, serrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, serrors.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
