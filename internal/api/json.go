package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	errs "github.com/matzehuels/linearmesh/pkg/errors"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     ErrorDetail `json:"error"`
	RequestID string      `json:"request_id,omitempty"`
}

// ErrorDetail carries the machine-readable code and a message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errorBody(r *http.Request, code errs.Code, msg string) ErrorResponse {
	return ErrorResponse{
		Error:     ErrorDetail{Code: string(code), Message: msg},
		RequestID: RequestIDFromContext(r.Context()),
	}
}

// writeError maps err to a status code and writes it as an ErrorResponse.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			"route", r.URL.Path,
			"request_id", RequestIDFromContext(r.Context()),
			"err", err)
	}
	writeJSON(w, status, errorBody(r, code, errs.UserMessage(err)))
}

// classify derives the HTTP status and error code of err.
func classify(err error) (int, errs.Code) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge, errs.ErrCodeInvalidInput
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, errs.ErrCodeTimeout
	}
	if errors.Is(err, context.Canceled) {
		// The client went away; the status is never seen.
		return 499, errs.ErrCodeInternal
	}

	code := errs.GetCode(err)
	switch code {
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidFormat:
		return http.StatusBadRequest, code
	case errs.ErrCodeNotFound, errs.ErrCodeFileNotFound:
		return http.StatusNotFound, code
	case errs.ErrCodeNetwork:
		return http.StatusServiceUnavailable, code
	case errs.ErrCodeTimeout:
		return http.StatusGatewayTimeout, code
	case errs.ErrCodeUnsupported:
		return http.StatusNotImplemented, code
	case "":
		return http.StatusInternalServerError, errs.ErrCodeInternal
	}
	if errs.IsInvalid(err) {
		return http.StatusUnprocessableEntity, code
	}
	return http.StatusInternalServerError, code
}
