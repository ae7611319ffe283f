package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/baharkarakas/tradebinder/internal/apperr"
	"github.com/baharkarakas/tradebinder/internal/logger"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 1 << 20

type APIError struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, msg string, details any) {
	WriteJSON(w, status, APIError{
		Error:   msg,
		Code:    code,
		Details: details,
	})
}

var kindStatus = map[apperr.Kind]int{
	apperr.KindNotFound:     http.StatusNotFound,
	apperr.KindForbidden:    http.StatusForbidden,
	apperr.KindBadRequest:   http.StatusBadRequest,
	apperr.KindConflict:     http.StatusConflict,
	apperr.KindUnauthorized: http.StatusUnauthorized,
	apperr.KindUnavailable:  http.StatusServiceUnavailable,
}

// WriteAppError maps a service error onto the error envelope.
// Anything that is not an *apperr.Error is logged and hidden behind a 500.
func WriteAppError(w http.ResponseWriter, r *http.Request, err error) {
	if e, ok := apperr.As(err); ok {
		if status, ok := kindStatus[e.Kind]; ok {
			WriteError(w, status, string(e.Kind), e.Message, e.Details)
			return
		}
	}
	logger.FromContext(r.Context()).Error("request failed",
		"method", r.Method, "path", r.URL.Path, "err", err)
	WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
}

// DecodeJSON reads one JSON object into dst and rejects unknown fields.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperr.BadRequest("request body is empty")
		case errors.As(err, &maxErr):
			return apperr.BadRequest("request body too large")
		default:
			return apperr.BadRequest("invalid JSON body: %v", err)
		}
	}
	if dec.More() {
		return apperr.BadRequest("request body must contain a single JSON object")
	}
	return nil
}

// Message is the {message} body returned by deletes and bulk updates.
func Message(format string, args ...any) map[string]string {
	return map[string]string{"message": fmt.Sprintf(format, args...)}
}
