package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"

	"github.com/noamseg/boxbee/internal/apperr"
	"github.com/noamseg/boxbee/internal/logging"
)

// successEnvelope wraps every 2xx response body.
type successEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

type errorEnvelope struct {
	Success bool      `json:"success"`
	Error   errorBody `json:"error"`
}

type errorBody struct {
	Message string              `json:"message"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
	Stack   string              `json:"stack,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.HTTP("write response: %v", err)
	}
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, successEnvelope{Success: true, Data: data})
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, successEnvelope{Success: true, Message: msg})
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindInvalidTransition:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err in the error envelope. Internal causes are
// logged but never leak to the client; stack traces appear only in
// development.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	body := errorBody{Message: "Internal server error"}
	status := http.StatusInternalServerError

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		status = statusFor(appErr.Kind)
		body.Message = appErr.Message
		body.Errors = appErr.Fields
	}

	if status == http.StatusInternalServerError {
		logging.HTTP("%s %s -> 500: %v", r.Method, r.URL.Path, err)
		if s.cfg.Development() {
			body.Stack = fmt.Sprintf("%v\n%s", err, debug.Stack())
		}
	}

	writeJSON(w, status, errorEnvelope{Success: false, Error: body})
}

const maxBodyBytes = 1 << 20 // 1 MiB

// decodeBody parses a JSON request body into dst.
func decodeBody(r *http.Request, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return apperr.Validation("Invalid request body")
	}
	if len(body) == 0 {
		return apperr.Validation("Request body is required")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperr.Validation("Invalid JSON in request body")
	}
	return nil
}
