// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Two error shapes exist:
//
//	{ "status": "error", "error": "field Name is required" }   request/store failures
//	{ "message": "Student not found." }                        lookups and deletions
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/student-records-api/internal/storage"
)

// Response is the standard envelope returned for error cases.
type Response struct {
	Status string `json:"status"` // always StatusError
	Error  string `json:"error"`  // human-readable error detail
}

// Message is the body of not-found and deletion responses.
type Message struct {
	Message string `json:"message"`
}

// StatusError is the Status of every error Response.
const StatusError = "error"

// Bodies sent instead of the internal error chain, which is only logged.
const (
	msgDuplicate        = "email already exists"
	msgInvalidReference = "referenced student does not exist"
	msgInternal         = "internal server error"
)

// ─────────────────────────────────────────────────────────────────────────────
// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
// ─────────────────────────────────────────────────────────────────────────────
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps any Go error into our standard Response shape.
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// ValidationError converts validator.FieldError values into one
// human-readable Response, e.g.
//
//	{ "status": "error", "error": "field name is required, field score1 is required" }
func ValidationError(errs validator.ValidationErrors) Response {
	var errMessages []string

	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is required", e.Field()))
		case "email":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must be a valid email address", e.Field()))
		default:
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	return Response{
		Status: StatusError,
		Error:  strings.Join(errMessages, ", "),
	}
}

// RequestError answers a decode or validation failure with 400.
func RequestError(w http.ResponseWriter, err error) {
	var validateErrs validator.ValidationErrors
	if errors.As(err, &validateErrs) {
		WriteJSON(w, http.StatusBadRequest, ValidationError(validateErrs))
		return
	}
	WriteJSON(w, http.StatusBadRequest, GeneralError(err))
}

// StoreError maps a storage error onto its status code. notFound is the
// message sent with a 404.
func StoreError(w http.ResponseWriter, err error, notFound string) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		WriteJSON(w, http.StatusNotFound, Message{Message: notFound})
	case errors.Is(err, storage.ErrDuplicate):
		slog.Warn("storage conflict", slog.String("error", err.Error()))
		WriteJSON(w, http.StatusConflict, Response{Status: StatusError, Error: msgDuplicate})
	case errors.Is(err, storage.ErrInvalidReference):
		slog.Warn("storage invalid reference", slog.String("error", err.Error()))
		WriteJSON(w, http.StatusUnprocessableEntity, Response{Status: StatusError, Error: msgInvalidReference})
	default:
		InternalError(w, err)
	}
}

// InternalError logs err and answers 500 without exposing it.
func InternalError(w http.ResponseWriter, err error) {
	slog.Error("internal failure", slog.String("error", err.Error()))
	WriteJSON(w, http.StatusInternalServerError, Response{Status: StatusError, Error: msgInternal})
}
