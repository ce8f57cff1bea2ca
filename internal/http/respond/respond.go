package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hongminglow/budget-be/internal/apperr"
	"github.com/hongminglow/budget-be/internal/logger"
	"github.com/hongminglow/budget-be/internal/storage"
)

// TimestampLayout renders error timestamps as dd-MM-yyyy HH:mm:ss.
const TimestampLayout = "02-01-2006 15:04:05"

// Envelope is the standard API response wrapper used across handlers.
type Envelope struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

var now = time.Now

// JSON writes a success or informational response using the common envelope.
func JSON(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, Envelope{Code: status, Message: message, Data: data})
}

// Error writes an error response with the shared envelope structure.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, Envelope{Code: status, Message: message, Timestamp: now().Format(TimestampLayout)})
}

// Failure translates err into a status code and writes it. Classified
// failures keep their message; anything else is logged and hidden.
func Failure(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		message = "internal server error"
	} else if errors.Is(err, storage.ErrAlreadyExists) {
		message = "username or email already exists"
	}
	Error(w, status, message)
}

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindBadParameter:
		return http.StatusBadRequest
	case apperr.KindResourceNotFound:
		return http.StatusNotFound
	case apperr.KindDuplicateEntry:
		return http.StatusConflict
	case apperr.KindBadCredentials, apperr.KindUnauthorized:
		return http.StatusUnauthorized
	}
	switch {
	case errors.Is(err, storage.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, storage.ErrInvalidPredicate):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func write(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.L.Error("respond: encode payload failed", slog.Any("error", err))
	}
}
