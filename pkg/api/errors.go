package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"lessonhub/pkg/lesson"
	"lessonhub/pkg/order"
)

// Error carries the status and client-facing message for a failed request.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// MessageResponse is the body of every error response.
type MessageResponse struct {
	Message string `json:"message"`
}

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle is the single translation point from handler errors to responses.
// fallback is the message sent for errors that are not the client's fault.
func (s *Server) handle(fallback string, fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}

		status, msg := classify(err, fallback)
		ctx := r.Context()
		if status >= http.StatusInternalServerError {
			s.log.Error(ctx, fallback, "error", err, "path", r.URL.Path, "request_id", requestIDFrom(ctx))
		} else {
			s.log.Info(ctx, "request rejected", "status", status, "error", err, "path", r.URL.Path, "request_id", requestIDFrom(ctx))
		}
		writeJSON(w, status, MessageResponse{Message: msg})
	}
}

func classify(err error, fallback string) (int, string) {
	var apiErr *Error
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Status, apiErr.Message
	case errors.Is(err, lesson.ErrInvalidID),
		errors.Is(err, lesson.ErrInvalidQuery),
		errors.Is(err, order.ErrInvalidID):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, order.ErrNotFound):
		return http.StatusNotFound, err.Error()
	default:
		return http.StatusInternalServerError, fallback
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
