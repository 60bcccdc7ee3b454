// Package response writes the JSON envelope every API endpoint answers with.
package response

import (
	"log/slog"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	apperrors "github.com/segyhp/library-circulation/pkg/errors"
)

// RequestIDHeader carries the per-request correlation id
const RequestIDHeader = "X-Request-ID"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Response is the envelope. Failed responses always carry a message.
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func write(w http.ResponseWriter, statusCode int, body Response) {
	body.Timestamp = time.Now()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("encoding response", "status", statusCode, "error", err)
	}
}

// Success sends a 200 with data
func Success(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusOK, Response{Success: true, Data: data})
}

// Created sends a 201 with data
func Created(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusCreated, Response{Success: true, Data: data})
}

// Message sends a 200 that only carries a message
func Message(w http.ResponseWriter, message string) {
	write(w, http.StatusOK, Response{Success: true, Message: message})
}

// Status sends data under an arbitrary status code
func Status(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	write(w, statusCode, Response{
		Success: statusCode < http.StatusBadRequest,
		Message: message,
		Data:    data,
	})
}

// Error sends a failure. The message is shown to end users verbatim;
// err details are only exposed below 500.
func Error(w http.ResponseWriter, statusCode int, message string, err error) {
	body := Response{Message: message, Error: http.StatusText(statusCode)}
	if err != nil && statusCode < http.StatusInternalServerError {
		body.Error = err.Error()
	}
	write(w, statusCode, body)
}

// Fail maps a service error to its status and public message
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", r.Header.Get(RequestIDHeader),
			"error", err,
		)
	}

	Error(w, status, apperrors.PublicMessage(err), nil)
}

func BadRequest(w http.ResponseWriter, message string, err error) {
	Error(w, http.StatusBadRequest, message, err)
}

func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message, nil)
}

func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, message, nil)
}

// CORSMiddleware lets the browser frontend call the API from another origin
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+RequestIDHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LoggingMiddleware logs one line per request
func LoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			logger.LogAttrs(r.Context(), levelFor(rec.status), "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				slog.String("request_id", r.Header.Get(RequestIDHeader)),
			)
		})
	}
}

func levelFor(status int) slog.Level {
	if status >= http.StatusInternalServerError {
		return slog.LevelError
	}
	return slog.LevelInfo
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}
