package utils

import (
	"errors"
	"log/slog"
	"net/http"
)

var (
	ErrUnexpectedError = errors.New("a server error occured while processing the request")
	ErrRateLimited     = errors.New("rate limit exceded")
)

// WriteErrorJSON returns an error in json format to the client
func WriteErrorJSON(w http.ResponseWriter, status int, msg any) {
	WriteJSON(w, status, Envelope{"error": msg}, nil)
}

// TextResponse writes msg as a plain-text body with the given status.
func TextResponse(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	w.Write([]byte(msg))
}

// EmptyResponse writes only a status line and headers.
func EmptyResponse(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Length", "0")
	w.WriteHeader(status)
}

// ServerErrorResponse is a helper function to send internal server error responses to client
func ServerErrorResponse(w http.ResponseWriter, message string) {
	WriteErrorJSON(w, http.StatusInternalServerError, message)
}

// RateLimitExcededResponse returns an error if too many requests are made from a single IP
func RateLimitExcededResponse(w http.ResponseWriter) {
	WriteErrorJSON(w, http.StatusTooManyRequests, ErrRateLimited.Error())
}

// WriteServerLog logs server errors to the configured slog.logger for the application
func WriteServerLog(logger *slog.Logger, logLevel slog.Level, msg string, err error) {
	switch logLevel {
	case slog.LevelDebug:
		logger.Debug(msg, "details", err.Error())
	case slog.LevelError:
		logger.Error(msg, "details", err.Error())
	case slog.LevelWarn:
		logger.Warn(msg, "details", err.Error())
	default:
		logger.Info(msg, "details", err.Error())
	}
}

// WriteServerError is a wraps WriteServerLog function to log errors
func WriteServerError(logger *slog.Logger, msg string, err error) {
	WriteServerLog(logger, slog.LevelError, msg, err)
}
