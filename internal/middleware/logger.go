// Package middleware holds the HTTP middleware that is specific to this service.
package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/go-hclog"
)

// RequestLogger writes one structured access-log line per request through logger.
func RequestLogger(logger hclog.Logger) func(next http.Handler) http.Handler {
	return middleware.RequestLogger(&logFormatter{logger: logger.Named("http")})
}

type logFormatter struct {
	logger hclog.Logger
}

func (f *logFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &logEntry{
		logger: f.logger.With(
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"request_id", middleware.GetReqID(r.Context()),
		),
	}
}

type logEntry struct {
	logger hclog.Logger
}

func (e *logEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ interface{}) {
	args := []interface{}{"status", status, "bytes", bytes, "elapsed", elapsed}
	switch {
	case status >= http.StatusInternalServerError:
		e.logger.Error("request", args...)
	case status >= http.StatusBadRequest:
		e.logger.Warn("request", args...)
	default:
		e.logger.Info("request", args...)
	}
}

func (e *logEntry) Panic(v interface{}, stack []byte) {
	e.logger.Error("panic", "value", v, "stack", string(stack))
}
