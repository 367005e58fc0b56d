package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/joaocesar000-eng/englishflow-ai/api/internal/logger"
)

const requestIDHeader = "X-Request-ID"

// requestID reuses a sane incoming X-Request-ID or mints a uuid, stores it
// where middleware.GetReqID finds it and echoes it back.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func accessLog(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				kv := []interface{}{
					"request_id", middleware.GetReqID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes_out", ww.BytesWritten(),
					"latency", time.Since(start),
				}
				switch {
				case ww.Status() >= 500:
					log.Error("request completed", kv...)
				case ww.Status() >= 400:
					log.Warn("request completed", kv...)
				default:
					log.Info("request completed", kv...)
				}
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
