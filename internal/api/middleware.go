package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/bher20/tagihanpln/internal/metrics"
)

// requestLogger logs every request and records the request metrics.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				path = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := time.Since(start)
		metrics.RequestsTotal.WithLabelValues(path, strconv.Itoa(status)).Inc()
		metrics.RequestDurationSeconds.WithLabelValues(path).Observe(dur.Seconds())

		zap.L().Debug("http: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Duration("duration", dur),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// recoverInquiry turns a panic into the inquiry failure shape, still with
// HTTP 200.
func recoverInquiry(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				zap.L().Error("http: inquiry panic",
					zap.Any("panic", rec),
					zap.String("request_id", middleware.GetReqID(r.Context())))
				writeJSON(w, http.StatusOK, Failure(fmt.Sprintf("Error: %v", rec)))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
