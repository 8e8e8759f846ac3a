package middleware

import (
	"net/http"
	"time"

	"github.com/zatekoja/Referralnetworkdesign/backend/internal/infrastructure/observability"
)

// MetricsMiddleware records request count and duration metrics
func MetricsMiddleware(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if metrics == nil {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			observability.RecordRequestMetric(r.Context(), metrics, r.Method, r.URL.Path, rw.statusCode, time.Since(start))
		})
	}
}
