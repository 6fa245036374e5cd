package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"foodshare/internal/infra/geoip"
)

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Logger emits one structured line per request. When a geoip resolver is
// configured the client's country code is attached for request-origin
// auditing; lookup failures are ignored.
func Logger(l zerolog.Logger, geo geoip.CountryResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)

			evt := l.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rw.status).
				Dur("duration", time.Since(start)).
				Str("request_id", RequestIDFromContext(r.Context()))
			if geo != nil {
				if cc, err := geo.CountryCode(clientIPForRateLimit(r)); err == nil && cc != "" {
					evt = evt.Str("country", cc)
				}
			}
			evt.Msg("http request")
		})
	}
}
