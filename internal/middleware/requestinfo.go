// internal/middleware/requestinfo.go
//
// Request logging with light user-agent enrichment.
//
// Every request is logged once, after completion, with method, path, status,
// duration, and the uasurfer-derived browser and device class.  Bot traffic
// is flagged so the paid endpoints can be audited separately from crawler
// noise.

package middleware

import (
	"net/http"
	"time"

	"github.com/avct/uasurfer"
	"go.uber.org/zap"
)

// statusRecorder captures the status code written by the handler chain.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// RequestLog logs one line per request via the global zap logger.
func RequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		ua := uasurfer.Parse(r.UserAgent())
		zap.S().Infow("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"dur_ms", time.Since(start).Milliseconds(),
			"browser", ua.Browser.Name.String(),
			"device", ua.DeviceType.String(),
			"bot", ua.IsBot(),
		)
	})
}
