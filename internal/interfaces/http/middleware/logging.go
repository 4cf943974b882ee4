package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/precedex/precedex/internal/infrastructure/monitoring/logging"
)

// RequestObserver receives one observation per completed request.
type RequestObserver interface {
	ObserveHTTPRequest(method, path string, status int, elapsed time.Duration)
}

// Logging logs each request and reports it to the observer. Either argument
// may be nil.
func Logging(log logging.Logger, observer RequestObserver) gin.HandlerFunc {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		// FullPath is the route template, so metrics cardinality stays
		// bounded; unmatched routes fall back to the raw path.
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		status := c.Writer.Status()

		log.Info("http request",
			logging.String("request_id", GetRequestID(c)),
			logging.String("method", c.Request.Method),
			logging.String("path", path),
			logging.Int("status", status),
			logging.Duration("elapsed", elapsed))

		if observer != nil {
			observer.ObserveHTTPRequest(c.Request.Method, path, status, elapsed)
		}
	}
}
