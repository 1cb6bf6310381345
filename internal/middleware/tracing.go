package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"doctorportal-be/internal/observability"
)

// Tracing opens a span per request and records request metrics against the
// matched route template, so /patients/:id is one series rather than one per id.
func Tracing(metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		ctx, span := observability.StartSpan(c.Request.Context(), c.Request.Method+" "+route,
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
		)
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= http.StatusInternalServerError {
			if err := c.Errors.Last(); err != nil {
				observability.RecordError(span, err.Err)
			} else {
				span.SetStatus(codes.Error, http.StatusText(status))
			}
		}

		metrics.RecordRequest(ctx, c.Request.Method, route, status, time.Since(start))
	}
}
