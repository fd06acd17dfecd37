package http

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/Zhima-Mochi/shopcore/internal/observability"
	"github.com/Zhima-Mochi/shopcore/internal/observability/logctx"
)

const headerRequestID = "X-Request-ID"

// ObservabilityMiddleware injects a request-scoped logger into the context,
// generates and echoes X-Request-ID, and records HTTP request metrics keyed
// by method, route template, and status.
func ObservabilityMiddleware(tel observability.Observability) gin.HandlerFunc {
	base := tel.Logger()
	reqCounter := tel.Metrics().Counter(observability.MHTTPRequests)
	durHist := tel.Metrics().Histogram(observability.MHTTPRequestDuration)

	return func(c *gin.Context) {
		rid := c.GetHeader(headerRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Writer.Header().Set(headerRequestID, rid)

		fields := []observability.Field{observability.F("request_id", rid)}
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.IsValid() {
			fields = append(fields,
				observability.F("trace_id", sc.TraceID().String()),
				observability.F("span_id", sc.SpanID().String()),
			)
		}
		ctx := logctx.With(c.Request.Context(), base.With(fields...))
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		labels := []observability.Label{
			observability.L("method", c.Request.Method),
			observability.L("route", route),
			observability.L("status", strconv.Itoa(c.Writer.Status())),
		}
		reqCounter.Add(1, labels...)
		durHist.Observe(time.Since(start).Seconds(), labels...)
	}
}
