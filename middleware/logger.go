package middlewares

import (
	"time"

	"staybook/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const RequestIDHeader = "X-Request-ID"

var traceContext = propagation.TraceContext{}

// RequestLogger stamps every request with an id and writes one access line
// once the handler chain returns. An incoming W3C traceparent header is
// carried on the request context, and its trace id is logged.
func RequestLogger(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now().UTC()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		ctx := traceContext.Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		var traceID string
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.IsValid() {
			traceID = sc.TraceID().String()
		}

		l.LogInfo(
			"type: access, method: %s, url: %s, status: %d, requestID: %s, traceID: %s, userID: %d, latency: %s",
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			requestID,
			traceID,
			CurrentUserID(c),
			time.Since(start),
		)

		for _, err := range c.Errors {
			l.LogErrorf("type: handler, requestID: %s, error: %v", requestID, err.Err)
		}
	}
}
