package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/printchain/backend/internal/infrastructure/logger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const maxSpanAttrLen = 128

// Tracing opens a server span per request with otelgin and, once the route
// has run, tags it with the request id, the actor and the webhook source.
// Responses of 500 and above mark the span as failed.
func Tracing(serviceName string, enabled bool) []gin.HandlerFunc {
	if !enabled {
		return []gin.HandlerFunc{func(c *gin.Context) { c.Next() }}
	}
	return []gin.HandlerFunc{otelgin.Middleware(serviceName), enrichSpan}
}

func enrichSpan(c *gin.Context) {
	c.Next()

	span := trace.SpanFromContext(c.Request.Context())
	if !span.IsRecording() {
		return
	}
	attrs := make([]attribute.KeyValue, 0, 3)
	if id := truncate(c.GetString("request_id")); id != "" {
		attrs = append(attrs, attribute.String("request.id", id))
	}
	if actor := truncate(logger.Actor(c.Request.Context(), "")); actor != "" {
		attrs = append(attrs, attribute.String("enduser.id", actor))
	}
	if source := truncate(c.Param("source")); source != "" {
		attrs = append(attrs, attribute.String("webhook.source", source))
	}
	span.SetAttributes(attrs...)

	if status := c.Writer.Status(); status >= 500 {
		span.SetStatus(codes.Error, "server error")
	}
	if len(c.Errors) > 0 {
		span.RecordError(c.Errors.Last())
	}
}

func truncate(s string) string {
	if len(s) > maxSpanAttrLen {
		return s[:maxSpanAttrLen]
	}
	return s
}
