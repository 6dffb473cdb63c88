package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/printchain/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func spanAttrs(kvs []attribute.KeyValue) map[string]string {
	out := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		out[string(kv.Key)] = kv.Value.Emit()
	}
	return out
}

func TestTracing(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp, err := telemetry.NewTracerProviderWithExporter(telemetry.TracingConfig{ServiceName: "printchain-test", SamplingRatio: 1}, exporter, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	r := gin.New()
	r.Use(Tracing("printchain-test", true)...)
	r.Use(RequestID(), Actor())
	r.POST("/webhooks/:source/purchase-orders", okHandler)
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	req := httptest.NewRequest(http.MethodPost, "/webhooks/acme/purchase-orders", nil)
	req.Header.Set(RequestIDKey, "req-7")
	req.Header.Set(ActorHeader, "dana")
	r.ServeHTTP(httptest.NewRecorder(), req)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.NoError(t, tp.ForceFlush(context.Background()))
	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	attrs := spanAttrs(spans[0].Attributes)
	assert.Equal(t, "req-7", attrs["request.id"])
	assert.Equal(t, "dana", attrs["enduser.id"])
	assert.Equal(t, "acme", attrs["webhook.source"])
	assert.NotEqual(t, codes.Error, spans[0].Status.Code)

	assert.Equal(t, codes.Error, spans[1].Status.Code)
}

func TestTracing_Disabled(t *testing.T) {
	r := gin.New()
	r.Use(Tracing("printchain-test", false)...)
	r.GET("/x", okHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
