package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/printchain/backend/internal/infrastructure/config"
	"github.com/printchain/backend/internal/infrastructure/logger"
	"github.com/printchain/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func okHandler(c *gin.Context) { c.String(http.StatusOK, "ok") }

func TestCORS(t *testing.T) {
	cfg := CORSConfigFrom(config.HTTPConfig{CORSAllowOrigins: []string{"https://ops.example"}})

	r := gin.New()
	r.Use(CORS(cfg))
	r.GET("/x", okHandler)

	t.Run("allowed origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Origin", "https://ops.example")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://ops.example", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), ActorHeader)
		assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), RequestIDKey)
	})

	t.Run("foreign origin gets no headers", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Origin", "https://evil.example")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/x", nil)
		req.Header.Set("Origin", "https://ops.example")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "43200", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("wildcard", func(t *testing.T) {
		r := gin.New()
		r.Use(CORS(CORSConfigFrom(config.HTTPConfig{CORSAllowOrigins: []string{"*"}})))
		r.GET("/x", okHandler)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Origin", "https://anything.example")
		r.ServeHTTP(w, req)

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	t.Run("propagates incoming id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set(RequestIDKey, "req-123")
		r.ServeHTTP(w, req)

		assert.Equal(t, "req-123", w.Body.String())
		assert.Equal(t, "req-123", w.Header().Get(RequestIDKey))
	})

	t.Run("generates unique ids", func(t *testing.T) {
		ids := map[string]bool{}
		for range 5 {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
			id := w.Header().Get(RequestIDKey)
			assert.Len(t, id, 32)
			ids[id] = true
		}
		assert.Len(t, ids, 5)
	})
}

func TestSecure(t *testing.T) {
	r := gin.New()
	r.Use(Secure())
	r.GET("/x", okHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestActor(t *testing.T) {
	r := gin.New()
	r.Use(Actor())
	r.GET("/x", func(c *gin.Context) {
		c.String(http.StatusOK, logger.Actor(c.Request.Context(), "system"))
	})

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"no header falls back", "", "system"},
		{"header is trimmed", "  jane.ops ", "jane.ops"},
		{"long names are cut", strings.Repeat("a", 150), strings.Repeat("a", 100)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tt.header != "" {
				req.Header.Set(ActorHeader, tt.header)
			}
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Body.String())
		})
	}
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), BodyLimit(16))
	r.POST("/x", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		c.String(http.StatusOK, "ok")
	})

	t.Run("small body passes", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"a":1}`)))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("declared oversize is rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"a":"`+strings.Repeat("x", 64)+`"}`))
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodeTooLarge, resp.Error.Code)
		assert.NotEmpty(t, resp.Error.RequestID)
	})

	t.Run("streamed oversize fails on read", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"a":"`+strings.Repeat("x", 64)+`"}`))
		req.ContentLength = -1
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("zero disables the limit", func(t *testing.T) {
		r := gin.New()
		r.Use(BodyLimit(0))
		r.POST("/x", okHandler)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(strings.Repeat("x", 1024))))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRateLimit(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)
	t.Cleanup(limiter.Close)

	r := gin.New()
	r.Use(RequestID())
	r.POST("/webhooks/:source", RateLimit(limiter), okHandler)

	send := func(source string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/webhooks/"+source, nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		return w
	}

	first := send("acme")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusOK, send("acme").Code)

	third := send("acme")
	require.Equal(t, http.StatusTooManyRequests, third.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(third.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrCodeRateLimited, resp.Error.Code)

	// separate budget per source
	assert.Equal(t, http.StatusOK, send("globex").Code)
}

func TestRateLimiter_WindowResets(t *testing.T) {
	limiter := NewRateLimiter(1, 20*time.Millisecond)
	t.Cleanup(limiter.Close)

	ok, _ := limiter.Allow("k")
	assert.True(t, ok)
	ok, _ = limiter.Allow("k")
	assert.False(t, ok)

	time.Sleep(25 * time.Millisecond)
	ok, remaining := limiter.Allow("k")
	assert.True(t, ok)
	assert.Equal(t, 0, remaining)

	limiter.Close()
	limiter.Close()
}

type jobForm struct {
	JobNo    string `json:"job_no" binding:"required"`
	Quantity int    `json:"quantity" binding:"gt=0"`
	Mode     string `json:"mode" binding:"omitempty,oneof=normal manufacturer_supplies_paper"`
	Hidden   string `json:"-"`
}

func TestValidationDetails(t *testing.T) {
	SetupValidator()

	r := gin.New()
	r.POST("/x", func(c *gin.Context) {
		var f jobForm
		if err := c.ShouldBindJSON(&f); err != nil {
			c.JSON(http.StatusBadRequest, ValidationDetails(err))
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"quantity":0,"mode":"odd"}`)))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var details []dto.ValidationDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &details))
	got := map[string]string{}
	for _, d := range details {
		got[d.Field] = d.Message
	}
	assert.Equal(t, "This field is required", got["job_no"])
	assert.Equal(t, "Must be greater than 0", got["quantity"])
	assert.Equal(t, "Must be one of: normal manufacturer_supplies_paper", got["mode"])

	assert.Nil(t, ValidationDetails(assert.AnError))
}

func TestHTTPMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	r := gin.New()
	r.Use(HTTPMetricsWithMeter(provider.Meter("test"), zap.NewNop()))
	r.GET("/api/v1/jobs/:id", okHandler)

	for range 3 {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/abc", nil))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	totals := map[string]int64{}
	var sawDuration bool
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch m.Name {
			case "http_server_request_total":
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok)
				for _, dp := range sum.DataPoints {
					route, _ := dp.Attributes.Value("http.route")
					totals[route.AsString()] += dp.Value
				}
			case "http_server_request_duration_seconds":
				sawDuration = true
			}
		}
	}
	assert.Equal(t, int64(3), totals["/api/v1/jobs/:id"])
	assert.Equal(t, int64(1), totals["unknown"])
	assert.True(t, sawDuration)
}

func TestHTTPMetrics_DisabledProviderPassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(HTTPMetrics(nil, zap.NewNop()))
	r.GET("/x", okHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSwaggerAccess(t *testing.T) {
	serve := func(cfg config.SwaggerConfig, remote string) int {
		r := gin.New()
		r.GET("/swagger/*any", SwaggerAccess(cfg), okHandler)
		req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
		req.RemoteAddr = remote
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusNotFound, serve(config.SwaggerConfig{}, "192.0.2.1:1234"))
	assert.Equal(t, http.StatusOK, serve(config.SwaggerConfig{Enabled: true}, "192.0.2.1:1234"))

	restricted := config.SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.0/8", "192.0.2.7", "not-an-ip"}}
	assert.Equal(t, http.StatusOK, serve(restricted, "10.20.30.40:5000"))
	assert.Equal(t, http.StatusOK, serve(restricted, "192.0.2.7:5000"))
	assert.Equal(t, http.StatusForbidden, serve(restricted, "192.0.2.1:5000"))
}
