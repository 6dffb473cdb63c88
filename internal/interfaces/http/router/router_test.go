package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/printchain/backend/internal/interfaces/http/handler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	group := NewDomainGroup("test", "/test").GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	r.Register(group).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/test/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestDomainGroup(t *testing.T) {
	t.Run("name and prefix", func(t *testing.T) {
		g := NewDomainGroup("jobs", "/jobs")
		assert.Equal(t, "jobs", g.Name())
		assert.Equal(t, "/jobs", g.Prefix())
	})

	t.Run("middleware applies to the group only", func(t *testing.T) {
		engine := gin.New()
		guarded := NewDomainGroup("guarded", "/guarded").
			Use(func(c *gin.Context) { c.AbortWithStatus(http.StatusTeapot) }).
			POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
		open := NewDomainGroup("open", "/open").
			POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

		api := engine.Group("/api/v1")
		guarded.RegisterRoutes(api)
		open.RegisterRoutes(api)

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/guarded/x", nil))
		assert.Equal(t, http.StatusTeapot, w.Code)

		w = httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/open/x", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("subgroups nest under the parent prefix", func(t *testing.T) {
		engine := gin.New()
		parent := NewDomainGroup("system", "/system")
		parent.Group("outbox", "/outbox").GET("/stats", func(c *gin.Context) {
			c.String(http.StatusOK, "stats")
		})
		parent.RegisterRoutes(engine.Group("/api/v1"))

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/system/outbox/stats", nil))
		assert.Equal(t, "stats", w.Body.String())
	})
}

func TestGroups_RouteTable(t *testing.T) {
	engine := gin.New()
	var guarded []string
	guard := func(c *gin.Context) {
		guarded = append(guarded, c.FullPath())
		c.AbortWithStatus(http.StatusTooManyRequests)
	}

	NewRouter(engine).Register(Groups(Handlers{
		Jobs:           &handler.JobHandler{},
		PurchaseOrders: &handler.PurchaseOrderHandler{},
		Invoices:       &handler.InvoiceHandler{},
		Webhooks:       &handler.WebhookHandler{},
		Reconciliation: &handler.ReconciliationHandler{},
		Outbox:         &handler.OutboxHandler{},
		System:         &handler.SystemHandler{},
	}, guard)...).Setup()

	registered := map[string]bool{}
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}
	for _, want := range []string{
		"POST /api/v1/pricing/quote",
		"POST /api/v1/jobs",
		"GET /api/v1/jobs/:id",
		"POST /api/v1/jobs/:id/approve",
		"POST /api/v1/jobs/:id/cascade",
		"POST /api/v1/jobs/:id/invoices/customer",
		"POST /api/v1/purchase-orders/:id/invoices/settlement",
		"POST /api/v1/invoices/:id/pay",
		"POST /api/v1/webhooks/email",
		"POST /api/v1/webhooks/:source/purchase-orders",
		"GET /api/v1/reconciliation/audit",
		"POST /api/v1/reconciliation/repair",
		"GET /api/v1/reconciliation/logs",
		"POST /api/v1/inbound-events/:id/reprocess",
		"GET /api/v1/system/outbox/dead",
		"POST /api/v1/system/outbox/:id/retry",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/acme/purchase-orders", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Len(t, guarded, 1)
	assert.Equal(t, "/api/v1/webhooks/:source/purchase-orders", guarded[0])
}
