// Package router assembles the versioned API route table.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/printchain/backend/internal/interfaces/http/handler"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router mounts registrars under /api/{version}
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds registrars to be mounted by Setup
func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// DomainGroup collects the routes of one area of the API under a prefix
type DomainGroup struct {
	name       string
	prefix     string
	routes     []routeDefinition
	subgroups  []*DomainGroup
	middleware []gin.HandlerFunc
}

type routeDefinition struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates a new domain-specific route group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Use adds middleware to this group
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

func (dg *DomainGroup) handle(method, path string, handlers []gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{method: method, path: path, handlers: handlers})
	return dg
}

// GET registers a GET route
func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodGet, path, handlers)
}

// POST registers a POST route
func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPost, path, handlers)
}

// Group creates a sub-group within this domain
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	subgroup := NewDomainGroup(name, prefix)
	dg.subgroups = append(dg.subgroups, subgroup)
	return subgroup
}

// RegisterRoutes implements RouteRegistrar interface
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)
	if len(dg.middleware) > 0 {
		group.Use(dg.middleware...)
	}
	for _, route := range dg.routes {
		group.Handle(route.method, route.path, route.handlers...)
	}
	for _, subgroup := range dg.subgroups {
		subgroup.RegisterRoutes(group)
	}
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Prefix returns the group prefix
func (dg *DomainGroup) Prefix() string {
	return dg.prefix
}

// Handlers are the handlers the API routes to
type Handlers struct {
	Jobs           *handler.JobHandler
	PurchaseOrders *handler.PurchaseOrderHandler
	Invoices       *handler.InvoiceHandler
	Webhooks       *handler.WebhookHandler
	Reconciliation *handler.ReconciliationHandler
	Outbox         *handler.OutboxHandler
	System         *handler.SystemHandler
}

// Groups builds the route table. webhookGuards run in front of the two
// webhook receivers only; body limits and rate limits belong there.
func Groups(h Handlers, webhookGuards ...gin.HandlerFunc) []RouteRegistrar {
	pricing := NewDomainGroup("pricing", "/pricing").
		POST("/quote", h.Jobs.Quote)

	jobs := NewDomainGroup("jobs", "/jobs").
		POST("", h.Jobs.Create).
		GET("", h.Jobs.List).
		GET("/:id", h.Jobs.Get).
		POST("/:id/approve", h.Jobs.Approve).
		POST("/:id/reprice", h.Jobs.Reprice).
		POST("/:id/cascade", h.Jobs.Cascade).
		GET("/:id/purchase-orders", h.Jobs.PurchaseOrders).
		POST("/:id/invoices/customer", h.Invoices.Customer)

	orders := NewDomainGroup("purchase-orders", "/purchase-orders").
		GET("/:id", h.PurchaseOrders.Get).
		POST("/:id/acknowledge", h.PurchaseOrders.Acknowledge).
		POST("/:id/cancel", h.PurchaseOrders.Cancel).
		POST("/:id/invoices/settlement", h.Invoices.Settlement)

	invoices := NewDomainGroup("invoices", "/invoices").
		GET("/:id", h.Invoices.Get).
		POST("/:id/pay", h.Invoices.Pay)

	webhooks := NewDomainGroup("webhooks", "/webhooks").
		Use(webhookGuards...).
		POST("/email", h.Webhooks.Email).
		POST("/:source/purchase-orders", h.Webhooks.Structured)

	events := NewDomainGroup("inbound-events", "/inbound-events").
		GET("", h.Webhooks.ListEvents).
		GET("/:id", h.Webhooks.GetEvent).
		POST("/:id/reprocess", h.Webhooks.Reprocess)

	reconciliation := NewDomainGroup("reconciliation", "/reconciliation").
		GET("/audit", h.Reconciliation.Audit).
		POST("/audit", h.Reconciliation.AuditAndRepair).
		POST("/repair", h.Reconciliation.Repair).
		GET("/logs", h.Reconciliation.Logs)

	system := NewDomainGroup("system", "/system").
		GET("/info", h.System.Info).
		GET("/ping", h.System.Ping)
	system.Group("outbox", "/outbox").
		GET("/dead", h.Outbox.DeadLetters).
		POST("/dead/retry-all", h.Outbox.RetryAll).
		GET("/stats", h.Outbox.Stats).
		GET("/:id", h.Outbox.Entry).
		POST("/:id/retry", h.Outbox.Retry)

	return []RouteRegistrar{pricing, jobs, orders, invoices, webhooks, events, reconciliation, system}
}
