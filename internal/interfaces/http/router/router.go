// Package router mounts the document API on a gin engine.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/invoicegen/backend/internal/interfaces/http/handler"
)

// Route is one endpoint. Path is relative to its group's prefix.
type Route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
}

// Group is a set of routes sharing a prefix and middleware
type Group struct {
	Name       string
	Prefix     string
	Middleware []gin.HandlerFunc
	Routes     []Route
}

func (g Group) mount(parent *gin.RouterGroup) {
	rg := parent.Group(g.Prefix, g.Middleware...)
	for _, route := range g.Routes {
		rg.Handle(route.Method, route.Path, route.Handler)
	}
}

// Router mounts groups under /api, or /api/<version> with WithAPIVersion
type Router struct {
	engine  *gin.Engine
	version string
	groups  []Group
}

type Option func(*Router)

// WithAPIVersion inserts a version segment, e.g. "v1" gives /api/v1
func WithAPIVersion(version string) Option {
	return func(r *Router) { r.version = version }
}

func NewRouter(engine *gin.Engine, opts ...Option) *Router {
	r := &Router{engine: engine}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register queues groups for Setup
func (r *Router) Register(groups ...Group) *Router {
	r.groups = append(r.groups, groups...)
	return r
}

func (r *Router) BasePath() string {
	if r.version == "" {
		return "/api"
	}
	return "/api/" + r.version
}

// Setup mounts every registered group
func (r *Router) Setup() {
	api := r.engine.Group(r.BasePath())
	for _, g := range r.groups {
		g.mount(api)
	}
}

// Handlers are the handlers served under /api
type Handlers struct {
	Document *handler.DocumentHandler
	System   *handler.SystemHandler
}

// APIRoutes returns the groups of the document API.
// limit guards the invoice and receipt groups only and may be nil.
//
//	POST /invoices/generate-pdf   POST /invoices/totals
//	POST /receipts/generate-pdf   POST /receipts/totals
//	GET  /templates
//	GET  /health                  GET  /system/info
func APIRoutes(h Handlers, limit gin.HandlerFunc) []Group {
	var limited []gin.HandlerFunc
	if limit != nil {
		limited = []gin.HandlerFunc{limit}
	}
	return []Group{
		{
			Name: "invoices", Prefix: "/invoices", Middleware: limited,
			Routes: []Route{
				{http.MethodPost, "/generate-pdf", h.Document.GenerateInvoicePDF},
				{http.MethodPost, "/totals", h.Document.CalculateInvoiceTotals},
			},
		},
		{
			Name: "receipts", Prefix: "/receipts", Middleware: limited,
			Routes: []Route{
				{http.MethodPost, "/generate-pdf", h.Document.GenerateReceiptPDF},
				{http.MethodPost, "/totals", h.Document.CalculateReceiptTotals},
			},
		},
		{
			Name: "templates", Prefix: "/templates",
			Routes: []Route{{http.MethodGet, "", h.Document.ListTemplates}},
		},
		{
			Name: "health", Prefix: "/health",
			Routes: []Route{{http.MethodGet, "", h.System.Health}},
		},
		{
			Name: "system", Prefix: "/system",
			Routes: []Route{{http.MethodGet, "/info", h.System.GetSystemInfo}},
		},
	}
}
