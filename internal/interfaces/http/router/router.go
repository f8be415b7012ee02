package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stockledger/backend/internal/infrastructure/logger"
)

// RouteRegistrar registers a set of routes on the API group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router builds the gin engine and holds the registered handlers.
type Router struct {
	engine     *gin.Engine
	registrars []RouteRegistrar
}

// New creates a router with the standard middleware chain.
func New(log *zap.Logger, production bool, registrars ...RouteRegistrar) *Router {
	return NewWithTracing(log, production, nil, registrars...)
}

// NewWithTracing additionally installs a tracing middleware ahead of the
// logging chain, so request logs land inside the request span. A nil
// middleware is skipped.
func NewWithTracing(log *zap.Logger, production bool, tracing gin.HandlerFunc, registrars ...RouteRegistrar) *Router {
	if production {
		gin.SetMode(gin.ReleaseMode)
	}
	setupValidator()
	engine := gin.New()
	if tracing != nil {
		engine.Use(tracing)
	}
	engine.Use(
		logger.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
	)
	r := &Router{engine: engine, registrars: registrars}
	r.setup()
	return r
}

func (r *Router) setup() {
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.engine.Group("/api/v1")
	for _, reg := range r.registrars {
		reg.RegisterRoutes(api)
	}
}

// Engine exposes the underlying gin engine.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Handler returns the router as an http.Handler.
func (r *Router) Handler() http.Handler {
	return r.engine
}
