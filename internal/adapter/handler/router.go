package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bebel/pendencias/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg                 *config.Config
	pendenciaHandler    *Pendencia
	profissionalHandler *Profissional
	systemHandler       *System
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, pendenciaHandler *Pendencia, profissionalHandler *Profissional, systemHandler *System) *Router {
	return &Router{
		cfg:                 cfg,
		pendenciaHandler:    pendenciaHandler,
		profissionalHandler: profissionalHandler,
		systemHandler:       systemHandler,
	}
}

// Setup configures all application routes. Every route is served under
// /api and at the bare path.
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/", rt.welcome)

	for _, g := range []*echo.Group{e.Group("/api"), e.Group("")} {
		rt.setupPendenciaRoutes(g)
		rt.setupProfissionalRoutes(g)
		rt.setupSystemRoutes(g)
	}
}

// setupPendenciaRoutes configures pendência routes
func (rt *Router) setupPendenciaRoutes(g *echo.Group) {
	g.GET("/pendencias", rt.pendenciaHandler.List)
	g.POST("/pendencias", rt.pendenciaHandler.Update)
	g.PUT("/pendencias", rt.pendenciaHandler.Update)
	g.POST("/pendencias/new", rt.pendenciaHandler.Create)
	g.POST("/pendencias/move", rt.pendenciaHandler.Move)
}

// setupProfissionalRoutes configures professional routes
func (rt *Router) setupProfissionalRoutes(g *echo.Group) {
	g.GET("/profissionais", rt.profissionalHandler.List)
}

// setupSystemRoutes configures diagnostics and maintenance routes
func (rt *Router) setupSystemRoutes(g *echo.Group) {
	g.GET("/health", rt.systemHandler.Health)
	g.GET("/test-db", rt.systemHandler.TestDB)
	g.GET("/tables", rt.systemHandler.Tables)
	g.POST("/migrate", rt.systemHandler.Migrate)
}

// welcome returns the service banner
func (rt *Router) welcome(c echo.Context) error {
	env := "development"
	if rt.cfg != nil {
		env = rt.cfg.Server.Environment
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"ok":          true,
		"service":     "pendencias",
		"environment": env,
	})
}
