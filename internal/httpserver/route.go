package httpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/nexus_market/pkg/logging"
)

type Deps struct {
	AccountHandler *AccountHTTP
	CatalogHandler *CatalogHTTP
	// Ready backs /health/ready. Nil means always ready.
	Ready func(ctx context.Context) error
	// StaticDir holds a built SPA. index.html answers unknown non-API paths.
	StaticDir string
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready == nil {
			return c.NoContent(http.StatusOK)
		}
		if err := d.Ready(c.Request().Context()); err != nil {
			logging.FromContext(c.Request().Context()).Error("readiness_error", "status", 503, "error", err)
			return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
		}
		return c.NoContent(http.StatusOK)
	})

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", d.AccountHandler.Register)
	auth.POST("/login", d.AccountHandler.Login)

	products := api.Group("/products")
	products.GET("", d.CatalogHandler.ListProducts)
	products.GET("/search", d.CatalogHandler.SearchProducts)
	products.POST("", d.CatalogHandler.CreateProduct)
	products.DELETE("/:id", d.CatalogHandler.DeleteProduct)

	if d.StaticDir != "" {
		e.Use(echomw.StaticWithConfig(echomw.StaticConfig{
			Root:  d.StaticDir,
			HTML5: true,
			Skipper: func(c echo.Context) bool {
				p := c.Request().URL.Path
				return strings.HasPrefix(p, "/api/") || p == "/api" || strings.HasPrefix(p, "/health/")
			},
		}))
	}
}
