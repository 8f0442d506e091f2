package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/contact-engine/internal/auth"
	"github.com/octobees/contact-engine/internal/config"
	"github.com/octobees/contact-engine/internal/handler"
	middlewarepkg "github.com/octobees/contact-engine/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Validate *handler.ValidateHandler
}

// Register wires all HTTP routes for the service.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})

	secured := e.Group("")
	secured.Use(middlewarepkg.JWT(jwtManager))

	secured.POST("/validate", handlers.Validate.Validate, middlewarepkg.ValidateRateLimiter(cfg.RateLimitValidate))
}
