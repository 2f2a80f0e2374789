package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gradebook-api/internal/config"
	"github.com/noah-isme/gradebook-api/internal/handler"
	"github.com/noah-isme/gradebook-api/internal/middleware"
	"github.com/noah-isme/gradebook-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler     *handler.AuthHandler
	CourseHandler   *handler.CourseHandler
	ActivityHandler *handler.ActivityHandler
	JWTMiddleware   fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("auth", cfg.AuthRateLimit, rateWindow(cfg)))
		deps.AuthHandler.Register(auth)
	}

	if deps.CourseHandler != nil {
		courses := api.Group("/courses", jwtMiddleware)
		deps.CourseHandler.Register(courses)
	}

	if deps.ActivityHandler != nil {
		activity := api.Group("/activity", jwtMiddleware)
		deps.ActivityHandler.Register(activity)
	}
}

func rateWindow(cfg config.Config) time.Duration {
	if cfg.AuthRateWindow <= 0 {
		return time.Minute
	}
	return cfg.AuthRateWindow
}
