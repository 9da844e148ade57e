package server

import (
	"time"

	"address-gateway/core/logger"
	"address-gateway/core/middleware/cors"
	"address-gateway/core/middleware/firewall"
	"address-gateway/core/middleware/rayid"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// NewApp creates the Fiber app with the global middleware chain installed:
// ray id, request logging, firewall, CORS. Routes are added by the caller.
func NewApp(cfg Config, logg *zap.Logger, mappers ...Mapper) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true, // We will log our own startup message
		ErrorHandler:          ErrorHandler(logg, mappers...),
		ProxyHeader:           cfg.ProxyHeader,
	})

	// 1. RayID (Must be first to trace everything)
	app.Use(rayid.New())

	// 2. Logging Middleware (Custom to use Zap + RayID)
	app.Use(RequestLogger(logg))

	// 3. Firewall, then CORS so that dropped peers never see any header
	app.Use(firewall.New(cfg.AllowedIPs, logg))
	app.Use(cors.New(cfg.AllowOrigin))

	return app
}

// RequestLogger logs every request with its query, before and after the
// handler runs.
func RequestLogger(logg *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		l := logger.WithRequest(logg, c)
		l.Info("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
		)

		start := time.Now()
		err := c.Next()
		if err != nil {
			// Let the error handler decide the final status before logging it
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		if c.Context().Hijacked() {
			return nil
		}

		l.Info("Request finished",
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)),
		)
		return nil
	}
}
