package firewall

import (
	"net"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// New creates a middleware that only lets listed peers through. Requests from
// any other address are dropped without a response. An empty list allows all.
func New(allowed []string, logger *zap.Logger) fiber.Handler {
	ips := make([]net.IP, 0, len(allowed))
	for _, raw := range allowed {
		if ip := net.ParseIP(raw); ip != nil {
			ips = append(ips, ip)
		} else {
			logger.Warn("Ignoring invalid allowlist entry", zap.String("entry", raw))
		}
	}

	return func(c *fiber.Ctx) error {
		if len(allowed) == 0 {
			return c.Next()
		}

		peer := net.ParseIP(c.IP())
		for _, ip := range ips {
			if ip.Equal(peer) {
				return c.Next()
			}
		}

		logger.Warn("Dropping request from unlisted address",
			zap.String("ip", c.IP()),
			zap.String("path", c.Path()),
			zap.String("query", string(c.Request().URI().QueryString())))

		// Close the connection without writing anything back.
		c.Context().HijackSetNoResponse(true)
		c.Context().Hijack(func(conn net.Conn) {})
		return nil
	}
}
