package cors

import "github.com/gofiber/fiber/v2"

// AllowMethods is sent on every response.
const AllowMethods = "GET, POST, OPTIONS"

// New creates a middleware that stamps every response with the configured
// origin and the allowed methods, and answers preflight requests directly.
func New(origin string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
		c.Set(fiber.HeaderAccessControlAllowMethods, AllowMethods)

		if c.Method() == fiber.MethodOptions {
			if headers := c.Get(fiber.HeaderAccessControlRequestHeaders); headers != "" {
				c.Set(fiber.HeaderAccessControlAllowHeaders, headers)
			}
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Next()
	}
}
