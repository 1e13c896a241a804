package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequestIDHeader carries the per-request correlation ID. It is echoed on
// the response so clients can quote it when reporting failures.
const RequestIDHeader = "X-Request-ID"

// RequestID honours a well-formed client-supplied ID and mints a fresh
// UUID otherwise, so arbitrary header values cannot pollute log
// correlation.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(RequestIDHeader)
		if _, err := uuid.Parse(rid); err != nil {
			rid = uuid.NewString()
		}
		c.Set(RequestIDHeader, rid)
		c.Locals("request_id", rid)
		return c.Next()
	}
}
