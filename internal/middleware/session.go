package middleware

import (
	"github.com/gofiber/fiber/v3"

	"valentine/internal/validation"
)

const sessionIDKey = "session_id"

// RequireSession guards the telemetry session routes. The :id parameter
// must look like an id a telemetry backend issued; anything else is
// acknowledged with 202 and dropped, so callers cannot tell the difference.
func RequireSession(c fiber.Ctx) error {
	id := c.Params("id")
	if !validation.ValidateSessionID(id) {
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"status": "ok",
		})
	}

	c.Locals(sessionIDKey, id)
	return c.Next()
}

// SessionID returns the id stored by RequireSession.
func SessionID(c fiber.Ctx) (string, bool) {
	id, ok := c.Locals(sessionIDKey).(string)
	return id, ok && id != ""
}
