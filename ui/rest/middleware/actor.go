package middleware

import (
	"github.com/gofiber/fiber/v2"
)

const (
	localsActor = "actor"
	// basicauth stores the authenticated user under this key.
	localsBasicAuthUser = "username"
	headerActor         = "X-Admin-User"
)

// Actor resolves who is performing an admin request. The basic auth user
// wins; the X-Admin-User header is read only when there is none.
func Actor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, _ := c.Locals(localsBasicAuthUser).(string)
		if actor == "" {
			actor = c.Get(headerActor)
		}
		if actor == "" {
			actor = "system"
		}
		c.Locals(localsActor, actor)
		return c.Next()
	}
}

func ActorFrom(c *fiber.Ctx) string {
	if actor, ok := c.Locals(localsActor).(string); ok && actor != "" {
		return actor
	}
	return "system"
}
