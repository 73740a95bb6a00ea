package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/linkmark/internal/server/services"
)

const userIDKey = "userID"

// requestCache installs the per-request current-user cache into the request
// context, so every CurrentUser call within one request resolves at most once.
func requestCache() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.SetUserContext(services.WithCurrentUserCache(c.UserContext()))
		return c.Next()
	}
}

// requireUser guards API routes: unauthenticated calls get a 401, never a
// redirect. The resolved user id is stashed in the request locals.
func (s *Server) requireUser(c *fiber.Ctx) error {
	cu, err := s.auth.CurrentUser(c.UserContext(), jar(c), services.CurrentUserOptions{})
	if err != nil {
		return err
	}
	if cu == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Authentication required.")
	}
	c.Locals(userIDKey, cu.UserID)
	return c.Next()
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}
