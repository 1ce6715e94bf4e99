package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRole returns a middleware that enforces that the authenticated
// user carries one of the given roles. It assumes JWTAuth already stored
// the role claim in the context; a missing role is treated as an
// unauthenticated request, a known-but-wrong role as forbidden.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get("role").(string)
			if !ok || role == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false,
					"error":   echo.Map{"code": "UNAUTHORIZED", "message": "Authentication required"},
				})
			}
			if !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{
					"success": false,
					"error":   echo.Map{"code": "FORBIDDEN", "message": "Insufficient permissions"},
				})
			}
			return next(c)
		}
	}
}
