// Package middleware provides reusable HTTP middleware: access-token
// authentication, role enforcement, response caching and rate limiting.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/renovia/renovation-api/internal/utils"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the token's claims into the request context under the keys
// "user_id" (uint64), "email" and "role". The secret must be the access
// secret; refresh tokens are signed with a different one and fail here.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false,
					"error":   echo.Map{"code": "UNAUTHORIZED", "message": "No token provided"},
				})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			cl, err := utils.VerifyToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false,
					"error":   echo.Map{"code": "INVALID_TOKEN", "message": "Invalid or expired token"},
				})
			}

			c.Set("user_id", cl.UserID)
			c.Set("email", cl.Email)
			c.Set("role", cl.Role)
			return next(c)
		}
	}
}
