// Package router wires HTTP routes and their middleware onto the Echo
// instance.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/renovia/renovation-api/internal/handler"
	"github.com/renovia/renovation-api/internal/middleware"
)

// RegisterRoutes installs the unauthenticated service routes and the
// envelope-shaped error fallbacks: unknown routes answer 404 with
// {code: NOT_FOUND} and unexpected errors answer 500 with
// {code: INTERNAL_ERROR}, keeping every response in the same shape.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.Health)

	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		if he, ok := err.(*echo.HTTPError); ok && he.Code == http.StatusNotFound {
			_ = c.JSON(http.StatusNotFound, echo.Map{
				"success": false,
				"error":   echo.Map{"code": "NOT_FOUND"},
			})
			return
		}
		_ = c.JSON(http.StatusInternalServerError, echo.Map{
			"success": false,
			"error":   echo.Map{"code": "INTERNAL_ERROR", "message": "internal server error"},
		})
	}
}

// RegisterAuth registers the authentication endpoints under /api/auth.
// Register, login and refresh are open; /me requires a valid access
// token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, accessSecret string) {
	g := e.Group("/api/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.GET("/me", a.Me, middleware.JWTAuth(accessSecret))
}
