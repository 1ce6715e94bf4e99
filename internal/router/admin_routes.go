package router

import (
	"github.com/labstack/echo/v4"

	"github.com/renovia/renovation-api/internal/handler"
	"github.com/renovia/renovation-api/internal/middleware"
)

// RegisterAdmin registers the admin console endpoints under /api/admin.
// The admin role is enforced once at the group mount; individual
// handlers carry no extra role checks. The cache middleware wraps only
// the GET listings, which are the hot paths for the console.
func RegisterAdmin(e *echo.Echo, ch *handler.CategoryHandler, mh *handler.MaterialHandler, uh *handler.UserAdminHandler, accessSecret string, cache echo.MiddlewareFunc) {
	g := e.Group(
		"/api/admin",
		middleware.JWTAuth(accessSecret),
		middleware.RequireRole("admin"),
	)

	// ---- Categories ----
	g.GET("/categories", ch.List, cache)
	g.POST("/categories", ch.Create)
	g.PUT("/categories/:id", ch.Update)
	g.DELETE("/categories/:id", ch.Delete)

	// ---- Materials ----
	g.GET("/materials", mh.List, cache)
	g.POST("/materials", mh.Create)
	g.GET("/materials/:id", mh.Get)
	g.PUT("/materials/:id", mh.Update)
	g.DELETE("/materials/:id", mh.Delete)

	// ---- Users ----
	g.GET("/users", uh.List, cache)
	g.GET("/users/:id", uh.GetDetail)
}
