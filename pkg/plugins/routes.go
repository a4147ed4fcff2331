package plugins

import (
	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, manager *Manager) {
	h := &handler{manager: manager}

	g := e.Group("/plugins")
	g.GET("", h.list)
	g.POST("/reload", h.reload)
}
