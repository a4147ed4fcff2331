package libraries

import (
	"github.com/labstack/echo/v4"
	"github.com/shishobooks/shoka/pkg/series"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	h := &handler{
		libraryService: NewService(db),
		seriesService:  series.NewService(db),
	}

	g := e.Group("/libraries")
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.retrieve)
	g.PATCH("/:id", h.update)
	g.POST("/:id/series", h.createSeries)
}
