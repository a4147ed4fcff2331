package books

import (
	"github.com/labstack/echo/v4"
	"github.com/shishobooks/shoka/pkg/jobs"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	h := &handler{
		bookService: NewService(db),
		jobService:  jobs.NewService(db),
	}

	g := e.Group("/books")
	g.GET("", h.list)
	g.GET("/:id", h.retrieve)
	g.GET("/:id/metadata", h.retrieveMetadata)
	g.PATCH("/:id/metadata", h.editMetadata)
	g.POST("/:id/metadata/refresh", h.refreshMetadata)
	g.GET("/:id/media", h.retrieveMedia)
}
