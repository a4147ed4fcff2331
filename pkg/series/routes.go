package series

import (
	"github.com/labstack/echo/v4"
	"github.com/shishobooks/shoka/pkg/books"
	"github.com/shishobooks/shoka/pkg/jobs"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	h := &handler{
		seriesService: NewService(db),
		bookService:   books.NewService(db),
		jobService:    jobs.NewService(db),
	}

	g := e.Group("/series")
	g.GET("", h.list)
	g.GET("/:id", h.retrieve)
	g.DELETE("/:id", h.delete)
	g.GET("/:id/books", h.listBooks)
	g.POST("/:id/books", h.addBooks)
	g.PUT("/:id/books", h.replaceBooks)
	g.POST("/:id/books/remove", h.removeBooks)
	g.POST("/:id/sort", h.sort)
	g.GET("/:id/metadata", h.retrieveMetadata)
	g.PATCH("/:id/metadata", h.editMetadata)
	g.POST("/:id/metadata/refresh", h.refreshMetadata)
}
