package books

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/shoka/pkg/errcodes"
	"github.com/shishobooks/shoka/pkg/jobs"
	"github.com/shishobooks/shoka/pkg/metadata"
	"github.com/shishobooks/shoka/pkg/models"
)

type handler struct {
	bookService *Service
	jobService  *jobs.Service
}

func bookID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, errcodes.NotFound("Book")
	}
	return id, nil
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := bookID(c)
	if err != nil {
		return err
	}

	book, err := h.bookService.RetrieveBookByID(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	response := struct {
		*models.Book
		FileSizeHumanReadable string `json:"file_size_human_readable"`
		FileExtension         string `json:"file_extension"`
	}{book, book.FileSizeHumanReadable(), book.FileExtension()}

	return errors.WithStack(c.JSON(http.StatusOK, response))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListBooksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	books, total, err := h.bookService.ListBooksWithTotal(ctx, ListBooksOptions{
		Limit:     &params.Limit,
		Offset:    &params.Offset,
		SeriesID:  params.SeriesID,
		LibraryID: params.LibraryID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Books []*models.Book `json:"books"`
		Total int            `json:"total"`
	}{books, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) retrieveMetadata(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := bookID(c)
	if err != nil {
		return err
	}

	m, err := h.bookService.RetrieveBookMetadata(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, m))
}

func (h *handler) retrieveMedia(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := bookID(c)
	if err != nil {
		return err
	}

	media, err := h.bookService.RetrieveMedia(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, media))
}

func (h *handler) editMetadata(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)
	id, err := bookID(c)
	if err != nil {
		return err
	}

	params := metadata.BookEdit{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	m, err := h.bookService.EditBookMetadata(ctx, id, params)
	if err != nil {
		return errors.WithStack(err)
	}

	log.Info("book metadata edited", logger.Data{"book_id": id})

	return errors.WithStack(c.JSON(http.StatusOK, m))
}

func (h *handler) refreshMetadata(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := bookID(c)
	if err != nil {
		return err
	}

	if _, err := h.bookService.RetrieveBookByID(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	job, err := h.jobService.Enqueue(ctx, models.JobTypeRefreshBookMetadata, models.JobRefreshBookMetadataData{BookID: id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusAccepted, job))
}
