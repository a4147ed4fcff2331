package series

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/shoka/pkg/books"
	"github.com/shishobooks/shoka/pkg/errcodes"
	"github.com/shishobooks/shoka/pkg/jobs"
	"github.com/shishobooks/shoka/pkg/metadata"
	"github.com/shishobooks/shoka/pkg/models"
)

type handler struct {
	seriesService *Service
	bookService   *books.Service
	jobService    *jobs.Service
}

func seriesID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, errcodes.NotFound("Series")
	}
	return id, nil
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := seriesID(c)
	if err != nil {
		return err
	}

	series, err := h.seriesService.RetrieveSeriesByID(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, series))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListSeriesQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	series, total, err := h.seriesService.ListSeriesWithTotal(ctx, ListSeriesOptions{
		Limit:     &params.Limit,
		Offset:    &params.Offset,
		LibraryID: params.LibraryID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Series []*models.Series `json:"series"`
		Total  int              `json:"total"`
	}{series, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) listBooks(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := seriesID(c)
	if err != nil {
		return err
	}

	if _, err := h.seriesService.RetrieveSeriesByID(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	bs, err := h.bookService.ListBooks(ctx, books.ListBooksOptions{SeriesID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, bs))
}

func (h *handler) addBooks(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)
	id, err := seriesID(c)
	if err != nil {
		return err
	}

	params := BooksPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	if err := h.seriesService.AddBooks(ctx, id, params.Models()); err != nil {
		return errors.WithStack(err)
	}

	log.Info("books added to series", logger.Data{"series_id": id, "count": len(params.Books)})

	return h.listBooks(c)
}

func (h *handler) replaceBooks(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)
	id, err := seriesID(c)
	if err != nil {
		return err
	}

	params := BooksPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	if err := h.seriesService.UpdateBooksForSeries(ctx, id, params.Models()); err != nil {
		return errors.WithStack(err)
	}

	log.Info("series books replaced", logger.Data{"series_id": id, "count": len(params.Books)})

	return h.listBooks(c)
}

func (h *handler) removeBooks(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)
	id, err := seriesID(c)
	if err != nil {
		return err
	}

	params := RemoveBooksPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	toRemove := make([]*models.Book, 0, len(params.URLs))
	for _, u := range params.URLs {
		toRemove = append(toRemove, &models.Book{URL: u})
	}
	if err := h.seriesService.RemoveBooksFromSeries(ctx, id, toRemove); err != nil {
		return errors.WithStack(err)
	}

	log.Info("books removed from series", logger.Data{"series_id": id, "count": len(toRemove)})

	return h.listBooks(c)
}

func (h *handler) sort(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := seriesID(c)
	if err != nil {
		return err
	}

	if _, err := h.seriesService.RetrieveSeriesByID(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	job, err := h.jobService.Enqueue(ctx, models.JobTypeSortSeries, models.JobSortSeriesData{SeriesID: id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusAccepted, job))
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)
	id, err := seriesID(c)
	if err != nil {
		return err
	}

	if err := h.seriesService.DeleteSeries(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	log.Info("series deleted", logger.Data{"series_id": id})

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

func (h *handler) retrieveMetadata(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := seriesID(c)
	if err != nil {
		return err
	}

	m, err := h.seriesService.RetrieveSeriesMetadata(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, m))
}

func (h *handler) editMetadata(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)
	id, err := seriesID(c)
	if err != nil {
		return err
	}

	params := metadata.SeriesEdit{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	m, err := h.seriesService.EditSeriesMetadata(ctx, id, params)
	if err != nil {
		return errors.WithStack(err)
	}

	log.Info("series metadata edited", logger.Data{"series_id": id})

	return errors.WithStack(c.JSON(http.StatusOK, m))
}

func (h *handler) refreshMetadata(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := seriesID(c)
	if err != nil {
		return err
	}

	if _, err := h.seriesService.RetrieveSeriesByID(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	job, err := h.jobService.Enqueue(ctx, models.JobTypeRefreshSeriesMetadata, models.JobRefreshSeriesMetadataData{SeriesID: id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusAccepted, job))
}
