package libraries

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/shoka/pkg/errcodes"
	"github.com/shishobooks/shoka/pkg/models"
	"github.com/shishobooks/shoka/pkg/series"
)

type handler struct {
	libraryService *Service
	seriesService  *series.Service
}

func libraryID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, errcodes.NotFound("Library")
	}
	return id, nil
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateLibraryPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	library := &models.Library{
		Name: params.Name,
		Root: params.Root,
	}
	if err := h.libraryService.CreateLibrary(ctx, library); err != nil {
		return errors.WithStack(err)
	}

	logger.FromContext(ctx).Info("library created", logger.Data{"library_id": library.ID})

	return errors.WithStack(c.JSON(http.StatusCreated, library))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := libraryID(c)
	if err != nil {
		return err
	}

	library, err := h.libraryService.RetrieveLibrary(ctx, RetrieveLibraryOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, library))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListLibrariesQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	libraries, total, err := h.libraryService.ListLibrariesWithTotal(ctx, ListLibrariesOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Libraries []*models.Library `json:"libraries"`
		Total     int               `json:"total"`
	}{libraries, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := libraryID(c)
	if err != nil {
		return err
	}

	params := UpdateLibraryPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	library, err := h.libraryService.RetrieveLibrary(ctx, RetrieveLibraryOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	opts := UpdateLibraryOptions{Columns: []string{}}
	if params.Name != nil && *params.Name != library.Name {
		library.Name = *params.Name
		opts.Columns = append(opts.Columns, "name")
	}
	if params.Root != nil && *params.Root != library.Root {
		library.Root = *params.Root
		opts.Columns = append(opts.Columns, "root")
	}

	if err := h.libraryService.UpdateLibrary(ctx, library, opts); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, library))
}

func (h *handler) createSeries(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := libraryID(c)
	if err != nil {
		return err
	}

	params := series.CreateSeriesPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	library, err := h.libraryService.RetrieveLibrary(ctx, RetrieveLibraryOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	s := &models.Series{
		LibraryID:        library.ID,
		Name:             params.Name,
		URL:              params.URL,
		FileLastModified: params.FileLastModified,
	}
	if err := h.seriesService.CreateSeries(ctx, s, series.BooksPayload{Books: params.Books}.Models()); err != nil {
		return errors.WithStack(err)
	}

	logger.FromContext(ctx).Info("series created", logger.Data{"library_id": library.ID, "series_id": s.ID, "books": len(params.Books)})

	created, err := h.seriesService.RetrieveSeriesByID(ctx, s.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, created))
}
