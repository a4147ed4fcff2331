package jobs

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/shoka/pkg/errcodes"
)

type handler struct {
	jobService *Service
}

func jobID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, errcodes.NotFound("Job")
	}
	return id, nil
}

func (h *handler) retrieve(c echo.Context) error {
	id, err := jobID(c)
	if err != nil {
		return err
	}

	job, err := h.jobService.RetrieveJob(c.Request().Context(), RetrieveJobOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, job))
}

func (h *handler) list(c echo.Context) error {
	params := ListJobsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	list, total, err := h.jobService.ListJobsWithTotal(c.Request().Context(), ListJobsOptions{
		Limit:    &params.Limit,
		Offset:   &params.Offset,
		Statuses: params.Status,
		Type:     params.Type,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]interface{}{
		"jobs":  list,
		"total": total,
	}))
}

func (h *handler) retry(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := jobID(c)
	if err != nil {
		return err
	}

	job, err := h.jobService.RetryJob(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	logger.FromContext(ctx).Info("job requeued", logger.Data{"job_id": job.ID, "type": job.Type})

	return errors.WithStack(c.JSON(http.StatusAccepted, job))
}

