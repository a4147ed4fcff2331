package plugins

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

type handler struct {
	manager *Manager
}

func (h *handler) list(c echo.Context) error {
	return errors.WithStack(c.JSON(http.StatusOK, h.manager.Plugins()))
}

func (h *handler) reload(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.manager.Load(ctx); err != nil {
		return errors.WithStack(err)
	}

	logger.FromContext(ctx).Info("plugins reloaded", logger.Data{"count": len(h.manager.Plugins())})

	return errors.WithStack(c.JSON(http.StatusOK, h.manager.Plugins()))
}
