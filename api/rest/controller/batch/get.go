package batch

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/reformlab/reformer/api/rest/service/batch"
	"gorm.io/gorm"
)

func Get(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return echo.ErrBadRequest
	}

	pass, err := batch.Service(c.Request().Context()).Get(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.ErrNotFound
		}
		return echo.ErrInternalServerError.SetInternal(err)
	}

	return c.JSON(http.StatusOK, pass)
}
