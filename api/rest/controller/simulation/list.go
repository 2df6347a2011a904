package simulation

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/reformlab/reformer/api/rest/service/simulation"
)

func List(c echo.Context) error {
	req, err := parseListRequest(c)
	if err != nil {
		return echo.ErrBadRequest.SetInternal(err)
	}

	sims, err := simulation.Service(c.Request().Context()).List(req)
	if err != nil {
		return echo.ErrInternalServerError.SetInternal(err)
	}

	return c.JSON(http.StatusOK, sims)
}

func parseListRequest(c echo.Context) (req *simulation.ListRequest, err error) {
	req = &simulation.ListRequest{
		Status: c.QueryParam("status"),
	}

	if biooil := c.QueryParam("biooil_id"); biooil != "" {
		if req.BiooilID, err = strconv.ParseInt(biooil, 10, 64); err != nil {
			return nil, err
		}
	}

	if limit := c.QueryParam("limit"); limit != "" {
		if req.Limit, err = strconv.ParseUint(limit, 10, 64); err != nil {
			return nil, err
		}
	}

	if offset := c.QueryParam("offset"); offset != "" {
		if req.Offset, err = strconv.ParseUint(offset, 10, 64); err != nil {
			return nil, err
		}
	}

	if orderBy := c.QueryParam("order_by"); orderBy != "" {
		req.OrderBy = strings.Split(orderBy, ",")
	}

	return
}
