package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/service"
)

// Health reports liveness plus the hotel name and state version.
func Health(svc *service.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"status":  "ok",
			"hotel":   svc.Name(),
			"version": svc.Version(),
		})
	}
}
