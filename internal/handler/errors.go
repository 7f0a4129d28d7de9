package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/service"
)

// errorStatus maps service sentinels to HTTP status codes.  Anything not
// listed is a 500.
var errorStatus = []struct {
	err    error
	status int
}{
	{service.ErrInvalidDateRange, http.StatusBadRequest},
	{service.ErrInvalidRoom, http.StatusBadRequest},
	{service.ErrInvalidUser, http.StatusBadRequest},
	{service.ErrInvalidCredentials, http.StatusUnauthorized},
	{service.ErrPaymentFailed, http.StatusPaymentRequired},
	{service.ErrNotOwnedByUser, http.StatusForbidden},
	{service.ErrRoomNotFound, http.StatusNotFound},
	{service.ErrReservationNotFound, http.StatusNotFound},
	{service.ErrUserNotFound, http.StatusNotFound},
	{service.ErrAvailabilityConflict, http.StatusConflict},
	{service.ErrAlreadyCancelled, http.StatusConflict},
	{service.ErrUserExists, http.StatusConflict},
	{service.ErrRoomExists, http.StatusConflict},
}

// StatusFor returns the HTTP status for err.
func StatusFor(err error) int {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// writeError renders err as {"error": "..."}.  Internal errors are not
// echoed to the client.
func writeError(c echo.Context, err error) error {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		c.Logger().Error(err)
		return c.JSON(status, echo.Map{"error": "internal error"})
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// bindAndValidate binds the request body into dst and runs the registered
// validator, if any.
func bindAndValidate(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return errors.New("invalid request body")
	}
	if c.Echo().Validator != nil {
		if err := c.Validate(dst); err != nil {
			return err
		}
	}
	return nil
}

// getUserID returns the authenticated user set by JWTAuth.
func getUserID(c echo.Context) (string, error) {
	if s, ok := c.Get("user_id").(string); ok && s != "" {
		return s, nil
	}
	return "", echo.ErrUnauthorized
}
