package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/service"
)

// ReservationHandler serves a guest's bookings.  All routes sit behind
// JWTAuth.
type ReservationHandler struct {
	Svc *service.Service
}

func NewReservationHandler(svc *service.Service) *ReservationHandler {
	if svc == nil {
		panic("nil service passed to NewReservationHandler")
	}
	return &ReservationHandler{Svc: svc}
}

type reservationResp struct {
	ID         string `json:"id"`
	RoomID     string `json:"room_id"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	Nights     int    `json:"nights"`
	TotalCents int64  `json:"total_cents"`
	Total      string `json:"total"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

func toReservationResp(r model.Reservation) reservationResp {
	return reservationResp{
		ID:         r.ID,
		RoomID:     r.RoomID,
		CheckIn:    r.CheckIn.Format(model.DateLayout),
		CheckOut:   r.CheckOut.Format(model.DateLayout),
		Nights:     r.Nights,
		TotalCents: r.TotalCents,
		Total:      model.FormatCents(r.TotalCents),
		Status:     string(r.Status),
		CreatedAt:  r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func parseRange(checkIn, checkOut string) (time.Time, time.Time, error) {
	in, err := model.ParseDay(checkIn)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("check_in must be YYYY-MM-DD")
	}
	out, err := model.ParseDay(checkOut)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("check_out must be YYYY-MM-DD")
	}
	return in, out, nil
}

type bookReq struct {
	RoomID   string `json:"room_id" validate:"required"`
	CheckIn  string `json:"check_in" validate:"required,day"`
	CheckOut string `json:"check_out" validate:"required,day"`
}

// Create handles POST /v1/reservations.
func (h *ReservationHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req bookReq
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	in, out, err := parseRange(req.CheckIn, req.CheckOut)
	if err != nil {
		return badRequest(c, err.Error())
	}
	res, err := h.Svc.MakeReservation(c.Request().Context(), uid, req.RoomID, in, out)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toReservationResp(*res))
}

// ListMine handles GET /v1/my-reservations.  Cancelled reservations are
// hidden unless include_cancelled=true.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	includeCancelled, _ := strconv.ParseBool(c.QueryParam("include_cancelled"))
	list, err := h.Svc.UserReservations(uid, includeCancelled)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]reservationResp, 0, len(list))
	for _, r := range list {
		items = append(items, toReservationResp(r))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	r, err := h.Svc.Reservation(uid, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toReservationResp(r))
}

// Cancel handles DELETE /v1/reservations/:id.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id := c.Param("id")
	if err := h.Svc.CancelReservation(c.Request().Context(), uid, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": model.StatusCancelled})
}

type ledgerItem struct {
	reservationResp
	UserID string `json:"user_id"`
}

// ListAll handles GET /v1/reservations for managers, optionally filtered by
// ?room_id= and include_cancelled=true.
func (h *ReservationHandler) ListAll(c echo.Context) error {
	includeCancelled, _ := strconv.ParseBool(c.QueryParam("include_cancelled"))
	list := h.Svc.AllReservations(c.QueryParam("room_id"), includeCancelled)
	items := make([]ledgerItem, 0, len(list))
	for _, r := range list {
		items = append(items, ledgerItem{reservationResp: toReservationResp(r), UserID: r.UserID})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
