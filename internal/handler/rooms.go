package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/service"
)

// RoomHandler serves the catalog and availability search.
type RoomHandler struct {
	Svc *service.Service
}

func NewRoomHandler(svc *service.Service) *RoomHandler {
	if svc == nil {
		panic("nil service passed to NewRoomHandler")
	}
	return &RoomHandler{Svc: svc}
}

type roomResp struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Label     string `json:"label"`
	RateCents int64  `json:"rate_cents"`
	Rate      string `json:"rate"`
	Capacity  int    `json:"capacity"`
	InService bool   `json:"in_service"`
}

func toRoomResp(r model.Room) roomResp {
	return roomResp{
		ID:        r.ID,
		Type:      string(r.Type),
		Label:     r.Type.Label(),
		RateCents: r.RateCents,
		Rate:      model.FormatCents(r.RateCents),
		Capacity:  r.Capacity,
		InService: r.InService,
	}
}

func toRoomList(rooms []model.Room) []roomResp {
	out := make([]roomResp, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, toRoomResp(r))
	}
	return out
}

// List handles GET /v1/rooms.
func (h *RoomHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"hotel": h.Svc.Name(), "items": toRoomList(h.Svc.Rooms())})
}

type searchReq struct {
	CheckIn  string `query:"check_in" validate:"required,day"`
	CheckOut string `query:"check_out" validate:"required,day"`
	Capacity int    `query:"capacity" validate:"gte=0"`
}

// Available handles GET /v1/rooms/available?check_in=&check_out=&capacity=.
func (h *RoomHandler) Available(c echo.Context) error {
	var req searchReq
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	in, out, err := parseRange(req.CheckIn, req.CheckOut)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if req.Capacity < 1 {
		req.Capacity = 1
	}
	rooms, err := h.Svc.SearchAvailableRooms(c.Request().Context(), in, out, req.Capacity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"check_in":  req.CheckIn,
		"check_out": req.CheckOut,
		"nights":    model.Nights(in, out),
		"items":     toRoomList(rooms),
	})
}

type createRoomReq struct {
	ID        string `json:"id" validate:"required,max=16"`
	Type      string `json:"type" validate:"required,roomtype"`
	RateCents int64  `json:"rate_cents" validate:"gte=0"`
	Capacity  int    `json:"capacity" validate:"gte=1"`
	InService *bool  `json:"in_service"`
}

// Create handles POST /v1/rooms.  New rooms are in service unless the body
// says otherwise.
func (h *RoomHandler) Create(c echo.Context) error {
	var req createRoomReq
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	rt, ok := model.ParseRoomType(req.Type)
	if !ok {
		return badRequest(c, "unknown room type")
	}
	room := model.Room{ID: req.ID, Type: rt, RateCents: req.RateCents, Capacity: req.Capacity, InService: true}
	if req.InService != nil {
		room.InService = *req.InService
	}
	created, err := h.Svc.AddRoom(c.Request().Context(), room)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toRoomResp(created))
}

type updateRoomReq struct {
	InService *bool  `json:"in_service"`
	RateCents *int64 `json:"rate_cents" validate:"omitempty,gte=0"`
}

// Update handles PATCH /v1/rooms/:id.  Existing reservations keep the
// total they were booked with.
func (h *RoomHandler) Update(c echo.Context) error {
	id := c.Param("id")
	var req updateRoomReq
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	if req.InService == nil && req.RateCents == nil {
		return badRequest(c, "nothing to update")
	}
	room, err := h.Svc.UpdateRoom(c.Request().Context(), id, service.RoomUpdate{
		InService: req.InService,
		RateCents: req.RateCents,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toRoomResp(room))
}
