// Package router registers the HTTP routes of the hotel API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/handler"
	"github.com/iliyamo/hotel-reservation/internal/middleware"
	"github.com/iliyamo/hotel-reservation/internal/model"
)

// Handlers bundles everything the routes dispatch to.
type Handlers struct {
	Auth         *handler.AuthHandler
	Rooms        *handler.RoomHandler
	Reservations *handler.ReservationHandler
	Health       echo.HandlerFunc
}

// RegisterRoutes registers unauthenticated routes.  searchCache wraps the
// availability search only.
func RegisterRoutes(e *echo.Echo, h Handlers, searchCache echo.MiddlewareFunc) {
	e.GET("/healthz", h.Health)

	e.GET("/v1/rooms", h.Rooms.List)
	if searchCache != nil {
		e.GET("/v1/rooms/available", h.Rooms.Available, searchCache)
	} else {
		e.GET("/v1/rooms/available", h.Rooms.Available)
	}

	g := e.Group("/v1/auth")
	g.POST("/register", h.Auth.Register)
	g.POST("/login", h.Auth.Login)
}

// RegisterProtected registers routes that need a valid access token.
// Manager-only routes additionally require the MANAGER role.
func RegisterProtected(e *echo.Echo, h Handlers, jwtSecret string) {
	auth := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleGuest, model.RoleManager),
	)
	auth.GET("/me", h.Auth.Me)
	auth.POST("/reservations", h.Reservations.Create)
	auth.GET("/my-reservations", h.Reservations.ListMine)
	auth.GET("/reservations/:id", h.Reservations.Get)
	auth.DELETE("/reservations/:id", h.Reservations.Cancel)

	manager := middleware.RequireRole(model.RoleManager)
	auth.POST("/rooms", h.Rooms.Create, manager)
	auth.PATCH("/rooms/:id", h.Rooms.Update, manager)
	auth.GET("/reservations", h.Reservations.ListAll, manager)
}
