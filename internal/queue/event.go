// Package queue defines message payloads exchanged over the message broker
// and the RabbitMQ publisher and consumer that move them.
package queue

import (
	"time"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// Routing keys.  Each one is also the name of a durable queue.
const (
	EventReservationConfirmed = "reservation.confirmed"
	EventReservationCancelled = "reservation.cancelled"
)

// ReservationEvent is published after a reservation is confirmed or
// cancelled.  It carries enough information for downstream consumers to
// log, notify or trigger analytics without reading the hotel state.
type ReservationEvent struct {
	Type          string `json:"type"`
	ReservationID string `json:"reservation_id"`
	UserID        string `json:"user_id"`
	RoomID        string `json:"room_id"`
	CheckIn       string `json:"check_in"`
	CheckOut      string `json:"check_out"`
	Nights        int    `json:"nights"`
	TotalCents    int64  `json:"total_cents"`
	Status        string `json:"status"`
	OccurredAt    string `json:"occurred_at"`
}

// NewReservationEvent builds the payload for kind from a reservation.
func NewReservationEvent(kind string, r model.Reservation, at time.Time) ReservationEvent {
	return ReservationEvent{
		Type:          kind,
		ReservationID: r.ID,
		UserID:        r.UserID,
		RoomID:        r.RoomID,
		CheckIn:       r.CheckIn.Format(model.DateLayout),
		CheckOut:      r.CheckOut.Format(model.DateLayout),
		Nights:        r.Nights,
		TotalCents:    r.TotalCents,
		Status:        string(r.Status),
		OccurredAt:    at.UTC().Format(time.RFC3339),
	}
}
