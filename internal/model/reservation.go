package model

import (
	"fmt"
	"time"
)

// ReservationStatus tracks the lifecycle of a reservation.  The only legal
// transitions are PENDING -> CONFIRMED and CONFIRMED -> CANCELLED.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "PENDING"
	StatusConfirmed ReservationStatus = "CONFIRMED"
	StatusCancelled ReservationStatus = "CANCELLED"
)

// DateLayout is the wire format for calendar days.
const DateLayout = "2006-01-02"

// Reservation records a guest's stay in one room over a half-open range of
// days [CheckIn, CheckOut).
//
// Fields:
//  ID         – generated identifier ("RES-<uuid>").
//  UserID     – guest who owns the reservation.
//  RoomID     – reserved room.
//  CheckIn    – first night (UTC midnight).
//  CheckOut   – departure day, exclusive.
//  Nights     – number of nights in the range.
//  TotalCents – Nights × room rate at creation; never recomputed.
//  Status     – PENDING, CONFIRMED or CANCELLED.
type Reservation struct {
	ID         string            `json:"id"`
	UserID     string            `json:"user_id"`
	RoomID     string            `json:"room_id"`
	CheckIn    time.Time         `json:"check_in"`
	CheckOut   time.Time         `json:"check_out"`
	Nights     int               `json:"nights"`
	TotalCents int64             `json:"total_cents"`
	Status     ReservationStatus `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Active reports whether the reservation still occupies its room.
func (r Reservation) Active() bool { return r.Status != StatusCancelled }

func (r Reservation) String() string {
	return fmt.Sprintf("Reservation %s | user=%s | room=%s | %s to %s | total=%s | %s",
		r.ID, r.UserID, r.RoomID,
		r.CheckIn.Format(DateLayout), r.CheckOut.Format(DateLayout),
		FormatCents(r.TotalCents), r.Status)
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string into a UTC day.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// Nights counts the nights between two days.  It is zero or negative when
// checkOut is not after checkIn.
func Nights(checkIn, checkOut time.Time) int {
	return int(Day(checkOut).Sub(Day(checkIn)).Hours() / 24)
}
