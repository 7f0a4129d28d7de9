package model

import (
	"fmt"
	"strings"
)

// RoomType labels the category of a room.  It carries no pricing behaviour;
// the nightly rate lives on the room itself.  New categories can be added by
// declaring another constant and a label below.
type RoomType string

const (
	RoomStandard RoomType = "STANDARD"
	RoomDeluxe   RoomType = "DELUXE"
	RoomSuite    RoomType = "SUITE"
)

var roomLabels = map[RoomType]string{
	RoomStandard: "Standard",
	RoomDeluxe:   "Deluxe",
	RoomSuite:    "Suite",
}

// Label returns the human readable name of the room type.  Unknown types fall
// back to a title-cased version of the raw value.
func (t RoomType) Label() string {
	if l, ok := roomLabels[t]; ok {
		return l
	}
	s := strings.ToLower(string(t))
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Valid reports whether t is one of the known room types.
func (t RoomType) Valid() bool {
	_, ok := roomLabels[t]
	return ok
}

// ParseRoomType normalises user input ("suite", " Deluxe ") into a RoomType.
func ParseRoomType(s string) (RoomType, bool) {
	t := RoomType(strings.ToUpper(strings.TrimSpace(s)))
	return t, t.Valid()
}

// Room is a bookable unit of the hotel catalog.
//
// Fields:
//  ID        – room number, unique within the catalog (e.g. "101").
//  RateCents – nightly rate in cents.
//  Capacity  – maximum number of guests.
//  Type      – category label.
//  InService – administrative switch; false takes the room out of service
//              regardless of bookings.  Bookings never change it.
type Room struct {
	ID        string   `json:"id"`
	RateCents int64    `json:"rate_cents"`
	Capacity  int      `json:"capacity"`
	Type      RoomType `json:"type"`
	InService bool     `json:"in_service"`
}

func (r Room) String() string {
	return fmt.Sprintf("%s Room %s (%s/night, capacity: %d)",
		r.Type.Label(), r.ID, FormatCents(r.RateCents), r.Capacity)
}

// FormatCents renders an amount of cents as a dollar string, e.g. 19998 -> "$199.98".
func FormatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s$%d.%02d", sign, c/100, c%100)
}
