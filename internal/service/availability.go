package service

import (
	"time"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// Overlaps reports whether the half-open ranges [a, b) and [c, d) share at
// least one night.  A stay ending on day X does not overlap one starting on X.
func Overlaps(a, b, c, d time.Time) bool {
	return a.Before(d) && c.Before(b)
}

// ValidateRange rejects ranges whose check-out is not after check-in.
func ValidateRange(checkIn, checkOut time.Time) error {
	if !model.Day(checkOut).After(model.Day(checkIn)) {
		return ErrInvalidDateRange
	}
	return nil
}

// IsAvailable decides whether room can be booked for [checkIn, checkOut)
// given the ledger.  The room must be in service and no non-cancelled
// reservation on it may overlap the range.  It has no side effects and
// does not validate the range; callers do that with ValidateRange.
func IsAvailable(room model.Room, checkIn, checkOut time.Time, ledger []model.Reservation) bool {
	if !room.InService {
		return false
	}
	checkIn, checkOut = model.Day(checkIn), model.Day(checkOut)
	for _, r := range ledger {
		if r.RoomID != room.ID || !r.Active() {
			continue
		}
		if Overlaps(checkIn, checkOut, r.CheckIn, r.CheckOut) {
			return false
		}
	}
	return true
}
