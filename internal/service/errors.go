// Package service implements the hotel reservation engine: the room
// catalog, the reservation ledger, the user directory and the booking
// operations that keep them consistent.
package service

import "errors"

// Booking failures.  Every error returned by the service wraps one of these
// values so callers can branch with errors.Is instead of parsing messages.
var (
	// ErrRoomNotFound is returned when no room with the requested number
	// exists in the catalog.
	ErrRoomNotFound = errors.New("room not found")
	// ErrInvalidDateRange is returned when check-out is not strictly after
	// check-in.
	ErrInvalidDateRange = errors.New("check-out must be after check-in")
	// ErrAvailabilityConflict is returned when the room is out of service
	// or already booked for an overlapping range.
	ErrAvailabilityConflict = errors.New("room is not available for the requested dates")
	// ErrPaymentFailed is returned when the payment collaborator declined,
	// failed or timed out.  Nothing is written to the ledger in that case.
	ErrPaymentFailed = errors.New("payment failed")
)

// Cancellation failures.
var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrNotOwnedByUser      = errors.New("reservation belongs to another user")
	ErrAlreadyCancelled    = errors.New("reservation already cancelled")
)

// Catalog and directory failures.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
	ErrInvalidUser  = errors.New("invalid user")
	ErrRoomExists   = errors.New("room already exists")
	ErrInvalidRoom  = errors.New("invalid room")

	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ErrCorruptSnapshot is returned by Init when a loaded snapshot breaks a
// ledger invariant.  The specific cause is wrapped alongside it.
var ErrCorruptSnapshot = errors.New("corrupt snapshot")
