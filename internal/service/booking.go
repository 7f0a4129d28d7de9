package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/queue"
)

// MakeReservation books roomID for userID over [checkIn, checkOut).  The
// guest is charged nights × current rate before anything is committed; on
// success the confirmed reservation is appended to the ledger, the state
// is saved and a reservation.confirmed event is published.  Either the
// whole booking is committed or nothing is.
func (s *Service) MakeReservation(ctx context.Context, userID, roomID string, checkIn, checkOut time.Time) (*model.Reservation, error) {
	ctx, span := tracer.Start(ctx, "Service.MakeReservation", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("room.id", roomID),
	))
	defer span.End()

	res, err := s.reserve(ctx, userID, roomID, model.Day(checkIn), model.Day(checkOut))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("reservation.id", res.ID))

	s.publish(ctx, queue.EventReservationConfirmed, res)
	return &res, nil
}

func (s *Service) reserve(ctx context.Context, userID, roomID string, checkIn, checkOut time.Time) (model.Reservation, error) {
	if err := ValidateRange(checkIn, checkOut); err != nil {
		return model.Reservation{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return model.Reservation{}, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	i, ok := s.roomIdx[roomID]
	if !ok {
		return model.Reservation{}, fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
	}
	room := s.rooms[i]
	if !IsAvailable(room, checkIn, checkOut, s.ledger) {
		return model.Reservation{}, fmt.Errorf("%w: room %s %s to %s", ErrAvailabilityConflict,
			roomID, checkIn.Format(model.DateLayout), checkOut.Format(model.DateLayout))
	}

	nights := model.Nights(checkIn, checkOut)
	now := s.now().UTC()
	res := model.Reservation{
		ID:         s.nextIDLocked(),
		UserID:     userID,
		RoomID:     roomID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Nights:     nights,
		TotalCents: int64(nights) * room.RateCents,
		Status:     model.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.charge(ctx, res.TotalCents); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"room_id": roomID,
			"amount":  model.FormatCents(res.TotalCents),
		}).Warn("payment failed, reservation discarded")
		return model.Reservation{}, err
	}

	res.Status = model.StatusConfirmed
	s.resIdx[res.ID] = len(s.ledger)
	s.ledger = append(s.ledger, res)
	s.commitLocked(ctx, "reservation created")

	s.log.WithFields(logrus.Fields{
		"reservation_id": res.ID,
		"user_id":        userID,
		"room_id":        roomID,
		"check_in":       checkIn.Format(model.DateLayout),
		"check_out":      checkOut.Format(model.DateLayout),
		"total":          model.FormatCents(res.TotalCents),
	}).Info("reservation confirmed")
	return res, nil
}

// charge runs the payment collaborator under the payment timeout.  A
// processor that ignores its context is abandoned once the deadline passes.
func (s *Service) charge(ctx context.Context, amountCents int64) error {
	pctx, cancel := context.WithTimeout(ctx, s.paymentTimeout)
	defer cancel()

	type result struct {
		ok  bool
		err error
	}
	done := make(chan result, 1)
	go func() {
		ok, err := s.payments.ProcessPayment(pctx, amountCents)
		done <- result{ok: ok, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return fmt.Errorf("%w: %v", ErrPaymentFailed, r.err)
		}
		if !r.ok {
			return fmt.Errorf("%w: declined", ErrPaymentFailed)
		}
		return nil
	case <-pctx.Done():
		return fmt.Errorf("%w: %v", ErrPaymentFailed, pctx.Err())
	}
}

func (s *Service) nextIDLocked() string {
	for {
		id := s.newID()
		if _, taken := s.resIdx[id]; !taken {
			return id
		}
	}
}

// CancelReservation cancels a reservation owned by userID.  Cancelling an
// already cancelled reservation returns ErrAlreadyCancelled and changes
// nothing.
func (s *Service) CancelReservation(ctx context.Context, userID, reservationID string) error {
	ctx, span := tracer.Start(ctx, "Service.CancelReservation", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("reservation.id", reservationID),
	))
	defer span.End()

	res, err := s.cancel(ctx, userID, reservationID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	s.publish(ctx, queue.EventReservationCancelled, res)
	return nil
}

func (s *Service) cancel(ctx context.Context, userID, reservationID string) (model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.resIdx[reservationID]
	if !ok {
		return model.Reservation{}, fmt.Errorf("%w: %s", ErrReservationNotFound, reservationID)
	}
	res := &s.ledger[i]
	if res.UserID != userID {
		return model.Reservation{}, fmt.Errorf("%w: %s", ErrNotOwnedByUser, reservationID)
	}
	if res.Status == model.StatusCancelled {
		return model.Reservation{}, fmt.Errorf("%w: %s", ErrAlreadyCancelled, reservationID)
	}
	res.Status = model.StatusCancelled
	res.UpdatedAt = s.now().UTC()
	s.commitLocked(ctx, "reservation cancelled")

	s.log.WithFields(logrus.Fields{
		"reservation_id": res.ID,
		"user_id":        userID,
		"room_id":        res.RoomID,
	}).Info("reservation cancelled")
	return *res, nil
}

// SearchAvailableRooms lists rooms with at least minCapacity beds that can
// be booked for [checkIn, checkOut), in catalog order.  No match yields an
// empty slice, not an error.
func (s *Service) SearchAvailableRooms(ctx context.Context, checkIn, checkOut time.Time, minCapacity int) ([]model.Room, error) {
	_, span := tracer.Start(ctx, "Service.SearchAvailableRooms", trace.WithAttributes(
		attribute.Int("min_capacity", minCapacity),
	))
	defer span.End()

	checkIn, checkOut = model.Day(checkIn), model.Day(checkOut)
	if err := ValidateRange(checkIn, checkOut); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		if r.Capacity >= minCapacity && IsAvailable(r, checkIn, checkOut, s.ledger) {
			out = append(out, r)
		}
	}
	span.SetAttributes(attribute.Int("rooms.found", len(out)))
	return out, nil
}

// IsRoomAvailable runs the availability check for a single room.
func (s *Service) IsRoomAvailable(roomID string, checkIn, checkOut time.Time) (bool, error) {
	if err := ValidateRange(checkIn, checkOut); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.roomIdx[roomID]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
	}
	return IsAvailable(s.rooms[i], checkIn, checkOut, s.ledger), nil
}
