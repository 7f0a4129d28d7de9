package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// Rooms returns the catalog in insertion order.
func (s *Service) Rooms() []model.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Room(nil), s.rooms...)
}

// Room looks up a single room by number.
func (s *Service) Room(id string) (model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.roomIdx[id]
	if !ok {
		return model.Room{}, fmt.Errorf("%w: %s", ErrRoomNotFound, id)
	}
	return s.rooms[i], nil
}

// AddRoom appends a room to the catalog.
func (s *Service) AddRoom(ctx context.Context, room model.Room) (model.Room, error) {
	room.ID = strings.TrimSpace(room.ID)
	if err := validateRoom(room); err != nil {
		return model.Room{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.roomIdx[room.ID]; dup {
		return model.Room{}, fmt.Errorf("%w: %s", ErrRoomExists, room.ID)
	}
	s.roomIdx[room.ID] = len(s.rooms)
	s.rooms = append(s.rooms, room)
	s.commitLocked(ctx, "room added")

	s.log.WithFields(logrus.Fields{"room_id": room.ID, "type": room.Type}).Info("room added")
	return room, nil
}

func validateRoom(r model.Room) error {
	switch {
	case r.ID == "":
		return fmt.Errorf("%w: room number is required", ErrInvalidRoom)
	case r.RateCents < 0:
		return fmt.Errorf("%w: rate must not be negative", ErrInvalidRoom)
	case r.Capacity <= 0:
		return fmt.Errorf("%w: capacity must be positive", ErrInvalidRoom)
	case !r.Type.Valid():
		return fmt.Errorf("%w: unknown room type %q", ErrInvalidRoom, r.Type)
	}
	return nil
}

// SetRoomInService flips the administrative flag of a room.  Existing
// reservations are left alone; the flag only gates new bookings.
func (s *Service) SetRoomInService(ctx context.Context, id string, inService bool) (model.Room, error) {
	return s.updateRoom(ctx, id, "room service status changed", func(r *model.Room) error {
		r.InService = inService
		return nil
	})
}

// SetRoomRate changes the nightly rate for future bookings.  Totals of
// existing reservations are frozen and do not change.
func (s *Service) SetRoomRate(ctx context.Context, id string, rateCents int64) (model.Room, error) {
	return s.updateRoom(ctx, id, "room rate changed", func(r *model.Room) error {
		if rateCents < 0 {
			return fmt.Errorf("%w: rate must not be negative", ErrInvalidRoom)
		}
		r.RateCents = rateCents
		return nil
	})
}

// RoomUpdate lists the room fields a manager may change.  Nil fields are
// left as they are.
type RoomUpdate struct {
	InService *bool
	RateCents *int64
}

// UpdateRoom applies every set field of upd as a single commit.
func (s *Service) UpdateRoom(ctx context.Context, id string, upd RoomUpdate) (model.Room, error) {
	return s.updateRoom(ctx, id, "room updated", func(r *model.Room) error {
		if upd.RateCents != nil {
			if *upd.RateCents < 0 {
				return fmt.Errorf("%w: rate must not be negative", ErrInvalidRoom)
			}
			r.RateCents = *upd.RateCents
		}
		if upd.InService != nil {
			r.InService = *upd.InService
		}
		return nil
	})
}

func (s *Service) updateRoom(ctx context.Context, id, reason string, apply func(*model.Room) error) (model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.roomIdx[id]
	if !ok {
		return model.Room{}, fmt.Errorf("%w: %s", ErrRoomNotFound, id)
	}
	updated := s.rooms[i]
	if err := apply(&updated); err != nil {
		return model.Room{}, err
	}
	s.rooms[i] = updated
	s.commitLocked(ctx, reason)

	s.log.WithFields(logrus.Fields{
		"room_id":    id,
		"in_service": updated.InService,
		"rate":       model.FormatCents(updated.RateCents),
	}).Info(reason)
	return updated, nil
}
