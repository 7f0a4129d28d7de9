package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/utils"
)

// NewUser carries registration input.  Password is hashed before the user
// is stored and may be empty for accounts that never log in.
type NewUser struct {
	ID       string
	Name     string
	Email    string
	Password string
	Role     string
}

// RegisterUser adds an account to the directory.
func (s *Service) RegisterUser(ctx context.Context, in NewUser) (model.User, error) {
	u := model.User{
		ID:    strings.TrimSpace(in.ID),
		Name:  strings.TrimSpace(in.Name),
		Email: strings.ToLower(strings.TrimSpace(in.Email)),
		Role:  strings.ToUpper(strings.TrimSpace(in.Role)),
	}
	if u.ID == "" {
		return model.User{}, fmt.Errorf("%w: id is required", ErrInvalidUser)
	}
	if u.Email != "" && !strings.Contains(u.Email, "@") {
		return model.User{}, fmt.Errorf("%w: malformed email %q", ErrInvalidUser, u.Email)
	}
	if u.Role != model.RoleManager {
		u.Role = model.RoleGuest
	}
	if in.Password != "" {
		hash, err := utils.HashPassword(in.Password, s.bcryptCost)
		if err != nil {
			return model.User{}, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = hash
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.users[u.ID]; dup {
		return model.User{}, fmt.Errorf("%w: %s", ErrUserExists, u.ID)
	}
	u.CreatedAt = s.now().UTC()
	s.users[u.ID] = u
	s.commitLocked(ctx, "user registered")

	s.log.WithField("user_id", u.ID).Info("user registered")
	return u, nil
}

// EnsureManager creates the manager account id unless it already exists.
// An existing account must already hold the manager role; a guest of the
// same name is never promoted.
func (s *Service) EnsureManager(ctx context.Context, id, password string) (model.User, error) {
	id = strings.TrimSpace(id)
	if password == "" {
		return model.User{}, fmt.Errorf("%w: manager %s needs a password", ErrInvalidUser, id)
	}
	if u, err := s.User(id); err == nil {
		if u.Role != model.RoleManager {
			return model.User{}, fmt.Errorf("%w: %s is registered as %s", ErrUserExists, id, u.Role)
		}
		return u, nil
	}
	return s.RegisterUser(ctx, NewUser{ID: id, Name: id, Password: password, Role: model.RoleManager})
}

// User returns the account with the given ID.
func (s *Service) User(id string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, fmt.Errorf("%w: %s", ErrUserNotFound, id)
	}
	return u, nil
}

// UserReservations derives a user's reservations from the ledger in
// booking order.  Cancelled reservations are skipped unless
// includeCancelled is set.
func (s *Service) UserReservations(userID string, includeCancelled bool) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	out := make([]model.Reservation, 0)
	for _, r := range s.ledger {
		if r.UserID != userID {
			continue
		}
		if !includeCancelled && !r.Active() {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// Reservation returns a single reservation if it belongs to userID.
func (s *Service) Reservation(userID, reservationID string) (model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.resIdx[reservationID]
	if !ok {
		return model.Reservation{}, fmt.Errorf("%w: %s", ErrReservationNotFound, reservationID)
	}
	if s.ledger[i].UserID != userID {
		return model.Reservation{}, fmt.Errorf("%w: %s", ErrNotOwnedByUser, reservationID)
	}
	return s.ledger[i], nil
}

// Authenticate checks a password against the stored hash.  Unknown users and
// wrong passwords both yield ErrInvalidCredentials.
func (s *Service) Authenticate(id, password string) (model.User, error) {
	s.mu.Lock()
	u, ok := s.users[strings.TrimSpace(id)]
	s.mu.Unlock()

	if !ok || !utils.VerifyPassword(u.PasswordHash, password) {
		return model.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// AllReservations returns the whole ledger in booking order, optionally
// filtered to a single room.
func (s *Service) AllReservations(roomID string, includeCancelled bool) []model.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Reservation, 0, len(s.ledger))
	for _, r := range s.ledger {
		if roomID != "" && r.RoomID != roomID {
			continue
		}
		if !includeCancelled && !r.Active() {
			continue
		}
		out = append(out, r)
	}
	return out
}
