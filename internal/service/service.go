package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/queue"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

var tracer = otel.Tracer("github.com/iliyamo/hotel-reservation/internal/service")

// PaymentProcessor charges a guest.  Only (true, nil) counts as an
// affirmative result; anything else leaves the ledger untouched.
type PaymentProcessor interface {
	ProcessPayment(ctx context.Context, amountCents int64) (bool, error)
}

// SnapshotStore persists the full hotel state.  Load returns
// repository.ErrNoSnapshot when nothing has been saved yet.
type SnapshotStore interface {
	Load(ctx context.Context) (*model.Snapshot, error)
	Save(ctx context.Context, snap *model.Snapshot) error
}

// EventPublisher broadcasts committed reservation changes.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ReservationEvent) error
}

// Options configures a Service.  Payments is required; a nil Store keeps
// state in memory only and a nil Events disables publishing.
type Options struct {
	HotelName      string
	Store          SnapshotStore
	Payments       PaymentProcessor
	Events         EventPublisher
	Logger         logrus.FieldLogger
	PaymentTimeout time.Duration
	SaveTimeout    time.Duration
	BcryptCost     int
	NewID          func() string
	Now            func() time.Time
}

// Service owns the room catalog, the reservation ledger and the user
// directory.  A single mutex serialises every read and write, so the
// availability check and the ledger append of a booking can never
// interleave with another booking.
type Service struct {
	mu      sync.Mutex
	name    string
	rooms   []model.Room
	roomIdx map[string]int
	ledger  []model.Reservation
	resIdx  map[string]int
	users   map[string]model.User

	version atomic.Uint64

	store          SnapshotStore
	payments       PaymentProcessor
	events         EventPublisher
	log            logrus.FieldLogger
	paymentTimeout time.Duration
	saveTimeout    time.Duration
	bcryptCost     int
	newID          func() string
	now            func() time.Time
}

// New builds an empty Service.  Call Init to load the persisted state or
// seed the sample catalog.
func New(opts Options) *Service {
	if opts.Payments == nil {
		panic("nil payment processor passed to service.New")
	}
	s := &Service{
		name:           opts.HotelName,
		roomIdx:        make(map[string]int),
		resIdx:         make(map[string]int),
		users:          make(map[string]model.User),
		store:          opts.Store,
		payments:       opts.Payments,
		events:         opts.Events,
		log:            opts.Logger,
		paymentTimeout: opts.PaymentTimeout,
		saveTimeout:    opts.SaveTimeout,
		bcryptCost:     opts.BcryptCost,
		newID:          opts.NewID,
		now:            opts.Now,
	}
	if s.name == "" {
		s.name = DefaultHotelName
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	if s.paymentTimeout <= 0 {
		s.paymentTimeout = 5 * time.Second
	}
	if s.saveTimeout <= 0 {
		s.saveTimeout = 5 * time.Second
	}
	if s.bcryptCost <= 0 {
		s.bcryptCost = 10
	}
	if s.newID == nil {
		s.newID = func() string { return "RES-" + uuid.NewString() }
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Init restores the last saved snapshot.  When the store reports that no
// snapshot exists, the sample catalog is seeded and saved instead.
func (s *Service) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store != nil {
		snap, err := s.store.Load(ctx)
		switch {
		case err == nil:
			if err := s.restoreLocked(snap); err != nil {
				return fmt.Errorf("restore snapshot: %w", err)
			}
			s.log.WithFields(logrus.Fields{
				"rooms":        len(s.rooms),
				"reservations": len(s.ledger),
				"users":        len(s.users),
			}).Info("hotel state restored")
			return nil
		case !errors.Is(err, repository.ErrNoSnapshot):
			return fmt.Errorf("load snapshot: %w", err)
		}
	}

	for _, r := range SampleCatalog() {
		s.roomIdx[r.ID] = len(s.rooms)
		s.rooms = append(s.rooms, r)
	}
	s.log.WithField("rooms", len(s.rooms)).Info("no saved state, sample catalog seeded")
	s.commitLocked(ctx, "seed catalog")
	return nil
}

// Name returns the hotel name.
func (s *Service) Name() string { return s.name }

// Version increases with every committed mutation.  Response caches use it
// to tell stale entries from fresh ones.
func (s *Service) Version() uint64 { return s.version.Load() }

// Snapshot returns a deep copy of the current state.
func (s *Service) Snapshot() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Service) snapshotLocked() model.Snapshot {
	snap := model.Snapshot{
		SchemaVersion: model.SnapshotSchemaVersion,
		HotelName:     s.name,
		SavedAt:       s.now().UTC(),
		Rooms:         append([]model.Room(nil), s.rooms...),
		Reservations:  append([]model.Reservation(nil), s.ledger...),
		Users:         make([]model.User, 0, len(s.users)),
	}
	for _, u := range s.users {
		snap.Users = append(snap.Users, u)
	}
	sort.Slice(snap.Users, func(i, j int) bool { return snap.Users[i].ID < snap.Users[j].ID })
	return snap
}

func (s *Service) restoreLocked(snap *model.Snapshot) error {
	rooms := make([]model.Room, 0, len(snap.Rooms))
	roomIdx := make(map[string]int, len(snap.Rooms))
	for _, r := range snap.Rooms {
		if _, dup := roomIdx[r.ID]; dup {
			return fmt.Errorf("%w: duplicate room %s", ErrRoomExists, r.ID)
		}
		roomIdx[r.ID] = len(rooms)
		rooms = append(rooms, r)
	}
	users := make(map[string]model.User, len(snap.Users))
	for _, u := range snap.Users {
		users[u.ID] = u
	}
	ledger := make([]model.Reservation, 0, len(snap.Reservations))
	resIdx := make(map[string]int, len(snap.Reservations))
	for _, r := range snap.Reservations {
		if err := checkRestored(r, roomIdx, users, resIdx); err != nil {
			return fmt.Errorf("%w: reservation %s: %w", ErrCorruptSnapshot, r.ID, err)
		}
		resIdx[r.ID] = len(ledger)
		ledger = append(ledger, r)
	}
	if err := checkNoOverlap(ledger); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}
	if snap.HotelName != "" {
		s.name = snap.HotelName
	}
	s.rooms, s.roomIdx = rooms, roomIdx
	s.ledger, s.resIdx = ledger, resIdx
	s.users = users
	return nil
}

func checkRestored(r model.Reservation, roomIdx map[string]int, users map[string]model.User, seen map[string]int) error {
	if _, dup := seen[r.ID]; dup {
		return errors.New("duplicate reservation id")
	}
	if _, ok := roomIdx[r.RoomID]; !ok {
		return fmt.Errorf("%w: %s", ErrRoomNotFound, r.RoomID)
	}
	if _, ok := users[r.UserID]; !ok {
		return fmt.Errorf("%w: %s", ErrUserNotFound, r.UserID)
	}
	switch r.Status {
	case model.StatusPending, model.StatusConfirmed, model.StatusCancelled:
	default:
		return fmt.Errorf("unknown status %q", r.Status)
	}
	return ValidateRange(r.CheckIn, r.CheckOut)
}

// checkNoOverlap reports the first pair of active reservations that share a
// room night.
func checkNoOverlap(ledger []model.Reservation) error {
	byRoom := make(map[string][]model.Reservation)
	for _, r := range ledger {
		if r.Active() {
			byRoom[r.RoomID] = append(byRoom[r.RoomID], r)
		}
	}
	for room, list := range byRoom {
		sort.Slice(list, func(i, j int) bool { return list[i].CheckIn.Before(list[j].CheckIn) })
		for i := 1; i < len(list); i++ {
			prev, cur := list[i-1], list[i]
			if Overlaps(prev.CheckIn, prev.CheckOut, cur.CheckIn, cur.CheckOut) {
				return fmt.Errorf("%w: room %s: %s and %s", ErrAvailabilityConflict, room, prev.ID, cur.ID)
			}
		}
	}
	return nil
}

// commitLocked bumps the state version and saves a snapshot.  Save
// failures are logged and the in-memory change stands.
func (s *Service) commitLocked(ctx context.Context, reason string) {
	s.version.Add(1)
	if s.store == nil {
		return
	}
	snap := s.snapshotLocked()
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.saveTimeout)
	defer cancel()
	if err := s.store.Save(sctx, &snap); err != nil {
		s.log.WithError(err).WithField("reason", reason).Warn("snapshot save failed, changes not saved")
	}
}

func (s *Service) publish(ctx context.Context, kind string, r model.Reservation) {
	if s.events == nil {
		return
	}
	ev := queue.NewReservationEvent(kind, r, s.now())
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"event":          kind,
			"reservation_id": r.ID,
		}).Warn("reservation event not published")
	}
}
