package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/queue"
)

func TestInitSeedsSampleCatalog(t *testing.T) {
	f := newFixture(t, approveAll{})

	rooms := f.svc.Rooms()
	require.Len(t, rooms, 5)
	assert.Equal(t, "Grand Paradise", f.svc.Name())
	assert.Equal(t, "101", rooms[0].ID)
	assert.Equal(t, int64(24999), rooms[4].RateCents)
	require.NotNil(t, f.store.snap, "seeded catalog is saved")
	assert.Len(t, f.store.snap.Rooms, 5)
}

func TestInitRestoresSavedState(t *testing.T) {
	f := newFixture(t, approveAll{})
	ctx := context.Background()
	res, err := f.svc.MakeReservation(ctx, "alice", "201", day(t, "2025-06-01"), day(t, "2025-06-03"))
	require.NoError(t, err)

	restored := New(Options{Store: f.store, Payments: approveAll{}, Logger: logrus.New()})
	require.NoError(t, restored.Init(ctx))

	got, err := restored.Reservation("alice", res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, got.Status)
	assert.Equal(t, res.TotalCents, got.TotalCents)
	assert.Len(t, restored.Rooms(), 5)
}

func TestInitFailsOnUnreadableSnapshot(t *testing.T) {
	store := &memStore{loadErr: errBoom}
	svc := New(Options{Store: store, Payments: approveAll{}})
	err := svc.Init(context.Background())
	require.ErrorIs(t, err, errBoom)
	assert.Empty(t, svc.Rooms())
}

func TestInitRejectsInconsistentSnapshot(t *testing.T) {
	stay := func(id, user, room, in, out string, status model.ReservationStatus) model.Reservation {
		return model.Reservation{ID: id, UserID: user, RoomID: room,
			CheckIn: day(t, in), CheckOut: day(t, out), Nights: 1, TotalCents: 9999, Status: status}
	}
	base := func(res ...model.Reservation) *model.Snapshot {
		return &model.Snapshot{
			SchemaVersion: model.SnapshotSchemaVersion,
			HotelName:     "Grand Paradise",
			Rooms:         SampleCatalog(),
			Users:         []model.User{{ID: "alice", Role: model.RoleGuest}},
			Reservations:  res,
		}
	}

	cases := []struct {
		name string
		snap *model.Snapshot
		want error
	}{
		{"unknown room", base(stay("RES-1", "alice", "999", "2025-06-01", "2025-06-02", model.StatusConfirmed)), ErrRoomNotFound},
		{"unknown user", base(stay("RES-1", "ghost", "101", "2025-06-01", "2025-06-02", model.StatusConfirmed)), ErrUserNotFound},
		{"unknown status", base(stay("RES-1", "alice", "101", "2025-06-01", "2025-06-02", "EXPIRED")), ErrCorruptSnapshot},
		{"empty range", base(stay("RES-1", "alice", "101", "2025-06-02", "2025-06-02", model.StatusConfirmed)), ErrInvalidDateRange},
		{"duplicate id", base(
			stay("RES-1", "alice", "101", "2025-06-01", "2025-06-02", model.StatusConfirmed),
			stay("RES-1", "alice", "102", "2025-06-01", "2025-06-02", model.StatusConfirmed),
		), ErrCorruptSnapshot},
		{"double booked", base(
			stay("RES-1", "alice", "101", "2025-06-01", "2025-06-04", model.StatusConfirmed),
			stay("RES-2", "alice", "101", "2025-06-03", "2025-06-05", model.StatusConfirmed),
		), ErrAvailabilityConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := New(Options{Store: &memStore{snap: tc.snap}, Payments: approveAll{}})
			err := svc.Init(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrCorruptSnapshot)
			assert.ErrorIs(t, err, tc.want)
			assert.Empty(t, svc.Rooms())
		})
	}

	ok := base(
		stay("RES-1", "alice", "101", "2025-06-01", "2025-06-04", model.StatusCancelled),
		stay("RES-2", "alice", "101", "2025-06-03", "2025-06-05", model.StatusConfirmed),
		stay("RES-3", "alice", "101", "2025-06-05", "2025-06-06", model.StatusConfirmed),
	)
	svc := New(Options{Store: &memStore{snap: ok}, Payments: approveAll{}})
	require.NoError(t, svc.Init(context.Background()))
	assert.Len(t, svc.AllReservations("101", true), 3)
}

func TestOverlappingBookingConflicts(t *testing.T) {
	f := newFixture(t, approveAll{})
	ctx := context.Background()

	first, err := f.svc.MakeReservation(ctx, "alice", "101", day(t, "2025-06-01"), day(t, "2025-06-03"))
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, first.Status)

	_, err = f.svc.MakeReservation(ctx, "bob", "101", day(t, "2025-06-02"), day(t, "2025-06-04"))
	assert.ErrorIs(t, err, ErrAvailabilityConflict)

	second, err := f.svc.MakeReservation(ctx, "bob", "101", day(t, "2025-06-03"), day(t, "2025-06-05"))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	assert.Len(t, f.svc.AllReservations("101", true), 2)
}

func TestSearchByCapacity(t *testing.T) {
	f := newFixture(t, approveAll{})

	rooms, err := f.svc.SearchAvailableRooms(context.Background(), day(t, "2025-06-01"), day(t, "2025-06-03"), 3)
	require.NoError(t, err)
	ids := make([]string, 0, len(rooms))
	for _, r := range rooms {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"201", "202", "301"}, ids)
}

func TestSearchSkipsBookedAndOutOfServiceRooms(t *testing.T) {
	f := newFixture(t, approveAll{})
	ctx := context.Background()

	_, err := f.svc.MakeReservation(ctx, "alice", "201", day(t, "2025-06-01"), day(t, "2025-06-03"))
	require.NoError(t, err)
	_, err = f.svc.SetRoomInService(ctx, "202", false)
	require.NoError(t, err)

	rooms, err := f.svc.SearchAvailableRooms(ctx, day(t, "2025-06-02"), day(t, "2025-06-04"), 3)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "301", rooms[0].ID)

	rooms, err = f.svc.SearchAvailableRooms(ctx, day(t, "2025-06-02"), day(t, "2025-06-04"), 5)
	require.NoError(t, err)
	assert.NotNil(t, rooms)
	assert.Empty(t, rooms)

	_, err = f.svc.SearchAvailableRooms(ctx, day(t, "2025-06-04"), day(t, "2025-06-02"), 1)
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestCancelFreesDatesAndIsNotRepeatable(t *testing.T) {
	f := newFixture(t, approveAll{})
	ctx := context.Background()

	res, err := f.svc.MakeReservation(ctx, "alice", "301", day(t, "2025-06-01"), day(t, "2025-06-04"))
	require.NoError(t, err)

	require.NoError(t, f.svc.CancelReservation(ctx, "alice", res.ID))
	err = f.svc.CancelReservation(ctx, "alice", res.ID)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)

	ok, err := f.svc.IsRoomAvailable("301", day(t, "2025-06-01"), day(t, "2025-06-04"))
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.svc.MakeReservation(ctx, "bob", "301", day(t, "2025-06-02"), day(t, "2025-06-03"))
	require.NoError(t, err)

	got, err := f.svc.Reservation("alice", res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, got.Status)

	assert.Equal(t, []string{
		queue.EventReservationConfirmed,
		queue.EventReservationCancelled,
		queue.EventReservationConfirmed,
	}, f.events.types())
}

func TestCancelChecksOwnership(t *testing.T) {
	f := newFixture(t, approveAll{})
	ctx := context.Background()

	res, err := f.svc.MakeReservation(ctx, "alice", "101", day(t, "2025-06-01"), day(t, "2025-06-02"))
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.CancelReservation(ctx, "bob", res.ID), ErrNotOwnedByUser)
	assert.ErrorIs(t, f.svc.CancelReservation(ctx, "alice", "RES-missing"), ErrReservationNotFound)

	got, err := f.svc.Reservation("alice", res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, got.Status)
}

func TestTotalIsExactAndFrozen(t *testing.T) {
	f := newFixture(t, approveAll{})
	ctx := context.Background()

	res, err := f.svc.MakeReservation(ctx, "alice", "101", day(t, "2025-06-01"), day(t, "2025-06-03"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Nights)
	assert.Equal(t, int64(19998), res.TotalCents)
	assert.Equal(t, "$199.98", model.FormatCents(res.TotalCents))

	_, err = f.svc.SetRoomRate(ctx, "101", 50000)
	require.NoError(t, err)

	got, err := f.svc.Reservation("alice", res.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(19998), got.TotalCents)
}

func TestInvalidRangeNeverReachesLedger(t *testing.T) {
	pay := &mockPayments{}
	f := newFixture(t, pay)
	ctx := context.Background()

	_, err := f.svc.MakeReservation(ctx, "alice", "101", day(t, "2025-06-03"), day(t, "2025-06-03"))
	assert.ErrorIs(t, err, ErrInvalidDateRange)
	_, err = f.svc.MakeReservation(ctx, "alice", "101", day(t, "2025-06-03"), day(t, "2025-06-01"))
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	assert.Empty(t, f.svc.AllReservations("", true))
	pay.AssertNotCalled(t, "ProcessPayment", mock.Anything, mock.Anything)
}

func TestUnknownRoomAndUser(t *testing.T) {
	f := newFixture(t, approveAll{})
	ctx := context.Background()

	_, err := f.svc.MakeReservation(ctx, "alice", "999", day(t, "2025-06-01"), day(t, "2025-06-02"))
	assert.ErrorIs(t, err, ErrRoomNotFound)
	_, err = f.svc.MakeReservation(ctx, "mallory", "101", day(t, "2025-06-01"), day(t, "2025-06-02"))
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestPaymentChargesNightsTimesRate(t *testing.T) {
	pay := &mockPayments{}
	pay.On("ProcessPayment", mock.Anything, int64(3*14999)).Return(true, nil).Once()
	f := newFixture(t, pay)

	res, err := f.svc.MakeReservation(context.Background(), "alice", "202", day(t, "2025-06-01"), day(t, "2025-06-04"))
	require.NoError(t, err)
	assert.Equal(t, int64(44997), res.TotalCents)
	pay.AssertExpectations(t)
}

func TestPaymentFailureLeavesNoTrace(t *testing.T) {
	cases := []struct {
		name  string
		setup func(m *mockPayments)
	}{
		{"declined", func(m *mockPayments) {
			m.On("ProcessPayment", mock.Anything, mock.Anything).Return(false, nil)
		}},
		{"error", func(m *mockPayments) {
			m.On("ProcessPayment", mock.Anything, mock.Anything).Return(false, errBoom)
		}},
		{"timeout", func(m *mockPayments) {
			m.On("ProcessPayment", mock.Anything, mock.Anything).
				After(time.Second).Return(true, nil)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pay := &mockPayments{}
			tc.setup(pay)
			f := newFixture(t, pay)
			savesBefore := f.store.saves
			versionBefore := f.svc.Version()

			_, err := f.svc.MakeReservation(context.Background(), "alice", "101", day(t, "2025-06-01"), day(t, "2025-06-03"))
			require.ErrorIs(t, err, ErrPaymentFailed)

			assert.Empty(t, f.svc.AllReservations("", true))
			assert.Equal(t, savesBefore, f.store.saves)
			assert.Equal(t, versionBefore, f.svc.Version())
			assert.Empty(t, f.events.types())

			ok, err := f.svc.IsRoomAvailable("101", day(t, "2025-06-01"), day(t, "2025-06-03"))
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestSaveFailureIsLoggedAndKeepsBooking(t *testing.T) {
	f := newFixture(t, approveAll{})
	f.store.saveErr = errBoom
	f.logs.Reset()

	res, err := f.svc.MakeReservation(context.Background(), "alice", "101", day(t, "2025-06-01"), day(t, "2025-06-02"))
	require.NoError(t, err)

	got, err := f.svc.Reservation("alice", res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, got.Status)

	var warned bool
	for _, e := range f.logs.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Message == "snapshot save failed, changes not saved" {
			warned = true
		}
	}
	assert.True(t, warned, "save failure must be logged")
}

func TestPublishFailureDoesNotFailBooking(t *testing.T) {
	f := newFixture(t, approveAll{})
	f.events.err = errBoom

	_, err := f.svc.MakeReservation(context.Background(), "alice", "101", day(t, "2025-06-01"), day(t, "2025-06-02"))
	require.NoError(t, err)
	assert.Len(t, f.events.types(), 1)
}

func TestConcurrentBookingsNeverOverlap(t *testing.T) {
	f := newFixture(t, approveAll{})
	ctx := context.Background()

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := day(t, "2025-06-01").AddDate(0, 0, i%3)
			_, err := f.svc.MakeReservation(ctx, "alice", "101", in, in.AddDate(0, 0, 2))
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, ErrAvailabilityConflict)
			}
		}(i)
	}
	wg.Wait()

	ledger := f.svc.AllReservations("101", false)
	assert.Len(t, ledger, succeeded)
	for i := range ledger {
		for j := i + 1; j < len(ledger); j++ {
			assert.False(t, Overlaps(ledger[i].CheckIn, ledger[i].CheckOut, ledger[j].CheckIn, ledger[j].CheckOut),
				"%s overlaps %s", ledger[i].ID, ledger[j].ID)
		}
	}
}

func TestIDsAreRedrawnOnClash(t *testing.T) {
	ids := []string{"RES-A", "RES-A", "RES-B"}
	n := 0
	svc := New(Options{
		Payments: approveAll{},
		NewID: func() string {
			id := ids[n]
			n++
			return id
		},
	})
	ctx := context.Background()
	require.NoError(t, svc.Init(ctx))
	_, err := svc.RegisterUser(ctx, NewUser{ID: "alice"})
	require.NoError(t, err)

	first, err := svc.MakeReservation(ctx, "alice", "101", day(t, "2025-06-01"), day(t, "2025-06-02"))
	require.NoError(t, err)
	second, err := svc.MakeReservation(ctx, "alice", "102", day(t, "2025-06-01"), day(t, "2025-06-02"))
	require.NoError(t, err)
	assert.Equal(t, "RES-A", first.ID)
	assert.Equal(t, "RES-B", second.ID)
}
