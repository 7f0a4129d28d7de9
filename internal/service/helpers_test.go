package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/queue"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

type mockPayments struct {
	mock.Mock
}

func (m *mockPayments) ProcessPayment(ctx context.Context, amountCents int64) (bool, error) {
	args := m.Called(ctx, amountCents)
	return args.Bool(0), args.Error(1)
}

type approveAll struct{}

func (approveAll) ProcessPayment(context.Context, int64) (bool, error) { return true, nil }

// memStore keeps the last saved snapshot in memory.
type memStore struct {
	mu      sync.Mutex
	snap    *model.Snapshot
	saves   int
	loadErr error
	saveErr error
}

func (m *memStore) Load(context.Context) (*model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.snap == nil {
		return nil, repository.ErrNoSnapshot
	}
	cp := *m.snap
	return &cp, nil
}

func (m *memStore) Save(_ context.Context, snap *model.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	cp := *snap
	m.snap = &cp
	return nil
}

type recordingEvents struct {
	mu     sync.Mutex
	events []queue.ReservationEvent
	err    error
}

func (r *recordingEvents) Publish(_ context.Context, ev queue.ReservationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func (r *recordingEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	svc    *Service
	store  *memStore
	events *recordingEvents
	logs   *logtest.Hook
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("RES-%04d", n)
	}
}

func newFixture(t *testing.T, pay PaymentProcessor) *fixture {
	t.Helper()
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	f := &fixture{store: &memStore{}, events: &recordingEvents{}, logs: hook}
	f.svc = New(Options{
		Store:          f.store,
		Payments:       pay,
		Events:         f.events,
		Logger:         logger,
		PaymentTimeout: 200 * time.Millisecond,
		BcryptCost:     4,
		NewID:          sequentialIDs(),
		Now:            func() time.Time { return time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, f.svc.Init(context.Background()))
	_, err := f.svc.RegisterUser(context.Background(), NewUser{ID: "alice", Name: "Alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	_, err = f.svc.RegisterUser(context.Background(), NewUser{ID: "bob", Name: "Bob"})
	require.NoError(t, err)
	return f
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDay(s)
	require.NoError(t, err)
	return d
}

var errBoom = errors.New("boom")
