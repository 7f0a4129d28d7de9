package repository

import (
	"time"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

func sampleSnapshot() *model.Snapshot {
	created := time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC)
	return &model.Snapshot{
		SchemaVersion: model.SnapshotSchemaVersion,
		HotelName:     "Grand Paradise",
		SavedAt:       time.Date(2025, 5, 2, 10, 0, 0, 0, time.UTC),
		Rooms: []model.Room{
			{ID: "101", RateCents: 9999, Capacity: 2, Type: model.RoomStandard, InService: true},
			{ID: "301", RateCents: 24999, Capacity: 4, Type: model.RoomSuite, InService: false},
		},
		Users: []model.User{
			{ID: "alice", Name: "Alice", Email: "alice@example.com", PasswordHash: "$2a$04$hash", Role: model.RoleGuest, CreatedAt: created},
		},
		Reservations: []model.Reservation{
			{
				ID: "RES-1", UserID: "alice", RoomID: "101",
				CheckIn: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), CheckOut: time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
				Nights: 2, TotalCents: 19998, Status: model.StatusConfirmed, CreatedAt: created, UpdatedAt: created,
			},
			{
				ID: "RES-2", UserID: "alice", RoomID: "301",
				CheckIn: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), CheckOut: time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC),
				Nights: 1, TotalCents: 24999, Status: model.StatusCancelled, CreatedAt: created, UpdatedAt: created.Add(time.Hour),
			},
		},
	}
}
