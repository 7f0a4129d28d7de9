package service

import "github.com/iliyamo/hotel-reservation/internal/model"

// DefaultHotelName is used when no name is configured.
const DefaultHotelName = "Grand Paradise"

// SampleCatalog returns the rooms a fresh hotel starts with when no
// snapshot has been saved yet.
func SampleCatalog() []model.Room {
	return []model.Room{
		{ID: "101", RateCents: 9999, Capacity: 2, Type: model.RoomStandard, InService: true},
		{ID: "102", RateCents: 9999, Capacity: 2, Type: model.RoomStandard, InService: true},
		{ID: "201", RateCents: 14999, Capacity: 3, Type: model.RoomDeluxe, InService: true},
		{ID: "202", RateCents: 14999, Capacity: 3, Type: model.RoomDeluxe, InService: true},
		{ID: "301", RateCents: 24999, Capacity: 4, Type: model.RoomSuite, InService: true},
	}
}
