package model

import "time"

// SnapshotSchemaVersion is bumped whenever the persisted layout changes in a
// way older readers cannot understand.
const SnapshotSchemaVersion = 1

// Snapshot is the full persisted state of the hotel: catalog, ledger and
// user directory.  Rooms and reservations keep their catalog and ledger
// order; users are sorted by ID.
type Snapshot struct {
	SchemaVersion int           `json:"schema_version"`
	HotelName     string        `json:"hotel_name"`
	SavedAt       time.Time     `json:"saved_at"`
	Rooms         []Room        `json:"rooms"`
	Reservations  []Reservation `json:"reservations"`
	Users         []User        `json:"users"`
}
