package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// MySQLSnapshotStore persists the snapshot across the rooms, users and
// reservations tables plus a single-row hotel_snapshot header.  Save
// rewrites all tables inside one transaction; readers never observe a
// partially written state.  The schema is created by database.Migrate.
type MySQLSnapshotStore struct {
	db *sql.DB
}

// NewMySQLSnapshotStore returns a store bound to the given database.
func NewMySQLSnapshotStore(db *sql.DB) *MySQLSnapshotStore { return &MySQLSnapshotStore{db: db} }

// DB exposes the underlying handle for health checks.
func (s *MySQLSnapshotStore) DB() *sql.DB { return s.db }

const (
	selectHeaderQuery       = `SELECT schema_version, hotel_name, saved_at FROM hotel_snapshot WHERE id = 1`
	selectRoomsQuery        = `SELECT id, rate_cents, capacity, room_type, in_service FROM rooms ORDER BY position`
	selectUsersQuery        = `SELECT id, name, email, password_hash, role, created_at FROM users ORDER BY id`
	selectReservationsQuery = `SELECT id, user_id, room_id, check_in, check_out, nights, total_cents, status, created_at, updated_at FROM reservations ORDER BY position`

	deleteReservationsQuery = `DELETE FROM reservations`
	deleteUsersQuery        = `DELETE FROM users`
	deleteRoomsQuery        = `DELETE FROM rooms`

	upsertHeaderQuery = `INSERT INTO hotel_snapshot (id, schema_version, hotel_name, saved_at) VALUES (1, ?, ?, ?) ` +
		`ON DUPLICATE KEY UPDATE schema_version = VALUES(schema_version), hotel_name = VALUES(hotel_name), saved_at = VALUES(saved_at)`
)

// Column lists for the bulk inserts in Save.
var (
	roomColumns        = []string{"position", "id", "rate_cents", "capacity", "room_type", "in_service"}
	userColumns        = []string{"id", "name", "email", "password_hash", "role", "created_at"}
	reservationColumns = []string{"position", "id", "user_id", "room_id", "check_in", "check_out", "nights", "total_cents", "status", "created_at", "updated_at"}
)

// maxInsertRows caps the rows per INSERT so a statement stays well under
// MySQL's 65535 placeholder limit for prepared statements.
const maxInsertRows = 1000

// insertRows writes n rows in batches of at most maxInsertRows.  row returns
// the arguments of the i-th row.
func insertRows(ctx context.Context, tx *sql.Tx, table string, columns []string, n int, row func(i int) []interface{}) error {
	for start := 0; start < n; start += maxInsertRows {
		end := start + maxInsertRows
		if end > n {
			end = n
		}
		args := make([]interface{}, 0, (end-start)*len(columns))
		for i := start; i < end; i++ {
			args = append(args, row(i)...)
		}
		if _, err := tx.ExecContext(ctx, bulkInsertQuery(table, columns, end-start), args...); err != nil {
			return err
		}
	}
	return nil
}

// bulkInsertQuery builds a multi-row INSERT statement with one placeholder
// group per row.
func bulkInsertQuery(table string, columns []string, rows int) string {
	group := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(table)
	b.WriteString(" (")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString(") VALUES ")
	for i := 0; i < rows; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(group)
	}
	return b.String()
}

// Load reads the header and every table.  A missing header row means
// nothing was ever saved and yields ErrNoSnapshot.
func (s *MySQLSnapshotStore) Load(ctx context.Context) (*model.Snapshot, error) {
	var snap model.Snapshot
	err := s.db.QueryRowContext(ctx, selectHeaderQuery).Scan(&snap.SchemaVersion, &snap.HotelName, &snap.SavedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("load snapshot header: %w", err)
	}
	if snap.SchemaVersion != model.SnapshotSchemaVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedSnapshot, snap.SchemaVersion)
	}
	snap.SavedAt = snap.SavedAt.UTC()

	if snap.Rooms, err = s.loadRooms(ctx); err != nil {
		return nil, err
	}
	if snap.Users, err = s.loadUsers(ctx); err != nil {
		return nil, err
	}
	if snap.Reservations, err = s.loadReservations(ctx); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *MySQLSnapshotStore) loadRooms(ctx context.Context) ([]model.Room, error) {
	rows, err := s.db.QueryContext(ctx, selectRoomsQuery)
	if err != nil {
		return nil, fmt.Errorf("load rooms: %w", err)
	}
	defer rows.Close()
	out := make([]model.Room, 0)
	for rows.Next() {
		var r model.Room
		var typ string
		if err := rows.Scan(&r.ID, &r.RateCents, &r.Capacity, &typ, &r.InService); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		r.Type = model.RoomType(typ)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *MySQLSnapshotStore) loadUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx, selectUsersQuery)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	defer rows.Close()
	out := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.CreatedAt = u.CreatedAt.UTC()
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *MySQLSnapshotStore) loadReservations(ctx context.Context) ([]model.Reservation, error) {
	rows, err := s.db.QueryContext(ctx, selectReservationsQuery)
	if err != nil {
		return nil, fmt.Errorf("load reservations: %w", err)
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		var r model.Reservation
		var status string
		if err := rows.Scan(&r.ID, &r.UserID, &r.RoomID, &r.CheckIn, &r.CheckOut,
			&r.Nights, &r.TotalCents, &status, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		r.Status = model.ReservationStatus(status)
		r.CheckIn, r.CheckOut = model.Day(r.CheckIn), model.Day(r.CheckOut)
		r.CreatedAt, r.UpdatedAt = r.CreatedAt.UTC(), r.UpdatedAt.UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// Save replaces the stored state with snap.
func (s *MySQLSnapshotStore) Save(ctx context.Context, snap *model.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	for _, q := range []string{deleteReservationsQuery, deleteUsersQuery, deleteRoomsQuery} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("clear tables: %w", err)
		}
	}

	err = insertRows(ctx, tx, "rooms", roomColumns, len(snap.Rooms), func(i int) []interface{} {
		r := snap.Rooms[i]
		return []interface{}{i, r.ID, r.RateCents, r.Capacity, string(r.Type), r.InService}
	})
	if err != nil {
		return fmt.Errorf("insert rooms: %w", err)
	}
	err = insertRows(ctx, tx, "users", userColumns, len(snap.Users), func(i int) []interface{} {
		u := snap.Users[i]
		return []interface{}{u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.CreatedAt.UTC()}
	})
	if err != nil {
		return fmt.Errorf("insert users: %w", err)
	}
	err = insertRows(ctx, tx, "reservations", reservationColumns, len(snap.Reservations), func(i int) []interface{} {
		r := snap.Reservations[i]
		return []interface{}{i, r.ID, r.UserID, r.RoomID,
			r.CheckIn.Format(model.DateLayout), r.CheckOut.Format(model.DateLayout),
			r.Nights, r.TotalCents, string(r.Status), r.CreatedAt.UTC(), r.UpdatedAt.UTC()}
	})
	if err != nil {
		return fmt.Errorf("insert reservations: %w", err)
	}

	savedAt := snap.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}
	if _, err := tx.ExecContext(ctx, upsertHeaderQuery, snap.SchemaVersion, snap.HotelName, savedAt.UTC()); err != nil {
		return fmt.Errorf("write snapshot header: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	committed = true
	return nil
}
