package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates the tables used by repository.MySQLSnapshotStore.  The
// statements are idempotent so Migrate can run on every start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS hotel_snapshot (
		id             TINYINT UNSIGNED NOT NULL PRIMARY KEY,
		schema_version INT NOT NULL,
		hotel_name     VARCHAR(255) NOT NULL,
		saved_at       DATETIME(6) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS rooms (
		id         VARCHAR(32) NOT NULL PRIMARY KEY,
		position   INT NOT NULL,
		rate_cents BIGINT NOT NULL,
		capacity   INT NOT NULL,
		room_type  VARCHAR(32) NOT NULL,
		in_service BOOLEAN NOT NULL DEFAULT TRUE,
		KEY idx_rooms_position (position)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS users (
		id            VARCHAR(64) NOT NULL PRIMARY KEY,
		name          VARCHAR(255) NOT NULL,
		email         VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL DEFAULT '',
		role          VARCHAR(16) NOT NULL,
		created_at    DATETIME(6) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id          VARCHAR(64) NOT NULL PRIMARY KEY,
		position    INT NOT NULL,
		user_id     VARCHAR(64) NOT NULL,
		room_id     VARCHAR(32) NOT NULL,
		check_in    DATE NOT NULL,
		check_out   DATE NOT NULL,
		nights      INT NOT NULL,
		total_cents BIGINT NOT NULL,
		status      ENUM('PENDING','CONFIRMED','CANCELLED') NOT NULL,
		created_at  DATETIME(6) NOT NULL,
		updated_at  DATETIME(6) NOT NULL,
		KEY idx_reservations_room (room_id, check_in, check_out),
		KEY idx_reservations_user (user_id),
		CONSTRAINT fk_reservations_room FOREIGN KEY (room_id) REFERENCES rooms (id),
		CONSTRAINT fk_reservations_user FOREIGN KEY (user_id) REFERENCES users (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing tables.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
