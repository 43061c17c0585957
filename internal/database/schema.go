package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied statement by statement; every statement is idempotent.
// total_seats keeps the capacity a screening was created with and
// available_seats is the live counter decremented by bookings.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS shows (
		id              BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name            VARCHAR(255)    NOT NULL,
		theatre_name    VARCHAR(255)    NOT NULL,
		start_time      DATETIME        NOT NULL,
		total_seats     INT UNSIGNED    NOT NULL,
		available_seats INT UNSIGNED    NOT NULL,
		created_at      DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_shows_start_time (start_time),
		CONSTRAINT chk_shows_seats CHECK (available_seats <= total_seats)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		show_id    BIGINT UNSIGNED NOT NULL,
		user_id    VARCHAR(512)    NOT NULL,
		seat_count INT UNSIGNED    NOT NULL,
		status     ENUM('PENDING','CONFIRMED','FAILED') NOT NULL DEFAULT 'PENDING',
		created_at DATETIME(6)     NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		PRIMARY KEY (id),
		KEY idx_bookings_user_id (user_id),
		KEY idx_bookings_show_id (show_id, created_at),
		CONSTRAINT fk_bookings_show FOREIGN KEY (show_id) REFERENCES shows (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates the shows and bookings tables when they are missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
