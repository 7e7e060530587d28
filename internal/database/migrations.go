package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/labstack/gommon/log"
)

// schema creates the four tables.  Statements are idempotent.  The store
// owns the invariants it can express: unique instrument names, one payment
// per student and month, one attendance row per student and day, and
// cascading deletes of a student's attendance and payments.  Instruments
// referenced by students cannot be deleted (ON DELETE RESTRICT).
var schema = []string{
	`CREATE TABLE IF NOT EXISTS instruments (
		id         CHAR(36)     NOT NULL,
		name       VARCHAR(191) NOT NULL,
		quantity   INT UNSIGNED NOT NULL,
		created_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_instruments_name (name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS students (
		id              CHAR(36)     NOT NULL,
		name            VARCHAR(191) NOT NULL,
		age             INT UNSIGNED NOT NULL,
		instrument_id   CHAR(36)     NOT NULL,
		payment_current TINYINT(1)   NOT NULL DEFAULT 0,
		created_at      DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at      DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_students_instrument (instrument_id),
		KEY idx_students_name (name),
		CONSTRAINT fk_students_instrument FOREIGN KEY (instrument_id)
			REFERENCES instruments (id) ON DELETE RESTRICT
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS attendance (
		id         CHAR(36)   NOT NULL,
		student_id CHAR(36)   NOT NULL,
		date       DATE       NOT NULL,
		present    TINYINT(1) NOT NULL,
		created_at DATETIME   NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_attendance_student_date (student_id, date),
		KEY idx_attendance_date (date),
		CONSTRAINT fk_attendance_student FOREIGN KEY (student_id)
			REFERENCES students (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS payments (
		id           CHAR(36)   NOT NULL,
		student_id   CHAR(36)   NOT NULL,
		amount_cents BIGINT     NOT NULL,
		month        CHAR(7)    NOT NULL,
		paid         TINYINT(1) NOT NULL DEFAULT 0,
		paid_on      DATETIME   NULL,
		created_at   DATETIME   NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at   DATETIME   NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_payments_student_month (student_id, month),
		KEY idx_payments_month (month),
		CONSTRAINT fk_payments_student FOREIGN KEY (student_id)
			REFERENCES students (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing table.
func Migrate(ctx context.Context, db *sql.DB) error {
	log.Info("running database migrations")
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	log.Info("database migrations completed")
	return nil
}
