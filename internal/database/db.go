package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// schema holds the idempotent DDL executed at startup.  Tickets cascade
// on event deletion; the composite indexes serve the reservation scan
// (event_id, status), the availability join (status, event_id), the
// customer listing and the reaper sweep.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS events (
        id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
        name          VARCHAR(100) NOT NULL,
        venue         VARCHAR(255) NOT NULL,
        event_date    DATETIME NOT NULL,
        total_tickets INT NOT NULL,
        PRIMARY KEY (id),
        KEY idx_events_event_date (event_date)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS tickets (
        id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
        event_id       BIGINT UNSIGNED NOT NULL,
        customer_email VARCHAR(255) NULL,
        status         VARCHAR(16) NOT NULL DEFAULT 'AVAILABLE',
        reserved_until DATETIME NULL,
        created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
        PRIMARY KEY (id),
        KEY idx_tickets_event_status (event_id, status),
        KEY idx_tickets_status_event (status, event_id),
        KEY idx_tickets_customer_email (customer_email),
        KEY idx_tickets_reserved_until (reserved_until),
        CONSTRAINT fk_tickets_event FOREIGN KEY (event_id)
            REFERENCES events (id) ON DELETE CASCADE
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates the events and tickets tables when they do not exist
// yet.  Every statement is idempotent so Migrate is safe to run on
// every startup and from multiple replicas.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
