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

// Seed inserts the reference rows the application cannot run without.  It is
// idempotent: rows are only written when the tables are empty, so repeated
// startups leave existing data untouched.  After Seed returns without error
// the roles table is guaranteed to be non-empty.
func Seed(ctx context.Context, db *sql.DB) error {
	var roleCount int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM roles").Scan(&roleCount); err != nil {
		return fmt.Errorf("count roles: %w", err)
	}
	if roleCount == 0 {
		if _, err := db.ExecContext(ctx,
			"INSERT INTO roles (name) VALUES ('common'),('professional')"); err != nil {
			return fmt.Errorf("seed roles: %w", err)
		}
	}

	var typeCount int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM subscription_types").Scan(&typeCount); err != nil {
		return fmt.Errorf("count subscription types: %w", err)
	}
	if typeCount == 0 {
		if _, err := db.ExecContext(ctx,
			"INSERT INTO subscription_types (name, price) VALUES ('basic', 49.99),('premium', 99.99)"); err != nil {
			return fmt.Errorf("seed subscription types: %w", err)
		}
	}
	return nil
}
