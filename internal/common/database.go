package common

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq" // postgres driver for database/sql
)

// InitializeDatabase opens a PostgreSQL connection pool sized from the
// configuration, verifies connectivity and optionally runs a schema statement.
//
// Example:
//
//	db, err := InitializeDatabase(ctx, cfg.Postgres, policy.PostgresSchema("gateway_policy"))
//	if err != nil {
//	    log.Fatal("Database initialization failed:", err)
//	}
//	defer db.Close()
func InitializeDatabase(ctx context.Context, cfg PostgresConfig, schema string) (*sql.DB, error) {
	log.Printf("🗄️  Connecting to Postgres with DSN: %s", cfg.RedactedDSN())

	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("GW-DB-OPEN: %w", err)
	}
	if cfg.MaxOpenConnections > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConnections)
	}
	if cfg.MaxIdleConnections > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConnections)
	}
	if cfg.ConnMaxLifetimeMinutes > 0 {
		db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("GW-DB-PING: %w", err)
	}
	if schema == "" {
		log.Println("No SQL schema passed, skipping schema loading.")
		return db, nil
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("GW-DB-SCHEMA: %w", err)
	}
	log.Println("✅ Postgres connection established")
	return db, nil
}
