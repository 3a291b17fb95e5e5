package db

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"
)

// MustOpen opens and pings the checkout database at the given DSN,
// exiting the process on failure.
func MustOpen(dsn string) *sql.DB {
	if dsn == "" {
		log.Fatal("checkout database DSN not set")
	}
	db, err := openDB(dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	return db
}

func openDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}
