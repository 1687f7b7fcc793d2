package db

import (
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver for database/sql
	log "github.com/sirupsen/logrus"
)

// DB holds the database connection pool. It stays nil when the gateway runs
// without a DATABASE_URL, in which case the generation ledger is disabled.
var DB *sqlx.DB

// InitDB initializes the connection pool and verifies reachability.
func InitDB(dbURL string) error {
	var err error
	DB, err = sqlx.Connect("postgres", dbURL)
	if err != nil {
		log.Errorf("Failed to connect to database: %v", err)
		return err
	}

	if err = DB.Ping(); err != nil {
		log.Errorf("Failed to ping database: %v", err)
		DB.Close()
		DB = nil
		return err
	}

	// The ledger takes at most one short insert per generation request;
	// a small pool is plenty.
	DB.SetMaxOpenConns(10)
	DB.SetMaxIdleConns(5)

	log.Info("Database connection pool initialized successfully.")
	return nil
}

// Enabled reports whether the ledger is active.
func Enabled() bool { return DB != nil }

// CloseDB closes the pool. Deferred from main.
func CloseDB() {
	if DB != nil {
		if err := DB.Close(); err != nil {
			log.Errorf("Error closing database connection: %v", err)
		} else {
			log.Info("Database connection pool closed.")
		}
	}
}
