package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

var (
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
)

// InitDB opens the journal database at path and creates tables if needed.
// Calling it again with the same path while the database is open is a no-op;
// a different path is an error until Close is called.
func InitDB(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if db != nil {
		if path != dbPath {
			return fmt.Errorf("database already open at %s", dbPath)
		}
		return nil
	}

	if path == "" {
		return fmt.Errorf("no database path given")
	}

	// Create parent directory
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if err := createTables(conn); err != nil {
		_ = conn.Close()
		return err
	}

	db = conn
	dbPath = path
	return nil
}

// GetDB returns the database instance
func GetDB() *sql.DB {
	mu.Lock()
	defer mu.Unlock()
	return db
}

// Close closes the database connection. InitDB may be called again afterwards.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if db == nil {
		return nil
	}
	err := db.Close()
	db = nil
	dbPath = ""
	return err
}

// createTables creates the necessary database tables
func createTables(conn *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		root TEXT NOT NULL,
		follow_symlinks INTEGER NOT NULL,
		leave_empty_dirs INTEGER NOT NULL,
		no_tests_exemption INTEGER NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		started_at INTEGER NOT NULL,
		finished_at INTEGER
	);

	CREATE TABLE IF NOT EXISTS moves (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL,
		marker TEXT NOT NULL,
		destination TEXT NOT NULL,
		action TEXT NOT NULL,
		dir_removed INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_moves_run ON moves(run_id);
	`

	if _, err := conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}
