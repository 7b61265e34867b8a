package db

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// setupTestDB returns a database path inside a temporary directory
func setupTestDB(t *testing.T) string {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "journal", "modflat.db")
	t.Cleanup(func() { _ = Close() })

	return dbPath
}

func TestInitDB(t *testing.T) {
	dbPath := setupTestDB(t)

	if err := InitDB(dbPath); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}

	// Check if database file was created, parent directory included
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("Database file was not created at %s", dbPath)
	}
}

func TestInitDBEmptyPath(t *testing.T) {
	if err := InitDB(""); err == nil {
		t.Error("InitDB should fail without a path")
	}
}

func TestInitDBCreatesTables(t *testing.T) {
	dbPath := setupTestDB(t)

	if err := InitDB(dbPath); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}

	database := GetDB()
	if database == nil {
		t.Fatal("GetDB returned nil")
	}

	for _, table := range []string{"runs", "moves"} {
		var count int
		err := database.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count)
		if err != nil {
			t.Errorf("Table %s does not exist or query failed: %v", table, err)
		}
	}
}

func TestInitDBIdempotent(t *testing.T) {
	dbPath := setupTestDB(t)

	if err := InitDB(dbPath); err != nil {
		t.Fatalf("First InitDB failed: %v", err)
	}
	first := GetDB()

	if err := InitDB(dbPath); err != nil {
		t.Fatalf("Second InitDB failed: %v", err)
	}
	if GetDB() != first {
		t.Error("Second InitDB replaced the open database")
	}
}

func TestInitDBDifferentPathWhileOpen(t *testing.T) {
	dbPath := setupTestDB(t)
	other := filepath.Join(t.TempDir(), "other.db")

	if err := InitDB(dbPath); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	first := GetDB()

	err := InitDB(other)
	if err == nil {
		t.Fatal("InitDB with a different path should fail while a database is open")
	}
	if !strings.Contains(err.Error(), "database already open") {
		t.Errorf("unexpected error: %v", err)
	}
	if GetDB() != first {
		t.Error("Failed InitDB replaced the open database")
	}

	if err := Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := InitDB(other); err != nil {
		t.Fatalf("InitDB after Close failed: %v", err)
	}
}

func TestReopenAfterClose(t *testing.T) {
	dbPath := setupTestDB(t)

	if err := InitDB(dbPath); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	if _, err := GetDB().Exec(
		"INSERT INTO runs (root, follow_symlinks, leave_empty_dirs, no_tests_exemption, started_at) VALUES (?, 0, 0, 0, 1)",
		"/src",
	); err != nil {
		t.Fatalf("Failed to insert run: %v", err)
	}
	if err := Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if GetDB() != nil {
		t.Fatal("GetDB should return nil after Close")
	}

	if err := InitDB(dbPath); err != nil {
		t.Fatalf("InitDB after Close failed: %v", err)
	}
	var count int
	if err := GetDB().QueryRow("SELECT COUNT(*) FROM runs").Scan(&count); err != nil {
		t.Fatalf("Failed to count runs: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 persisted run, got %d", count)
	}
}

func TestGetDBBeforeInit(t *testing.T) {
	if database := GetDB(); database != nil {
		t.Error("GetDB should return nil before InitDB is called")
	}
}

func TestCloseBeforeInit(t *testing.T) {
	if err := Close(); err != nil {
		t.Errorf("Close should not error when called before InitDB: %v", err)
	}
}

func TestDatabaseIndexes(t *testing.T) {
	dbPath := setupTestDB(t)

	if err := InitDB(dbPath); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}

	var count int
	err := GetDB().QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name=?",
		"idx_moves_run",
	).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query for index: %v", err)
	}
	if count == 0 {
		t.Error("Index idx_moves_run does not exist")
	}
}

func TestDatabaseForeignKeys(t *testing.T) {
	dbPath := setupTestDB(t)

	if err := InitDB(dbPath); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}

	database := GetDB()

	result, err := database.Exec(
		"INSERT INTO runs (root, follow_symlinks, leave_empty_dirs, no_tests_exemption, started_at) VALUES (?, 0, 0, 0, ?)",
		"/test", 123,
	)
	if err != nil {
		t.Fatalf("Failed to insert run: %v", err)
	}
	runID, _ := result.LastInsertId()

	_, err = database.Exec(
		"INSERT INTO moves (run_id, marker, destination, action, dir_removed, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		runID, "/test/a/mod.rs", "/test/a.rs", "move", 1, 123,
	)
	if err != nil {
		t.Fatalf("Failed to insert move: %v", err)
	}

	// Delete the run (should cascade to moves)
	if _, err := database.Exec("DELETE FROM runs WHERE id = ?", runID); err != nil {
		t.Fatalf("Failed to delete run: %v", err)
	}

	var count int
	if err := database.QueryRow("SELECT COUNT(*) FROM moves WHERE run_id = ?", runID).Scan(&count); err != nil {
		t.Fatalf("Failed to query moves: %v", err)
	}
	if count != 0 {
		t.Error("Foreign key cascade delete did not work for moves")
	}
}
