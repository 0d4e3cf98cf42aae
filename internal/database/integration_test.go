package database

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := InitializeSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(filepath.Join("..", "..", "migrations")); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// TestDatabaseIntegration tests the complete database lifecycle
func TestDatabaseIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	// Tables created by migrations
	tables := []string{"users", "sessions", "puzzles", "assignments", "attempts", "class_schedules", "class_students", "class_attendance"}

	for _, table := range tables {
		query := "SELECT name FROM sqlite_master WHERE type='table' AND name=?"
		var name string
		if err := db.QueryRow(query, table).Scan(&name); err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}
}

// TestDatabaseTransactions tests transaction support
func TestDatabaseTransactions(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}

	_, err = tx.ExecContext(ctx, "INSERT INTO users (username, password_hash, name, role) VALUES (?, ?, ?, ?)",
		"testcoach", "hashedpass", "Test Coach", "coach")
	if err != nil {
		tx.Rollback()
		t.Fatalf("Failed to insert in transaction: %v", err)
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("Failed to commit transaction: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users WHERE username = ?", "testcoach").Scan(&count); err != nil {
		t.Fatalf("Failed to query after commit: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 user, got %d", count)
	}

	tx2, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to begin second transaction: %v", err)
	}

	_, err = tx2.ExecContext(ctx, "INSERT INTO users (username, password_hash, name, role) VALUES (?, ?, ?, ?)",
		"testcoach2", "hashedpass", "Other Coach", "coach")
	if err != nil {
		tx2.Rollback()
		t.Fatalf("Failed to insert in second transaction: %v", err)
	}

	if err := tx2.Rollback(); err != nil {
		t.Fatalf("Failed to rollback transaction: %v", err)
	}

	if err := db.QueryRow("SELECT COUNT(*) FROM users WHERE username = ?", "testcoach2").Scan(&count); err != nil {
		t.Fatalf("Failed to query after rollback: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 users after rollback, got %d", count)
	}
}

// TestExecReturningID covers the insert-and-return-id path the
// repositories rely on
func TestExecReturningID(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)

	coachID, err := db.ExecReturningID("INSERT INTO users (username, password_hash, name, role) VALUES (?, ?, ?, ?)",
		"idcoach", "hashedpass", "ID Coach", "coach")
	if err != nil {
		t.Fatalf("Failed to insert coach: %v", err)
	}
	if coachID == 0 {
		t.Fatal("Expected non-zero coach ID")
	}

	puzzleID, err := db.ExecReturningID("INSERT INTO puzzles (coach_id, fen, solution) VALUES (?, ?, ?)",
		coachID, "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1", "a1a8")
	if err != nil {
		t.Fatalf("Failed to insert puzzle: %v", err)
	}
	if puzzleID == 0 {
		t.Fatal("Expected non-zero puzzle ID")
	}
}

// TestConcurrentAccess tests concurrent database access
func TestConcurrentAccess(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)

	_, err := db.Exec("INSERT INTO users (username, password_hash, name, role) VALUES (?, ?, ?, ?)",
		"concurrentcoach", "hashedpass", "Concurrent Coach", "coach")
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			var username string
			err := db.QueryRow("SELECT username FROM users WHERE username = ?", "concurrentcoach").Scan(&username)
			if err != nil {
				t.Errorf("Concurrent read failed: %v", err)
			}
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}
