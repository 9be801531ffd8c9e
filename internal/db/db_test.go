package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&n); err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	return n == 1
}

func TestOpen_FreshDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultFileName)

	db, err := Open(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	for _, table := range []string{"kv_store", "scheduled_notifications", "worry_activity", "schema_version"} {
		if !tableExists(t, db, table) {
			t.Errorf("table %s missing", table)
		}
	}
	v, err := CurrentVersion(db)
	if err != nil {
		t.Fatalf("CurrentVersion() error = %v", err)
	}
	if v != LatestVersion() {
		t.Errorf("CurrentVersion() = %d, want %d", v, LatestVersion())
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)

	first, err := Open(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := first.Exec("INSERT INTO kv_store (key, value) VALUES ('worries', '[]')"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	first.Close()

	second, err := Open(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("second Open() error = %v", err)
	}
	defer second.Close()

	var value string
	if err := second.QueryRow("SELECT value FROM kv_store WHERE key = 'worries'").Scan(&value); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if value != "[]" {
		t.Errorf("value = %q, want []", value)
	}
}

func TestRunMigrations_FromEmptyVersionTable(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if err := createVersionTable(db); err != nil {
		t.Fatalf("createVersionTable() error = %v", err)
	}

	if err := InitSchema(db, zerolog.Nop()); err != nil {
		t.Fatalf("InitSchema() error = %v", err)
	}

	for _, table := range []string{"kv_store", "scheduled_notifications", "worry_activity"} {
		if !tableExists(t, db, table) {
			t.Errorf("table %s missing after migrations", table)
		}
	}
	if v, _ := CurrentVersion(db); v != LatestVersion() {
		t.Errorf("CurrentVersion() = %d, want %d", v, LatestVersion())
	}

	if err := RunMigrations(db, zerolog.Nop()); err != nil {
		t.Fatalf("second RunMigrations() error = %v", err)
	}
	var applied int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&applied); err != nil {
		t.Fatalf("count versions failed: %v", err)
	}
	if applied != len(migrations) {
		t.Errorf("applied migrations = %d, want %d", applied, len(migrations))
	}
}
