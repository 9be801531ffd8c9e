package db

import (
	"database/sql"

	"github.com/rs/zerolog"
)

// SchemaSQL is the complete schema for fresh installs.
// This schema reflects the current state after all migrations.
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. Adapter tests
// load it through GetSchemaSQL() instead of declaring their own tables, so a
// column referenced by adapter code but missing here fails immediately.
//
// When adding new columns or tables:
//  1. Add a migration in migrations.go
//  2. Update SchemaSQL here
const SchemaSQL = `
-- Key-value documents (worries, preferences, stats, notification_intents)
CREATE TABLE IF NOT EXISTS kv_store (
	key TEXT PRIMARY KEY,
	value BLOB NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Local notification queue used when no OS alarm service is available
CREATE TABLE IF NOT EXISTS scheduled_notifications (
	id INTEGER PRIMARY KEY,
	worry_id TEXT NOT NULL,
	title TEXT NOT NULL,
	body TEXT NOT NULL,
	action TEXT,
	fire_at INTEGER NOT NULL, -- unix milliseconds
	status TEXT NOT NULL CHECK(status IN ('pending', 'delivered', 'cancelled')) DEFAULT 'pending',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	delivered_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_scheduled_notifications_due ON scheduled_notifications(status, fire_at);
CREATE INDEX IF NOT EXISTS idx_scheduled_notifications_worry ON scheduled_notifications(worry_id);

-- Worry activity history
CREATE TABLE IF NOT EXISTS worry_activity (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	worry_id TEXT NOT NULL,
	action TEXT NOT NULL,
	source TEXT,
	from_status TEXT,
	to_status TEXT,
	detail TEXT,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_worry_activity_worry ON worry_activity(worry_id, id);
`

// InitSchema brings db up to date. A fresh database gets SchemaSQL directly
// with every migration marked as applied; an existing one runs pending
// migrations.
func InitSchema(db *sql.DB, logger zerolog.Logger) error {
	var tableCount int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount > 0 {
		return RunMigrations(db, logger)
	}

	if _, err := db.Exec(SchemaSQL); err != nil {
		return err
	}
	if err := createVersionTable(db); err != nil {
		return err
	}
	for _, m := range migrations {
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return err
		}
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
