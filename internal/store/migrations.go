package store

import (
	"fmt"

	"github.com/noamseg/boxbee/internal/logging"
)

// Schema versions:
// v1: users, boxes, user_settings
// v2: access_tokens, refresh_tokens, email_verification_tokens
const currentSchemaVersion = 2

// migrations[i] upgrades the schema from version i to version i+1.
var migrations = []string{
	// v0 -> v1
	`
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL DEFAULT '',
		email_verified INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS boxes (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		task_name TEXT NOT NULL,
		category TEXT,
		duration INTEGER NOT NULL,
		scheduled_for DATETIME,
		status TEXT NOT NULL DEFAULT 'scheduled',
		started_at DATETIME,
		completed_at DATETIME,
		actual_duration INTEGER,
		focus_quality TEXT,
		completion_status TEXT,
		notes TEXT,
		ai_suggested INTEGER NOT NULL DEFAULT 0,
		ai_estimated INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_boxes_user_created ON boxes(user_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_boxes_user_status_completed ON boxes(user_id, status, completed_at);
	CREATE INDEX IF NOT EXISTS idx_boxes_user_scheduled ON boxes(user_id, scheduled_for);

	CREATE TABLE IF NOT EXISTS user_settings (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		notify_five_min_warning INTEGER NOT NULL DEFAULT 1,
		notify_completion INTEGER NOT NULL DEFAULT 1,
		notify_coaching INTEGER NOT NULL DEFAULT 1,
		notify_morning_planning INTEGER NOT NULL DEFAULT 0,
		morning_planning_time TEXT,
		notify_evening_reflection INTEGER NOT NULL DEFAULT 0,
		notify_weekly_report INTEGER NOT NULL DEFAULT 1,
		weekly_report_day TEXT NOT NULL DEFAULT 'Sunday',
		weekly_report_time TEXT NOT NULL DEFAULT '18:00',
		quiet_hours_enabled INTEGER NOT NULL DEFAULT 0,
		quiet_hours_start TEXT,
		quiet_hours_end TEXT,
		coach_personality TEXT NOT NULL DEFAULT 'friendly',
		coach_frequency TEXT NOT NULL DEFAULT 'some',
		ai_learning_enabled INTEGER NOT NULL DEFAULT 1,
		ai_auto_adjust_time INTEGER NOT NULL DEFAULT 0,
		theme TEXT NOT NULL DEFAULT 'auto',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`,
	// v1 -> v2
	`
	CREATE TABLE IF NOT EXISTS access_tokens (
		token_hash TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		expires_at DATETIME NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_access_tokens_user ON access_tokens(user_id);

	CREATE TABLE IF NOT EXISTS refresh_tokens (
		token_hash TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		expires_at DATETIME NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user ON refresh_tokens(user_id);

	CREATE TABLE IF NOT EXISTS email_verification_tokens (
		token_hash TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		expires_at DATETIME NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_verification_tokens_user ON email_verification_tokens(user_id);
	`,
}

// migrate applies outstanding schema migrations, tracking progress with
// the SQLite user_version pragma.
func (s *Store) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version > currentSchemaVersion {
		return fmt.Errorf("database schema v%d is newer than supported v%d", version, currentSchemaVersion)
	}

	for v := version; v < currentSchemaVersion; v++ {
		logging.Store("Applying schema migration v%d -> v%d", v, v+1)

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration v%d: %w", v+1, err)
		}
		if _, err := tx.Exec(migrations[v]); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration v%d: %w", v+1, err)
		}
		// PRAGMA cannot be parameterized.
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", v+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("bump schema version to v%d: %w", v+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration v%d: %w", v+1, err)
		}
	}
	return nil
}
