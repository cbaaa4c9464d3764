package db

import (
	"context"
	"fmt"
	"strings"
)

// tables is written once and rendered per dialect: {{ID}} is the store-generated identity column
// type and {{TS}} the timestamp type.
var tables = []string{
	`CREATE TABLE IF NOT EXISTS users (
		username   TEXT PRIMARY KEY,
		first_name TEXT NOT NULL DEFAULT '',
		last_name  TEXT NOT NULL DEFAULT '',
		password   TEXT NOT NULL,
		is_admin   BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS app_groups (
		group_id    {{ID}},
		group_name  TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS group_members (
		username TEXT NOT NULL,
		group_id BIGINT NOT NULL REFERENCES app_groups(group_id),
		PRIMARY KEY (username, group_id)
	)`,
	`CREATE TABLE IF NOT EXISTS group_admins (
		username TEXT NOT NULL,
		group_id BIGINT NOT NULL REFERENCES app_groups(group_id),
		PRIMARY KEY (username, group_id)
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		event_id    {{ID}},
		event_date  {{TS}} NOT NULL,
		description TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS group_events (
		event_id BIGINT NOT NULL REFERENCES events(event_id),
		group_id BIGINT NOT NULL REFERENCES app_groups(group_id),
		PRIMARY KEY (event_id, group_id)
	)`,
	`CREATE TABLE IF NOT EXISTS rsvps (
		event_id BIGINT NOT NULL REFERENCES events(event_id),
		username TEXT NOT NULL,
		PRIMARY KEY (event_id, username)
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		notification_id        {{ID}},
		username               TEXT NOT NULL,
		description            TEXT NOT NULL DEFAULT '',
		event_id               BIGINT NOT NULL REFERENCES events(event_id),
		notification_timestamp {{TS}} NOT NULL,
		event_date             {{TS}} NOT NULL,
		is_read                SMALLINT NOT NULL DEFAULT 0,
		UNIQUE (username, event_id)
	)`,
	`CREATE INDEX IF NOT EXISTS notifications_username_ts ON notifications (username, notification_timestamp)`,
}

// CreateTables bootstraps the schema. It is idempotent.
func (d *DB) CreateTables(ctx context.Context) error {
	id, ts := "BIGSERIAL PRIMARY KEY", "TIMESTAMPTZ"
	if d.driver == DriverSQLite {
		id, ts = "INTEGER PRIMARY KEY AUTOINCREMENT", "DATETIME"
	}
	r := strings.NewReplacer("{{ID}}", id, "{{TS}}", ts)

	for _, stmt := range tables {
		if _, err := d.sql.ExecContext(ctx, r.Replace(stmt)); err != nil {
			return fmt.Errorf("db: create tables: %w", err)
		}
	}
	return nil
}
