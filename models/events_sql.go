package models

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"eventhub/db"
)

type sqlEventRepo struct{ db *db.DB }

func NewSQLEventRepository(d *db.DB) EventRepository { return &sqlEventRepo{d} }

func (r *sqlEventRepo) Exists(ctx context.Context, eventID int64) (bool, error) {
	return exists(ctx, r.db.Conn(ctx), "Error checking event",
		`SELECT 1 FROM events WHERE event_id = $1`, eventID)
}

// Create inserts the event and fills e.EventID from the store-generated identity.
func (r *sqlEventRepo) Create(ctx context.Context, e *Event) error {
	e.Date = e.Date.UTC()
	err := r.db.Conn(ctx).QueryRowContext(ctx,
		`INSERT INTO events (event_date, description) VALUES ($1, $2) RETURNING event_id`,
		e.Date, e.Description).Scan(&e.EventID)
	if err != nil {
		return StoreFailure("Error creating event", err)
	}
	return nil
}

func (r *sqlEventRepo) LinkGroup(ctx context.Context, eventID, groupID int64) error {
	_, err := r.db.Conn(ctx).ExecContext(ctx,
		`INSERT INTO group_events (event_id, group_id) VALUES ($1, $2)`, eventID, groupID)
	if err != nil {
		return StoreFailure("Error linking event to group", err)
	}
	return nil
}

func (r *sqlEventRepo) GetByID(ctx context.Context, eventID int64) (Event, error) {
	var e Event
	err := r.db.Conn(ctx).QueryRowContext(ctx,
		`SELECT event_id, event_date, description FROM events WHERE event_id = $1`, eventID).
		Scan(&e.EventID, &e.Date, &e.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return Event{}, NotFound("Event with ID " + strconv.FormatInt(eventID, 10) + " not found")
	}
	if err != nil {
		return Event{}, StoreFailure("Error retrieving event details", err)
	}
	return e, nil
}

func (r *sqlEventRepo) GroupsFor(ctx context.Context, eventID int64) ([]Group, error) {
	return queryGroups(ctx, r.db.Conn(ctx), "Error retrieving event details", `
		SELECT g.group_id, g.group_name, g.description
		FROM app_groups g
		JOIN group_events ge ON ge.group_id = g.group_id
		WHERE ge.event_id = $1
		ORDER BY g.group_id`, eventID)
}

func (r *sqlEventRepo) ListForUser(ctx context.Context, username string) ([]Event, error) {
	return r.queryEvents(ctx, "Error retrieving user events", `
		SELECT DISTINCT e.event_id, e.event_date, e.description
		FROM events e
		JOIN group_events ge ON ge.event_id = e.event_id
		JOIN group_members m ON m.group_id = ge.group_id
		WHERE m.username = $1
		ORDER BY e.event_date, e.event_id`, username)
}

func (r *sqlEventRepo) ListForGroup(ctx context.Context, groupID int64) ([]Event, error) {
	return r.queryEvents(ctx, "Error retrieving group events", `
		SELECT e.event_id, e.event_date, e.description
		FROM events e
		JOIN group_events ge ON ge.event_id = e.event_id
		WHERE ge.group_id = $1
		ORDER BY e.event_date, e.event_id`, groupID)
}

func (r *sqlEventRepo) Update(ctx context.Context, eventID int64, ch EventChanges) error {
	var sets []string
	var args []any
	if ch.Date != nil {
		args = append(args, ch.Date.UTC())
		sets = append(sets, "event_date = $"+strconv.Itoa(len(args)))
	}
	if ch.Description != nil {
		args = append(args, *ch.Description)
		sets = append(sets, "description = $"+strconv.Itoa(len(args)))
	}
	if len(sets) == 0 {
		return Invalid("No fields to update")
	}
	args = append(args, eventID)
	q := `UPDATE events SET ` + strings.Join(sets, ", ") + ` WHERE event_id = $` + strconv.Itoa(len(args))

	if _, err := r.db.Conn(ctx).ExecContext(ctx, q, args...); err != nil {
		return StoreFailure("Error updating event", err)
	}
	return nil
}

// Delete clears dependent rows first; callers wrap it in a transaction.
func (r *sqlEventRepo) Delete(ctx context.Context, eventID int64) error {
	stmts := []string{
		`DELETE FROM rsvps WHERE event_id = $1`,
		`DELETE FROM notifications WHERE event_id = $1`,
		`DELETE FROM group_events WHERE event_id = $1`,
		`DELETE FROM events WHERE event_id = $1`,
	}
	q := r.db.Conn(ctx)
	for _, s := range stmts {
		if _, err := q.ExecContext(ctx, s, eventID); err != nil {
			return StoreFailure("Error deleting event", err)
		}
	}
	return nil
}

func (r *sqlEventRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.Conn(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, StoreFailure("Error counting events", err)
	}
	return n, nil
}

func (r *sqlEventRepo) queryEvents(ctx context.Context, op, query string, args ...any) ([]Event, error) {
	rows, err := r.db.Conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, StoreFailure(op, err)
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.EventID, &e.Date, &e.Description); err != nil {
			return nil, StoreFailure(op, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, StoreFailure(op, err)
	}
	return out, nil
}
