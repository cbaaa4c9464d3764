package models

import (
	"context"

	"eventhub/db"
)

type sqlRSVPRepo struct{ db *db.DB }

func NewSQLRSVPRepository(d *db.DB) RSVPRepository {
	return &sqlRSVPRepo{d}
}

func (r *sqlRSVPRepo) Exists(ctx context.Context, eventID int64, username string) (bool, error) {
	return exists(ctx, r.db.Conn(ctx), "Error checking RSVP",
		`SELECT 1 FROM rsvps WHERE event_id = $1 AND username = $2`, eventID, username)
}

// Add relies on the (event_id, username) primary key when a concurrent request wins the pre-check.
func (r *sqlRSVPRepo) Add(ctx context.Context, eventID int64, username string) error {
	_, err := r.db.Conn(ctx).ExecContext(ctx,
		`INSERT INTO rsvps (event_id, username) VALUES ($1, $2)`, eventID, username)
	if db.IsUniqueViolation(err) {
		return Conflict("Already RSVPed to this event")
	}
	if err != nil {
		return StoreFailure("Error creating RSVP", err)
	}
	return nil
}

func (r *sqlRSVPRepo) Remove(ctx context.Context, eventID int64, username string) error {
	res, err := r.db.Conn(ctx).ExecContext(ctx,
		`DELETE FROM rsvps WHERE event_id = $1 AND username = $2`, eventID, username)
	if err != nil {
		return StoreFailure("Error removing RSVP", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return NotFound("RSVP not found")
	}
	return nil
}
