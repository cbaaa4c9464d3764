package models

import (
	"context"
	"strconv"
	"strings"

	"eventhub/db"
)

// dispatchChunk bounds the rows per INSERT so the statement stays under driver parameter limits.
const dispatchChunk = 500

type sqlNotificationRepo struct{ db *db.DB }

func NewSQLNotificationRepository(d *db.DB) NotificationRepository {
	return &sqlNotificationRepo{d}
}

// Dispatch inserts all rows inside one transaction (joining the caller's when there is one),
// so the fan-out either lands completely or not at all.
func (r *sqlNotificationRepo) Dispatch(ctx context.Context, d Dispatch) (int, error) {
	set := make(map[string]struct{}, len(d.Recipients))
	for _, u := range d.Recipients {
		set[u] = struct{}{}
	}
	recipients := sortedSet(set)
	if len(recipients) == 0 {
		return 0, nil
	}

	created, eventDate := d.CreatedAt.UTC(), d.EventDate.UTC()
	written := 0
	err := r.db.WithTx(ctx, func(ctx context.Context) error {
		for start := 0; start < len(recipients); start += dispatchChunk {
			end := min(start+dispatchChunk, len(recipients))

			var b strings.Builder
			b.WriteString(`INSERT INTO notifications (username, description, event_id, notification_timestamp, event_date, is_read) VALUES `)
			args := make([]any, 0, (end-start)*5)
			for i, u := range recipients[start:end] {
				if i > 0 {
					b.WriteString(", ")
				}
				n := len(args)
				b.WriteString("($" + strconv.Itoa(n+1) + ", $" + strconv.Itoa(n+2) + ", $" + strconv.Itoa(n+3) +
					", $" + strconv.Itoa(n+4) + ", $" + strconv.Itoa(n+5) + ", 0)")
				args = append(args, u, d.Description, d.EventID, created, eventDate)
			}

			res, err := r.db.Conn(ctx).ExecContext(ctx, b.String(), args...)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			written += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, StoreFailure("Error sending notifications", err)
	}
	return written, nil
}

func (r *sqlNotificationRepo) ListForUser(ctx context.Context, username string) ([]Notification, error) {
	const op = "Error retrieving notifications"
	rows, err := r.db.Conn(ctx).QueryContext(ctx, `
		SELECT notification_id, username, description, event_id, notification_timestamp, event_date, is_read
		FROM notifications
		WHERE username = $1
		ORDER BY notification_timestamp DESC, notification_id DESC`, username)
	if err != nil {
		return nil, StoreFailure(op, err)
	}
	defer rows.Close()

	out := []Notification{}
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.NotificationID, &n.Username, &n.Description, &n.EventID,
			&n.NotificationTimestamp, &n.EventDate, &n.IsRead); err != nil {
			return nil, StoreFailure(op, err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, StoreFailure(op, err)
	}
	return out, nil
}

func (r *sqlNotificationRepo) MarkRead(ctx context.Context, username string, eventID int64) error {
	res, err := r.db.Conn(ctx).ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE username = $1 AND event_id = $2`, username, eventID)
	if err != nil {
		return StoreFailure("Error updating notification", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return NotFound("Notification not found")
	}
	return nil
}
