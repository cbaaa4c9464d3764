// Package workflow holds the multi-statement operations that must succeed or fail as a unit.
package workflow

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"eventhub/models"
)

// GroupEvent is the echo returned after an event is created for a group.
type GroupEvent struct {
	EventID       int64     `json:"eventID"`
	Date          time.Time `json:"date"`
	Description   string    `json:"description"`
	GroupID       int64     `json:"groupID"`
	Notifications int       `json:"notifications"`
}

// UserEvent is the echo for events created or edited through the per-user endpoints.
type UserEvent struct {
	ID     int64  `json:"id"`
	Name   string `json:"name,omitempty"`
	Date   string `json:"date,omitempty"`
	Time   string `json:"time,omitempty"`
	UserID string `json:"user_id"`
}

type Events struct {
	tx     models.TxRunner
	users  models.UserRepository
	groups models.GroupRepository
	events models.EventRepository
	notes  models.NotificationRepository
	now    models.Clock
	log    *zap.Logger
}

func NewEvents(
	tx models.TxRunner,
	u models.UserRepository,
	g models.GroupRepository,
	e models.EventRepository,
	n models.NotificationRepository,
	now models.Clock,
	log *zap.Logger,
) *Events {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Events{tx: tx, users: u, groups: g, events: e, notes: n, now: now, log: log}
}

// CreateForGroup validates the group, inserts the event, links it and fans out one notification
// per member or administrator. All writes share one transaction: on any failure nothing remains.
func (w *Events) CreateForGroup(ctx context.Context, groupID int64, date time.Time, description string) (GroupEvent, error) {
	var out GroupEvent
	err := w.tx.WithTx(ctx, func(ctx context.Context) error {
		ok, err := w.groups.Exists(ctx, groupID)
		if err != nil {
			return err
		}
		if !ok {
			return models.NotFound("Group not found")
		}

		ev := models.Event{Date: date, Description: description}
		if err := w.events.Create(ctx, &ev); err != nil {
			return err
		}
		if err := w.events.LinkGroup(ctx, ev.EventID, groupID); err != nil {
			return err
		}

		recipients, err := w.groups.ResolveRecipients(ctx, groupID)
		if err != nil {
			return err
		}
		sent, err := w.notes.Dispatch(ctx, models.Dispatch{
			Recipients:  recipients,
			EventID:     ev.EventID,
			Description: description,
			EventDate:   ev.Date,
			CreatedAt:   w.now(),
		})
		if err != nil {
			return err
		}

		out = GroupEvent{
			EventID:       ev.EventID,
			Date:          ev.Date,
			Description:   ev.Description,
			GroupID:       groupID,
			Notifications: sent,
		}
		return nil
	})
	if err != nil {
		return GroupEvent{}, models.StoreFailure("Error creating event", err)
	}

	w.log.Info("event created for group",
		zap.Int64("event_id", out.EventID),
		zap.Int64("group_id", groupID),
		zap.Int("notifications", out.Notifications))
	return out, nil
}

// CreateForUser stores a standalone event whose description reads "<name> at <time>".
func (w *Events) CreateForUser(ctx context.Context, username, name, date, at string) (UserEvent, error) {
	when, err := models.ParseDate(date)
	if err != nil {
		return UserEvent{}, err
	}
	if err := w.requireUser(ctx, username); err != nil {
		return UserEvent{}, err
	}

	ev := models.Event{Date: when, Description: fmt.Sprintf("%s at %s", name, at)}
	if err := w.events.Create(ctx, &ev); err != nil {
		return UserEvent{}, err
	}
	return UserEvent{ID: ev.EventID, Name: name, Date: date, Time: at, UserID: username}, nil
}

// UpdateForUser changes the date when given, and the description only when both name and time are given.
func (w *Events) UpdateForUser(ctx context.Context, username string, eventID int64, name, date, at *string) (UserEvent, error) {
	var ch models.EventChanges
	if date != nil && *date != "" {
		when, err := models.ParseDate(*date)
		if err != nil {
			return UserEvent{}, err
		}
		ch.Date = &when
	}
	if name != nil && *name != "" && at != nil && *at != "" {
		d := fmt.Sprintf("%s at %s", *name, *at)
		ch.Description = &d
	}

	if err := w.requireUser(ctx, username); err != nil {
		return UserEvent{}, err
	}
	if err := w.requireEvent(ctx, eventID); err != nil {
		return UserEvent{}, err
	}
	if err := w.events.Update(ctx, eventID, ch); err != nil {
		return UserEvent{}, err
	}
	return UserEvent{ID: eventID, Name: deref(name), Date: deref(date), Time: deref(at), UserID: username}, nil
}

// DeleteForUser removes the event with its RSVPs, notifications and group links atomically.
func (w *Events) DeleteForUser(ctx context.Context, username string, eventID int64) error {
	if err := w.requireUser(ctx, username); err != nil {
		return err
	}
	err := w.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := w.requireEvent(ctx, eventID); err != nil {
			return err
		}
		return w.events.Delete(ctx, eventID)
	})
	return models.StoreFailure("Error deleting event", err)
}

func (w *Events) requireUser(ctx context.Context, username string) error {
	ok, err := w.users.Exists(ctx, username)
	if err != nil {
		return err
	}
	if !ok {
		return models.NotFound("User not found")
	}
	return nil
}

func (w *Events) requireEvent(ctx context.Context, eventID int64) error {
	ok, err := w.events.Exists(ctx, eventID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NotFound("Event not found")
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
