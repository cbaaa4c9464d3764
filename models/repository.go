package models

import (
	"context"
	"time"
)

// ===== Users =====
type UserRepository interface {
	Exists(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, u *User) error
	ValidateCredentials(ctx context.Context, username, plain string) (User, error)
}

// ===== Groups (directory) =====
type GroupRepository interface {
	Exists(ctx context.Context, groupID int64) (bool, error)
	NameTaken(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, g *Group) error
	AllIDs(ctx context.Context) ([]int64, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Group, error)
	AddMember(ctx context.Context, username string, groupID int64) error
	RemoveMember(ctx context.Context, username string, groupID int64) error
	AddAdmin(ctx context.Context, username string, groupID int64) error
	ListForUser(ctx context.Context, username string) ([]Group, error)
	ListAdminGroups(ctx context.Context, username string) ([]AdminGroup, error)
	// ResolveRecipients returns the sorted union of the group's members and administrators.
	ResolveRecipients(ctx context.Context, groupID int64) ([]string, error)
}

// ===== Events =====
type EventRepository interface {
	Exists(ctx context.Context, eventID int64) (bool, error)
	Create(ctx context.Context, e *Event) error
	LinkGroup(ctx context.Context, eventID, groupID int64) error
	GetByID(ctx context.Context, eventID int64) (Event, error)
	GroupsFor(ctx context.Context, eventID int64) ([]Group, error)
	ListForUser(ctx context.Context, username string) ([]Event, error)
	ListForGroup(ctx context.Context, groupID int64) ([]Event, error)
	Update(ctx context.Context, eventID int64, ch EventChanges) error
	// Delete removes the event together with its RSVPs, notifications and group links.
	Delete(ctx context.Context, eventID int64) error
	Count(ctx context.Context) (int, error)
}

// ===== RSVPs =====
type RSVPRepository interface {
	Exists(ctx context.Context, eventID int64, username string) (bool, error)
	Add(ctx context.Context, eventID int64, username string) error
	Remove(ctx context.Context, eventID int64, username string) error
}

// ===== Notifications =====
type NotificationRepository interface {
	// Dispatch writes one unread notification per unique recipient and returns the rows written.
	Dispatch(ctx context.Context, d Dispatch) (int, error)
	ListForUser(ctx context.Context, username string) ([]Notification, error)
	MarkRead(ctx context.Context, username string, eventID int64) error
}

// TxRunner runs fn in one transaction; repository calls made with fn's ctx join it.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Clock is injected where timestamps are written so tests can pin them.
type Clock func() time.Time
