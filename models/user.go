package models

import (
	"fmt"
	"strings"
	"time"
)

// User never serializes its password.
type User struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"-"`
	IsAdmin   bool   `json:"isAdmin"`
}

type Group struct {
	GroupID     int64  `json:"groupID"`
	GroupName   string `json:"groupName"`
	Description string `json:"description"`
}

// AdminGroup is a group as seen by one of its administrators.
type AdminGroup struct {
	Group
	MemberCount int `json:"memberCount"`
	EventCount  int `json:"eventCount"`
}

type Event struct {
	EventID     int64     `json:"eventID"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
}

type EventDetail struct {
	Event
	Groups []Group `json:"groups"`
}

// EventChanges carries the optional fields of an event update. Nil means unchanged.
type EventChanges struct {
	Date        *time.Time
	Description *string
}

type Notification struct {
	NotificationID        int64     `json:"notificationID"`
	Username              string    `json:"username"`
	Description           string    `json:"description"`
	EventID               int64     `json:"eventID"`
	NotificationTimestamp time.Time `json:"notificationTimestamp"`
	EventDate             time.Time `json:"eventDate"`
	IsRead                int       `json:"isRead"`
}

// Dispatch is one notification fan-out request.
type Dispatch struct {
	Recipients  []string
	EventID     int64
	Description string
	EventDate   time.Time
	CreatedAt   time.Time
}

type AdminScope string

const (
	// AdminScopeGroup notifies only the administrators of the event's group.
	AdminScopeGroup AdminScope = "group"
	// AdminScopeGlobal notifies every group administrator in the system.
	AdminScopeGlobal AdminScope = "global"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDate accepts a calendar date or an ISO-8601 timestamp. Values without a zone are UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, Invalid(fmt.Sprintf("invalid date %q", s))
}
