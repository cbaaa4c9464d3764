// Package mocks holds in-memory repositories for handler tests. Setting Err on any of them makes
// every call fail with that error.
package mocks

import (
	"context"
	"fmt"
	"sort"

	"eventhub/models"
)

// Tx runs fn directly; the in-memory repositories have nothing to roll back.
type Tx struct{}

func (Tx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

type MockUserRepo struct {
	Users map[string]models.User // key 是 username
	Err   error
}

func (m *MockUserRepo) Exists(_ context.Context, username string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	_, ok := m.Users[username]
	return ok, nil
}

func (m *MockUserRepo) Create(_ context.Context, u *models.User) error {
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Users[u.Username]; ok {
		return models.Conflict("Username already exists")
	}
	m.Users[u.Username] = *u
	return nil
}

// ValidateCredentials compares plain text; hashing is covered by the SQL repository tests.
func (m *MockUserRepo) ValidateCredentials(_ context.Context, username, plain string) (models.User, error) {
	if m.Err != nil {
		return models.User{}, m.Err
	}
	u, ok := m.Users[username]
	if !ok || u.Password != plain {
		return models.User{}, models.ErrInvalidCredentials
	}
	u.Password = ""
	return u, nil
}

type MockGroupRepo struct {
	Groups  map[int64]models.Group
	Members map[int64]map[string]bool
	Admins  map[int64]map[string]bool
	Scope   models.AdminScope
	Err     error
	nextID  int64
}

func (m *MockGroupRepo) Exists(_ context.Context, id int64) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	_, ok := m.Groups[id]
	return ok, nil
}

func (m *MockGroupRepo) NameTaken(_ context.Context, name string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	for _, g := range m.Groups {
		if g.GroupName == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockGroupRepo) Create(_ context.Context, g *models.Group) error {
	if m.Err != nil {
		return m.Err
	}
	for id := range m.Groups {
		m.nextID = max(m.nextID, id)
	}
	m.nextID++
	g.GroupID = m.nextID
	m.Groups[g.GroupID] = *g
	return nil
}

func (m *MockGroupRepo) AllIDs(context.Context) ([]int64, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	ids := []int64{}
	for id := range m.Groups {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *MockGroupRepo) GetByIDs(_ context.Context, ids []int64) ([]models.Group, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	out := []models.Group{}
	for _, id := range ids {
		if g, ok := m.Groups[id]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *MockGroupRepo) AddMember(_ context.Context, username string, groupID int64) error {
	if m.Err != nil {
		return m.Err
	}
	add(m.Members, groupID, username)
	return nil
}

func (m *MockGroupRepo) RemoveMember(_ context.Context, username string, groupID int64) error {
	if m.Err != nil {
		return m.Err
	}
	delete(m.Members[groupID], username)
	return nil
}

func (m *MockGroupRepo) AddAdmin(_ context.Context, username string, groupID int64) error {
	if m.Err != nil {
		return m.Err
	}
	add(m.Admins, groupID, username)
	return nil
}

func (m *MockGroupRepo) ListForUser(_ context.Context, username string) ([]models.Group, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	out := []models.Group{}
	for id, set := range m.Members {
		if set[username] {
			out = append(out, m.Groups[id])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GroupName < out[j].GroupName })
	return out, nil
}

func (m *MockGroupRepo) ListAdminGroups(_ context.Context, username string) ([]models.AdminGroup, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	out := []models.AdminGroup{}
	for id, set := range m.Admins {
		if set[username] {
			out = append(out, models.AdminGroup{Group: m.Groups[id], MemberCount: len(m.Members[id])})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GroupName < out[j].GroupName })
	return out, nil
}

func (m *MockGroupRepo) ResolveRecipients(_ context.Context, groupID int64) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	set := map[string]bool{}
	for u := range m.Members[groupID] {
		set[u] = true
	}
	for id, admins := range m.Admins {
		if id != groupID && m.Scope != models.AdminScopeGlobal {
			continue
		}
		for u := range admins {
			set[u] = true
		}
	}
	out := make([]string, 0, len(set))
	for u := range set {
		out = append(out, u)
	}
	sort.Strings(out)
	return out, nil
}

type MockEventRepo struct {
	Items  map[int64]models.Event
	Links  map[int64][]int64 // eventID -> groupIDs
	Groups *MockGroupRepo
	Err    error
	nextID int64
}

func (m *MockEventRepo) Exists(_ context.Context, id int64) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	_, ok := m.Items[id]
	return ok, nil
}

func (m *MockEventRepo) Create(_ context.Context, e *models.Event) error {
	if m.Err != nil {
		return m.Err
	}
	m.nextID++
	e.EventID = m.nextID
	e.Date = e.Date.UTC()
	m.Items[e.EventID] = *e
	return nil
}

func (m *MockEventRepo) LinkGroup(_ context.Context, eventID, groupID int64) error {
	if m.Err != nil {
		return m.Err
	}
	m.Links[eventID] = append(m.Links[eventID], groupID)
	return nil
}

func (m *MockEventRepo) GetByID(_ context.Context, id int64) (models.Event, error) {
	if m.Err != nil {
		return models.Event{}, m.Err
	}
	e, ok := m.Items[id]
	if !ok {
		return models.Event{}, models.NotFound(fmt.Sprintf("Event with ID %d not found", id))
	}
	return e, nil
}

func (m *MockEventRepo) GroupsFor(_ context.Context, id int64) ([]models.Group, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	out := []models.Group{}
	for _, gid := range m.Links[id] {
		out = append(out, m.Groups.Groups[gid])
	}
	return out, nil
}

func (m *MockEventRepo) ListForUser(_ context.Context, username string) ([]models.Event, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	out := []models.Event{}
	for id, gids := range m.Links {
		for _, gid := range gids {
			if m.Groups.Members[gid][username] {
				out = append(out, m.Items[id])
				break
			}
		}
	}
	sortEvents(out)
	return out, nil
}

func (m *MockEventRepo) ListForGroup(_ context.Context, groupID int64) ([]models.Event, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	out := []models.Event{}
	for id, gids := range m.Links {
		for _, gid := range gids {
			if gid == groupID {
				out = append(out, m.Items[id])
			}
		}
	}
	sortEvents(out)
	return out, nil
}

func (m *MockEventRepo) Update(_ context.Context, id int64, ch models.EventChanges) error {
	if m.Err != nil {
		return m.Err
	}
	if ch.Date == nil && ch.Description == nil {
		return models.Invalid("No fields to update")
	}
	e := m.Items[id]
	if ch.Date != nil {
		e.Date = *ch.Date
	}
	if ch.Description != nil {
		e.Description = *ch.Description
	}
	m.Items[id] = e
	return nil
}

func (m *MockEventRepo) Delete(_ context.Context, id int64) error {
	if m.Err != nil {
		return m.Err
	}
	delete(m.Items, id)
	delete(m.Links, id)
	return nil
}

func (m *MockEventRepo) Count(context.Context) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	return len(m.Items), nil
}

type MockRSVPRepo struct {
	Pairs map[string]bool // "eventID:username"
	Err   error
}

func (m *MockRSVPRepo) Exists(_ context.Context, eid int64, username string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	return m.Pairs[key(eid, username)], nil
}

func (m *MockRSVPRepo) Add(_ context.Context, eid int64, username string) error {
	if m.Err != nil {
		return m.Err
	}
	k := key(eid, username)
	if m.Pairs[k] {
		return models.Conflict("Already RSVPed to this event")
	}
	m.Pairs[k] = true
	return nil
}

func (m *MockRSVPRepo) Remove(_ context.Context, eid int64, username string) error {
	if m.Err != nil {
		return m.Err
	}
	k := key(eid, username)
	if !m.Pairs[k] {
		return models.NotFound("RSVP not found")
	}
	delete(m.Pairs, k)
	return nil
}

type MockNotificationRepo struct {
	Items []models.Notification
	Err   error
}

func (m *MockNotificationRepo) Dispatch(_ context.Context, d models.Dispatch) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	seen := map[string]bool{}
	n := 0
	for _, u := range d.Recipients {
		if seen[u] {
			continue
		}
		seen[u] = true
		m.Items = append(m.Items, models.Notification{
			NotificationID:        int64(len(m.Items) + 1),
			Username:              u,
			Description:           d.Description,
			EventID:               d.EventID,
			NotificationTimestamp: d.CreatedAt,
			EventDate:             d.EventDate,
		})
		n++
	}
	return n, nil
}

func (m *MockNotificationRepo) ListForUser(_ context.Context, username string) ([]models.Notification, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	out := []models.Notification{}
	for _, n := range m.Items {
		if n.Username == username {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].NotificationTimestamp.After(out[j].NotificationTimestamp)
	})
	return out, nil
}

func (m *MockNotificationRepo) MarkRead(_ context.Context, username string, eventID int64) error {
	if m.Err != nil {
		return m.Err
	}
	for i, n := range m.Items {
		if n.Username == username && n.EventID == eventID {
			m.Items[i].IsRead = 1
			return nil
		}
	}
	return models.NotFound("Notification not found")
}

// Store bundles one of each repository, wired to share group data.
type Store struct {
	Users         *MockUserRepo
	Groups        *MockGroupRepo
	Events        *MockEventRepo
	RSVPs         *MockRSVPRepo
	Notifications *MockNotificationRepo
}

func NewStore() *Store {
	groups := &MockGroupRepo{
		Groups:  map[int64]models.Group{},
		Members: map[int64]map[string]bool{},
		Admins:  map[int64]map[string]bool{},
	}
	return &Store{
		Users:         &MockUserRepo{Users: map[string]models.User{}},
		Groups:        groups,
		Events:        &MockEventRepo{Items: map[int64]models.Event{}, Links: map[int64][]int64{}, Groups: groups},
		RSVPs:         &MockRSVPRepo{Pairs: map[string]bool{}},
		Notifications: &MockNotificationRepo{},
	}
}

// AddGroup seeds a group with members and admins.
func (s *Store) AddGroup(id int64, name string, members, admins []string) {
	s.Groups.Groups[id] = models.Group{GroupID: id, GroupName: name}
	for _, u := range members {
		add(s.Groups.Members, id, u)
	}
	for _, u := range admins {
		add(s.Groups.Admins, id, u)
	}
}

func add(m map[int64]map[string]bool, id int64, u string) {
	if m[id] == nil {
		m[id] = map[string]bool{}
	}
	m[id][u] = true
}

func key(eid int64, username string) string { return fmt.Sprintf("%d:%s", eid, username) }

func sortEvents(es []models.Event) {
	sort.Slice(es, func(i, j int) bool {
		if !es[i].Date.Equal(es[j].Date) {
			return es[i].Date.Before(es[j].Date)
		}
		return es[i].EventID < es[j].EventID
	})
}

