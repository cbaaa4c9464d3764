package routes_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/mocks"
	"eventhub/models"
	"eventhub/workflow"
)

func seededStore() *mocks.Store {
	s := mocks.NewStore()
	s.AddGroup(3, "Tech Meetup", []string{"kbrown", "jsmith", "adavis", "mjohnson"}, []string{"kbrown"})
	for _, u := range []string{"kbrown", "jsmith", "adavis", "mjohnson"} {
		s.Users.Users[u] = models.User{Username: u, Password: "pw"}
	}
	return s
}

func TestCreateGroupEvent_NotifiesEachRecipientOnce(t *testing.T) {
	s := seededStore()
	srv := mockServer(t, s)

	w := do(t, srv, http.MethodPost, "/events/group/3", `{"date":"2025-12-05","description":"Go Workshop"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	out := decode[workflow.GroupEvent](t, w)
	assert.Equal(t, int64(3), out.GroupID)
	assert.Equal(t, "Go Workshop", out.Description)
	assert.Equal(t, 4, out.Notifications)
	assert.True(t, out.Date.Equal(time.Date(2025, 12, 5, 0, 0, 0, 0, time.UTC)))
	assert.Len(t, s.Notifications.Items, 4)
	assert.Equal(t, []int64{3}, s.Events.Links[out.EventID])
}

func TestCreateGroupEvent_Errors(t *testing.T) {
	s := seededStore()
	srv := mockServer(t, s)

	w := do(t, srv, http.MethodPost, "/events/group/77", `{"date":"2025-12-05","description":"x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Group not found", message(t, w))
	assert.Empty(t, s.Events.Items)

	w = do(t, srv, http.MethodPost, "/events/group/3", `{"date":"next tuesday","description":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, srv, http.MethodPost, "/events/group/3", `{"description":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Could not parse request data.", message(t, w))
}

func TestCreateGroupEvent_DispatchFailure500(t *testing.T) {
	s := seededStore()
	s.Notifications.Err = assert.AnError
	srv := mockServer(t, s)

	w := do(t, srv, http.MethodPost, "/events/group/3", `{"date":"2025-12-05","description":"x"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, message(t, w), "Error creating event")
}

func TestGetEvent(t *testing.T) {
	s := seededStore()
	srv := mockServer(t, s)

	w := do(t, srv, http.MethodGet, "/events/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Event with ID 1 not found", message(t, w))

	w = do(t, srv, http.MethodGet, "/events/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, srv, http.MethodPost, "/events/group/3", `{"date":"2025-12-05T18:00:00Z","description":"Go Workshop"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, srv, http.MethodGet, "/events/1", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	detail := decode[models.EventDetail](t, w)
	assert.Equal(t, "Go Workshop", detail.Description)
	require.Len(t, detail.Groups, 1)
	assert.Equal(t, "Tech Meetup", detail.Groups[0].GroupName)
}

func TestEventLists(t *testing.T) {
	s := seededStore()
	srv := mockServer(t, s)

	for _, body := range []string{
		`{"date":"2025-12-20","description":"later"}`,
		`{"date":"2025-12-01","description":"sooner"}`,
	} {
		require.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, "/events/group/3", body).Code)
	}

	w := do(t, srv, http.MethodGet, "/events/group/3", "")
	require.Equal(t, http.StatusOK, w.Code)
	events := decode[[]models.Event](t, w)
	require.Len(t, events, 2)
	assert.Equal(t, "sooner", events[0].Description)

	w = do(t, srv, http.MethodGet, "/events/user/adavis", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Event](t, w), 2)

	w = do(t, srv, http.MethodGet, "/events/user/nobody", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestUserEventLifecycle(t *testing.T) {
	s := seededStore()
	srv := mockServer(t, s)

	w := do(t, srv, http.MethodPost, "/events/jsmith", `{"name":"Standup","date":"2025-12-01","time":"09:00"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[workflow.UserEvent](t, w)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "jsmith", created.UserID)
	assert.Equal(t, "Standup at 09:00", s.Events.Items[1].Description)

	w = do(t, srv, http.MethodPut, "/events/jsmith/1", `{"name":"Retro","time":"17:00"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Retro at 17:00", s.Events.Items[1].Description)

	w = do(t, srv, http.MethodPut, "/events/jsmith/1", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No fields to update", message(t, w))

	w = do(t, srv, http.MethodDelete, "/events/jsmith/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Event 1 deleted successfully", message(t, w))
	assert.Empty(t, s.Events.Items)

	w = do(t, srv, http.MethodDelete, "/events/jsmith/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Event not found", message(t, w))
}

func TestUserEvent_UnknownUser404(t *testing.T) {
	srv := mockServer(t, seededStore())

	w := do(t, srv, http.MethodPost, "/events/ghost", `{"name":"x","date":"2025-12-01","time":"09:00"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", message(t, w))
}
