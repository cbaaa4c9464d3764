package routes_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/mocks"
	"eventhub/models"
	"eventhub/routes"
)

func TestRSVP_AddTwiceConflicts(t *testing.T) {
	s := mocks.NewStore()
	s.Events.Items[1] = models.Event{EventID: 1, Date: time.Now().UTC(), Description: "Picnic"}
	srv := mockServer(t, s)

	w := do(t, srv, http.MethodPost, "/rsvp/1", `{"username":"testuser"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "RSVP successful", message(t, w))

	w = do(t, srv, http.MethodPost, "/rsvp/1", `{"username":"testuser"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Already RSVPed to this event", message(t, w))

	w = do(t, srv, http.MethodGet, "/rsvp/1/testuser", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode[map[string]any](t, w)["isRSVPed"])
}

func TestRSVP_UnknownEvent404(t *testing.T) {
	srv := mockServer(t, mocks.NewStore())

	w := do(t, srv, http.MethodPost, "/rsvp/9", `{"username":"testuser"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Event not found", message(t, w))

	w = do(t, srv, http.MethodPost, "/rsvp/9", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRSVP_Remove(t *testing.T) {
	s := mocks.NewStore()
	s.RSVPs.Pairs["1:testuser"] = true
	srv := mockServer(t, s)

	w := do(t, srv, http.MethodDelete, "/rsvp/1/testuser", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "RSVP removed successfully", message(t, w))

	w = do(t, srv, http.MethodDelete, "/rsvp/1/testuser", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "RSVP not found", message(t, w))

	w = do(t, srv, http.MethodGet, "/rsvp/1/testuser", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode[map[string]any](t, w)["isRSVPed"])
}

// Add 一律失敗：重複 RSVP 必須在寫入前就被擋下
type failingAddRSVPRepo struct{ *mocks.MockRSVPRepo }

func (failingAddRSVPRepo) Add(context.Context, int64, string) error { return assert.AnError }

func TestRSVP_DuplicateRejectedBeforeInsert(t *testing.T) {
	s := mocks.NewStore()
	s.Events.Items[1] = models.Event{EventID: 1}
	s.RSVPs.Pairs["1:testuser"] = true

	srv := gin.New()
	routes.RegisterRoutes(context.Background(), srv, routes.Deps{
		Tx:            mocks.Tx{},
		Users:         s.Users,
		Groups:        s.Groups,
		Events:        s.Events,
		RSVPs:         failingAddRSVPRepo{s.RSVPs},
		Notifications: s.Notifications,
	}, routes.Options{})

	w := do(t, srv, http.MethodPost, "/rsvp/1", `{"username":"testuser"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Already RSVPed to this event", message(t, w))
}
