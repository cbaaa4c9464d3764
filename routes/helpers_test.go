package routes_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"eventhub/mocks"
	"eventhub/routes"
)

var fixedNow = time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)

func init() { gin.SetMode(gin.TestMode) }

// mockServer mounts every service over the in-memory store without Redis.
func mockServer(t *testing.T, s *mocks.Store) *gin.Engine {
	t.Helper()
	return newServer(t, s, nil, routes.Options{})
}

func newServer(t *testing.T, s *mocks.Store, rdb *redis.Client, opt routes.Options) *gin.Engine {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	server := gin.New()
	routes.RegisterRoutes(ctx, server, routes.Deps{
		Tx:            mocks.Tx{},
		Users:         s.Users,
		Groups:        s.Groups,
		Events:        s.Events,
		RSVPs:         s.RSVPs,
		Notifications: s.Notifications,
		Redis:         rdb,
		Clock:         func() time.Time { return fixedNow },
	}, opt)
	return server
}

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body=%s", w.Body.String())
	return v
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]any](t, w)["message"].(string)
}
