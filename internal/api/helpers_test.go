package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"farm-records-backend/config"
	"farm-records-backend/internal/mw"
	"farm-records-backend/internal/notification"
	"farm-records-backend/internal/store"
)

const testCookie = "farm_sid"

func init() {
	gin.SetMode(gin.TestMode)
}

// recordingNotifier collects dispatched events.
type recordingNotifier struct {
	mu     sync.Mutex
	events []notification.CropStatusChange
}

func (n *recordingNotifier) Dispatch(event notification.CropStatusChange) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return true
}

func (n *recordingNotifier) Events() []notification.CropStatusChange {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification.CropStatusChange(nil), n.events...)
}

type testEnv struct {
	router   *gin.Engine
	store    store.Store
	notifier *recordingNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithStore(t, store.NewMemStore())
}

func newTestEnvWithStore(t *testing.T, s store.Store) *testEnv {
	t.Helper()
	notifier := &recordingNotifier{}
	sessions := mw.NewSessionStore(time.Hour, testCookie, false)
	h := NewHandler(s, sessions, notifier, &webpush.Options{VAPIDPublicKey: "test-public-key"})
	h.hashCost = bcrypt.MinCost
	router := NewRouter(h, config.ServerConfig{RateLimitPerSec: 1000, RateLimitBurst: 1000})
	return &testEnv{router: router, store: s, notifier: notifier}
}

// client carries one user's session cookie between requests.
type client struct {
	t      *testing.T
	env    *testEnv
	cookie *http.Cookie
}

func (e *testEnv) anonymous(t *testing.T) *client {
	return &client{t: t, env: e}
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(c.t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	w := httptest.NewRecorder()
	c.env.router.ServeHTTP(w, req)

	for _, ck := range w.Result().Cookies() {
		if ck.Name != testCookie {
			continue
		}
		if ck.MaxAge < 0 || ck.Value == "" {
			c.cookie = nil
		} else {
			c.cookie = ck
		}
	}
	return w
}

// register creates a user and returns a client logged in as that user.
func (e *testEnv) register(t *testing.T, username string) *client {
	t.Helper()
	c := e.anonymous(t)
	w := c.do(http.MethodPost, "/api/auth/register", gin.H{"username": username, "password": "secret123"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.NotNil(t, c.cookie)
	return c
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type errorBody struct {
	Error   string       `json:"error"`
	Details []FieldIssue `json:"details"`
}
