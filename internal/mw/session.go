package mw

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

// userIDKey is the gin context key holding the authenticated user id.
const userIDKey = "userID"

// SessionStore keeps server-side sessions in memory. Each entry maps an opaque
// session id to a user id and expires after ttl of inactivity.
type SessionStore struct {
	sessions   *cache.Cache
	ttl        time.Duration
	cookieName string
	secure     bool
}

// NewSessionStore creates a new session store.
func NewSessionStore(ttl time.Duration, cookieName string, secure bool) *SessionStore {
	return &SessionStore{
		sessions:   cache.New(ttl, 10*time.Minute),
		ttl:        ttl,
		cookieName: cookieName,
		secure:     secure,
	}
}

func newSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Create stores a new session for userID and returns its id.
func (s *SessionStore) Create(userID string) (string, error) {
	id, err := newSessionID()
	if err != nil {
		return "", err
	}
	s.sessions.Set(id, userID, s.ttl)
	return id, nil
}

// Lookup returns the user id bound to a session and extends its lifetime.
func (s *SessionStore) Lookup(id string) (string, bool) {
	v, found := s.sessions.Get(id)
	if !found {
		return "", false
	}
	userID := v.(string)
	s.sessions.Set(id, userID, s.ttl)
	return userID, true
}

// Destroy removes a session. Unknown ids are ignored.
func (s *SessionStore) Destroy(id string) {
	s.sessions.Delete(id)
}

// Start issues a fresh session for userID on the response. Any session the
// request already carried is destroyed first so an id chosen before login
// can never become authenticated.
func (s *SessionStore) Start(c *gin.Context, userID string) error {
	if old, err := c.Cookie(s.cookieName); err == nil && old != "" {
		s.Destroy(old)
	}

	id, err := s.Create(userID)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cookieName, id, int(s.ttl.Seconds()), "/", "", s.secure, true)
	return nil
}

// End destroys the request's session and clears the cookie.
func (s *SessionStore) End(c *gin.Context) {
	if id, err := c.Cookie(s.cookieName); err == nil && id != "" {
		s.Destroy(id)
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cookieName, "", -1, "/", "", s.secure, true)
}

// RequireSession rejects requests without a valid session and exposes the
// session's user id through UserID.
func (s *SessionStore) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(s.cookieName)
		if err != nil || id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		userID, ok := s.Lookup(id)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the authenticated user id, or "" outside RequireSession.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
