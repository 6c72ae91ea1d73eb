package api

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutSubscription(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")

	w := alice.do(http.MethodPut, "/api/push/subscriptions", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = alice.do(http.MethodPut, "/api/push/subscriptions", gin.H{"endpoint": "not a url", "p256dh": "k", "auth": "a"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []FieldIssue{{Field: "endpoint", Message: "must be a valid URL"}}, decode[errorBody](t, w).Details)

	sub := gin.H{"endpoint": "https://push.example.com/abc", "p256dh": "key", "auth": "secret"}
	assert.Equal(t, http.StatusCreated, alice.do(http.MethodPut, "/api/push/subscriptions", sub).Code)
	assert.Equal(t, http.StatusCreated, alice.do(http.MethodPut, "/api/push/subscriptions", sub).Code)

	w = alice.do(http.MethodGet, "/api/push/subscriptions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"endpoints":["https://push.example.com/abc"]}`, w.Body.String())
}

func TestDeleteSubscription(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	sub := gin.H{"endpoint": "https://push.example.com/abc", "p256dh": "key", "auth": "secret"}
	require.Equal(t, http.StatusCreated, alice.do(http.MethodPut, "/api/push/subscriptions", sub).Code)

	endpoint := gin.H{"endpoint": "https://push.example.com/abc"}
	assert.Equal(t, http.StatusNotFound, bob.do(http.MethodDelete, "/api/push/subscriptions", endpoint).Code)
	assert.Equal(t, http.StatusNoContent, alice.do(http.MethodDelete, "/api/push/subscriptions", endpoint).Code)
	assert.Equal(t, http.StatusNotFound, alice.do(http.MethodDelete, "/api/push/subscriptions", endpoint).Code)
}

func TestGetVAPIDPublicKey(t *testing.T) {
	env := newTestEnv(t)
	w := env.anonymous(t).do(http.MethodGet, "/api/push/vapid_public_key", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"publicKey":"test-public-key"}`, w.Body.String())
}

func TestGetVAPIDPublicKey_Unconfigured(t *testing.T) {
	h := &Handler{}
	r := gin.New()
	r.GET("/key", h.GetVAPIDPublicKey)

	c := &client{t: t, env: &testEnv{router: r}}
	w := c.do(http.MethodGet, "/key", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	w := env.anonymous(t).do(http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
