package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"farm-records-backend/internal/model"
	"farm-records-backend/internal/mw"
)

type putSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required,url"`
	P256DH   string `json:"p256dh" binding:"required"`
	Auth     string `json:"auth" binding:"required"`
}

// PutSubscription creates or replaces a browser push subscription for the session user.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if !bindJSON(c, &req) {
		return
	}

	subscription := model.PushSubscription{
		Endpoint: req.Endpoint,
		UserID:   mw.UserID(c),
		P256DH:   req.P256DH,
		Auth:     req.Auth,
	}
	if err := h.store.SavePushSubscription(c.Request.Context(), subscription); err != nil {
		internalError(c, err)
		return
	}

	c.Status(http.StatusCreated)
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription removes one of the session user's subscriptions.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if !bindJSON(c, &req) {
		return
	}

	deleted, err := h.store.DeletePushSubscription(c.Request.Context(), mw.UserID(c), req.Endpoint)
	if err != nil {
		internalError(c, err)
		return
	}
	if !deleted {
		notFound(c, "subscription")
		return
	}

	c.Status(http.StatusNoContent)
}

// ListSubscriptions returns the endpoints the session user is subscribed with.
func (h *Handler) ListSubscriptions(c *gin.Context) {
	subs, err := h.store.ListPushSubscriptionsByUser(c.Request.Context(), mw.UserID(c))
	if err != nil {
		internalError(c, err)
		return
	}

	endpoints := make([]string, len(subs))
	for i, sub := range subs {
		endpoints[i] = sub.Endpoint
	}
	c.JSON(http.StatusOK, gin.H{"endpoints": endpoints})
}
