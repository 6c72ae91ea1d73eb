package api

import (
	"github.com/SherClockHolmes/webpush-go"
	"golang.org/x/crypto/bcrypt"

	"farm-records-backend/internal/mw"
	"farm-records-backend/internal/notification"
	"farm-records-backend/internal/store"
)

// Notifier receives crop status changes. *notification.WorkerPool implements it.
type Notifier interface {
	Dispatch(event notification.CropStatusChange) bool
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	sessions *mw.SessionStore
	notifier Notifier
	webpush  *webpush.Options

	hashCost int
}

// NewHandler creates a new API handler. notifier and webpushOptions may be nil
// when push notifications are not configured.
func NewHandler(s store.Store, sessions *mw.SessionStore, notifier Notifier, webpushOptions *webpush.Options) *Handler {
	registerValidators()
	return &Handler{
		store:    s,
		sessions: sessions,
		notifier: notifier,
		webpush:  webpushOptions,
		hashCost: bcrypt.DefaultCost,
	}
}
