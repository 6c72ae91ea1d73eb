package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"farm-records-backend/internal/model"
	"farm-records-backend/internal/store"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// CropStatusChange is emitted when an update moves a crop to a new status.
type CropStatusChange struct {
	UserID   string
	FarmName string
	CropName string
	From     model.CropStatus
	To       model.CropStatus
}

// Message is the human readable notification text.
func (e CropStatusChange) Message() string {
	return fmt.Sprintf("%s on %s is now %s", e.CropName, e.FarmName, e.To)
}

// WorkerPool manages a pool of workers for sending notifications.
type WorkerPool struct {
	size    int
	jobs    chan CropStatusChange
	store   store.Store
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, s store.Store, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan CropStatusChange, size*16),
		store:   s,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Worker %d started", id)
	for {
		select {
		case event := <-wp.jobs:
			wp.notifyUser(ctx, event)
		case <-ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues an event without blocking. It reports false when the queue
// is full and the event was dropped.
func (wp *WorkerPool) Dispatch(event CropStatusChange) bool {
	select {
	case wp.jobs <- event:
		return true
	default:
		log.Printf("Notification queue full, dropping event for user %s", event.UserID)
		return false
	}
}

func (wp *WorkerPool) notifyUser(ctx context.Context, event CropStatusChange) {
	subscriptions, err := wp.store.ListPushSubscriptionsByUser(ctx, event.UserID)
	if err != nil {
		log.Printf("Error fetching subscriptions for user %s: %v", event.UserID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload := []byte(event.Message())
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if _, err := wp.store.DeletePushSubscription(ctx, sub.UserID, sub.Endpoint); err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
