package notification

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"foodshare-backend/internal/model"
)

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of Sender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool fans out notification events: each event is persisted to the
// recipient's feed and pushed to every browser subscription the recipient
// registered. Delivery failures are logged and swallowed; they never reach
// the caller that produced the event.
type WorkerPool struct {
	size    int
	jobs    chan model.Notification
	db      *gorm.DB
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a new worker pool. queueSize bounds how many
// undelivered events may be buffered before Emit starts dropping.
func NewWorkerPool(size, queueSize int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan model.Notification, queueSize),
		db:      db,
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

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Notification worker %d started", id)
	for {
		select {
		case n := <-wp.jobs:
			wp.deliver(ctx, n)
		case <-ctx.Done():
			log.Printf("Notification worker %d shutting down", id)
			return
		}
	}
}

// Emit queues an event for delivery. It never blocks: when the buffer is
// full the event is dropped with a log line, since the state change that
// produced it has already committed.
func (wp *WorkerPool) Emit(n model.Notification) {
	select {
	case wp.jobs <- n:
	default:
		log.Printf("Notification queue full, dropping %s event for %s", n.Kind, n.RecipientID)
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan model.Notification {
	return wp.jobs
}

// deliver persists the notification and pushes it to the recipient's
// subscriptions.
func (wp *WorkerPool) deliver(ctx context.Context, n model.Notification) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if err := wp.db.WithContext(ctx).Create(&n).Error; err != nil {
		log.Printf("Error persisting notification for %s: %v", n.RecipientID, err)
	}

	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Where("user_id = ?", n.RecipientID).
		Find(&subscriptions).Error
	if err != nil {
		log.Printf("Error fetching subscriptions for %s: %v", n.RecipientID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(map[string]string{
		"kind":      string(n.Kind),
		"listingId": n.ListingID,
		"message":   n.Message,
	})
	if err != nil {
		log.Printf("Error marshaling push payload: %v", err)
		return
	}

	log.Printf("Sending %d push notifications to %s", len(subscriptions), n.RecipientID)
	for _, sub := range subscriptions {
		wp.sendPush(ctx, sub, payload)
	}
}

// sendPush sends a single web push notification.
func (wp *WorkerPool) sendPush(ctx context.Context, sub model.PushSubscription, payload []byte) {
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

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
