package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"wareeye/internal/model"
)

// DockEvent describes a dock-door scan worth alerting subscribers about.
type DockEvent struct {
	DockDoorID   int64
	DockDoorName string
	Barcode      string
	Valid        bool
	Transitioned bool
	Reason       string
}

// Message renders the push payload for the event.
func (e DockEvent) Message() string {
	if e.Valid {
		return fmt.Sprintf("Label %s shipped at %s", e.Barcode, e.DockDoorName)
	}
	return fmt.Sprintf("Label %s rejected at %s: %s", e.Barcode, e.DockDoorName, e.Reason)
}

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

// WorkerPool manages a pool of workers for sending dock alerts.
type WorkerPool struct {
	size    int
	jobs    chan DockEvent
	db      *gorm.DB
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a new worker pool with a job buffer of queueSize.
func NewWorkerPool(size, queueSize int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	if queueSize < size {
		queueSize = size
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan DockEvent, queueSize),
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

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Worker %d started", id)
	for {
		select {
		case event := <-wp.jobs:
			log.Printf("Worker %d processing dock door %s (label %s)", id, event.DockDoorName, event.Barcode)
			wp.sendNotificationsForEvent(ctx, event)
		case <-ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues an event without blocking the caller. It reports false when
// the queue is full and the event was dropped.
func (wp *WorkerPool) Dispatch(event DockEvent) bool {
	select {
	case wp.jobs <- event:
		return true
	default:
		log.Printf("Notification queue full, dropping alert for label %s at %s", event.Barcode, event.DockDoorName)
		return false
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan DockEvent {
	return wp.jobs
}

func (wp *WorkerPool) sendNotificationsForEvent(ctx context.Context, event DockEvent) {
	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Joins("JOIN subscription_dock_door_mapping sdm ON sdm.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("sdm.dock_door_id = ?", event.DockDoorID).
		Find(&subscriptions).Error
	if err != nil {
		log.Printf("Error fetching subscriptions for dock door %d: %v", event.DockDoorID, err)
		return
	}

	if len(subscriptions) == 0 {
		return
	}

	log.Printf("Sending %d notifications for dock door %s", len(subscriptions), event.DockDoorName)
	payload := []byte(event.Message())
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

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
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
