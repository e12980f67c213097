package notification

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"farmflow-backend/internal/log"
	"farmflow-backend/internal/model"
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

// Job asks the pool to notify every subscriber of a machine.
type Job struct {
	MachineID string
	Event     string // e.g. maintenance.recorded
	Body      string
}

// Message is the JSON payload pushed to browsers.
type Message struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	MachineID string `json:"machine_id"`
	Event     string `json:"event"`
}

// Dispatcher accepts notification jobs.
type Dispatcher interface {
	Dispatch(job Job)
}

// WorkerPool manages a pool of workers for sending notifications.
type WorkerPool struct {
	size    int
	jobs    chan Job
	db      *gorm.DB
	webpush *webpush.Options
	sender  NotificationSender
	logger  log.Logger
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Job, size*16),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		logger:  log.WithName("notification"),
	}
}

// Run starts the workers and blocks until ctx is cancelled.
func (wp *WorkerPool) Run(ctx context.Context) error {
	done := make(chan struct{}, wp.size)
	for i := 0; i < wp.size; i++ {
		go func(id int) {
			wp.worker(ctx, id)
			done <- struct{}{}
		}(i)
	}
	for i := 0; i < wp.size; i++ {
		<-done
	}
	return nil
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	wp.logger.Debug("worker started", "worker", id)
	for {
		select {
		case job := <-wp.jobs:
			wp.sendNotificationsForMachine(ctx, job)
		case <-ctx.Done():
			wp.logger.Debug("worker shutting down", "worker", id)
			return
		}
	}
}

// Dispatch queues a job. When the queue is full the job is dropped so a slow
// push service never blocks a request.
func (wp *WorkerPool) Dispatch(job Job) {
	select {
	case wp.jobs <- job:
	default:
		wp.logger.Warn("notification queue full, dropping job", "machine_id", job.MachineID, "event", job.Event)
	}
}

func (wp *WorkerPool) sendNotificationsForMachine(ctx context.Context, job Job) {
	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Joins("JOIN subscription_machine_mapping smm ON smm.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("smm.machine_id = ?", job.MachineID).
		Find(&subscriptions).Error
	if err != nil {
		wp.logger.Error(err, "fetching subscriptions failed", "machine_id", job.MachineID)
		return
	}

	if len(subscriptions) == 0 {
		return
	}

	machineLabel := job.MachineID
	var machine model.Machine
	if err := wp.db.WithContext(ctx).
		Select("name").
		Where("id = ?", job.MachineID).
		Take(&machine).Error; err != nil {
		wp.logger.Warn("machine lookup failed, using id as label", "machine_id", job.MachineID, "error", err)
	} else if machine.Name != "" {
		machineLabel = machine.Name
	}

	payload, err := json.Marshal(Message{
		Title:     machineLabel,
		Body:      job.Body,
		MachineID: job.MachineID,
		Event:     job.Event,
	})
	if err != nil {
		wp.logger.Error(err, "encoding notification failed")
		return
	}

	wp.logger.Info("sending notifications", "count", len(subscriptions), "machine_id", job.MachineID)
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
		wp.logger.Error(err, "sending notification failed", "endpoint", sub.Endpoint)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		wp.logger.Info("subscription expired, deleting", "endpoint", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Select("Machines").Delete(&sub).Error; err != nil {
			wp.logger.Error(err, "deleting expired subscription failed", "endpoint", sub.Endpoint)
		}
	}
}
