package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"farmflow-backend/internal/events"
	"farmflow-backend/internal/notification"
	"farmflow-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store           store.Store
	webpush         *webpush.Options
	notifier        notification.Dispatcher
	events          events.Publisher
	validateMachine bool
}

// Option configures optional Handler dependencies.
type Option func(*Handler)

// WithNotifier sends web push jobs after successful writes.
func WithNotifier(d notification.Dispatcher) Option {
	return func(h *Handler) { h.notifier = d }
}

// WithEvents publishes domain events after successful writes.
func WithEvents(p events.Publisher) Option {
	return func(h *Handler) { h.events = p }
}

// WithPreCheckMachineValidation makes SavePreCheck reject unknown machines.
func WithPreCheckMachineValidation(enabled bool) Option {
	return func(h *Handler) { h.validateMachine = enabled }
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, webpushOptions *webpush.Options, opts ...Option) *Handler {
	h := &Handler{
		store:   s,
		webpush: webpushOptions,
		events:  events.NopPublisher{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) notify(machineID, event, body string) {
	if h.notifier == nil {
		return
	}
	h.notifier.Dispatch(notification.Job{MachineID: machineID, Event: event, Body: body})
}
