package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"farmflow-backend/internal/model"
	"farmflow-backend/internal/testutil"
)

// mockSender is a mock implementation of the NotificationSender interface.
type mockSender struct {
	mu       sync.Mutex
	status   int
	sent     []*webpush.Subscription
	payloads [][]byte
	called   chan struct{}
}

func newMockSender(status int) *mockSender {
	return &mockSender{status: status, called: make(chan struct{}, 16)}
}

func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	m.mu.Lock()
	m.sent = append(m.sent, sub)
	m.payloads = append(m.payloads, payload)
	m.mu.Unlock()
	m.called <- struct{}{}
	return &http.Response{
		StatusCode: m.status,
		Body:       io.NopCloser(bytes.NewBufferString("")),
	}, nil
}

func subscribe(t *testing.T, db *gorm.DB, endpoint string, machineIDs ...string) {
	t.Helper()
	require.NoError(t, db.Create(&model.PushSubscription{
		Endpoint: endpoint,
		P256DH:   "p256dh-" + endpoint,
		Auth:     "auth-" + endpoint,
	}).Error)
	for _, id := range machineIDs {
		require.NoError(t, db.Exec(
			"INSERT INTO subscription_machine_mapping (push_subscription_endpoint, machine_id) VALUES (?, ?)",
			endpoint, id,
		).Error)
	}
}

func decodeMessage(t *testing.T, payload []byte) Message {
	t.Helper()
	var msg Message
	require.NoError(t, json.Unmarshal(payload, &msg))
	return msg
}

func TestWorkerPool_Dispatch(t *testing.T) {
	wp := NewWorkerPool(1, testutil.NewSQLite(t), &webpush.Options{})

	job := Job{MachineID: "TRACTOR-001", Event: "maintenance.recorded", Body: "engine oil serviced"}
	wp.Dispatch(job)

	select {
	case got := <-wp.jobs:
		assert.Equal(t, job, got)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestWorkerPool_DispatchDropsWhenFull(t *testing.T) {
	wp := NewWorkerPool(1, testutil.NewSQLite(t), &webpush.Options{})

	for i := 0; i < cap(wp.jobs)+5; i++ {
		wp.Dispatch(Job{MachineID: "M-1"})
	}
	assert.Len(t, wp.jobs, cap(wp.jobs))
}

func TestWorkerPool_SendsToSubscribers(t *testing.T) {
	db := testutil.NewSQLite(t)
	require.NoError(t, db.Create(&model.Machine{ID: "M-1", Name: "No.1", ModelName: "SL54"}).Error)
	require.NoError(t, db.Create(&model.Machine{ID: "M-2", Name: "No.2", ModelName: "SL54"}).Error)
	subscribe(t, db, "https://push.example.com/a", "M-1")
	subscribe(t, db, "https://push.example.com/b", "M-1", "M-2")
	subscribe(t, db, "https://push.example.com/c", "M-2")

	sender := newMockSender(http.StatusCreated)
	wp := NewWorkerPool(1, db, &webpush.Options{})
	wp.sender = sender

	wp.sendNotificationsForMachine(context.Background(), Job{
		MachineID: "M-1",
		Event:     "maintenance.recorded",
		Body:      "engine oil serviced at 600h",
	})

	require.Len(t, sender.sent, 2)
	endpoints := []string{sender.sent[0].Endpoint, sender.sent[1].Endpoint}
	assert.ElementsMatch(t, []string{"https://push.example.com/a", "https://push.example.com/b"}, endpoints)
	for _, sub := range sender.sent {
		assert.Equal(t, "p256dh-"+sub.Endpoint, sub.Keys.P256dh)
		assert.Equal(t, "auth-"+sub.Endpoint, sub.Keys.Auth)
	}

	msg := decodeMessage(t, sender.payloads[0])
	assert.Equal(t, Message{
		Title:     "No.1",
		Body:      "engine oil serviced at 600h",
		MachineID: "M-1",
		Event:     "maintenance.recorded",
	}, msg)
}

func TestWorkerPool_NoSubscribers(t *testing.T) {
	db := testutil.NewSQLite(t)
	sender := newMockSender(http.StatusCreated)
	wp := NewWorkerPool(1, db, &webpush.Options{})
	wp.sender = sender

	wp.sendNotificationsForMachine(context.Background(), Job{MachineID: "M-1"})
	assert.Empty(t, sender.sent)
}

func TestWorkerPool_DeletesExpiredSubscription(t *testing.T) {
	db := testutil.NewSQLite(t)
	require.NoError(t, db.Create(&model.Machine{ID: "M-1", Name: "No.1", ModelName: "SL54"}).Error)
	subscribe(t, db, "https://push.example.com/expired", "M-1")

	wp := NewWorkerPool(1, db, &webpush.Options{})
	wp.sender = newMockSender(http.StatusGone)

	wp.sendNotificationsForMachine(context.Background(), Job{MachineID: "M-1", Event: "precheck.saved"})

	var subs, mappings int64
	require.NoError(t, db.Model(&model.PushSubscription{}).Count(&subs).Error)
	require.NoError(t, db.Table("subscription_machine_mapping").Count(&mappings).Error)
	assert.Zero(t, subs)
	assert.Zero(t, mappings)

	var machines int64
	require.NoError(t, db.Model(&model.Machine{}).Count(&machines).Error)
	assert.Equal(t, int64(1), machines)
}

func TestWorkerPool_FallsBackToMachineID(t *testing.T) {
	db := testutil.NewSQLite(t)
	// The mapping outlives a machine that was never created here, so the
	// name lookup fails.
	require.NoError(t, db.Exec("PRAGMA foreign_keys = OFF").Error)
	subscribe(t, db, "https://push.example.com/orphan", "GHOST-9")

	sender := newMockSender(http.StatusCreated)
	wp := NewWorkerPool(1, db, &webpush.Options{})
	wp.sender = sender

	wp.sendNotificationsForMachine(context.Background(), Job{MachineID: "GHOST-9", Event: "precheck.saved"})

	require.Len(t, sender.payloads, 1)
	assert.Equal(t, "GHOST-9", decodeMessage(t, sender.payloads[0]).Title)
}

func TestWorkerPool_Run(t *testing.T) {
	db := testutil.NewSQLite(t)
	require.NoError(t, db.Create(&model.Machine{ID: "M-1", Name: "No.1", ModelName: "SL54"}).Error)
	subscribe(t, db, "https://push.example.com/a", "M-1")

	sender := newMockSender(http.StatusCreated)
	wp := NewWorkerPool(2, db, &webpush.Options{})
	wp.sender = sender

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- wp.Run(ctx) }()

	wp.Dispatch(Job{MachineID: "M-1", Event: "maintenance.recorded"})

	select {
	case <-sender.called:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker pool did not stop")
	}
}
