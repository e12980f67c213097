package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmflow-backend/config"
)

type recordingPublisher struct {
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev Event) error {
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Close() {}

func TestTopic(t *testing.T) {
	tests := []struct {
		backend string
		want    string
	}{
		{"mqtt", "farmflow/maintenance/recorded"},
		{"kafka", "farmflow.maintenance.recorded"},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			assert.Equal(t, tt.want, Topic(tt.backend, "farmflow", TypeMaintenanceRecorded))
		})
	}
}

func TestEvent_Encode(t *testing.T) {
	at := time.Date(2025, 4, 1, 8, 30, 0, 0, time.UTC)
	ev := Event{
		Type:       TypePreCheckSaved,
		MachineID:  "TRACTOR-001",
		OccurredAt: at,
		Data: PreCheckSaved{
			ID:                "c0ffee",
			TotalHoursAtCheck: 512,
			Result:            json.RawMessage(`{"engineOil":"ok"}`),
		},
	}

	data, err := ev.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "precheck.saved",
		"machine_id": "TRACTOR-001",
		"occurred_at": "2025-04-01T08:30:00Z",
		"data": {"id": "c0ffee", "total_hours_at_check": 512, "result": {"engineOil": "ok"}}
	}`, string(data))
}

func TestEmit(t *testing.T) {
	t.Run("stamps missing time", func(t *testing.T) {
		p := &recordingPublisher{}
		Emit(context.Background(), p, Event{Type: TypeMaintenanceRecorded, MachineID: "M-1"})

		require.Len(t, p.events, 1)
		assert.False(t, p.events[0].OccurredAt.IsZero())
	})

	t.Run("keeps given time", func(t *testing.T) {
		p := &recordingPublisher{}
		at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		Emit(context.Background(), p, Event{Type: TypeMaintenanceRecorded, OccurredAt: at})

		require.Len(t, p.events, 1)
		assert.Equal(t, at, p.events[0].OccurredAt)
	})

	t.Run("swallows publish errors", func(t *testing.T) {
		p := &recordingPublisher{err: errors.New("broker down")}
		assert.NotPanics(t, func() {
			Emit(context.Background(), p, Event{Type: TypePreCheckSaved})
		})
		assert.Len(t, p.events, 1)
	})

	t.Run("nil publisher", func(t *testing.T) {
		assert.NotPanics(t, func() {
			Emit(context.Background(), nil, Event{Type: TypePreCheckSaved})
		})
	})
}

func TestNewPublisher(t *testing.T) {
	p, err := NewPublisher(&config.EventsConfig{Backend: "none"})
	require.NoError(t, err)
	assert.IsType(t, NopPublisher{}, p)
	assert.NoError(t, p.Publish(context.Background(), Event{}))
	p.Close()

	_, err = NewPublisher(&config.EventsConfig{Backend: "carrier-pigeon"})
	assert.Error(t, err)

	_, err = NewPublisher(&config.EventsConfig{Backend: "kafka"})
	assert.Error(t, err, "kafka without brokers")
}

func TestClient_PublishWithoutConnection(t *testing.T) {
	c := &Client{cfg: &config.EventsConfig{TopicPrefix: "farmflow"}, backend: "mqtt"}
	err := c.Publish(context.Background(), Event{Type: TypeMaintenanceRecorded})
	assert.Error(t, err)
}

func TestClient_KafkaWriterFlushesPromptly(t *testing.T) {
	c := &Client{
		cfg:     &config.EventsConfig{TopicPrefix: "farmflow", Kafka: config.KafkaConfig{Brokers: []string{"localhost:9092"}}},
		backend: "kafka",
	}
	require.NoError(t, c.Connect())
	t.Cleanup(c.Close)

	require.NotNil(t, c.kafkaW)
	assert.Equal(t, kafkaBatchTimeout, c.kafkaW.BatchTimeout)
	assert.LessOrEqual(t, c.kafkaW.BatchTimeout, 10*time.Millisecond)
}
