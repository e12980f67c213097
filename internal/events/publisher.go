package events

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	kafkago "github.com/segmentio/kafka-go"

	"farmflow-backend/config"
	"farmflow-backend/internal/log"
	"farmflow-backend/internal/metrics"
)

// kafkaBatchTimeout bounds how long Publish waits for a batch to fill. Events
// are published on the request path, so batches are flushed almost at once.
const kafkaBatchTimeout = 5 * time.Millisecond

// Publisher delivers domain events to a broker.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close()
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close()                               {}

// NewPublisher returns the publisher selected by cfg.Backend.
func NewPublisher(cfg *config.EventsConfig) (Publisher, error) {
	switch cfg.Backend {
	case "", "none":
		return NopPublisher{}, nil
	case "mqtt", "kafka":
		c := &Client{cfg: cfg, backend: cfg.Backend}
		if err := c.Connect(); err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown events backend: %s", cfg.Backend)
	}
}

// Client publishes events over MQTT or Kafka.
type Client struct {
	mu       sync.RWMutex
	cfg      *config.EventsConfig
	backend  string
	mqttConn mqtt.Client
	kafkaW   *kafkago.Writer
}

// Connect establishes the broker connection.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.backend {
	case "mqtt":
		return c.connectMQTT()
	case "kafka":
		return c.connectKafka()
	default:
		return fmt.Errorf("unknown events backend: %s", c.backend)
	}
}

func (c *Client) connectMQTT() error {
	broker := fmt.Sprintf("tcp://%s:%d", c.cfg.MQTT.Broker, c.cfg.MQTT.Port)
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(c.cfg.MQTT.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("mqtt connect to %s: timed out", broker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	c.mqttConn = client
	log.Info("events: mqtt connected", "broker", broker)
	return nil
}

func (c *Client) connectKafka() error {
	if len(c.cfg.Kafka.Brokers) == 0 {
		return fmt.Errorf("no kafka brokers configured")
	}
	c.kafkaW = &kafkago.Writer{
		Addr:                   kafkago.TCP(c.cfg.Kafka.Brokers...),
		Balancer:               &kafkago.LeastBytes{},
		RequiredAcks:           kafkago.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           kafkaBatchTimeout,
	}
	log.Info("events: kafka writer ready", "brokers", c.cfg.Kafka.Brokers)
	return nil
}

// Publish encodes ev and sends it to the topic for its type.
func (c *Client) Publish(ctx context.Context, ev Event) error {
	payload, err := ev.Encode()
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	topic := Topic(c.backend, c.cfg.TopicPrefix, ev.Type)

	c.mu.RLock()
	defer c.mu.RUnlock()

	switch c.backend {
	case "mqtt":
		if c.mqttConn == nil || !c.mqttConn.IsConnected() {
			return fmt.Errorf("mqtt not connected")
		}
		token := c.mqttConn.Publish(topic, 1, false, payload)
		token.Wait()
		return token.Error()
	case "kafka":
		if c.kafkaW == nil {
			return fmt.Errorf("kafka writer not initialized")
		}
		return c.kafkaW.WriteMessages(ctx, kafkago.Message{
			Topic: topic,
			Key:   []byte(ev.MachineID),
			Value: payload,
		})
	default:
		return fmt.Errorf("unknown backend: %s", c.backend)
	}
}

// Close disconnects from the broker.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mqttConn != nil {
		c.mqttConn.Disconnect(250)
		c.mqttConn = nil
	}
	if c.kafkaW != nil {
		if err := c.kafkaW.Close(); err != nil {
			log.Warn("events: closing kafka writer", "error", err)
		}
		c.kafkaW = nil
	}
}

// Topic builds the broker topic for an event type. MQTT topics are
// slash-separated; Kafka topic names may not contain slashes.
func Topic(backend, prefix, eventType string) string {
	if backend == "mqtt" {
		return prefix + "/" + strings.ReplaceAll(eventType, ".", "/")
	}
	return prefix + "." + eventType
}

// Emit publishes ev and logs instead of returning a failure; events never
// fail the request that produced them.
func Emit(ctx context.Context, p Publisher, ev Event) {
	if p == nil {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	if err := p.Publish(ctx, ev); err != nil {
		metrics.EventsPublishedTotal.WithLabelValues(ev.Type, "failed").Inc()
		log.Error(err, "events: publish failed", "type", ev.Type, "machine_id", ev.MachineID)
		return
	}
	metrics.EventsPublishedTotal.WithLabelValues(ev.Type, "ok").Inc()
}
