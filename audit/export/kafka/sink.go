package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/IBM/sarama"

	goShield "github.com/MrEthical07/goShield"
)

// Config holds the Kafka sink settings.
type Config struct {
	Brokers []string
	Topic   string
}

// Sink publishes audit events to Kafka through a synchronous idempotent
// producer. Publish failures are logged and dropped; audit delivery is never
// allowed to fail an authentication flow.
type Sink struct {
	producer sarama.SyncProducer
	topic    string
}

// NewSink connects a sync producer to the given brokers.
func NewSink(cfg Config) (*Sink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka topic required")
	}

	scfg := sarama.NewConfig()
	scfg.Version = sarama.V3_7_0_0
	scfg.Producer.RequiredAcks = sarama.WaitForAll
	scfg.Producer.Return.Successes = true
	scfg.Producer.Return.Errors = true
	scfg.Producer.Idempotent = true
	scfg.Net.MaxOpenRequests = 1
	scfg.Producer.Retry.Max = 5
	scfg.Producer.Retry.Backoff = 250 * time.Millisecond

	producer, err := sarama.NewSyncProducer(cfg.Brokers, scfg)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	return &Sink{producer: producer, topic: cfg.Topic}, nil
}

// NewSinkFromProducer wraps an existing producer. Used by tests with sarama
// mocks and by callers that share one producer across sinks.
func NewSinkFromProducer(producer sarama.SyncProducer, topic string) *Sink {
	return &Sink{producer: producer, topic: topic}
}

// Emit implements goShield.AuditSink.
func (s *Sink) Emit(ctx context.Context, event goShield.AuditEvent) {
	if s == nil || s.producer == nil {
		return
	}
	select {
	case <-ctx.Done():
		return
	default:
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("audit kafka sink: marshal event: %v", err)
		return
	}

	msg := &sarama.ProducerMessage{
		Topic: s.topic,
		Value: sarama.ByteEncoder(payload),
	}
	// Events without a user id share one partition; acceptable, they are rare.
	msg.Key = sarama.StringEncoder(event.UserID)

	if _, _, err := s.producer.SendMessage(msg); err != nil {
		log.Printf("audit kafka sink: publish failed: %v", err)
	}
}

// Close shuts the underlying producer down.
func (s *Sink) Close() error {
	if s == nil || s.producer == nil {
		return nil
	}
	return s.producer.Close()
}
