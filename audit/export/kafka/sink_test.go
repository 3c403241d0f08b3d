package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"

	goShield "github.com/MrEthical07/goShield"
)

func TestSinkPublishesEvent(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(value []byte) error {
		var event goShield.AuditEvent
		return json.Unmarshal(value, &event)
	})

	sink := NewSinkFromProducer(producer, "goshield.audit")
	sink.Emit(context.Background(), goShield.AuditEvent{
		Timestamp: time.Now(),
		EventType: "login_success",
		UserID:    "user-1",
		Success:   true,
	})

	if err := sink.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestSinkKeysByUserID(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)

	var captured *sarama.ProducerMessage
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		captured = msg
		return nil
	})

	sink := NewSinkFromProducer(producer, "goshield.audit")
	sink.Emit(context.Background(), goShield.AuditEvent{EventType: "logout_session", UserID: "user-9"})

	if captured == nil {
		t.Fatal("no message published")
	}
	key, err := captured.Key.Encode()
	if err != nil {
		t.Fatalf("encode key: %v", err)
	}
	if string(key) != "user-9" {
		t.Fatalf("key = %q, want user-9", key)
	}

	if err := sink.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestSinkPublishFailureIsSwallowed(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	sink := NewSinkFromProducer(producer, "goshield.audit")
	sink.Emit(context.Background(), goShield.AuditEvent{EventType: "login_failure"})

	if err := sink.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestSinkCanceledContextSkipsPublish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := NewSinkFromProducer(producer, "goshield.audit")
	sink.Emit(ctx, goShield.AuditEvent{EventType: "login_success"})

	if err := sink.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
