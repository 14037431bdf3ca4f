package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestKafkaPublisher_Publish(t *testing.T) {
	producer := mocks.NewAsyncProducer(t, nil)
	producer.ExpectInputWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "storefront-events" {
			t.Errorf("unexpected topic %q", msg.Topic)
		}
		key, _ := msg.Key.Encode()
		if string(key) != "abc123" {
			t.Errorf("unexpected key %q", key)
		}
		raw, _ := msg.Value.Encode()
		var e Event
		if err := json.Unmarshal(raw, &e); err != nil {
			t.Errorf("decode value: %v", err)
		}
		if e.Type != ProductCreated {
			t.Errorf("unexpected type %q", e.Type)
		}
		if len(msg.Headers) != 1 || string(msg.Headers[0].Value) != ProductCreated {
			t.Errorf("unexpected headers %v", msg.Headers)
		}
		return nil
	})

	p := NewKafkaPublisherWithProducer(producer, "storefront-events")

	if err := p.Publish(context.Background(), New(ProductCreated, "abc123", map[string]string{"productName": "Mug"})); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestKafkaPublisher_DeliveryErrorIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	defer zap.ReplaceGlobals(zap.New(core))()

	producer := mocks.NewAsyncProducer(t, nil)
	producer.ExpectInputAndFail(sarama.ErrOutOfBrokers)

	p := NewKafkaPublisherWithProducer(producer, "storefront-events")

	// el envío no espera al broker
	if err := p.Publish(context.Background(), New(BuyNowStaged, "Mug", nil)); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	entries := logs.FilterMessage("event delivery failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one logged delivery failure, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["key"]; got != "Mug" {
		t.Errorf("expected the entity key in the log, got %v", got)
	}
}

func TestKafkaPublisher_CancelledContext(t *testing.T) {
	producer := mocks.NewAsyncProducer(t, nil)
	p := NewKafkaPublisherWithProducer(producer, "storefront-events")
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Publish(ctx, New(ProductDeleted, "abc123", nil)); err == nil {
		t.Fatal("expected the cancelled context to be reported")
	}
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	if err := p.Publish(context.Background(), New(ProductCreated, "x", nil)); err != nil {
		t.Errorf("Nop.Publish: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Nop.Close: %v", err)
	}
}
