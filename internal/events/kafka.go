package events

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// KafkaPublisher envía cada evento como JSON, con el id de la entidad como clave
// para que los eventos de una misma entidad caigan en la misma partición.
// El envío es asíncrono: los fallos del broker se registran, no llegan a la petición.
type KafkaPublisher struct {
	producer sarama.AsyncProducer
	topic    string
	done     chan struct{}
}

// NewKafkaPublisher conecta un productor asíncrono con acks=all.
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	cfg := sarama.NewConfig()
	cfg.ClientID = "spacekit-api"
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Errors = true

	producer, err := sarama.NewAsyncProducer(brokers, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "kafka producer")
	}
	return NewKafkaPublisherWithProducer(producer, topic), nil
}

func NewKafkaPublisherWithProducer(producer sarama.AsyncProducer, topic string) *KafkaPublisher {
	p := &KafkaPublisher{producer: producer, topic: topic, done: make(chan struct{})}
	go p.logErrors()
	return p
}

// Publish encola el evento; solo falla si no se puede codificar o el contexto termina antes.
func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	value, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "encode event")
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(e.Key),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(e.Type)},
		},
	}

	select {
	case p.producer.Input() <- msg:
		return nil
	case <-ctx.Done():
		return errors.Wrapf(ctx.Err(), "publish %s", e.Type)
	}
}

func (p *KafkaPublisher) logErrors() {
	defer close(p.done)
	for perr := range p.producer.Errors() {
		fields := []zap.Field{zap.String("topic", perr.Msg.Topic), zap.Error(perr.Err)}
		if perr.Msg.Key != nil {
			if key, err := perr.Msg.Key.Encode(); err == nil {
				fields = append(fields, zap.ByteString("key", key))
			}
		}
		zap.L().Warn("event delivery failed", fields...)
	}
}

// Close vacía la cola pendiente y espera a que se registren sus errores.
func (p *KafkaPublisher) Close() error {
	p.producer.AsyncClose()
	<-p.done
	return nil
}
