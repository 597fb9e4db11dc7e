package events

import (
	"context"
	"encoding/json"
	"time"

	kafka "github.com/segmentio/kafka-go"
)

type kafkaPublisher struct {
	w *kafka.Writer
}

// NewKafka publishes transition events to topic, keyed by module/document so
// the events of one document stay ordered.
func NewKafka(brokers []string, topic string) Publisher {
	if len(brokers) == 0 {
		return NewNoop()
	}
	if topic == "" {
		topic = DefaultTopic
	}
	// Writers are safe for concurrent use
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		RequiredAcks: kafka.RequireOne,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
	}
	return &kafkaPublisher{w: w}
}

func (p *kafkaPublisher) PublishTransition(ctx context.Context, evt TransitionEvent) error {
	b, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.w.WriteMessages(ctx, kafka.Message{Key: []byte(evt.Module + "/" + evt.DocumentID), Value: b})
}

func (p *kafkaPublisher) Close() error { return p.w.Close() }
