// Package kafka publishes invocation summaries to a Kafka topic, keyed by
// trace id so every summary for one trace lands on the same partition.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"idproof/internal/audit"
)

// Producer is the subset of *kgo.Client the publisher needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

type Publisher struct {
	producer Producer
	topic    string
}

// New creates a publisher writing to topic. An empty topic uses the client's
// default produce topic.
func New(producer Producer, topic string) *Publisher {
	return &Publisher{producer: producer, topic: topic}
}

// Publish writes s as JSON and waits for the broker acknowledgement.
func (p *Publisher) Publish(ctx context.Context, s audit.Summary) error {
	value, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(s.TraceID),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "name", Value: []byte(s.Name)},
		},
	}
	if err := p.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce summary: %w", err)
	}
	return nil
}
