package fanout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"isleport/internal/fanout/events"
	id "isleport/pkg/domain"
)

// StreamPublisher mirrors delivered fan-out events onto a Kafka topic
// for downstream consumers (push gateways, analytics). The persisted
// notification rows remain the source of truth; the stream is a replica.
type StreamPublisher struct {
	client *kgo.Client
	topic  string
}

// NewStreamPublisher connects to the brokers and ensures the topic
// exists before first use.
func NewStreamPublisher(ctx context.Context, brokers []string, topic string) (*StreamPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.RecordRetries(3),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	if err := ensureTopic(ctx, client, topic); err != nil {
		client.Close()
		return nil, err
	}
	return &StreamPublisher{client: client, topic: topic}, nil
}

func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)

	topics, err := adm.ListTopics(ctx)
	if err != nil {
		return fmt.Errorf("list kafka topics: %w", err)
	}
	if topics.Has(topic) {
		return nil
	}

	if _, err := adm.CreateTopic(ctx, 3, 1, nil, topic); err != nil {
		return fmt.Errorf("create kafka topic %s: %w", topic, err)
	}
	return nil
}

type streamRecord struct {
	Kind         events.Kind     `json:"kind"`
	ActorID      string          `json:"actor_id"`
	ContentClass id.ContentClass `json:"content_class,omitempty"`
	ContentID    string          `json:"content_id,omitempty"`
	Title        string          `json:"title"`
	Status       string          `json:"status,omitempty"`
	RecipientIDs []string        `json:"recipient_ids"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// Publish produces one record per event, keyed by the actor so a
// partition preserves per-actor ordering.
func (p *StreamPublisher) Publish(ctx context.Context, event events.Event, recipients []id.UserID) error {
	recipientIDs := make([]string, 0, len(recipients))
	for _, recipient := range recipients {
		recipientIDs = append(recipientIDs, recipient.String())
	}

	record := streamRecord{
		Kind:         event.Kind,
		ActorID:      event.Actor.UserID.String(),
		ContentClass: event.ContentClass,
		Title:        event.Title,
		Status:       event.Status,
		RecipientIDs: recipientIDs,
		OccurredAt:   event.OccurredAt,
	}
	if event.ContentID != uuid.Nil {
		record.ContentID = event.ContentID.String()
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal stream record: %w", err)
	}

	result := p.client.ProduceSync(ctx, &kgo.Record{
		Key:   []byte(record.ActorID),
		Value: payload,
		Topic: p.topic,
	})
	if err := result.FirstErr(); err != nil {
		return fmt.Errorf("produce stream record: %w", err)
	}
	return nil
}

// Close flushes pending records and releases the client.
func (p *StreamPublisher) Close() {
	p.client.Close()
}
