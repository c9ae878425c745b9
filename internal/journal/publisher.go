package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Publisher broadcasts committed mutations to downstream consumers (reporting,
// village dashboards). Fail-open: the journal row is the source of truth, so a
// publish failure is logged, never surfaced to the committing caller.
type Publisher interface {
	PublishCommitted(ctx context.Context, entry *Entry)
	Close()
}

// KafkaPublisher produces one JSON record per committed mutation, keyed by
// region so per-region ordering holds within a partition.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerLinger(0),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &KafkaPublisher{client: client, topic: topic, logger: logger}, nil
}

func (p *KafkaPublisher) PublishCommitted(ctx context.Context, entry *Entry) {
	payload, err := json.Marshal(entry)
	if err != nil {
		p.logger.ErrorContext(ctx, "marshal mutation event", "error", err, "entry_id", entry.ID.String())
		return
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(entry.RegionID.String()),
		Value: payload,
	}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.logger.Error("publish mutation event",
				"error", err,
				"entry_id", entry.ID.String(),
				"region_id", entry.RegionID.String(),
			)
		}
	})
}

func (p *KafkaPublisher) Close() {
	p.client.Close()
}

// NopPublisher is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishCommitted(context.Context, *Entry) {}
func (NopPublisher) Close()                                   {}
