package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/Alexandre220990/ProfitumMVP-sub006/internal/eligibility"
)

// changeEvent is the JSON payload published per score movement.
type changeEvent struct {
	EventID       string    `json:"eventId"`
	SubjectID     string    `json:"subjectId"`
	ProductID     string    `json:"productId"`
	PreviousScore float64   `json:"previousScore"`
	NewScore      float64   `json:"newScore"`
	ObservedAt    time.Time `json:"observedAt"`
}

// KafkaChangeSink publishes score changes to a Kafka topic. Records are keyed
// by subject id so all changes for one subject land on the same partition in
// order.
type KafkaChangeSink struct {
	client *kgo.Client
	topic  string
}

func NewKafka(brokers []string, topic string) (*KafkaChangeSink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &KafkaChangeSink{client: client, topic: topic}, nil
}

func (s *KafkaChangeSink) Publish(ctx context.Context, changes []eligibility.Change) error {
	if len(changes) == 0 {
		return nil
	}
	records := make([]*kgo.Record, 0, len(changes))
	for _, change := range changes {
		payload, err := json.Marshal(changeEvent{
			EventID:       uuid.NewString(),
			SubjectID:     change.SubjectID,
			ProductID:     change.ProductID,
			PreviousScore: change.PreviousScore,
			NewScore:      change.NewScore,
			ObservedAt:    change.ObservedAt,
		})
		if err != nil {
			return fmt.Errorf("marshal change event: %w", err)
		}
		records = append(records, &kgo.Record{
			Topic: s.topic,
			Key:   []byte(change.SubjectID),
			Value: payload,
		})
	}
	if err := s.client.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return fmt.Errorf("publish %d change events: %w", len(records), err)
	}
	return nil
}

func (s *KafkaChangeSink) Close() {
	s.client.Close()
}
