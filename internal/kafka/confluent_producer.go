package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/ajitkushawaha/KwickLingoApp/internal/log"
)

// ConfluentProducer implements EventProducer using confluent-kafka-go.
type ConfluentProducer struct {
	producer *kafka.Producer
	topic    string
	doneCh   chan struct{}
}

// NewConfluentProducer creates a new Kafka producer for signaling events.
func NewConfluentProducer(brokers, topic string, partitions int) (*ConfluentProducer, error) {
	if err := ensureTopic(brokers, topic, partitions); err != nil {
		log.L().Warn().Err(err).Str("topic", topic).Msg("failed to ensure topic, may already exist")
	}

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"acks":              "1",
		"linger.ms":         5,
		"compression.type":  "snappy",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	cp := &ConfluentProducer{
		producer: p,
		topic:    topic,
		doneCh:   make(chan struct{}),
	}

	go cp.deliveryReportHandler()

	return cp, nil
}

func ensureTopic(brokers, topic string, partitions int) error {
	admin, err := kafka.NewAdminClient(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
	})
	if err != nil {
		return fmt.Errorf("failed to create admin client: %w", err)
	}
	defer admin.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	results, err := admin.CreateTopics(ctx, []kafka.TopicSpecification{
		{
			Topic:             topic,
			NumPartitions:     partitions,
			ReplicationFactor: 1,
		},
	})
	if err != nil {
		return err
	}

	for _, result := range results {
		if result.Error.Code() != kafka.ErrNoError && result.Error.Code() != kafka.ErrTopicAlreadyExists {
			return fmt.Errorf("failed to create topic %s: %v", result.Topic, result.Error)
		}
	}

	return nil
}

func (cp *ConfluentProducer) deliveryReportHandler() {
	l := log.L()
	for e := range cp.producer.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				l.Error().Err(ev.TopicPartition.Error).Msg("kafka delivery failed")
			}
		}
	}
	close(cp.doneCh)
}

func (cp *ConfluentProducer) produceEvent(ctx context.Context, key string, event *SignalingEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal signaling event: %w", err)
	}

	// Key by pairing/stream for consistent partition assignment
	err = cp.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &cp.topic,
			Partition: kafka.PartitionAny,
		},
		Key:   []byte(key),
		Value: value,
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to produce message: %w", err)
	}

	return nil
}

// ProduceMatchCreated sends a match_created event to Kafka.
func (cp *ConfluentProducer) ProduceMatchCreated(ctx context.Context, clientA, clientB string) error {
	event := &SignalingEvent{
		Type:      EventMatchCreated,
		ClientA:   clientA,
		ClientB:   clientB,
		Timestamp: time.Now().Unix(),
	}
	return cp.produceEvent(ctx, clientA, event)
}

// ProduceMatchEnded sends a match_ended event to Kafka.
func (cp *ConfluentProducer) ProduceMatchEnded(ctx context.Context, clientA, clientB, reason string) error {
	event := &SignalingEvent{
		Type:      EventMatchEnded,
		ClientA:   clientA,
		ClientB:   clientB,
		Reason:    reason,
		Timestamp: time.Now().Unix(),
	}
	return cp.produceEvent(ctx, clientA, event)
}

// ProduceStreamStarted sends a stream_started event to Kafka.
func (cp *ConfluentProducer) ProduceStreamStarted(ctx context.Context, streamID, streamerID string) error {
	event := &SignalingEvent{
		Type:      EventStreamStarted,
		StreamID:  streamID,
		ClientA:   streamerID,
		Timestamp: time.Now().Unix(),
	}
	return cp.produceEvent(ctx, streamID, event)
}

// ProduceStreamStopped sends a stream_stopped event to Kafka.
func (cp *ConfluentProducer) ProduceStreamStopped(ctx context.Context, streamID, streamerID, reason string) error {
	event := &SignalingEvent{
		Type:      EventStreamStopped,
		StreamID:  streamID,
		ClientA:   streamerID,
		Reason:    reason,
		Timestamp: time.Now().Unix(),
	}
	return cp.produceEvent(ctx, streamID, event)
}

// Close flushes pending messages and closes the producer.
func (cp *ConfluentProducer) Close() error {
	cp.producer.Flush(5000)
	cp.producer.Close()
	<-cp.doneCh
	return nil
}
