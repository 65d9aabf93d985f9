package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/google/uuid"

	"github.com/reservaid/reservaid/internal/common/config"
	"github.com/reservaid/reservaid/internal/common/logger"
)

// Publisher pushes row-change events to Kafka. A nil *Publisher is a valid
// no-op, so callers never guard their publish sites.
type Publisher struct {
	producer     *kafka.Producer
	deliveryChan chan kafka.Event
	topicPrefix  string
	log          logger.Logger
}

// NewPublisher builds a connected publisher, or nil when the feed is
// disabled in config.
func NewPublisher(cfg config.KafkaConfig, log logger.Logger) (*Publisher, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if cfg.Brokers == "" {
		return nil, fmt.Errorf("kafka brokers missing")
	}

	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": cfg.Brokers,
		"client.id":         "reservaid-feed",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	p := &Publisher{
		producer:     producer,
		deliveryChan: make(chan kafka.Event, 128),
		topicPrefix:  cfg.TopicPrefix,
		log:          log,
	}

	go p.handleDeliveryReports()

	return p, nil
}

// PublishChange emits one change event for table/op/rowID. Errors are
// logged, not returned: the mutation already committed and the feed is
// best-effort by contract (consumers refetch anyway).
func (p *Publisher) PublishChange(ctx context.Context, table, op, rowID string, extra map[string]string) {
	if p == nil || p.producer == nil {
		return
	}

	evt := ChangeEvent{
		EventID: uuid.NewString(),
		Table:   table,
		Op:      op,
		RowID:   rowID,
		At:      time.Now().UTC(),
		Extra:   extra,
	}
	value, err := json.Marshal(evt)
	if err != nil {
		if p.log != nil {
			p.log.Warnf("failed to marshal change event table=%s: %v", table, err)
		}
		return
	}

	topic := p.topicPrefix + "." + table
	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(rowID),
		Value:          value,
		Timestamp:      evt.At,
	}

	select {
	case <-ctx.Done():
		return
	default:
	}

	if err := p.producer.Produce(msg, p.deliveryChan); err != nil && p.log != nil {
		p.log.Warnf("failed to publish change event table=%s row=%s: %v", table, rowID, err)
	}
}

func (p *Publisher) handleDeliveryReports() {
	for evt := range p.deliveryChan {
		m, ok := evt.(*kafka.Message)
		if !ok {
			continue
		}
		if m.TopicPartition.Error != nil && p.log != nil {
			p.log.Warnf("change event delivery failed topic=%s: %v", *m.TopicPartition.Topic, m.TopicPartition.Error)
		}
	}
}

// Close flushes pending events and closes the producer.
func (p *Publisher) Close() {
	if p == nil || p.producer == nil {
		return
	}
	p.producer.Flush(15000)
	close(p.deliveryChan)
	p.producer.Close()
}
