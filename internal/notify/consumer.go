package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/reservaid/reservaid/internal/common/config"
	"github.com/reservaid/reservaid/internal/common/logger"
	"github.com/reservaid/reservaid/internal/feed"
)

const maxConsecutiveErrors = 10

// Consumer reads the change feed and hands events to the notifier.
type Consumer struct {
	consumer *kafka.Consumer
	notifier *Notifier
	log      logger.Logger
}

func NewConsumer(cfg config.KafkaConfig, notifier *Notifier, log logger.Logger) (*Consumer, error) {
	if cfg.Brokers == "" {
		return nil, fmt.Errorf("kafka brokers missing")
	}

	consumer, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":  cfg.Brokers,
		"group.id":           cfg.GroupID,
		"auto.offset.reset":  "latest",
		"enable.auto.commit": true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer: %w", err)
	}

	topics := []string{
		cfg.TopicPrefix + "." + feed.TableCommandes,
		cfg.TopicPrefix + "." + feed.TablePaiements,
		cfg.TopicPrefix + "." + feed.TableCreneaux,
		cfg.TopicPrefix + "." + feed.TableAudit,
	}
	if err := consumer.SubscribeTopics(topics, nil); err != nil {
		consumer.Close()
		return nil, fmt.Errorf("failed to subscribe to topics %v: %w", topics, err)
	}

	return &Consumer{consumer: consumer, notifier: notifier, log: log}, nil
}

// Run consumes until ctx is cancelled. The short read timeout keeps the
// loop responsive to shutdown; repeated broker errors abort the loop so the
// process restarts instead of spinning.
func (c *Consumer) Run(ctx context.Context) error {
	if c == nil || c.consumer == nil {
		return fmt.Errorf("consumer not initialized")
	}

	consecutiveErrors := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		msg, err := c.consumer.ReadMessage(time.Second)
		if err != nil {
			if kerr, ok := err.(kafka.Error); ok && kerr.Code() == kafka.ErrTimedOut {
				consecutiveErrors = 0
				continue
			}
			consecutiveErrors++
			if c.log != nil {
				c.log.Warnf("kafka read error (%d/%d): %v", consecutiveErrors, maxConsecutiveErrors, err)
			}
			if consecutiveErrors >= maxConsecutiveErrors {
				return fmt.Errorf("too many consecutive kafka errors, last: %w", err)
			}
			continue
		}
		consecutiveErrors = 0

		var evt feed.ChangeEvent
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			if c.log != nil {
				c.log.Warnf("skipping malformed change event offset=%v: %v", msg.TopicPartition.Offset, err)
			}
			continue
		}

		c.notifier.Handle(ctx, evt)
	}
}

// Close releases the underlying consumer.
func (c *Consumer) Close() {
	if c == nil || c.consumer == nil {
		return
	}
	_ = c.consumer.Close()
}
