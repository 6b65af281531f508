// Package notify delivers committed dispatch events to subscribers. The Kafka
// notifier publishes one topic per channel, the log notifier is used when no
// broker is configured.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dronedispatch/internal/pkg/errs"
	"dronedispatch/internal/pkg/logger"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultTopicPrefix is used when KafkaConfig.TopicPrefix is empty.
const DefaultTopicPrefix = "dronedispatch"

// KafkaConfig addresses the brokers. Topics are named "<prefix>.<channel>".
type KafkaConfig struct {
	Brokers     []string
	TopicPrefix string
	ClientID    string
}

// Event is the envelope written to Kafka.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Channel   string    `json:"channel"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// partitioned payloads choose their message key so that the events of one
// entity land on one partition.
type partitioned interface {
	PartitionKey() string
}

// KafkaNotifier publishes events without waiting for the broker. Delivery
// results are read in the background: failures are logged, never returned to the
// command that emitted the event.
type KafkaNotifier struct {
	producer    sarama.AsyncProducer
	topicPrefix string
	log         *logrus.Entry
	now         func() time.Time
	done        chan struct{}
}

// delivery travels with a message as its metadata so the background reader can
// name the event it reports on.
type delivery struct {
	eventID uuid.UUID
	event   string
}

// NewKafkaNotifier connects an async producer that waits for all in-sync
// replicas and retries a send three times before reporting it failed.
func NewKafkaNotifier(cfg KafkaConfig, log *logrus.Entry) (*KafkaNotifier, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 3
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true
	config.Producer.Compression = sarama.CompressionSnappy
	if cfg.ClientID != "" {
		config.ClientID = cfg.ClientID
	}

	producer, err := sarama.NewAsyncProducer(cfg.Brokers, config)
	if err != nil {
		return nil, errs.NewExternalDependencyError("kafka", err)
	}

	n := NewKafkaNotifierWithProducer(producer, cfg.TopicPrefix, log)
	n.log.WithField("brokers", cfg.Brokers).Info("Kafka producer created")
	return n, nil
}

// NewKafkaNotifierWithProducer starts reading the delivery results of producer.
// Close must be called to stop it.
func NewKafkaNotifierWithProducer(producer sarama.AsyncProducer, topicPrefix string, log *logrus.Entry) *KafkaNotifier {
	if topicPrefix == "" {
		topicPrefix = DefaultTopicPrefix
	}
	if log == nil {
		log = logger.Discard()
	}
	n := &KafkaNotifier{
		producer:    producer,
		topicPrefix: topicPrefix,
		log:         logger.Component(log, "kafka-notifier"),
		now:         time.Now,
		done:        make(chan struct{}),
	}
	go n.drain()
	return n
}

// Topic is the topic events of channel are written to.
func Topic(prefix, channel string) string {
	return fmt.Sprintf("%s.%s", prefix, channel)
}

// Emit wraps payload in an Event and queues it on the topic of channel.
// It blocks only while the producer input is full, and gives up when ctx ends.
//
// Example:
//
//	err := notifier.Emit(ctx, ports.ChannelDrone, ports.EventDroneUpdated, event)
//	// err is nil once the message is queued; delivery failures are logged later
func (n *KafkaNotifier) Emit(ctx context.Context, channel, event string, payload any) error {
	envelope := Event{
		ID:        uuid.New(),
		Type:      event,
		Channel:   channel,
		Timestamp: n.now().UTC(),
		Data:      payload,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event, err)
	}

	key := envelope.ID.String()
	if p, ok := payload.(partitioned); ok && p.PartitionKey() != "" {
		key = p.PartitionKey()
	}

	topic := Topic(n.topicPrefix, channel)
	message := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event)},
			{Key: []byte("timestamp"), Value: []byte(envelope.Timestamp.Format(time.RFC3339))},
		},
		Metadata: delivery{eventID: envelope.ID, event: event},
	}

	select {
	case n.producer.Input() <- message:
	case <-ctx.Done():
		return errs.NewExternalDependencyError("kafka", ctx.Err())
	}

	logger.FromContext(ctx, n.log).
		WithField("topic", topic).
		WithField("event_type", event).
		WithField("event_id", envelope.ID).
		Debug("Event queued")
	return nil
}

// drain reads both result channels until the producer closes them.
func (n *KafkaNotifier) drain() {
	defer close(n.done)

	successes, failures := n.producer.Successes(), n.producer.Errors()
	for successes != nil || failures != nil {
		select {
		case msg, ok := <-successes:
			if !ok {
				successes = nil
				continue
			}
			n.messageLog(msg).
				WithField("partition", msg.Partition).
				WithField("offset", msg.Offset).
				Debug("Event published")
		case perr, ok := <-failures:
			if !ok {
				failures = nil
				continue
			}
			n.messageLog(perr.Msg).WithError(perr.Err).Error("Event delivery failed")
		}
	}
}

// messageLog returns a log entry naming the topic and the event of msg.
func (n *KafkaNotifier) messageLog(msg *sarama.ProducerMessage) *logrus.Entry {
	entry := n.log
	if msg == nil {
		return entry
	}
	entry = entry.WithField("topic", msg.Topic)
	if d, ok := msg.Metadata.(delivery); ok {
		entry = entry.WithField("event_type", d.event).WithField("event_id", d.eventID)
	}
	return entry
}

// Close flushes the queued events and waits until every delivery result is read.
func (n *KafkaNotifier) Close() error {
	n.producer.AsyncClose()
	<-n.done
	return nil
}
