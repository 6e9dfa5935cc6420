// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
)

// KafkaPublisher streams audit entries to a Kafka topic as JSON.
//
// Messages are keyed by account ID so one account's events stay on one
// partition in order.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaPublisher connects a synchronous, idempotent producer to brokers.
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 3
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("kafka_producer_failed: %w", err)
	}

	return NewKafkaPublisherWithProducer(producer, topic), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer.
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

// Publish implements [Publisher].
func (publisher *KafkaPublisher) Publish(ctx context.Context, entry Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("audit_marshal_failed: %w", err)
	}

	key := entry.AccountID
	if key == "" {
		key = entry.ID
	}

	message := &sarama.ProducerMessage{
		Topic: publisher.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("action"), Value: []byte(entry.Action)},
		},
	}

	if _, _, err := publisher.producer.SendMessage(message); err != nil {
		return fmt.Errorf("kafka_send_failed: %w", err)
	}
	return nil
}

// Close flushes and closes the producer.
func (publisher *KafkaPublisher) Close() error {
	return publisher.producer.Close()
}
