// services/analytics.go - Fire-and-forget analytics events over Kafka.
// Settlement publishes after commit; a publish failure never affects
// gameplay, it just logs.
package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/IBM/sarama"
)

// AnalyticsEvent is the wire envelope for every published event.
type AnalyticsEvent struct {
	Type      string                 `json:"type"`
	Timestamp string                 `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload"`
}

// AnalyticsPublisher streams gameplay events to a Kafka topic through an
// async producer. The zero-value-like nil publisher is safe to call.
type AnalyticsPublisher struct {
	producer sarama.AsyncProducer
	topic    string
	done     chan struct{}
}

var _ EventPublisher = (*AnalyticsPublisher)(nil)

// NewAnalyticsPublisher connects an async producer to the given brokers.
// Empty brokers disable publishing and return a nil publisher without
// error.
func NewAnalyticsPublisher(brokers []string, topic string) (*AnalyticsPublisher, error) {
	if len(brokers) == 0 {
		return nil, nil
	}

	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Flush.Frequency = 100 * time.Millisecond
	config.Producer.Return.Successes = false
	config.Producer.Return.Errors = true

	producer, err := sarama.NewAsyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create analytics producer: %w", err)
	}

	p := &AnalyticsPublisher{
		producer: producer,
		topic:    topic,
		done:     make(chan struct{}),
	}
	go p.drainErrors()

	log.Printf("✅ Analytics publisher connected (topic %s)", topic)
	return p, nil
}

func (p *AnalyticsPublisher) drainErrors() {
	defer close(p.done)
	for err := range p.producer.Errors() {
		log.Printf("❌ Analytics publish error: %v", err)
	}
}

// Publish enqueues one event. Safe on a nil publisher.
func (p *AnalyticsPublisher) Publish(eventType string, payload map[string]interface{}) {
	if p == nil {
		return
	}

	event := AnalyticsEvent{
		Type:      eventType,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("❌ Analytics event marshal failed: %v", err)
		return
	}

	key := eventType
	if id, ok := payload["player_id"]; ok {
		key = fmt.Sprintf("%v", id)
	}

	p.producer.Input() <- &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(data),
	}
}

// Close flushes pending events and stops the error drain.
func (p *AnalyticsPublisher) Close() error {
	if p == nil {
		return nil
	}
	err := p.producer.Close()
	<-p.done
	return err
}
