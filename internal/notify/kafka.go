package notify

import (
	"context"
	"encoding/json"
	"log"

	"github.com/segmentio/kafka-go"
)

// KafkaDispatcher publishes crisis events to a Kafka topic. The ticketing
// application's notification workers consume the topic and handle
// delivery.
type KafkaDispatcher struct {
	writer *kafka.Writer
}

// NewKafkaDispatcher creates a dispatcher writing to the given brokers and
// topic.
func NewKafkaDispatcher(brokers []string, topic string) *KafkaDispatcher {
	return &KafkaDispatcher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// DispatchCrisis publishes the event keyed by ticket reference, so events
// for the same ticket stay ordered within a partition.
func (d *KafkaDispatcher) DispatchCrisis(ctx context.Context, event CrisisEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.TicketRef),
		Value: data,
	}

	if err := d.writer.WriteMessages(ctx, msg); err != nil {
		return err
	}

	log.Printf("Dispatched crisis event for ticket %s (score %d)", event.TicketRef, event.CrisisScore)
	return nil
}

// Close closes the Kafka writer.
func (d *KafkaDispatcher) Close() error {
	return d.writer.Close()
}
