// Package kafka publishes anomaly events to a Kafka topic for downstream
// consumers (alert routers, dashboards). Optional; constructed only when
// brokers are configured.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/viniciushammett/go-stream-anomaly-detector/internal/logger"
	"github.com/viniciushammett/go-stream-anomaly-detector/internal/store"
)

type Publisher struct {
	log *logger.Logger
	w   *kafkago.Writer
}

func NewPublisher(log *logger.Logger, brokers []string, topic string) *Publisher {
	return &Publisher{
		log: log,
		w: &kafkago.Writer{
			Addr:     kafkago.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafkago.Hash{},
		},
	}
}

// Publish sends one anomaly event as JSON, keyed by event ID.
func (p *Publisher) Publish(ctx context.Context, ev store.Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err = p.w.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(ev.ID),
		Value: b,
		Time:  ev.When,
	})
	if err != nil {
		p.log.Error().Err(err).Str("id", ev.ID).Msg("kafka write failed")
		return err
	}
	p.log.Debug().Str("id", ev.ID).Float64("value", ev.Value).Msg("anomaly published")
	return nil
}

func (p *Publisher) Close() error { return p.w.Close() }
