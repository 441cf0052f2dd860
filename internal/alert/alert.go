// Package alert turns flagged points into durable, delivered anomaly
// events: BoltDB record, optional Slack ping, optional Kafka publish.
package alert

import (
	"context"
	"sync"

	"github.com/viniciushammett/go-stream-anomaly-detector/internal/kafka"
	"github.com/viniciushammett/go-stream-anomaly-detector/internal/logger"
	"github.com/viniciushammett/go-stream-anomaly-detector/internal/metrics"
	"github.com/viniciushammett/go-stream-anomaly-detector/internal/notify"
	"github.com/viniciushammett/go-stream-anomaly-detector/internal/store"
	"github.com/viniciushammett/go-stream-anomaly-detector/internal/stream"
)

// Alerter is a dropping sink: Record enqueues and returns immediately so
// a slow webhook or broker never stalls the classify loop. The queue is
// bounded; overflow is counted and dropped.
type Alerter struct {
	log   *logger.Logger
	db    *store.Store
	slack *notify.Slack
	kafka *kafka.Publisher

	queue  chan stream.Point
	done   chan struct{}
	once   sync.Once
	mu     sync.Mutex
	closed bool
}

func New(log *logger.Logger, db *store.Store, slack *notify.Slack, pub *kafka.Publisher) *Alerter {
	a := &Alerter{
		log:   log,
		db:    db,
		slack: slack,
		kafka: pub,
		queue: make(chan stream.Point, 256),
		done:  make(chan struct{}),
	}
	go a.worker()
	return a
}

// Record implements stream.Sink. Non-anomalous points are ignored.
// Safe to call concurrently with Close: a point racing shutdown is
// dropped instead of hitting the closed queue.
func (a *Alerter) Record(p stream.Point) {
	if !p.IsAnomaly {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	select {
	case a.queue <- p:
	default:
		metrics.SinkErrors.WithLabelValues("alert_queue").Inc()
		a.log.Warn().Float64("value", p.Value).Msg("alert queue full, dropping")
	}
}

func (a *Alerter) worker() {
	for p := range a.queue {
		a.deliver(p)
	}
	close(a.done)
}

func (a *Alerter) deliver(p stream.Point) {
	ev := store.NewEvent(p.TS, p.Value, p.Stats.Mean, p.Stats.StdDev, p.Stats.Threshold)

	if a.db != nil {
		if err := a.db.Put(ev); err != nil {
			metrics.SinkErrors.WithLabelValues("store").Inc()
			a.log.Error().Err(err).Msg("store anomaly failed")
		}
	}
	if a.slack != nil {
		if err := a.slack.Send(notify.FormatAnomaly(ev.When, ev.Value, ev.Mean, ev.Threshold)); err != nil {
			metrics.SinkErrors.WithLabelValues("slack").Inc()
			a.log.Error().Err(err).Msg("slack notify failed")
		}
	}
	if a.kafka != nil {
		if err := a.kafka.Publish(context.Background(), ev); err != nil {
			metrics.SinkErrors.WithLabelValues("kafka").Inc()
		}
	}
}

// Close drains the queue and stops the worker.
func (a *Alerter) Close() {
	a.once.Do(func() {
		a.mu.Lock()
		a.closed = true
		a.mu.Unlock()
		close(a.queue)
		<-a.done
	})
}
