// Package stream owns the tick loop that pulls samples from a source,
// runs them through the detector and fans the results out to sinks.
package stream

import (
	"time"

	"github.com/viniciushammett/go-stream-anomaly-detector/internal/detector"
)

// Source produces one sample per call. Calls are sequential with respect
// to the runner's loop.
type Source interface {
	Next() float64
}

// Sink consumes classified points. Record must not block the loop
// indefinitely; slow consumers should buffer or drop.
type Sink interface {
	Record(p Point)
}

// Point is one classified sample as handed to sinks.
type Point struct {
	TS        time.Time       `json:"ts"`
	Value     float64         `json:"value"`
	IsAnomaly bool            `json:"isAnomaly"`
	Stats     detector.Result `json:"stats"`
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(p Point)

func (f SinkFunc) Record(p Point) { f(p) }

// MultiSink fans a point out to each sink in order.
type MultiSink []Sink

func (m MultiSink) Record(p Point) {
	for _, s := range m {
		s.Record(p)
	}
}
