package stream

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/viniciushammett/go-stream-anomaly-detector/internal/detector"
	"github.com/viniciushammett/go-stream-anomaly-detector/internal/logger"
	"github.com/viniciushammett/go-stream-anomaly-detector/internal/metrics"
)

// Runner drives the classify loop. It is the detector's single writer;
// everything else observes results through sinks or Snapshot.
type Runner struct {
	log      *logger.Logger
	det      *detector.Detector
	src      Source
	sink     Sink
	interval time.Duration

	mu   sync.Mutex
	last Point
	n    int64
}

func NewRunner(log *logger.Logger, det *detector.Detector, src Source, sink Sink, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return &Runner{log: log, det: det, src: src, sink: sink, interval: interval}
}

// Run ticks until ctx is cancelled. Invalid samples from the source are
// skip-and-continue: counted, logged, and never inserted into the window.
func (r *Runner) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()

	r.log.Info().Dur("interval", r.interval).Msg("stream loop started")

	for {
		select {
		case <-ctx.Done():
			r.log.Info().Int64("samples", r.Count()).Msg("stream loop stopped")
			return
		case now := <-t.C:
			r.step(now)
		}
	}
}

func (r *Runner) step(now time.Time) {
	value := r.src.Next()

	// The detector itself is lock-free; the runner's lock is what makes
	// Classify, Reset and Snapshot mutually exclusive.
	r.mu.Lock()
	res, err := r.det.Classify(value)
	if err != nil {
		r.mu.Unlock()
		if errors.Is(err, detector.ErrInvalidSample) {
			metrics.SamplesSkipped.Inc()
			r.log.Warn().Float64("value", value).Err(err).Msg("sample rejected")
			return
		}
		r.log.Error().Err(err).Msg("classify failed")
		return
	}
	fill := r.det.WindowFill()
	p := Point{TS: now, Value: value, IsAnomaly: res.IsAnomaly, Stats: res}
	r.last = p
	r.n++
	r.mu.Unlock()

	metrics.SamplesTotal.Inc()
	metrics.WindowFill.Set(float64(fill))
	if !res.WarmingUp {
		metrics.WindowMean.Set(res.Mean)
		metrics.WindowStdDev.Set(res.StdDev)
	}

	if res.IsAnomaly {
		metrics.AnomaliesTotal.Inc()
		r.log.Warn().
			Float64("value", value).
			Float64("mean", res.Mean).
			Float64("stdDev", res.StdDev).
			Float64("threshold", res.Threshold).
			Msg("anomaly")
	} else {
		r.log.Debug().Float64("value", value).Bool("warmup", res.WarmingUp).Msg("sample")
	}

	if r.sink != nil {
		r.sink.Record(p)
	}
}

// Snapshot reports the loop's current state for the API.
type Snapshot struct {
	Samples    int64           `json:"samples"`
	WindowFill int             `json:"windowFill"`
	WindowSize int             `json:"windowSize"`
	Warm       bool            `json:"warm"`
	Last       *Point          `json:"last,omitempty"`
	Config     detector.Config `json:"config"`
}

func (r *Runner) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Snapshot{
		Samples:    r.n,
		WindowFill: r.det.WindowFill(),
		WindowSize: r.det.Config().WindowSize,
		Warm:       r.det.Warm(),
		Config:     r.det.Config(),
	}
	if r.n > 0 {
		last := r.last
		s.Last = &last
	}
	return s
}

func (r *Runner) Count() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}

// Reset empties the detector window. Serialized against step through the
// runner's lock so the single-writer contract holds.
func (r *Runner) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.det.Reset()
}
