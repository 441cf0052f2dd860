package detector

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidConfig is returned by New for a non-positive window size or sensitivity.
	ErrInvalidConfig = errors.New("detector: invalid configuration")
	// ErrInvalidSample is returned by Classify for NaN or infinite input.
	ErrInvalidSample = errors.New("detector: sample is not a finite number")
)

// Config holds the immutable tuning of a Detector.
type Config struct {
	// WindowSize is the number of recent samples the sliding window holds.
	WindowSize int `json:"windowSize"`
	// Sensitivity multiplies the window's standard deviation to form the
	// anomaly threshold. Lower values flag more aggressively.
	Sensitivity float64 `json:"sensitivity"`
}

// Result is the outcome of classifying one sample. Mean, StdDev and
// Threshold are the statistics the decision was made against; they are
// zero while WarmingUp is true, since no decision is made during warm-up.
type Result struct {
	IsAnomaly bool    `json:"isAnomaly"`
	WarmingUp bool    `json:"warmingUp"`
	Mean      float64 `json:"mean"`
	StdDev    float64 `json:"stdDev"`
	Threshold float64 `json:"threshold"`
}

// Detector flags samples that deviate abnormally from the statistical
// profile of the most recent WindowSize samples. It is strictly
// single-writer: Classify must be called from one goroutine, in stream
// order. Each sample is judged against the window that preceded it and
// only then inserted, so a spike never dilutes its own threshold.
type Detector struct {
	cfg Config
	win *window
}

func New(cfg Config) (*Detector, error) {
	if cfg.WindowSize <= 0 {
		return nil, fmt.Errorf("%w: windowSize %d, want > 0", ErrInvalidConfig, cfg.WindowSize)
	}
	if cfg.Sensitivity <= 0 {
		return nil, fmt.Errorf("%w: sensitivity %g, want > 0", ErrInvalidConfig, cfg.Sensitivity)
	}
	return &Detector{cfg: cfg, win: newWindow(cfg.WindowSize)}, nil
}

// Classify judges value against the current window and then slides the
// window forward over it. While the window is still filling, every sample
// is accepted as normal: there is not enough history to claim otherwise.
// Non-finite input is rejected without touching the window.
func (d *Detector) Classify(value float64) (Result, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Result{}, fmt.Errorf("%w: %g", ErrInvalidSample, value)
	}

	if d.win.len() < d.cfg.WindowSize {
		d.win.push(value)
		return Result{WarmingUp: true}, nil
	}

	mean, std := d.win.meanStdDev()
	threshold := d.cfg.Sensitivity * std
	res := Result{
		// A constant window has threshold 0, so any differing value
		// is flagged.
		IsAnomaly: math.Abs(value-mean) > threshold,
		Mean:      mean,
		StdDev:    std,
		Threshold: threshold,
	}
	d.win.push(value)
	return res, nil
}

// Reset empties the window, returning the detector to warm-up.
func (d *Detector) Reset() {
	d.win = newWindow(d.cfg.WindowSize)
}

// WindowFill reports how many samples the window currently holds.
func (d *Detector) WindowFill() int { return d.win.len() }

// Warm reports whether the window is full and classification is active.
func (d *Detector) Warm() bool { return d.win.len() == d.cfg.WindowSize }

// WindowValues returns the window contents oldest-first. The slice is a
// copy; mutating it does not affect the detector.
func (d *Detector) WindowValues() []float64 { return d.win.values() }

func (d *Detector) Config() Config { return d.cfg }
