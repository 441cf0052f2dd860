// Package simulator generates a synthetic metric stream for demos and
// load testing: a seasonal baseline with drift and noise, plus occasional
// injected outliers so the detector has something to find.
package simulator

import (
	"math"
	"math/rand"
)

type Config struct {
	// Seasonal selects the baseline shape: "daily" gives a 24-tick
	// sinusoidal cycle, anything else a flat baseline.
	Seasonal string `yaml:"seasonal"`
	// NoiseLevel is the stddev of the gaussian noise added per tick.
	NoiseLevel float64 `yaml:"noiseLevel"`
	// TrendRate is the linear drift added per tick.
	TrendRate float64 `yaml:"trendRate"`
	// AnomalyChance is the per-tick probability of emitting an outlier.
	AnomalyChance float64 `yaml:"anomalyChance"`
	// Seed fixes the random source; 0 seeds from entropy.
	Seed int64 `yaml:"seed"`
}

func DefaultConfig() Config {
	return Config{
		Seasonal:      "daily",
		NoiseLevel:    0.2,
		TrendRate:     0.002,
		AnomalyChance: 0.05,
	}
}

// Simulator implements stream.Source. Not safe for concurrent use; the
// stream runner is its only caller.
type Simulator struct {
	cfg  Config
	rng  *rand.Rand
	tick int
}

func New(cfg Config) *Simulator {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	return &Simulator{cfg: cfg, rng: rand.New(rand.NewSource(seed))}
}

func (s *Simulator) baseline() float64 {
	hour := 0
	if s.cfg.Seasonal == "daily" {
		hour = s.tick % 24
	}
	base := 10 + 5*math.Sin(2*math.Pi*float64(hour)/24)
	return base + s.cfg.TrendRate*float64(s.tick)
}

// Next returns the next sample. Roughly AnomalyChance of the ticks emit
// the baseline scaled by a random factor (a spike, a collapse, or a
// gaussian wobble around 1x) instead of baseline plus noise.
func (s *Simulator) Next() float64 {
	base := s.baseline()
	s.tick++

	if s.rng.Float64() < s.cfg.AnomalyChance {
		scale := [3]float64{3, 0.1, 1 + s.rng.NormFloat64()}[s.rng.Intn(3)]
		return base * scale
	}
	return base + s.rng.NormFloat64()*s.cfg.NoiseLevel
}

// Tick reports how many samples have been produced.
func (s *Simulator) Tick() int { return s.tick }
