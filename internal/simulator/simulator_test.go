package simulator

import (
	"math"
	"testing"
)

func TestDeterministicWithSeed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 42
	a, b := New(cfg), New(cfg)
	for i := 0; i < 200; i++ {
		if va, vb := a.Next(), b.Next(); va != vb {
			t.Fatalf("tick %d: %g != %g with identical seed", i, va, vb)
		}
	}
}

func TestValuesAreFinite(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 7
	s := New(cfg)
	for i := 0; i < 5000; i++ {
		v := s.Next()
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("tick %d produced non-finite %g", i, v)
		}
	}
}

func TestNoNoiseFollowsBaseline(t *testing.T) {
	s := New(Config{Seasonal: "daily", Seed: 1})
	for i := 0; i < 48; i++ {
		v := s.Next()
		want := 10 + 5*math.Sin(2*math.Pi*float64(i%24)/24)
		if math.Abs(v-want) > 1e-9 {
			t.Fatalf("tick %d = %g, want baseline %g", i, v, want)
		}
	}
}

func TestFlatBaselineWithoutSeasonality(t *testing.T) {
	s := New(Config{Seed: 3, TrendRate: 0.5})
	for i := 0; i < 10; i++ {
		v := s.Next()
		want := 10 + 0.5*float64(i)
		if math.Abs(v-want) > 1e-9 {
			t.Fatalf("tick %d = %g, want %g", i, v, want)
		}
	}
}

func TestAnomalyInjectionRate(t *testing.T) {
	cfg := Config{NoiseLevel: 0.01, AnomalyChance: 0.05, Seed: 99}
	s := New(cfg)
	outliers := 0
	const n = 10000
	for i := 0; i < n; i++ {
		v := s.Next()
		// Baseline is flat 10; injected outliers scale it well away
		// from the narrow noise band most of the time.
		if math.Abs(v-10) > 1 {
			outliers++
		}
	}
	rate := float64(outliers) / n
	if rate < 0.02 || rate > 0.08 {
		t.Fatalf("outlier rate %.3f outside the expected band around 0.05", rate)
	}
}
